package httpapi

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
	"netopscore/internal/store"
	"netopscore/internal/summary"
)

// configSummary implements GET /projects/{pid}/config-summary: the full
// per-device summary table, as JSON or as CSV with format=csv.
func (h *api) configSummary(c echo.Context) error {
	rows, err := h.d.Summary.Table(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	if c.QueryParam("format") == "csv" {
		data, err := summary.ExportCSV(rows)
		if err != nil {
			return err
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="config-summary.csv"`)
		return c.Blob(http.StatusOK, "text/csv", data)
	}
	return c.JSON(http.StatusOK, rows)
}

// summaryMetrics implements GET /projects/{pid}/summary-metrics: the
// dashboard role/health rollup.
func (h *api) summaryMetrics(c echo.Context) error {
	metrics, err := h.d.Summary.Dashboard(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, metrics)
}

// getDevice implements GET /projects/{pid}/devices/{name}: the raw
// parsed DeviceRecord.
func (h *api) getDevice(c echo.Context) error {
	rec, err := store.GetDeviceRecord(c.Request().Context(), h.d.DB, c.Param("pid"), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// deleteDevice implements DELETE /projects/{pid}/devices/{name}: removes
// the DeviceRecord, its image, its device-scoped analysis artifacts, and
// its node from TopologyState; Config documents whose inferred device
// name matches are left alone since they remain file history.
func (h *api) deleteDevice(c echo.Context) error {
	ctx := c.Request().Context()
	projectID, name := c.Param("pid"), c.Param("name")

	if err := store.DeleteDeviceRecord(ctx, h.d.DB, projectID, name); err != nil {
		// A device known only from the topology (no parsed record) is
		// still cascaded through the remaining steps.
		if appErr, ok := apperrors.As(err); !ok || appErr.Category != apperrors.CategoryNotFound {
			return err
		}
	}
	if err := store.DeleteDeviceImage(ctx, h.d.DB, projectID, name); err != nil {
		return err
	}
	if err := store.DeleteDeviceAnalysisArtifacts(ctx, h.d.DB, projectID, name); err != nil {
		return err
	}
	if err := h.d.Topology.RemoveDevice(ctx, projectID, name); err != nil {
		return err
	}
	h.d.Summary.Invalidate(projectID)
	return c.NoContent(http.StatusOK)
}

// getDeviceImage implements GET /projects/{pid}/devices/{name}/image.
func (h *api) getDeviceImage(c echo.Context) error {
	img, err := store.GetDeviceImage(c.Request().Context(), h.d.DB, c.Param("pid"), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}

type putDeviceImageRequest struct {
	ImageData string `json:"image_data"`
}

// putDeviceImage implements PUT /projects/{pid}/devices/{name}/image,
// enforcing the ~1.5MB cap on the decoded image bytes.
func (h *api) putDeviceImage(c echo.Context) error {
	var req putDeviceImageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	decoded, derr := base64.StdEncoding.DecodeString(req.ImageData)
	if derr != nil {
		return apperrors.Validation("INVALID_IMAGE", "image_data must be base64-encoded")
	}
	if int64(len(decoded)) > h.d.MaxDeviceImageBytes {
		return apperrors.TooLarge("device image exceeds the configured size limit")
	}

	img := domain.DeviceImage{ProjectID: c.Param("pid"), DeviceName: c.Param("name"), ImageData: req.ImageData}
	if err := store.SaveDeviceImage(c.Request().Context(), h.d.DB, img); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// deviceConfigs implements GET /projects/{pid}/devices/{name}/configs:
// every Config document version uploaded for this device, oldest first.
func (h *api) deviceConfigs(c echo.Context) error {
	ctx := c.Request().Context()
	projectID, name := c.Param("pid"), c.Param("name")

	doc, err := store.FindConfigDocumentByDeviceName(ctx, h.d.DB, projectID, name)
	if err != nil {
		return err
	}
	versions, err := store.ListDocumentVersions(ctx, h.d.DB, projectID, doc.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, versions)
}
