package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// Aliases so router.go reads as plainly as the route table it wires.
const (
	kindProjectOverview        = domain.KindProjectOverview
	kindProjectRecommendations = domain.KindProjectRecommendations
	kindProjectTopology        = domain.KindProjectTopology
	kindDeviceOverview         = domain.KindDeviceOverview
	kindDeviceRecommendations  = domain.KindDeviceRecommendations
	kindDeviceConfigDrift      = domain.KindDeviceConfigDrift
)

// submitProjectAnalysis builds a handler for POST
// /projects/{pid}/analyze/{overview|recommendations|topology}: submits
// a project-scoped analysis job and returns 202 immediately — the LLM
// call never blocks the request.
func (h *api) submitProjectAnalysis(kind domain.AnalysisKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller, err := currentUser(c)
		if err != nil {
			return err
		}
		if err := h.d.Analysis.Submit(c.Request().Context(), c.Param("pid"), kind, "", caller.Username); err != nil {
			return err
		}
		return c.NoContent(http.StatusAccepted)
	}
}

// getProjectAnalysis builds a handler returning the latest artifact for
// a project-scoped kind.
func (h *api) getProjectAnalysis(kind domain.AnalysisKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		artifact, err := h.d.Analysis.Get(c.Request().Context(), c.Param("pid"), kind, "")
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, artifact)
	}
}

// submitDeviceAnalysis builds a handler for POST
// /projects/{pid}/devices/{name}/analyze/{overview|recommendations|config-drift}.
func (h *api) submitDeviceAnalysis(kind domain.AnalysisKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller, err := currentUser(c)
		if err != nil {
			return err
		}
		if err := h.d.Analysis.Submit(c.Request().Context(), c.Param("pid"), kind, c.Param("name"), caller.Username); err != nil {
			return err
		}
		return c.NoContent(http.StatusAccepted)
	}
}

// getDeviceAnalysis builds a handler returning the latest artifact for a
// device-scoped kind.
func (h *api) getDeviceAnalysis(kind domain.AnalysisKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		artifact, err := h.d.Analysis.Get(c.Request().Context(), c.Param("pid"), kind, c.Param("name"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, artifact)
	}
}

type verifyAnalysisRequest struct {
	Kind         domain.AnalysisKind `json:"kind"`
	DeviceName   string              `json:"device_name"`
	VerifiedJSON string              `json:"verified_json"`
	Comments     string              `json:"comments"`
	Status       domain.AnalysisStatus `json:"status"`
}

// verifyAnalysis implements the human verification step over an
// analysis artifact, computing accuracy_metrics against the AI draft.
func (h *api) verifyAnalysis(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req verifyAnalysisRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Kind == "" {
		return apperrors.Validation("KIND_REQUIRED", "kind is required")
	}

	artifact, err := h.d.Analysis.Verify(c.Request().Context(), c.Param("pid"), req.Kind, req.DeviceName, req.VerifiedJSON, req.Comments, caller.Username, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artifact)
}

// analysisFull implements GET /projects/{pid}/analysis/full: every
// stored artifact in the project.
func (h *api) analysisFull(c echo.Context) error {
	list, err := h.d.Analysis.ListAll(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
