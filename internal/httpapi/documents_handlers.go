package httpapi

import (
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	"netopscore/internal/deviceparser"
	"netopscore/internal/documents"
	"netopscore/internal/domain"
)

// listDocuments implements GET /projects/{pid}/documents?folder_id=.
func (h *api) listDocuments(c echo.Context) error {
	folderID := c.QueryParam("folder_id")
	if folderID == "" {
		folderID = domain.FolderOther
	}
	list, err := h.d.Documents.List(c.Request().Context(), c.Param("pid"), folderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// uploadDocument implements POST /projects/{pid}/documents (multipart):
// one or more `files` parts plus JSON metadata fields.
func (h *api) uploadDocument(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	projectID := c.Param("pid")

	form, ferr := c.MultipartForm()
	if ferr != nil {
		return apperrors.Validation("MALFORMED_MULTIPART", "expected multipart/form-data with a files field")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return apperrors.Validation("NO_FILES", "at least one file is required")
	}

	folderID := form.Value["folder_id"]
	metadata := domain.VersionMetadata{
		Who: formValue(form, "who"), What: formValue(form, "what"), Where: formValue(form, "where"),
		When: formValue(form, "when"), Why: formValue(form, "why"), Description: formValue(form, "description"),
	}

	var uploaded []documentUploadResult
	for _, fh := range files {
		f, oerr := fh.Open()
		if oerr != nil {
			return apperrors.Validation("UNREADABLE_FILE", "could not open uploaded file "+fh.Filename)
		}
		content, rerr := io.ReadAll(f)
		f.Close()
		if rerr != nil {
			return apperrors.Validation("UNREADABLE_FILE", "could not read uploaded file "+fh.Filename)
		}

		// No folder_id means unfiled; listings surface unfiled
		// documents under the virtual Other folder.
		target := ""
		if len(folderID) > 0 {
			target = folderID[0]
		}
		doc, ver, err := h.d.Documents.Upload(c.Request().Context(), documents.UploadInput{
			ProjectID: projectID, FolderID: target, OriginalFilename: fh.Filename,
			Bytes: content, ContentType: fh.Header.Get("Content-Type"),
			Uploader: caller.Username, Metadata: metadata,
		})
		if err != nil {
			return err
		}

		for _, category := range []struct {
			cat domain.ProjectOptionCategory
			val string
		}{{domain.OptionWhat, metadata.What}, {domain.OptionWhere, metadata.Where}, {domain.OptionWhen, metadata.When}, {domain.OptionWhy, metadata.Why}} {
			_ = h.rememberOption(c, projectID, category.cat, category.val)
		}

		uploaded = append(uploaded, documentUploadResult{Document: doc, Version: ver})
	}

	return c.JSON(http.StatusOK, uploaded)
}

type documentUploadResult struct {
	Document domain.Document        `json:"document"`
	Version  domain.DocumentVersion `json:"version"`
}

func formValue(form *multipart.Form, key string) string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// getDocument implements GET /projects/{pid}/documents/{did}.
func (h *api) getDocument(c echo.Context) error {
	doc, err := h.d.Documents.Get(c.Request().Context(), c.Param("pid"), c.Param("did"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

type renameDocumentRequest struct {
	Filename string `json:"filename"`
}

// renameDocument implements PATCH/POST /projects/{pid}/documents/{did}(/rename).
func (h *api) renameDocument(c echo.Context) error {
	var req renameDocumentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.d.Documents.Rename(c.Request().Context(), c.Param("pid"), c.Param("did"), req.Filename); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

type moveDocumentRequest struct {
	FolderID string `json:"folder_id"`
}

// moveDocument implements POST /projects/{pid}/documents/{did}/move.
func (h *api) moveDocument(c echo.Context) error {
	var req moveDocumentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.d.Documents.Move(c.Request().Context(), c.Param("pid"), c.Param("did"), req.FolderID); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// deleteDocument implements DELETE /projects/{pid}/documents/{did}.
func (h *api) deleteDocument(c echo.Context) error {
	if err := h.d.Documents.Delete(c.Request().Context(), c.Param("pid"), c.Param("did")); err != nil {
		return err
	}
	h.d.Summary.Invalidate(c.Param("pid"))
	return c.NoContent(http.StatusOK)
}

// listDocumentVersions implements GET /projects/{pid}/documents/{did}/versions.
func (h *api) listDocumentVersions(c echo.Context) error {
	versions, err := h.d.Documents.Versions(c.Request().Context(), c.Param("pid"), c.Param("did"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, versions)
}

// downloadDocument implements GET /projects/{pid}/documents/{did}/download?version=.
func (h *api) downloadDocument(c echo.Context) error {
	versionNumber, _ := strconv.Atoi(c.QueryParam("version"))
	ver, data, err := h.d.Documents.Download(c.Request().Context(), c.Param("pid"), c.Param("did"), versionNumber)
	if err != nil {
		return err
	}
	doc, err := h.d.Documents.Get(c.Request().Context(), c.Param("pid"), c.Param("did"))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Response().Header().Set("X-Version-Number", strconv.Itoa(ver.VersionNumber))
	return c.Blob(http.StatusOK, firstNonEmpty(doc.ContentType, "application/octet-stream"), data)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// previewDocument implements GET /projects/{pid}/documents/{did}/preview:
// the latest version's bytes, base64-encoded for inline rendering by
// clients that can't stream a raw blob response.
func (h *api) previewDocument(c echo.Context) error {
	_, data, err := h.d.Documents.Download(c.Request().Context(), c.Param("pid"), c.Param("did"), 0)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"content_base64": base64.StdEncoding.EncodeToString(data)})
}

// documentContent implements GET /projects/{pid}/documents/{did}/content?extract_config=:
// returns the latest version as text, additionally reporting the
// detected vendor (possibly the unknown vendor) whenever
// extract_config=true (vendor detection reused as a lightweight content
// hint).
func (h *api) documentContent(c echo.Context) error {
	_, data, err := h.d.Documents.Download(c.Request().Context(), c.Param("pid"), c.Param("did"), 0)
	if err != nil {
		return err
	}

	resp := map[string]any{"content": string(data)}
	if c.QueryParam("extract_config") == "true" {
		resp["vendor"] = deviceparser.DetectVendor(string(data))
	}
	return c.JSON(http.StatusOK, resp)
}
