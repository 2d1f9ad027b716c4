package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// listFolders implements GET /projects/{pid}/folders.
func (h *api) listFolders(c echo.Context) error {
	list, err := h.d.Folders.List(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

// createFolder implements POST /projects/{pid}/folders.
func (h *api) createFolder(c echo.Context) error {
	var req createFolderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	f, err := h.d.Folders.Create(c.Request().Context(), c.Param("pid"), req.Name, req.ParentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

type renameFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

// renameFolder implements PATCH /projects/{pid}/folders/{fid}.
func (h *api) renameFolder(c echo.Context) error {
	var req renameFolderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.d.Folders.Rename(c.Request().Context(), c.Param("pid"), c.Param("fid"), req.Name, req.ParentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// deleteFolder implements DELETE /projects/{pid}/folders/{fid}.
func (h *api) deleteFolder(c echo.Context) error {
	if err := h.d.Folders.Delete(c.Request().Context(), c.Param("pid"), c.Param("fid")); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
