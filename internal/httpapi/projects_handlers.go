package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"netopscore/internal/domain"
)

// listProjects implements GET /projects.
func (h *api) listProjects(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.d.Projects.ListForUser(c.Request().Context(), caller.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

type createProjectRequest struct {
	Name        string           `json:"name"`
	Visibility  domain.Visibility `json:"visibility"`
	Description string           `json:"description"`
}

// createProject implements POST /projects. The caller becomes the
// project's founding admin.
func (h *api) createProject(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req createProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	proj, err := h.d.Projects.Create(c.Request().Context(), req.Name, req.Visibility, req.Description, caller.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, proj)
}

// getProject implements GET /projects/{pid}.
func (h *api) getProject(c echo.Context) error {
	proj, err := h.d.Projects.Get(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, proj)
}

type updateProjectRequest struct {
	Name               string  `json:"name"`
	Visibility         domain.Visibility `json:"visibility"`
	Description        string  `json:"description"`
	TopoURL            string  `json:"topo_url"`
	BackupIntervalHint string  `json:"backup_interval_hint"`
}

// updateProject implements PATCH /projects/{pid}.
func (h *api) updateProject(c echo.Context) error {
	projectID := c.Param("pid")
	existing, err := h.d.Projects.Get(c.Request().Context(), projectID)
	if err != nil {
		return err
	}

	var req updateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	existing.Name = req.Name
	existing.Visibility = req.Visibility
	existing.Description = req.Description
	existing.TopoURL = req.TopoURL
	existing.BackupIntervalHint = req.BackupIntervalHint

	role, err := h.callerRole(c, projectID)
	if err != nil {
		return err
	}
	if err := h.d.Projects.UpdateSettings(c.Request().Context(), role, existing); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, existing)
}

// deleteProject implements DELETE /projects/{pid}. Deletion cascades to
// every project-scoped table in one transaction, never partially; blob
// bytes shared with other projects survive and orphans wait for the GC
// sweep.
func (h *api) deleteProject(c echo.Context) error {
	projectID := c.Param("pid")
	role, err := h.callerRole(c, projectID)
	if err != nil {
		return err
	}
	if err := h.d.Projects.Delete(c.Request().Context(), role, projectID); err != nil {
		return err
	}
	h.d.Summary.Invalidate(projectID)
	return c.NoContent(http.StatusNoContent)
}

// listMembers implements GET /projects/{pid}/members.
func (h *api) listMembers(c echo.Context) error {
	members, err := h.d.Projects.Members(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, members)
}

type addMemberRequest struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// addMember implements POST /projects/{pid}/members.
func (h *api) addMember(c echo.Context) error {
	projectID := c.Param("pid")
	var req addMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.callerRole(c, projectID)
	if err != nil {
		return err
	}
	if err := h.d.Projects.AddMember(c.Request().Context(), role, projectID, req.Username, req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

type changeMemberRoleRequest struct {
	Role domain.Role `json:"role"`
}

// changeMemberRole implements PATCH /projects/{pid}/members/{username}.
func (h *api) changeMemberRole(c echo.Context) error {
	projectID := c.Param("pid")
	var req changeMemberRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.callerRole(c, projectID)
	if err != nil {
		return err
	}
	if err := h.d.Projects.ChangeRole(c.Request().Context(), role, projectID, c.Param("username"), req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// removeMember implements DELETE /projects/{pid}/members/{username}.
func (h *api) removeMember(c echo.Context) error {
	projectID := c.Param("pid")
	role, err := h.callerRole(c, projectID)
	if err != nil {
		return err
	}
	if err := h.d.Projects.RemoveMember(c.Request().Context(), role, projectID, c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// callerRole resolves the authenticated caller's role on projectID,
// treating platform admins as a project admin for write-gate checks
// that happen inside the service layer (the route-level RequireRole
// middleware already let a platform admin through).
func (h *api) callerRole(c echo.Context, projectID string) (domain.Role, error) {
	caller, err := currentUser(c)
	if err != nil {
		return "", err
	}
	if caller.IsPlatformAdmin {
		return domain.RoleAdmin, nil
	}
	return h.d.projectRole(c.Request().Context(), projectID, caller.Username)
}
