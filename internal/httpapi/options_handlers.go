package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
	"netopscore/internal/store"
)

// listOptions implements GET /projects/{pid}/options?category=: the
// remembered upload-form dropdown values for one category.
func (h *api) listOptions(c echo.Context) error {
	category := domain.ProjectOptionCategory(c.QueryParam("category"))
	if category == "" {
		return apperrors.Validation("CATEGORY_REQUIRED", "category query parameter is required")
	}
	values, err := store.ListProjectOptions(c.Request().Context(), h.d.DB, c.Param("pid"), category)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, values)
}

type addOptionRequest struct {
	Category domain.ProjectOptionCategory `json:"category"`
	Value    string                       `json:"value"`
}

// addOption implements POST /projects/{pid}/options.
func (h *api) addOption(c echo.Context) error {
	var req addOptionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.rememberOption(c, c.Param("pid"), req.Category, req.Value); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// rememberOption records one (category, value) pair, ignoring empty
// values (store.RememberProjectOption already no-ops on "").
func (h *api) rememberOption(c echo.Context, projectID string, category domain.ProjectOptionCategory, value string) error {
	return store.RememberProjectOption(c.Request().Context(), h.d.DB, domain.ProjectOption{
		ProjectID: projectID, Category: category, Value: value,
	})
}
