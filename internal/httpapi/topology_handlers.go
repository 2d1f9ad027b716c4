package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"netopscore/internal/domain"
	"netopscore/internal/store"
	"netopscore/internal/topology"
)

// getTopology implements GET /projects/{pid}/topology: the full merged
// node/edge view plus the stored layout.
func (h *api) getTopology(c echo.Context) error {
	view, err := h.d.Topology.Get(c.Request().Context(), c.Param("pid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// getNetworkTopology implements GET /projects/{pid}/network-topology: a
// fast DB-only view returning the project's parsed DeviceRecords. It
// computes no edges and skips the AI-artifact merge and the layout.
func (h *api) getNetworkTopology(c echo.Context) error {
	records, err := store.ListDeviceRecords(c.Request().Context(), h.d.DB, c.Param("pid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

type saveTopologyLayoutRequest struct {
	Positions  map[string]domain.Position `json:"positions"`
	Links      []domain.Link              `json:"links"`
	NodeLabels map[string]string          `json:"node_labels"`
	NodeRoles  map[string]string          `json:"node_roles"`
	Relax      bool                       `json:"relax"`
}

// saveTopologyLayout implements PUT /projects/{pid}/topology/layout:
// replaces the whole layout document wholesale, last-writer-wins on the
// whole state. If relax is set, the overlap-nudge pass runs over the
// supplied positions first — intended for layouts freshly produced by
// an LLM topology draft.
func (h *api) saveTopologyLayout(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	var req saveTopologyLayoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	positions := req.Positions
	if req.Relax {
		positions = topology.Relax(positions)
	}

	if err := h.d.Topology.SaveLayout(c.Request().Context(), c.Param("pid"), caller.Username, positions, req.Links, req.NodeLabels, req.NodeRoles); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
