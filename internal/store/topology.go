package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"netopscore/internal/domain"
)

// SaveTopologyState overwrites the whole topology document for a
// project. Saves are last-writer-wins over the entire document, never
// merged field by field.
func SaveTopologyState(ctx context.Context, db querier, t domain.TopologyState) error {
	t.Normalize()
	positionsJSON, err := json.Marshal(t.Positions)
	if err != nil {
		return fmt.Errorf("store: marshal positions: %w", err)
	}
	linksJSON, err := json.Marshal(t.Links)
	if err != nil {
		return fmt.Errorf("store: marshal links: %w", err)
	}
	labelsJSON, err := json.Marshal(t.NodeLabels)
	if err != nil {
		return fmt.Errorf("store: marshal node labels: %w", err)
	}
	rolesJSON, err := json.Marshal(t.NodeRoles)
	if err != nil {
		return fmt.Errorf("store: marshal node roles: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO topology_states (project_id, positions_json, links_json, node_labels_json, node_roles_json, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id) DO UPDATE SET
			positions_json = excluded.positions_json, links_json = excluded.links_json,
			node_labels_json = excluded.node_labels_json, node_roles_json = excluded.node_roles_json,
			updated_by = excluded.updated_by, updated_at = excluded.updated_at`,
		t.ProjectID, string(positionsJSON), string(linksJSON), string(labelsJSON), string(rolesJSON),
		t.UpdatedBy, t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: save topology state: %w", err)
	}
	return nil
}

// GetTopologyState fetches a project's topology document. Returns a
// zero-value, empty state (not an error) when the project has never
// saved one, since an empty canvas is a valid starting point.
func GetTopologyState(ctx context.Context, db querier, projectID string) (domain.TopologyState, error) {
	row := db.QueryRowContext(ctx, `
		SELECT positions_json, links_json, node_labels_json, node_roles_json, updated_by, updated_at
		FROM topology_states WHERE project_id = ?`, projectID)

	var positionsJSON, linksJSON, labelsJSON, rolesJSON, updatedAt string
	t := domain.TopologyState{ProjectID: projectID}
	err := row.Scan(&positionsJSON, &linksJSON, &labelsJSON, &rolesJSON, &t.UpdatedBy, &updatedAt)
	if err == sql.ErrNoRows {
		t.Normalize()
		return t, nil
	}
	if err != nil {
		return domain.TopologyState{}, fmt.Errorf("store: get topology state: %w", err)
	}

	if err := json.Unmarshal([]byte(positionsJSON), &t.Positions); err != nil {
		return domain.TopologyState{}, fmt.Errorf("store: unmarshal positions: %w", err)
	}
	if err := json.Unmarshal([]byte(linksJSON), &t.Links); err != nil {
		return domain.TopologyState{}, fmt.Errorf("store: unmarshal links: %w", err)
	}
	if err := json.Unmarshal([]byte(labelsJSON), &t.NodeLabels); err != nil {
		return domain.TopologyState{}, fmt.Errorf("store: unmarshal node labels: %w", err)
	}
	if err := json.Unmarshal([]byte(rolesJSON), &t.NodeRoles); err != nil {
		return domain.TopologyState{}, fmt.Errorf("store: unmarshal node roles: %w", err)
	}
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	t.Normalize()
	return t, nil
}
