package store

import (
	"context"
	"fmt"

	"netopscore/internal/domain"
)

// RememberProjectOption records a dropdown value used in a document
// upload so it is offered as a suggestion next time.
// Duplicate (category, value) pairs are silently ignored.
func RememberProjectOption(ctx context.Context, db querier, o domain.ProjectOption) error {
	if o.Value == "" {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO project_options (project_id, category, value)
		VALUES (?, ?, ?)
		ON CONFLICT (project_id, category, value) DO NOTHING`,
		o.ProjectID, string(o.Category), o.Value,
	)
	if err != nil {
		return fmt.Errorf("store: remember project option: %w", err)
	}
	return nil
}

// ListProjectOptions returns every remembered value for one category in
// a project, alphabetically.
func ListProjectOptions(ctx context.Context, db querier, projectID string, category domain.ProjectOptionCategory) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT value FROM project_options WHERE project_id = ? AND category = ? ORDER BY value`,
		projectID, string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("store: list project options: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("store: scan project option: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
