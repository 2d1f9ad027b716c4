package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// CreateProject inserts a new project row. Creation always happens
// alongside an admin Member row for CreatedBy; callers use WithTx to
// wrap CreateProject and AddMember in one transaction.
func CreateProject(ctx context.Context, db querier, p domain.Project) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO projects (id, name, visibility, description, topo_url, backup_interval_hint, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Visibility), p.Description, p.TopoURL, p.BackupIntervalHint, p.CreatedBy,
		p.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.Conflict("PROJECT_EXISTS", fmt.Sprintf("project %q already exists", p.ID))
		}
		return fmt.Errorf("store: create project: %w", err)
	}
	return nil
}

// GetProject fetches one project by id.
func GetProject(ctx context.Context, db querier, id string) (domain.Project, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, visibility, description, topo_url, backup_interval_hint, created_by, created_at
		FROM projects WHERE id = ?`, id)
	return scanProject(row, id)
}

func scanProject(row *sql.Row, id string) (domain.Project, error) {
	var p domain.Project
	var visibility, createdAt string
	if err := row.Scan(&p.ID, &p.Name, &visibility, &p.Description, &p.TopoURL, &p.BackupIntervalHint, &p.CreatedBy, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Project{}, apperrors.NotFound("project", id)
		}
		return domain.Project{}, fmt.Errorf("store: get project: %w", err)
	}
	p.Visibility = domain.Visibility(visibility)
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return p, nil
}

// ListProjectsForUser returns every project the given user can see: all
// Shared projects, plus Private ones where they hold a Member row.
func ListProjectsForUser(ctx context.Context, db querier, username string) ([]domain.Project, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT p.id, p.name, p.visibility, p.description, p.topo_url, p.backup_interval_hint, p.created_by, p.created_at
		FROM projects p
		LEFT JOIN members m ON m.project_id = p.id AND m.username = ?
		WHERE p.visibility = 'Shared' OR m.username IS NOT NULL
		ORDER BY p.created_at DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		var visibility, createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &visibility, &p.Description, &p.TopoURL, &p.BackupIntervalHint, &p.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan project: %w", err)
		}
		p.Visibility = domain.Visibility(visibility)
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProjectSettings patches the mutable project fields.
func UpdateProjectSettings(ctx context.Context, db querier, p domain.Project) error {
	res, err := db.ExecContext(ctx, `
		UPDATE projects SET name = ?, visibility = ?, description = ?, topo_url = ?, backup_interval_hint = ?
		WHERE id = ?`,
		p.Name, string(p.Visibility), p.Description, p.TopoURL, p.BackupIntervalHint, p.ID,
	)
	if err != nil {
		return fmt.Errorf("store: update project: %w", err)
	}
	return requireRowAffected(res, "project", p.ID)
}

// DeleteProjectCascade removes a project and every row it owns:
// members, folders, documents, versions, device records, analysis
// artifacts, in-flight markers, topology state, options, and images.
// Blob reference counts are decremented once per deleted version so
// content shared with other projects survives; orphaned bytes are left
// for the blob GC sweep. Callers wrap this in WithTx so the cascade is
// all-or-nothing.
func DeleteProjectCascade(ctx context.Context, db querier, projectID string) error {
	if _, err := db.ExecContext(ctx, `
		UPDATE blobs SET ref_count = MAX(ref_count - (
			SELECT COUNT(*) FROM document_versions dv
			WHERE dv.project_id = ?1 AND dv.blob_hash = blobs.hash
		), 0)
		WHERE hash IN (SELECT blob_hash FROM document_versions WHERE project_id = ?1)`,
		projectID); err != nil {
		return fmt.Errorf("store: release project blobs: %w", err)
	}

	for _, table := range []string{
		"members", "folders", "documents", "document_versions",
		"device_records", "analysis_artifacts", "in_flight_markers",
		"topology_states", "project_options", "device_images",
	} {
		if _, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("store: cascade delete %s: %w", table, err)
		}
	}

	res, err := db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	return requireRowAffected(res, "project", projectID)
}
