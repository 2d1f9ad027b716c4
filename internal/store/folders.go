package store

import (
	"context"
	"database/sql"
	"fmt"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// CreateFolder inserts a folder row. internal/foldertree is responsible
// for id generation, cycle detection, and reserved-name checks; store
// only persists the already-validated row.
func CreateFolder(ctx context.Context, db querier, f domain.Folder) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO folders (project_id, id, name, parent_id, deleted)
		VALUES (?, ?, ?, ?, 0)`,
		f.ProjectID, f.ID, f.Name, nullIfEmpty(f.ParentID),
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.Conflict("FOLDER_EXISTS", fmt.Sprintf("folder %q already exists", f.ID))
		}
		return fmt.Errorf("store: create folder: %w", err)
	}
	return nil
}

// GetFolder fetches one folder by id, soft-deleted or not; Deleted
// reports which.
func GetFolder(ctx context.Context, db querier, projectID, id string) (domain.Folder, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, id, name, parent_id, deleted FROM folders
		WHERE project_id = ? AND id = ?`, projectID, id)
	return scanFolder(row, id)
}

func scanFolder(row *sql.Row, id string) (domain.Folder, error) {
	var f domain.Folder
	var parentID sql.NullString
	var deleted int
	if err := row.Scan(&f.ProjectID, &f.ID, &f.Name, &parentID, &deleted); err != nil {
		if err == sql.ErrNoRows {
			return domain.Folder{}, apperrors.NotFound("folder", id)
		}
		return domain.Folder{}, fmt.Errorf("store: get folder: %w", err)
	}
	f.ParentID = parentID.String
	f.Deleted = deleted != 0
	return f, nil
}

// ListFolders returns every non-deleted folder in a project.
func ListFolders(ctx context.Context, db querier, projectID string) ([]domain.Folder, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT project_id, id, name, parent_id, deleted FROM folders
		WHERE project_id = ? AND deleted = 0 ORDER BY name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list folders: %w", err)
	}
	defer rows.Close()

	var out []domain.Folder
	for rows.Next() {
		var f domain.Folder
		var parentID sql.NullString
		var deleted int
		if err := rows.Scan(&f.ProjectID, &f.ID, &f.Name, &parentID, &deleted); err != nil {
			return nil, fmt.Errorf("store: scan folder: %w", err)
		}
		f.ParentID = parentID.String
		f.Deleted = deleted != 0
		out = append(out, f)
	}
	return out, rows.Err()
}

// RenameFolder updates a folder's display name.
func RenameFolder(ctx context.Context, db querier, projectID, id, newName string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE folders SET name = ? WHERE project_id = ? AND id = ? AND deleted = 0`,
		newName, projectID, id,
	)
	if err != nil {
		return fmt.Errorf("store: rename folder: %w", err)
	}
	return requireRowAffected(res, "folder", id)
}

// MoveFolder reparents a folder. internal/foldertree validates that the
// new parent does not create a cycle before calling this.
func MoveFolder(ctx context.Context, db querier, projectID, id, newParentID string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE folders SET parent_id = ? WHERE project_id = ? AND id = ? AND deleted = 0`,
		nullIfEmpty(newParentID), projectID, id,
	)
	if err != nil {
		return fmt.Errorf("store: move folder: %w", err)
	}
	return requireRowAffected(res, "folder", id)
}

// SoftDeleteFolder marks a folder deleted without removing its row,
// preserving history for documents that still reference it.
func SoftDeleteFolder(ctx context.Context, db querier, projectID, id string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE folders SET deleted = 1 WHERE project_id = ? AND id = ? AND deleted = 0`,
		projectID, id,
	)
	if err != nil {
		return fmt.Errorf("store: delete folder: %w", err)
	}
	return requireRowAffected(res, "folder", id)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
