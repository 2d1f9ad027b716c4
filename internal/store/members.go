package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// AddMember inserts or replaces a project membership row.
func AddMember(ctx context.Context, db querier, m domain.Member) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO members (project_id, username, role, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, username) DO UPDATE SET role = excluded.role`,
		m.ProjectID, m.Username, string(m.Role), m.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: add member: %w", err)
	}
	return nil
}

// GetMember fetches one project's membership row for a user.
func GetMember(ctx context.Context, db querier, projectID, username string) (domain.Member, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, username, role, created_at FROM members
		WHERE project_id = ? AND username = ?`, projectID, username)

	var m domain.Member
	var role, createdAt string
	if err := row.Scan(&m.ProjectID, &m.Username, &role, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Member{}, apperrors.NotFound("member", username)
		}
		return domain.Member{}, fmt.Errorf("store: get member: %w", err)
	}
	m.Role = domain.Role(role)
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return m, nil
}

// ListMembers returns every membership row for a project.
func ListMembers(ctx context.Context, db querier, projectID string) ([]domain.Member, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT project_id, username, role, created_at FROM members
		WHERE project_id = ? ORDER BY username`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list members: %w", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m domain.Member
		var role, createdAt string
		if err := rows.Scan(&m.ProjectID, &m.Username, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan member: %w", err)
		}
		m.Role = domain.Role(role)
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountAdmins reports how many admin-role members a project has.
func CountAdmins(ctx context.Context, db querier, projectID string) (int, error) {
	row := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM members WHERE project_id = ? AND role = 'admin'`, projectID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count admins: %w", err)
	}
	return n, nil
}

// RemoveMember deletes a project's membership row for a user.
func RemoveMember(ctx context.Context, db querier, projectID, username string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM members WHERE project_id = ? AND username = ?`, projectID, username)
	if err != nil {
		return fmt.Errorf("store: remove member: %w", err)
	}
	return requireRowAffected(res, "member", username)
}
