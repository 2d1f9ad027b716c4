package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// CreateUser inserts a new login identity. The caller is responsible for
// hashing the password before it reaches this layer (internal/auth owns
// bcrypt cost); store only persists bytes.
func CreateUser(ctx context.Context, db querier, u domain.User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, is_platform_admin, created_at)
		VALUES (?, ?, ?, ?)`,
		u.Username, u.PasswordHash, boolToInt(u.IsPlatformAdmin), u.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.Conflict("USER_EXISTS", fmt.Sprintf("user %q already exists", u.Username))
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

// GetUser looks up a login identity by username.
func GetUser(ctx context.Context, db querier, username string) (domain.User, error) {
	row := db.QueryRowContext(ctx, `
		SELECT username, password_hash, is_platform_admin, created_at
		FROM users WHERE username = ?`, username)

	var u domain.User
	var isAdmin int
	var createdAt string
	if err := row.Scan(&u.Username, &u.PasswordHash, &isAdmin, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, apperrors.NotFound("user", username)
		}
		return domain.User{}, fmt.Errorf("store: get user: %w", err)
	}
	u.IsPlatformAdmin = isAdmin != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return u, nil
}

// ListUsers returns every login identity, alphabetically by username.
func ListUsers(ctx context.Context, db querier) ([]domain.User, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT username, password_hash, is_platform_admin, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		var isAdmin int
		var createdAt string
		if err := rows.Scan(&u.Username, &u.PasswordHash, &isAdmin, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan user: %w", err)
		}
		u.IsPlatformAdmin = isAdmin != 0
		u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteUser removes a login identity.
func DeleteUser(ctx context.Context, db querier, username string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("store: delete user: %w", err)
	}
	return requireRowAffected(res, "user", username)
}

// UpdateUserPassword overwrites a user's stored password hash.
func UpdateUserPassword(ctx context.Context, db querier, username, newHash string) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE username = ?`, newHash, username)
	if err != nil {
		return fmt.Errorf("store: update password: %w", err)
	}
	return requireRowAffected(res, "user", username)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRowAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

// isUniqueConstraintErr reports whether err came from a SQLite UNIQUE or
// PRIMARY KEY constraint violation. modernc.org/sqlite surfaces these as
// plain error strings rather than a typed sentinel.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY constraint failed")
}
