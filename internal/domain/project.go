// Package domain holds the entity types shared across netopscore's
// storage, parsing, analysis, and HTTP layers. Keeping them
// in one leaf package lets internal/store, internal/deviceparser,
// internal/analysis, and internal/topology all depend on the same
// shapes without importing one another.
package domain

import "time"

// Visibility is a Project's sharing flag.
type Visibility string

const (
	VisibilityPrivate Visibility = "Private"
	VisibilityShared  Visibility = "Shared"
)

// Valid reports whether v is one of the two defined visibilities.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityShared:
		return true
	default:
		return false
	}
}

// Role is a project membership role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEngineer Role = "engineer"
	RoleViewer   Role = "viewer"
)

// Valid reports whether r is one of the four defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEngineer, RoleViewer:
		return true
	default:
		return false
	}
}

// Project is the top-level entity everything else is scoped under.
type Project struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Visibility         Visibility `json:"visibility"`
	Description        string     `json:"description"`
	TopoURL            string     `json:"topo_url,omitempty"`
	BackupIntervalHint string     `json:"backup_interval_hint,omitempty"`
	CreatedBy          string     `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Member is a (project, username, role) triple.
type Member struct {
	ProjectID string    `json:"project_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a platform login identity, independent of project membership.
// PasswordHash never leaves the server; it is deliberately excluded from
// JSON so a handler can serialize a User straight back to a client.
type User struct {
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	IsPlatformAdmin bool      `json:"is_platform_admin"`
	CreatedAt       time.Time `json:"created_at"`
}
