package domain

// Capability checks implement the permission table for project roles.
// They take a Role directly rather than a Member so callers resolved
// the membership once (typically in middleware) and pass the role down.

// CanRead reports whether role can view project content. All roles can.
func (r Role) CanRead() bool { return r.Valid() }

// CanUpload reports whether role can upload documents or edit folders.
func (r Role) CanUpload() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEngineer:
		return true
	default:
		return false
	}
}

// CanManageProjectSettings reports whether role can edit project
// settings or delete a device record.
func (r Role) CanManageProjectSettings() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	default:
		return false
	}
}

// CanDeleteDevice is an alias of CanManageProjectSettings per the
// capability table (same column).
func (r Role) CanDeleteDevice() bool { return r.CanManageProjectSettings() }

// CanManageUsers reports whether role can create projects or manage
// project membership. Only admin.
func (r Role) CanManageUsers() bool { return r == RoleAdmin }
