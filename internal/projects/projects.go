// Package projects implements project lifecycle, project settings, and
// membership management, enforcing the capability table in domain.Role
// and the protected-admin-membership invariant.
package projects

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
	"netopscore/internal/store"
)

// Service implements project and membership operations.
type Service struct {
	db *sql.DB
}

// New builds a projects Service.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Create makes a new project with the creator as its sole admin member,
// both rows written in one transaction.
func (s *Service) Create(ctx context.Context, name string, visibility domain.Visibility, description string, createdBy string) (domain.Project, error) {
	if name == "" {
		return domain.Project{}, apperrors.Validation("INVALID_NAME", "name is required")
	}
	if !visibility.Valid() {
		return domain.Project{}, apperrors.Validation("INVALID_VISIBILITY", "visibility must be Private or Shared")
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          ulid.Make().String(),
		Name:        name,
		Visibility:  visibility,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}
	member := domain.Member{
		ProjectID: project.ID,
		Username:  createdBy,
		Role:      domain.RoleAdmin,
		CreatedAt: now,
	}

	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := store.CreateProject(ctx, tx, project); err != nil {
			return err
		}
		return store.AddMember(ctx, tx, member)
	})
	if err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// Get fetches a project by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Project, error) {
	return store.GetProject(ctx, s.db, id)
}

// ListForUser returns every project visible to username: all Shared
// projects, plus Private ones they belong to.
func (s *Service) ListForUser(ctx context.Context, username string) ([]domain.Project, error) {
	return store.ListProjectsForUser(ctx, s.db, username)
}

// UpdateSettings patches a project's mutable fields. Caller must already
// hold a Role with CanManageProjectSettings; this method re-checks it
// defensively.
func (s *Service) UpdateSettings(ctx context.Context, actorRole domain.Role, p domain.Project) error {
	if !actorRole.CanManageProjectSettings() {
		return apperrors.Forbidden("only admin or manager may change project settings")
	}
	return store.UpdateProjectSettings(ctx, s.db, p)
}

// Delete removes a project and cascades to everything it owns in one
// transaction. Only admin members may delete a project.
func (s *Service) Delete(ctx context.Context, actorRole domain.Role, projectID string) error {
	if !actorRole.CanManageUsers() {
		return apperrors.Forbidden("only admin may delete a project")
	}
	return store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return store.DeleteProjectCascade(ctx, tx, projectID)
	})
}

// Members lists a project's membership roster.
func (s *Service) Members(ctx context.Context, projectID string) ([]domain.Member, error) {
	return store.ListMembers(ctx, s.db, projectID)
}

// GetMember fetches one project's membership row for a user.
func (s *Service) GetMember(ctx context.Context, projectID, username string) (domain.Member, error) {
	return store.GetMember(ctx, s.db, projectID, username)
}

// AddMember adds or updates a membership row. Only CanManageUsers
// (admin) may do this. Granting the admin role through this path is
// refused: a project keeps exactly the admin it was founded with, and no
// operation grants or transfers the admin role.
func (s *Service) AddMember(ctx context.Context, actorRole domain.Role, projectID, username string, role domain.Role) error {
	if !actorRole.CanManageUsers() {
		return apperrors.Forbidden("only admin may manage project membership")
	}
	if !role.Valid() {
		return apperrors.Validation("INVALID_ROLE", "invalid role")
	}
	if role == domain.RoleAdmin {
		return apperrors.Forbidden("the admin role cannot be granted through membership endpoints")
	}
	return store.AddMember(ctx, s.db, domain.Member{
		ProjectID: projectID, Username: username, Role: role, CreatedAt: time.Now().UTC(),
	})
}

// ChangeRole updates an existing member's role, refusing to touch the
// admin role itself: admin membership is protected, and its role
// cannot be changed.
func (s *Service) ChangeRole(ctx context.Context, actorRole domain.Role, projectID, username string, newRole domain.Role) error {
	if !actorRole.CanManageUsers() {
		return apperrors.Forbidden("only admin may manage project membership")
	}
	if !newRole.Valid() {
		return apperrors.Validation("INVALID_ROLE", "invalid role")
	}

	existing, err := store.GetMember(ctx, s.db, projectID, username)
	if err != nil {
		return err
	}
	if existing.Role == domain.RoleAdmin {
		return apperrors.Forbidden("admin membership's role cannot be changed")
	}
	if newRole == domain.RoleAdmin {
		return apperrors.Forbidden("the admin role cannot be granted through membership endpoints")
	}

	return store.AddMember(ctx, s.db, domain.Member{
		ProjectID: projectID, Username: username, Role: newRole, CreatedAt: existing.CreatedAt,
	})
}

// RemoveMember deletes a membership row, refusing to remove an admin
// through this ordinary endpoint.
func (s *Service) RemoveMember(ctx context.Context, actorRole domain.Role, projectID, username string) error {
	if !actorRole.CanManageUsers() {
		return apperrors.Forbidden("only admin may manage project membership")
	}

	existing, err := store.GetMember(ctx, s.db, projectID, username)
	if err != nil {
		return err
	}
	if existing.Role == domain.RoleAdmin {
		return apperrors.Forbidden("admin membership cannot be removed through ordinary endpoints")
	}

	return store.RemoveMember(ctx, s.db, projectID, username)
}
