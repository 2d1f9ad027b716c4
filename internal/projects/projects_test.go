package projects_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/apperrors"
	"netopscore/internal/database"
	"netopscore/internal/domain"
	"netopscore/internal/projects"
)

func setupService(t *testing.T) (*projects.Service, context.Context) {
	t.Helper()
	mgr, err := database.Open(context.Background(), "file::memory:?cache=shared&_test="+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return projects.New(mgr.DB()), context.Background()
}

func TestCreate_SeedsFoundingAdmin(t *testing.T) {
	svc, ctx := setupService(t)

	proj, err := svc.Create(ctx, "Campus A", domain.VisibilityPrivate, "a campus", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, proj.ID)

	members, err := svc.Members(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)
	assert.Equal(t, domain.RoleAdmin, members[0].Role)
}

func TestCreate_RejectsInvalidVisibility(t *testing.T) {
	svc, ctx := setupService(t)
	_, err := svc.Create(ctx, "Campus A", domain.Visibility("bogus"), "", "alice")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryValidation, appErr.Category)
}

func TestAddMember_RequiresManageUsersCapability(t *testing.T) {
	svc, ctx := setupService(t)
	proj, err := svc.Create(ctx, "Campus A", domain.VisibilityShared, "", "alice")
	require.NoError(t, err)

	err = svc.AddMember(ctx, domain.RoleEngineer, proj.ID, "bob", domain.RoleViewer)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryForbidden, appErr.Category)

	require.NoError(t, svc.AddMember(ctx, domain.RoleAdmin, proj.ID, "bob", domain.RoleViewer))

	members, err := svc.Members(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAddMember_RefusesGrantingAdmin(t *testing.T) {
	svc, ctx := setupService(t)
	proj, err := svc.Create(ctx, "Campus A", domain.VisibilityShared, "", "alice")
	require.NoError(t, err)

	err = svc.AddMember(ctx, domain.RoleAdmin, proj.ID, "bob", domain.RoleAdmin)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryForbidden, appErr.Category)
}

func TestChangeRole_RefusesChangingAdmin(t *testing.T) {
	svc, ctx := setupService(t)
	proj, err := svc.Create(ctx, "Campus A", domain.VisibilityShared, "", "alice")
	require.NoError(t, err)

	err = svc.ChangeRole(ctx, domain.RoleAdmin, proj.ID, "alice", domain.RoleViewer)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryForbidden, appErr.Category)
}

func TestRemoveMember_RefusesRemovingAdmin(t *testing.T) {
	svc, ctx := setupService(t)
	proj, err := svc.Create(ctx, "Campus A", domain.VisibilityShared, "", "alice")
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, domain.RoleAdmin, proj.ID, "alice")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryForbidden, appErr.Category)
}

func TestRemoveMember_AllowsRemovingOrdinaryMember(t *testing.T) {
	svc, ctx := setupService(t)
	proj, err := svc.Create(ctx, "Campus A", domain.VisibilityShared, "", "alice")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, domain.RoleAdmin, proj.ID, "bob", domain.RoleEngineer))

	require.NoError(t, svc.RemoveMember(ctx, domain.RoleAdmin, proj.ID, "bob"))

	members, err := svc.Members(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestUpdateSettings_RequiresManageProjectSettingsCapability(t *testing.T) {
	svc, ctx := setupService(t)
	proj, err := svc.Create(ctx, "Campus A", domain.VisibilityShared, "", "alice")
	require.NoError(t, err)

	proj.Name = "Campus B"
	err = svc.UpdateSettings(ctx, domain.RoleViewer, proj)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryForbidden, appErr.Category)

	require.NoError(t, svc.UpdateSettings(ctx, domain.RoleManager, proj))
	got, err := svc.Get(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, "Campus B", got.Name)
}
