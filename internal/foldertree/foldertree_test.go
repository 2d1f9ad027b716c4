package foldertree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/apperrors"
	"netopscore/internal/database"
	"netopscore/internal/domain"
	"netopscore/internal/foldertree"
)

func setupService(t *testing.T) (*foldertree.Service, context.Context) {
	t.Helper()
	mgr, err := database.Open(context.Background(), "file::memory:?cache=shared&_test="+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return foldertree.New(mgr.DB()), context.Background()
}

func TestList_SynthesizesReservedFolders(t *testing.T) {
	svc, ctx := setupService(t)

	folders, err := svc.List(ctx, "proj1")
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range folders {
		names[f.ID] = true
	}
	assert.True(t, names[domain.FolderConfig])
	assert.True(t, names[domain.FolderOther])
}

func TestCreate_RejectsEmptyAndReservedNames(t *testing.T) {
	svc, ctx := setupService(t)

	_, err := svc.Create(ctx, "proj1", "  ", "")
	assert.Error(t, err)

	_, err = svc.Create(ctx, "proj1", domain.FolderConfig, "")
	assert.Error(t, err)
}

func TestCreate_RejectsParentingInsideConfig(t *testing.T) {
	svc, ctx := setupService(t)
	_, err := svc.Create(ctx, "proj1", "Switches", domain.FolderConfig)
	assert.Error(t, err)
}

func TestCreate_ThenGet(t *testing.T) {
	svc, ctx := setupService(t)
	f, err := svc.Create(ctx, "proj1", "Switches", "")
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)

	got, err := svc.Get(ctx, "proj1", f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Switches", got.Name)
}

func TestRename_RejectsReservedFolders(t *testing.T) {
	svc, ctx := setupService(t)
	err := svc.Rename(ctx, "proj1", domain.FolderConfig, "NewName", "")
	assert.Error(t, err)
}

func TestRename_RejectsEmptyName(t *testing.T) {
	svc, ctx := setupService(t)
	f, err := svc.Create(ctx, "proj1", "Switches", "")
	require.NoError(t, err)

	err = svc.Rename(ctx, "proj1", f.ID, "  ", "")
	assert.Error(t, err)
}

func TestRename_RejectsCycle(t *testing.T) {
	svc, ctx := setupService(t)
	parent, err := svc.Create(ctx, "proj1", "Parent", "")
	require.NoError(t, err)
	child, err := svc.Create(ctx, "proj1", "Child", parent.ID)
	require.NoError(t, err)

	err = svc.Rename(ctx, "proj1", parent.ID, "Parent", child.ID)
	assert.Error(t, err)
}

func TestRename_MovesIntoNewParent(t *testing.T) {
	svc, ctx := setupService(t)
	parent, err := svc.Create(ctx, "proj1", "Parent", "")
	require.NoError(t, err)
	child, err := svc.Create(ctx, "proj1", "Child", "")
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, "proj1", child.ID, "Child", parent.ID))

	got, err := svc.Get(ctx, "proj1", child.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, got.ParentID)
}

func TestDelete_RejectsReservedFolders(t *testing.T) {
	svc, ctx := setupService(t)
	assert.Error(t, svc.Delete(ctx, "proj1", domain.FolderOther))
}

func TestDelete_SoftDeletesFolder(t *testing.T) {
	svc, ctx := setupService(t)
	f, err := svc.Create(ctx, "proj1", "Switches", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "proj1", f.ID))

	got, err := svc.Get(ctx, "proj1", f.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	folders, err := svc.List(ctx, "proj1")
	require.NoError(t, err)
	for _, folder := range folders {
		assert.NotEqual(t, f.ID, folder.ID, "soft-deleted folder should not appear in List")
	}
}

func TestValidateMoveDestination(t *testing.T) {
	assert.Error(t, foldertree.ValidateMoveDestination(domain.FolderConfig, "other-folder"))
	assert.Error(t, foldertree.ValidateMoveDestination("other-folder", domain.FolderConfig))
	assert.Error(t, foldertree.ValidateMoveDestination("other-folder", domain.FolderOther))
	assert.NoError(t, foldertree.ValidateMoveDestination("folder-a", "folder-b"))
}

func TestGet_UnknownNonReservedFolderErrors(t *testing.T) {
	svc, ctx := setupService(t)
	_, err := svc.Get(ctx, "proj1", "does-not-exist")
	require.Error(t, err)
	_, ok := apperrors.As(err)
	assert.True(t, ok)
}
