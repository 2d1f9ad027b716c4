package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/apperrors"
	"netopscore/internal/database"
	"netopscore/internal/domain"
	"netopscore/internal/store"
)

func setupDB(t *testing.T) *database.Manager {
	t.Helper()
	mgr, err := database.Open(context.Background(), "file::memory:?cache=shared&_test="+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestProjectAndMemberLifecycle(t *testing.T) {
	mgr := setupDB(t)
	ctx := context.Background()
	db := mgr.DB()

	proj := domain.Project{ID: "p1", Name: "Campus A", Visibility: domain.VisibilityPrivate, CreatedBy: "alice", CreatedAt: time.Now()}
	require.NoError(t, store.CreateProject(ctx, db, proj))

	err := store.CreateProject(ctx, db, proj)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryConflict, appErr.Category)

	got, err := store.GetProject(ctx, db, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Campus A", got.Name)

	require.NoError(t, store.AddMember(ctx, db, domain.Member{ProjectID: "p1", Username: "alice", Role: domain.RoleAdmin, CreatedAt: time.Now()}))
	require.NoError(t, store.AddMember(ctx, db, domain.Member{ProjectID: "p1", Username: "bob", Role: domain.RoleViewer, CreatedAt: time.Now()}))

	members, err := store.ListMembers(ctx, db, "p1")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	admins, err := store.CountAdmins(ctx, db, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, admins)

	// Private project only visible to its members.
	visible, err := store.ListProjectsForUser(ctx, db, "carol")
	require.NoError(t, err)
	assert.Empty(t, visible)

	visible, err = store.ListProjectsForUser(ctx, db, "bob")
	require.NoError(t, err)
	assert.Len(t, visible, 1)
}

func TestGetProject_NotFound(t *testing.T) {
	mgr := setupDB(t)
	_, err := store.GetProject(context.Background(), mgr.DB(), "missing")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryNotFound, appErr.Category)
}

func TestFolderTreeOperations(t *testing.T) {
	mgr := setupDB(t)
	ctx := context.Background()
	db := mgr.DB()

	require.NoError(t, store.CreateFolder(ctx, db, domain.Folder{ProjectID: "p1", ID: "f1", Name: "Switches"}))
	require.NoError(t, store.CreateFolder(ctx, db, domain.Folder{ProjectID: "p1", ID: "f2", Name: "Core", ParentID: "f1"}))

	require.NoError(t, store.RenameFolder(ctx, db, "p1", "f2", "Core Switches"))
	got, err := store.GetFolder(ctx, db, "p1", "f2")
	require.NoError(t, err)
	assert.Equal(t, "Core Switches", got.Name)
	assert.Equal(t, "f1", got.ParentID)

	require.NoError(t, store.MoveFolder(ctx, db, "p1", "f2", ""))
	got, err = store.GetFolder(ctx, db, "p1", "f2")
	require.NoError(t, err)
	assert.Empty(t, got.ParentID)

	require.NoError(t, store.SoftDeleteFolder(ctx, db, "p1", "f1"))
	folders, err := store.ListFolders(ctx, db, "p1")
	require.NoError(t, err)
	assert.Len(t, folders, 1)
}

func TestDocumentVersionChain(t *testing.T) {
	mgr := setupDB(t)
	ctx := context.Background()
	db := mgr.DB()

	doc := domain.Document{ProjectID: "p1", ID: "d1", Filename: "sw1-running.cfg", FolderID: domain.FolderConfig, LatestVersionNumber: 1, Creator: "alice", CreatedAt: time.Now()}
	require.NoError(t, store.CreateDocument(ctx, db, doc))
	require.NoError(t, store.CreateDocumentVersion(ctx, db, domain.DocumentVersion{
		ProjectID: "p1", DocumentID: "d1", VersionNumber: 1, BlobHash: "hash1", Size: 100, Uploader: "alice", CreatedAt: time.Now(),
	}))

	// Append version 2: clear old latest, insert new, bump pointer.
	require.NoError(t, store.ClearLatestVersion(ctx, db, "p1", "d1"))
	require.NoError(t, store.CreateDocumentVersion(ctx, db, domain.DocumentVersion{
		ProjectID: "p1", DocumentID: "d1", VersionNumber: 2, BlobHash: "hash2", Size: 120, Uploader: "bob", CreatedAt: time.Now(),
	}))
	require.NoError(t, store.SetDocumentLatestVersion(ctx, db, "p1", "d1", 2))

	versions, err := store.ListDocumentVersions(ctx, db, "p1", "d1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.False(t, versions[0].IsLatest)
	assert.True(t, versions[1].IsLatest)

	got, err := store.GetDocument(ctx, db, "p1", "d1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.LatestVersionNumber)
}

func TestInFlightMarker_SingleSlot(t *testing.T) {
	mgr := setupDB(t)
	ctx := context.Background()
	db := mgr.DB()

	marker := domain.InFlightMarker{ProjectID: "p1", JobID: "job1", Kind: domain.KindProjectOverview, StartedAt: time.Now()}
	require.NoError(t, store.ClaimInFlightMarker(ctx, db, marker))

	err := store.ClaimInFlightMarker(ctx, db, domain.InFlightMarker{ProjectID: "p1", JobID: "job2", Kind: domain.KindProjectOverview, StartedAt: time.Now()})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryConflict, appErr.Category)

	require.NoError(t, store.ReleaseInFlightMarker(ctx, db, "p1"))
	require.NoError(t, store.ClaimInFlightMarker(ctx, db, marker))
}

func TestTopologyState_SaveAndLoad(t *testing.T) {
	mgr := setupDB(t)
	ctx := context.Background()
	db := mgr.DB()

	empty, err := store.GetTopologyState(ctx, db, "p1")
	require.NoError(t, err)
	assert.Empty(t, empty.Positions)

	state := domain.TopologyState{
		ProjectID: "p1",
		Positions: map[string]domain.Position{"sw1": {X: 10, Y: 20}},
		Links:     []domain.Link{{ID: "l1", A: "sw1", B: "sw2", Evidence: domain.EvidenceCDP, Type: "uplink"}},
		UpdatedBy: "alice",
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.SaveTopologyState(ctx, db, state))

	got, err := store.GetTopologyState(ctx, db, "p1")
	require.NoError(t, err)
	require.Len(t, got.Positions, 1)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, got.Positions["sw1"])
	assert.Equal(t, "alice", got.UpdatedBy)
}
