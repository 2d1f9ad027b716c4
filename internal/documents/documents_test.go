package documents_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/blobstore"
	"netopscore/internal/database"
	"netopscore/internal/documents"
	"netopscore/internal/domain"
	"netopscore/internal/foldertree"
)

func setupService(t *testing.T) (*documents.Service, context.Context) {
	t.Helper()
	mgr, err := database.Open(context.Background(), "file::memory:?cache=shared&_test="+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	blobs, err := blobstore.New(mgr.DB(), t.TempDir())
	require.NoError(t, err)

	folders := foldertree.New(mgr.DB())
	return documents.New(mgr.DB(), blobs, folders), context.Background()
}

func TestUpload_CreatesNewFamilyAtVersionOne(t *testing.T) {
	svc, ctx := setupService(t)

	doc, ver, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: domain.FolderConfig,
		OriginalFilename: "core-sw1.txt", Bytes: []byte("hostname core-sw1\n"),
		ContentType: "text/plain", Uploader: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ver.VersionNumber)
	assert.True(t, ver.IsLatest)
	assert.Equal(t, "core-sw1", doc.DeviceName)
	assert.Equal(t, 1, doc.LatestVersionNumber)
}

func TestUpload_AppendsVersionAndDemotesPrior(t *testing.T) {
	svc, ctx := setupService(t)

	in := documents.UploadInput{
		ProjectID: "proj1", FolderID: domain.FolderConfig,
		OriginalFilename: "core-sw1.txt", ContentType: "text/plain", Uploader: "alice",
	}
	in.Bytes = []byte("hostname core-sw1\n")
	_, v1, err := svc.Upload(ctx, in)
	require.NoError(t, err)

	in.Bytes = []byte("hostname core-sw1\ninterface gi0/1\n")
	doc, v2, err := svc.Upload(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, 2, v2.VersionNumber)
	assert.Equal(t, 2, doc.LatestVersionNumber)

	versions, err := svc.Versions(ctx, "proj1", doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	for _, v := range versions {
		if v.VersionNumber == v1.VersionNumber {
			assert.False(t, v.IsLatest)
		}
		if v.VersionNumber == v2.VersionNumber {
			assert.True(t, v.IsLatest)
		}
	}
}

func TestUpload_RejectsEmptyFilename(t *testing.T) {
	svc, ctx := setupService(t)
	_, _, err := svc.Upload(ctx, documents.UploadInput{ProjectID: "proj1", FolderID: "", OriginalFilename: "  "})
	assert.Error(t, err)
}

func TestUpload_RejectsDirectUploadIntoOther(t *testing.T) {
	svc, ctx := setupService(t)
	_, _, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: domain.FolderOther, OriginalFilename: "notes.txt",
		Bytes: []byte("x"), ContentType: "text/plain",
	})
	assert.Error(t, err)
}

func TestUpload_RejectsUnsupportedConfigContentType(t *testing.T) {
	svc, ctx := setupService(t)
	_, _, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: domain.FolderConfig, OriginalFilename: "core-sw1.bin",
		Bytes: []byte{0x00, 0x01}, ContentType: "application/octet-stream",
	})
	assert.Error(t, err)
}

func TestUpload_InvokesConfigIngestCallback(t *testing.T) {
	svc, ctx := setupService(t)
	var gotDevice string
	svc.OnConfigIngest = func(ctx context.Context, projectID, documentID, deviceName string, content []byte, sourceVersion int) error {
		gotDevice = deviceName
		return nil
	}

	_, _, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: domain.FolderConfig,
		OriginalFilename: "dist-sw2_v3.cfg", Bytes: []byte("hostname dist-sw2\n"),
		ContentType: "text/plain", Uploader: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "dist-sw2", gotDevice)
}

func TestUpload_SurvivesConfigIngestFailure(t *testing.T) {
	svc, ctx := setupService(t)
	svc.OnConfigIngest = func(ctx context.Context, projectID, documentID, deviceName string, content []byte, sourceVersion int) error {
		return assert.AnError
	}

	doc, ver, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: domain.FolderConfig,
		OriginalFilename: "core-sw1.txt", Bytes: []byte("hostname core-sw1\n"),
		ContentType: "text/plain", Uploader: "alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, 1, ver.VersionNumber)
}

func TestDeriveDeviceName(t *testing.T) {
	cases := map[string]string{
		"core-sw1.txt":             "core-sw1",
		"core-sw1_20251001_v2.txt": "core-sw1",
		"DIST-SW2.cfg":             "dist-sw2",
	}
	for filename, want := range cases {
		assert.Equal(t, want, documents.DeriveDeviceName(filename), filename)
	}
}

func TestDownload_DefaultsToLatestVersion(t *testing.T) {
	svc, ctx := setupService(t)
	in := documents.UploadInput{
		ProjectID: "proj1", FolderID: domain.FolderConfig,
		OriginalFilename: "core-sw1.txt", ContentType: "text/plain", Uploader: "alice",
	}
	in.Bytes = []byte("version one")
	doc, _, err := svc.Upload(ctx, in)
	require.NoError(t, err)
	in.Bytes = []byte("version two")
	_, _, err = svc.Upload(ctx, in)
	require.NoError(t, err)

	ver, data, err := svc.Download(ctx, "proj1", doc.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, ver.VersionNumber)
	assert.Equal(t, "version two", string(data))
}

func TestRename_RejectsEmptyName(t *testing.T) {
	svc, ctx := setupService(t)
	doc, _, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: "", OriginalFilename: "notes.txt",
		Bytes: []byte("x"), ContentType: "text/plain",
	})
	require.NoError(t, err)
	assert.Error(t, svc.Rename(ctx, "proj1", doc.ID, "   "))
}

func TestMove_EnforcesConfigAndOtherRules(t *testing.T) {
	svc, ctx := setupService(t)
	doc, _, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: "", OriginalFilename: "notes.txt",
		Bytes: []byte("x"), ContentType: "text/plain",
	})
	require.NoError(t, err)

	assert.Error(t, svc.Move(ctx, "proj1", doc.ID, domain.FolderConfig))
}

func TestDelete_SoftDeletesDocument(t *testing.T) {
	svc, ctx := setupService(t)
	doc, _, err := svc.Upload(ctx, documents.UploadInput{
		ProjectID: "proj1", FolderID: "", OriginalFilename: "notes.txt",
		Bytes: []byte("x"), ContentType: "text/plain",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "proj1", doc.ID))

	got, err := svc.Get(ctx, "proj1", doc.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
}
