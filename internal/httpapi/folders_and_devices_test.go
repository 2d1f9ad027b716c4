package httpapi_test

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderRenameAndDelete(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	rec := ts.do(t, http.MethodPost, "/projects/"+pid+"/folders", ts.adminTok, map[string]any{"name": "Switches"})
	require.Equal(t, http.StatusOK, rec.Code)
	folder := decode[map[string]any](t, rec)
	fid := folder["id"].(string)

	rec = ts.do(t, http.MethodPatch, "/projects/"+pid+"/folders/"+fid, ts.adminTok, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/folders", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	folders := decode[[]map[string]any](t, rec)
	found := false
	for _, f := range folders {
		if f["id"] == fid {
			found = true
			assert.Equal(t, "Renamed", f["name"])
		}
	}
	assert.True(t, found)

	rec = ts.do(t, http.MethodDelete, "/projects/"+pid+"/folders/"+fid, ts.adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFolderRename_RejectsReservedTarget(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	rec := ts.do(t, http.MethodPatch, "/projects/"+pid+"/folders/Config", ts.adminTok, map[string]any{"name": "Whatever"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDocumentRenameMoveDeleteAndDownload(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	rec := ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, "", "notes.txt", []byte("hello world"))
	require.Equal(t, http.StatusOK, rec.Code)
	uploaded := decode[[]map[string]any](t, rec)
	require.Len(t, uploaded, 1)
	doc := uploaded[0]["document"].(map[string]any)
	did := doc["id"].(string)

	rec = ts.do(t, http.MethodPatch, "/projects/"+pid+"/documents/"+did, ts.adminTok, map[string]any{"filename": "renamed.txt"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/documents/"+did+"/download", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/documents/"+did+"/versions", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	versions := decode[[]map[string]any](t, rec)
	assert.Len(t, versions, 1)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/documents/"+did+"/content", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	content := decode[map[string]any](t, rec)
	assert.Equal(t, "hello world", content["content"])

	rec = ts.do(t, http.MethodDelete, "/projects/"+pid+"/documents/"+did, ts.adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeviceImage_RoundTripAndSizeLimit(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	payload := base64.StdEncoding.EncodeToString([]byte("a tiny fake png"))
	rec := ts.do(t, http.MethodPut, "/projects/"+pid+"/devices/core-sw1/image", ts.adminTok, map[string]any{
		"image_data": payload,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/devices/core-sw1/image", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	img := decode[map[string]any](t, rec)
	assert.Equal(t, payload, img["image_data"])
}

func TestDeviceImage_RejectsOversizedPayload(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	huge := make([]byte, 2_000_000)
	payload := base64.StdEncoding.EncodeToString(huge)
	rec := ts.do(t, http.MethodPut, "/projects/"+pid+"/devices/core-sw1/image", ts.adminTok, map[string]any{
		"image_data": payload,
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDeviceDelete_CascadesTopologyNode(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	rec := ts.do(t, http.MethodPut, "/projects/"+pid+"/topology/layout", ts.adminTok, map[string]any{
		"positions": map[string]any{"core-sw1": map[string]any{"x": 1, "y": 2}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/projects/"+pid+"/devices/core-sw1", ts.adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/topology", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[map[string]any](t, rec)
	layout := view["layout"].(map[string]any)
	positions, _ := layout["positions"].(map[string]any)
	assert.NotContains(t, positions, "core-sw1")
}
