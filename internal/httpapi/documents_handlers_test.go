package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadConfigDocument_ParsesDeviceAndIsAnalyzable(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	rec := ts.do(t, http.MethodGet, "/projects/"+pid+"/folders", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	folders := decode[[]map[string]any](t, rec)
	var configFolderID string
	for _, f := range folders {
		if f["name"] == "Config" {
			configFolderID = f["id"].(string)
		}
	}
	require.NotEmpty(t, configFolderID)

	const ciscoConfig = "hostname edge-sw1\ninterface GigabitEthernet0/1\n description uplink\n"
	rec = ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, configFolderID, "edge-sw1.cfg", []byte(ciscoConfig))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/devices/edge-sw1", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	device := decode[map[string]any](t, rec)
	assert.Equal(t, "edge-sw1", device["device_name"])

	rec = ts.do(t, http.MethodPost, "/projects/"+pid+"/devices/edge-sw1/analyze/overview", ts.adminTok, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestListDocuments_DefaultsToOtherFolder(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	rec := ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, "", "notes.txt", []byte("just some notes"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/documents", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	docs := decode[[]map[string]any](t, rec)
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.txt", docs[0]["filename"])
}

func TestCreateFolder_ThenMoveDocumentIntoIt(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "Campus A")
	pid := proj["id"].(string)

	rec := ts.do(t, http.MethodPost, "/projects/"+pid+"/folders", ts.adminTok, map[string]any{"name": "Runbooks"})
	require.Equal(t, http.StatusOK, rec.Code)
	folder := decode[map[string]any](t, rec)

	rec = ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, "", "doc.txt", []byte("content"))
	require.Equal(t, http.StatusOK, rec.Code)
	uploaded := decode[[]map[string]any](t, rec)
	docID := uploaded[0]["document"].(map[string]any)["id"].(string)

	rec = ts.do(t, http.MethodPost, "/projects/"+pid+"/documents/"+docID+"/move", ts.adminTok, map[string]any{
		"folder_id": folder["id"],
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
