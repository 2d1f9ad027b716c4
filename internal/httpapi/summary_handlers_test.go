package httpapi_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ciscoCoreV1 = `hostname core-sw1
!
interface GigabitEthernet1/0/24
 description uplink to dist-sw2
 switchport mode trunk
 switchport trunk allowed vlan 10,20
!
10   USERS    active
20   VOICE    active
`

const huaweiDistV1 = `sysname dist-sw2
#
vlan batch 30
#
interface GigabitEthernet0/0/1
 port link-type access
 port default vlan 30
#
`

func summaryRowByDevice(t *testing.T, rows []map[string]any, device string) map[string]any {
	t.Helper()
	for _, row := range rows {
		if row["device_name"] == device {
			return row
		}
	}
	t.Fatalf("no summary row for device %s", device)
	return nil
}

func TestConfigSummary_TwoVendorsThenVersionDrift(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "NetA")
	pid := proj["id"].(string)

	rec := ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, "Config", "core-sw1_20251001.txt", []byte(ciscoCoreV1))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, "Config", "dist-sw2_20251001.txt", []byte(huaweiDistV1))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/config-summary", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]map[string]any](t, rec)
	require.Len(t, rows, 2)

	core := summaryRowByDevice(t, rows, "core-sw1")
	assert.Equal(t, 2.0, core["vlan_count"])
	assert.Equal(t, "OK", core["status"])

	dist := summaryRowByDevice(t, rows, "dist-sw2")
	assert.Equal(t, 1.0, dist["vlan_count"])
	assert.Equal(t, "OK", dist["status"])

	// A second upload under the same filename appends version 2 and the
	// changed VLAN set flips the device to Drift.
	ciscoCoreV2 := strings.Replace(ciscoCoreV1, "vlan 10,20", "vlan 10,20,30", 1) + "30   GUESTS   active\n"
	rec = ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, "Config", "core-sw1_20251001.txt", []byte(ciscoCoreV2))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/documents?folder_id=Config", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	docs := decode[[]map[string]any](t, rec)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		if doc["filename"] == "core-sw1_20251001.txt" {
			assert.Equal(t, 2.0, doc["latest_version_number"])
		}
	}

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/config-summary", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows = decode[[]map[string]any](t, rec)

	core = summaryRowByDevice(t, rows, "core-sw1")
	assert.Equal(t, 3.0, core["vlan_count"])
	assert.Equal(t, "Drift", core["status"])

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/devices/core-sw1", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	device := decode[map[string]any](t, rec)
	vlans := device["vlans"].(map[string]any)
	assert.Len(t, vlans["vlan_list"].([]any), 3)
}

func TestConfigSummary_CSVExport(t *testing.T) {
	ts := newTestServer(t)
	proj := createProject(t, ts, "NetA")
	pid := proj["id"].(string)

	rec := ts.upload(t, "/projects/"+pid+"/documents", ts.adminTok, "Config", "core-sw1.cfg", []byte(ciscoCoreV1))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/projects/"+pid+"/config-summary?format=csv", ts.adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "device_name,"))
	assert.Contains(t, lines[1], "core-sw1")
}
