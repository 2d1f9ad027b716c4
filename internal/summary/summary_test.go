package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netopscore/internal/domain"
)

func TestBaseRow_InterfaceCounts(t *testing.T) {
	model := "Catalyst 9300"
	native := 1
	accessVLAN := 20

	rec := domain.DeviceRecord{
		DeviceName: "core-sw1",
		DeviceOverview: domain.DeviceOverview{
			Model: &model, Role: "core",
		},
		Interfaces: []domain.Interface{
			{Name: "Gi0/1", PortMode: domain.PortModeTrunk, AdminStatus: "up", OperStatus: "up", NativeVLAN: &native, AllowedVLANsRaw: "10,20"},
			{Name: "Gi0/2", PortMode: domain.PortModeAccess, AdminStatus: "up", OperStatus: "down", AccessVLAN: &accessVLAN},
			{Name: "Gi0/3", PortMode: domain.PortModeUnknown, AdminStatus: "down", OperStatus: "down"},
		},
		VLANs: domain.VLANInfo{VLANList: []int{10, 20}},
	}

	row := baseRow(rec)
	assert.Equal(t, "core-sw1", row.DeviceName)
	assert.Equal(t, "Catalyst 9300", row.Model)
	assert.Equal(t, 3, row.Interfaces.Total)
	assert.Equal(t, 1, row.Interfaces.Trunk)
	assert.Equal(t, 1, row.Interfaces.Access)
	assert.Equal(t, 1, row.UnusedPortCount)
	assert.Equal(t, 2, row.VLANCount)
	assert.Equal(t, "1", row.NativeVLAN)
}

func TestExportCSV_HeaderAndIfacesFormat(t *testing.T) {
	rows := []domain.SummaryRow{
		{
			DeviceName: "core-sw1", Model: "—", SerialNumber: "—", OSVersion: "—", MgmtIP: "—",
			Interfaces: domain.InterfaceCounts{Total: 4, Up: 2, Down: 1, AdminDown: 1},
			NativeVLAN: "—", TrunkAllowedSummary: "—", STP: "—", Role: "core",
			BGPASNAndNeighbors: "—", RoutingProtocols: "—", CPUUtilization: "—", MemoryUsage: "—",
			Status: domain.SummaryOK,
		},
	}

	out, err := ExportCSV(rows)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "device_name,model")
	assert.Contains(t, s, "4/2/1/1")
	assert.Contains(t, s, "OK")
}
