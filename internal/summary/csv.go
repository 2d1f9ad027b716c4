package summary

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"netopscore/internal/domain"
)

// csvColumns is the CSV header order. It follows domain.SummaryRow's
// field order, with access_ports and trunk_ports taken from the
// interface counts after ifaces; role and status_reason are not exported.
var csvColumns = []string{
	"device_name", "model", "serial_number", "os_version", "mgmt_ip",
	"ifaces", "access_ports", "trunk_ports", "unused_port_count", "vlan_count",
	"native_vlan", "trunk_allowed_summary", "stp", "stp_role",
	"ospf_neigh", "bgp_asn_neigh", "rt_proto", "cpu", "mem", "status",
}

// ExportCSV renders a summary table as CSV, with ifaces serialized as
// "T/U/D/A" and status as plain text.
func ExportCSV(rows []domain.SummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("summary: write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.DeviceName, row.Model, row.SerialNumber, row.OSVersion, row.MgmtIP,
			fmt.Sprintf("%d/%d/%d/%d", row.Interfaces.Total, row.Interfaces.Up, row.Interfaces.Down, row.Interfaces.AdminDown),
			fmt.Sprintf("%d", row.Interfaces.Access),
			fmt.Sprintf("%d", row.Interfaces.Trunk),
			fmt.Sprintf("%d", row.UnusedPortCount),
			fmt.Sprintf("%d", row.VLANCount),
			row.NativeVLAN, row.TrunkAllowedSummary, row.STP, row.STPRole,
			fmt.Sprintf("%d", row.OSPFNeighborCount), row.BGPASNAndNeighbors, row.RoutingProtocols,
			row.CPUUtilization, row.MemoryUsage, string(row.Status),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("summary: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("summary: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
