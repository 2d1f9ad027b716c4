package domain

// SummaryStatus is a per-device summary row's computed health state.
type SummaryStatus string

const (
	SummaryOK    SummaryStatus = "OK"
	SummaryDrift SummaryStatus = "Drift"
	// SummaryParseIncomplete flags a device whose Config produced no
	// usable structure: unknown vendor, empty input, or a parse that
	// extracted nothing identifying.
	SummaryParseIncomplete SummaryStatus = "Parse incomplete"
)

// InterfaceCounts is the interface tally the CSV export serializes as
// "T/U/D/A".
type InterfaceCounts struct {
	Total      int `json:"total"`
	Up         int `json:"up"`
	Down       int `json:"down"`
	AdminDown  int `json:"admin_down"`
	Unused     int `json:"unused"`
	Access     int `json:"access"`
	Trunk      int `json:"trunk"`
}

// SummaryRow is one per-project, per-device aggregated table row. Its
// fields follow the CSV column order; Role and StatusReason are not CSV
// columns.
type SummaryRow struct {
	DeviceName         string          `json:"device_name"`
	Model              string          `json:"model"`
	SerialNumber       string          `json:"serial_number"`
	OSVersion          string          `json:"os_version"`
	MgmtIP             string          `json:"mgmt_ip"`
	Interfaces         InterfaceCounts `json:"ifaces"`
	UnusedPortCount    int             `json:"unused_port_count"`
	VLANCount          int             `json:"vlan_count"`
	NativeVLAN         string          `json:"native_vlan"`
	TrunkAllowedSummary string         `json:"trunk_allowed_summary"`
	STP                string          `json:"stp"`
	STPRole            string          `json:"stp_role"`
	Role               string          `json:"role"`
	OSPFNeighborCount  int             `json:"ospf_neigh"`
	BGPASNAndNeighbors string          `json:"bgp_asn_neigh"`
	RoutingProtocols   string          `json:"rt_proto"`
	CPUUtilization     string          `json:"cpu"`
	MemoryUsage        string          `json:"mem"`
	Status             SummaryStatus   `json:"status"`
	StatusReason       string          `json:"status_reason,omitempty"`
}

// RoleRollup is one role bucket's health counts for the dashboard.
type RoleRollup struct {
	Role      string `json:"role"`
	Total     int    `json:"total"`
	OK        int    `json:"ok"`
	Drift     int    `json:"drift"`
}

// DashboardMetrics rolls up summary rows by role and health.
type DashboardMetrics struct {
	TotalDevices int          `json:"total_devices"`
	TotalOK      int          `json:"total_ok"`
	TotalDrift   int          `json:"total_drift"`
	ByRole       []RoleRollup `json:"by_role"`
}
