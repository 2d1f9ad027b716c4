package domain

import "time"

// Vendor is the detected configuration dialect.
type Vendor string

const (
	VendorCisco   Vendor = "cisco"
	VendorHuawei  Vendor = "huawei"
	VendorUnknown Vendor = "unknown"
)

// PortMode is a switchport's access/trunk classification.
type PortMode string

const (
	PortModeAccess  PortMode = "access"
	PortModeTrunk   PortMode = "trunk"
	PortModeUnknown PortMode = "unknown"
)

// NeighborProtocol distinguishes CDP from LLDP discovery entries.
type NeighborProtocol string

const (
	NeighborCDP  NeighborProtocol = "CDP"
	NeighborLLDP NeighborProtocol = "LLDP"
)

// DeviceOverview is the device_overview extraction area.
type DeviceOverview struct {
	Hostname        string   `json:"hostname"`
	Model           *string  `json:"model"`
	OSVersion       *string  `json:"os_version"`
	SerialNumber    *string  `json:"serial_number"`
	MgmtIP          *string  `json:"mgmt_ip"`
	Role            string   `json:"role"`
	Uptime          *string  `json:"uptime"`
	CPUUtilization  *float64 `json:"cpu_utilization"`
	MemoryUsage     *float64 `json:"memory_usage"`
}

// InterfaceErrors counts input/output errors on a port.
type InterfaceErrors struct {
	Input  *int `json:"input"`
	Output *int `json:"output"`
}

// Interface is one entry of the interfaces[] extraction area.
//
// AllowedVLANs is always a normalized, sorted, deduped integer set
// ("all" expands to 1-4094); AllowedVLANsRaw preserves whatever textual
// form the source config used, for download and raw views.
type Interface struct {
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	AdminStatus   string          `json:"admin_status"`
	OperStatus    string          `json:"oper_status"`
	IPv4Address   *string         `json:"ipv4_address"`
	PortMode      PortMode        `json:"port_mode"`
	AccessVLAN    *int            `json:"access_vlan"`
	NativeVLAN    *int            `json:"native_vlan"`
	AllowedVLANs  []int           `json:"allowed_vlans"`
	AllowedVLANsRaw string        `json:"allowed_vlans_raw"`
	Speed         *string         `json:"speed"`
	Duplex        *string         `json:"duplex"`
	PoEPower      *float64        `json:"poe_power"`
	Description   *string         `json:"description"`
	STPRole       *string         `json:"stp_role"`
	STPState      *string         `json:"stp_state"`
	STPEdgedPort  *bool           `json:"stp_edged_port"`
	Errors        InterfaceErrors `json:"errors"`
}

// VLANInfo is the vlans extraction area.
type VLANInfo struct {
	VLANList   []int             `json:"vlan_list"`
	VLANNames  map[int]string    `json:"vlan_names"`
	VLANStatus map[int]string    `json:"vlan_status"`
}

// STPInfo is the stp extraction area.
type STPInfo struct {
	Mode             *string         `json:"mode"`
	BridgeID         *string         `json:"bridge_id"`
	RootBridgeID     *string         `json:"root_bridge_id"`
	BridgePriority   *int            `json:"bridge_priority"`
	RootBridgeStatus *bool           `json:"root_bridge_status"`
	PortfastEnabled  *bool           `json:"portfast_enabled"`
	BPDUGuard        *bool           `json:"bpdu_guard"`
	PortRoles        map[string]string `json:"port_roles"`
	PortStates       map[string]string `json:"port_states"`
}

// StaticRoute is one static routing entry.
type StaticRoute struct {
	Destination string  `json:"destination"`
	Mask        string  `json:"mask"`
	NextHop     string  `json:"next_hop"`
	Metric      *int    `json:"metric"`
}

// OSPFInfo describes OSPF routing state.
type OSPFInfo struct {
	RouterID   *string         `json:"router_id"`
	ProcessID  *string         `json:"process_id"`
	Areas      []string        `json:"areas"`
	Interfaces []string        `json:"interfaces"`
	Neighbors  []OSPFNeighbor  `json:"neighbors"`
}

// OSPFNeighbor is one OSPF adjacency.
type OSPFNeighbor struct {
	NeighborID string `json:"neighbor_id"`
	Address    string `json:"address"`
	State      string `json:"state"`
}

// BGPPeer is one configured or established BGP neighbor.
type BGPPeer struct {
	PeerAddress        string `json:"peer_address"`
	RemoteAS           *int   `json:"remote_as"`
	State              *string `json:"state"`
	ReceivedPrefixes   *int   `json:"received_prefixes"`
	AdvertisedPrefixes *int   `json:"advertised_prefixes"`
}

// BGPInfo describes BGP routing state.
type BGPInfo struct {
	ASNumber *int      `json:"as_number"`
	RouterID *string   `json:"router_id"`
	Peers    []BGPPeer `json:"peers"`
}

// RoutingInfo is the routing extraction area.
type RoutingInfo struct {
	Static []StaticRoute `json:"static"`
	OSPF   *OSPFInfo     `json:"ospf"`
	EIGRP  map[string]any `json:"eigrp"`
	BGP    *BGPInfo      `json:"bgp"`
	RIP    map[string]any `json:"rip"`
}

// Neighbor is one CDP/LLDP discovery entry.
type Neighbor struct {
	DeviceName   string           `json:"device_name"`
	IPAddress    *string          `json:"ip_address"`
	Platform     *string          `json:"platform"`
	LocalPort    string           `json:"local_port"`
	RemotePort   *string          `json:"remote_port"`
	Capabilities []string         `json:"capabilities"`
	Protocol     NeighborProtocol `json:"protocol"`
}

// MacEntry is one MAC address table row.
type MacEntry struct {
	VLAN      *int   `json:"vlan"`
	MAC       string `json:"mac"`
	Type      string `json:"type"`
	Interface string `json:"interface"`
}

// ArpEntry is one ARP table row.
type ArpEntry struct {
	IPAddress string `json:"ip_address"`
	MAC       string `json:"mac"`
	Interface string `json:"interface"`
	Age       *int   `json:"age"`
}

// MacArpInfo is the mac_arp extraction area.
type MacArpInfo struct {
	MacTable []MacEntry `json:"mac_table"`
	ArpTable []ArpEntry `json:"arp_table"`
}

// UserAccount is a locally-configured login account.
type UserAccount struct {
	Username  string `json:"username"`
	Privilege *int   `json:"privilege"`
}

// AAAInfo describes authentication/authorization/accounting method lists.
type AAAInfo struct {
	Authentication []string `json:"authentication"`
	Authorization  []string `json:"authorization"`
	Accounting     []string `json:"accounting"`
}

// SNMPInfo describes SNMP exposure.
type SNMPInfo struct {
	Enabled     bool     `json:"enabled"`
	Version     *string  `json:"version"`
	Communities []string `json:"communities"`
}

// NTPInfo describes time synchronization state.
type NTPInfo struct {
	Enabled      bool     `json:"enabled"`
	Synchronized bool     `json:"synchronized"`
	Stratum      *int     `json:"stratum"`
	Servers      []string `json:"servers"`
}

// ACL is one named/numbered access control list summary.
type ACL struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Entries int    `json:"entries"`
}

// SecurityInfo is the security extraction area.
type SecurityInfo struct {
	UserAccounts []UserAccount `json:"user_accounts"`
	AAA          AAAInfo       `json:"aaa"`
	SSHEnabled   *bool         `json:"ssh"`
	SNMP         SNMPInfo      `json:"snmp"`
	NTP          NTPInfo       `json:"ntp"`
	Logging      []string      `json:"logging"`
	ACLs         []ACL         `json:"acls"`
}

// EtherChannel is one port-channel/aggregation group.
type EtherChannel struct {
	GroupID string   `json:"group_id"`
	Members []string `json:"members"`
	Mode    string   `json:"mode"`
}

// HSRPGroup is one HSRP first-hop redundancy group.
type HSRPGroup struct {
	Interface string `json:"interface"`
	GroupID   int    `json:"group_id"`
	VirtualIP string `json:"virtual_ip"`
	Priority  *int   `json:"priority"`
	State     *string `json:"state"`
}

// VRRPGroup is one VRRP first-hop redundancy group.
type VRRPGroup struct {
	Interface string  `json:"interface"`
	GroupID   int     `json:"group_id"`
	VirtualIP string  `json:"virtual_ip"`
	Priority  *int    `json:"priority"`
	State     *string `json:"state"`
}

// HAInfo is the ha extraction area.
type HAInfo struct {
	EtherChannel []EtherChannel `json:"etherchannel"`
	HSRPGroups   []HSRPGroup    `json:"hsrp_groups"`
	VRRPGroups   []VRRPGroup    `json:"vrrp_groups"`
}

// DeviceRecord is the full normalized, vendor-agnostic representation of
// one device's parsed configuration.
type DeviceRecord struct {
	ProjectID       string         `json:"project_id"`
	DeviceName      string         `json:"device_name"`
	Vendor          Vendor         `json:"vendor"`
	ParsedAt        time.Time      `json:"parsed_at"`
	SourceVersion   int            `json:"source_version"`
	DeviceOverview  DeviceOverview `json:"device_overview"`
	Interfaces      []Interface    `json:"interfaces"`
	VLANs           VLANInfo       `json:"vlans"`
	STP             STPInfo        `json:"stp"`
	Routing         RoutingInfo    `json:"routing"`
	Neighbors       []Neighbor     `json:"neighbors"`
	MacArp          MacArpInfo     `json:"mac_arp"`
	Security        SecurityInfo   `json:"security"`
	HA              HAInfo         `json:"ha"`
	OriginalContent string         `json:"original_content"`
}
