// Package cisco implements the Cisco IOS/IOS-XE/NX-OS variant of the
// device parser. It is one interchangeable dispatch target behind
// internal/deviceparser's vendor-detection switch, selected the same
// way a transport adapter would be selected by a connection interface —
// here the "transport" is a vendor text grammar instead of a connection
// protocol.
package cisco

import (
	"bufio"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"netopscore/internal/deviceparser/vlanutil"
	"netopscore/internal/domain"
	"netopscore/internal/roleclassifier"
)

// Detect reports whether content looks like Cisco configuration/show
// output.
func Detect(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "show version") ||
		strings.Contains(lower, "cisco ios") ||
		strings.Contains(lower, "cisco nx-os") ||
		strings.Contains(content, "!") && strings.Contains(lower, "hostname ")
}

var (
	reHostname    = regexp.MustCompile(`(?m)^hostname\s+(\S+)`)
	reModel       = regexp.MustCompile(`(?i)cisco\s+(\S+)\s+\(.*\)\s+processor`)
	reOSVersion   = regexp.MustCompile(`(?i)(?:IOS|IOS-XE|NX-OS)\s+(?:Software|Software,)?\s*.*Version\s+([\w.()]+)`)
	reSerial      = regexp.MustCompile(`(?i)[Pp]rocessor board ID (\S+)`)
	reUptime      = regexp.MustCompile(`(?i)uptime is (.+)`)
	reCPU         = regexp.MustCompile(`(?i)CPU utilization.*:\s*(\d+)%`)
	reMemUsed     = regexp.MustCompile(`(?i)Processor Pool Total:\s*(\d+).*Used:\s*(\d+)`)
	reInterface   = regexp.MustCompile(`(?m)^interface\s+(\S+)`)
	reIPAddress   = regexp.MustCompile(`(?m)^\s*ip address\s+(\S+)\s+(\S+)`)
	reSwitchport  = regexp.MustCompile(`(?m)^\s*switchport mode\s+(\S+)`)
	reAccessVLAN  = regexp.MustCompile(`(?m)^\s*switchport access vlan\s+(\d+)`)
	reNativeVLAN  = regexp.MustCompile(`(?m)^\s*switchport trunk native vlan\s+(\d+)`)
	reAllowedVLAN = regexp.MustCompile(`(?m)^\s*switchport trunk allowed vlan\s+(?:add\s+)?(\S+)`)
	reDescription = regexp.MustCompile(`(?m)^\s*description\s+(.+)`)
	reShutdown    = regexp.MustCompile(`(?m)^\s*shutdown\s*$`)
	reVLANLine    = regexp.MustCompile(`(?m)^(\d+)\s+(\S+)\s+(active|act/unsup|suspended)`)
)

// Parse extracts a partial DeviceRecord from Cisco configuration/show
// text. The dispatcher fills in Vendor, ParsedAt, ProjectID,
// DeviceName, SourceVersion, and OriginalContent.
func Parse(content string) domain.DeviceRecord {
	var rec domain.DeviceRecord
	rec.DeviceOverview = parseOverview(content)
	rec.Interfaces = parseInterfaces(content)
	rec.VLANs = parseVLANs(content)
	rec.STP = parseSTP(content)
	rec.Routing = parseRouting(content)
	rec.Neighbors = parseNeighbors(content)
	rec.MacArp = parseMacArp(content)
	rec.Security = parseSecurity(content)
	rec.HA = parseHA(content)
	return rec
}

func parseOverview(content string) domain.DeviceOverview {
	ov := domain.DeviceOverview{}
	if m := reHostname.FindStringSubmatch(content); m != nil {
		ov.Hostname = m[1]
	}
	if m := reModel.FindStringSubmatch(content); m != nil {
		ov.Model = strPtr(m[1])
	}
	if m := reOSVersion.FindStringSubmatch(content); m != nil {
		ov.OSVersion = strPtr(m[1])
	}
	if m := reSerial.FindStringSubmatch(content); m != nil {
		ov.SerialNumber = strPtr(m[1])
	}
	if m := reUptime.FindStringSubmatch(content); m != nil {
		ov.Uptime = strPtr(strings.TrimSpace(m[1]))
	}
	if m := reCPU.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			ov.CPUUtilization = &v
		}
	}
	if m := reMemUsed.FindStringSubmatch(content); m != nil {
		total, errT := strconv.ParseFloat(m[1], 64)
		used, errU := strconv.ParseFloat(m[2], 64)
		if errT == nil && errU == nil && total > 0 {
			pct := (used / total) * 100
			ov.MemoryUsage = &pct
		}
	}
	ov.MgmtIP = findMgmtIP(content)
	if ov.Hostname != "" {
		ov.Role = roleclassifier.Classify(ov.Hostname)
	} else {
		ov.Role = roleclassifier.RoleUnknown
	}
	return ov
}

// findMgmtIP looks for a loopback or Vlan SVI interface's IP address,
// preferring loopbacks as the management-address heuristic.
func findMgmtIP(content string) *string {
	blocks := splitInterfaceBlocks(content)
	var fallback string
	for _, name := range sortedBlockNames(blocks) {
		lname := strings.ToLower(name)
		if m := reIPAddress.FindStringSubmatch(blocks[name]); m != nil {
			if strings.Contains(lname, "loopback") {
				return strPtr(m[1])
			}
			if strings.Contains(lname, "vlan") && fallback == "" {
				fallback = m[1]
			}
		}
	}
	if fallback != "" {
		return strPtr(fallback)
	}
	return nil
}

// splitInterfaceBlocks slices the running-config into per-interface text
// blocks terminated by a bare "!" or the next "interface" line.
func splitInterfaceBlocks(content string) map[string]string {
	blocks := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var current string
	var body strings.Builder
	flush := func() {
		if current != "" {
			blocks[current] = body.String()
		}
		body.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if m := reInterface.FindStringSubmatch(line); m != nil {
			flush()
			current = m[1]
			continue
		}
		if current != "" {
			if strings.TrimSpace(line) == "!" {
				flush()
				current = ""
				continue
			}
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	flush()
	return blocks
}

// sortedBlockNames returns the interface names of a block map in sorted
// order, so parse output never depends on map iteration order and
// identical bytes always yield identical records.
func sortedBlockNames(blocks map[string]string) []string {
	names := make([]string, 0, len(blocks))
	for name := range blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseInterfaces(content string) []domain.Interface {
	blocks := splitInterfaceBlocks(content)
	out := make([]domain.Interface, 0, len(blocks))

	for _, name := range sortedBlockNames(blocks) {
		body := blocks[name]
		iface := domain.Interface{Name: name, Type: interfaceType(name)}
		iface.AdminStatus = "up"
		iface.OperStatus = "unknown"
		if reShutdown.MatchString(body) {
			iface.AdminStatus = "down"
		}
		if m := reIPAddress.FindStringSubmatch(body); m != nil {
			iface.IPv4Address = strPtr(m[1])
		}
		if m := reDescription.FindStringSubmatch(body); m != nil {
			iface.Description = strPtr(strings.TrimSpace(m[1]))
		}

		mode := domain.PortModeUnknown
		if m := reSwitchport.FindStringSubmatch(body); m != nil {
			switch strings.ToLower(m[1]) {
			case "access":
				mode = domain.PortModeAccess
			case "trunk":
				mode = domain.PortModeTrunk
			}
		}
		iface.PortMode = mode

		if m := reAccessVLAN.FindStringSubmatch(body); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				iface.AccessVLAN = &v
			}
		}
		if mode == domain.PortModeTrunk {
			native := 1 // trunk with no explicit native VLAN defaults to 1.
			if m := reNativeVLAN.FindStringSubmatch(body); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					native = v
				}
			}
			iface.NativeVLAN = &native

			if m := reAllowedVLAN.FindStringSubmatch(body); m != nil {
				iface.AllowedVLANsRaw = m[1]
				iface.AllowedVLANs = vlanutil.ExpandRange(m[1])
			}
		}

		out = append(out, iface)
	}
	return out
}

func interfaceType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "gi"):
		return "GigabitEthernet"
	case strings.HasPrefix(lower, "te"):
		return "TenGigabitEthernet"
	case strings.HasPrefix(lower, "fa"):
		return "FastEthernet"
	case strings.HasPrefix(lower, "vlan"):
		return "Vlan"
	case strings.HasPrefix(lower, "loopback"):
		return "Loopback"
	case strings.HasPrefix(lower, "port-channel"):
		return "Port-channel"
	default:
		return "unknown"
	}
}

func parseVLANs(content string) domain.VLANInfo {
	info := domain.VLANInfo{VLANNames: map[int]string{}, VLANStatus: map[int]string{}}
	seen := map[int]bool{}
	for _, m := range reVLANLine.FindAllStringSubmatch(content, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[id] = true
		info.VLANNames[id] = m[2]
		info.VLANStatus[id] = m[3]
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	info.VLANList = sortInts(ids)
	return info
}

func parseSTP(content string) domain.STPInfo {
	stp := domain.STPInfo{PortRoles: map[string]string{}, PortStates: map[string]string{}}
	if strings.Contains(content, "rapid-pvst") || strings.Contains(content, "Rapid-PVST") {
		stp.Mode = strPtr("RPVST")
	} else if strings.Contains(content, "mst") || strings.Contains(strings.ToLower(content), "mst configuration") {
		stp.Mode = strPtr("MSTP")
	}
	if re := regexp.MustCompile(`(?i)Bridge ID\s+Priority\s+\d+\s+\(priority\s+(\d+)\).*Address\s+(\S+)`); true {
		if m := re.FindStringSubmatch(content); m != nil {
			if p, err := strconv.Atoi(m[1]); err == nil {
				stp.BridgePriority = &p
			}
			stp.BridgeID = strPtr(m[2])
		}
	}
	if strings.Contains(content, "This bridge is the root") {
		t := true
		stp.RootBridgeStatus = &t
	} else if strings.Contains(content, "Root ID") {
		f := false
		stp.RootBridgeStatus = &f
	}
	rePortLine := regexp.MustCompile(`(?m)^(\S+)\s+(Desg|Root|Altn|Back)\s+(FWD|LIS|LRN|BLK)`)
	for _, m := range rePortLine.FindAllStringSubmatch(content, -1) {
		stp.PortRoles[m[1]] = m[2]
		stp.PortStates[m[1]] = m[3]
	}
	if strings.Contains(content, "Portfast") || strings.Contains(content, "portfast") {
		t := true
		stp.PortfastEnabled = &t
	}
	if strings.Contains(content, "bpduguard") || strings.Contains(content, "BPDU Guard") {
		t := true
		stp.BPDUGuard = &t
	}
	return stp
}

func parseRouting(content string) domain.RoutingInfo {
	routing := domain.RoutingInfo{}

	reStatic := regexp.MustCompile(`(?m)^ip route\s+(\S+)\s+(\S+)\s+(\S+)(?:\s+(\d+))?`)
	for _, m := range reStatic.FindAllStringSubmatch(content, -1) {
		route := domain.StaticRoute{Destination: m[1], Mask: m[2], NextHop: m[3]}
		if m[4] != "" {
			if v, err := strconv.Atoi(m[4]); err == nil {
				route.Metric = &v
			}
		}
		routing.Static = append(routing.Static, route)
	}

	if reRid := regexp.MustCompile(`(?i)router ospf (\d+)`); reRid.MatchString(content) {
		m := reRid.FindStringSubmatch(content)
		ospf := &domain.OSPFInfo{ProcessID: strPtr(m[1])}
		if rm := regexp.MustCompile(`(?i)router-id\s+(\S+)`).FindStringSubmatch(content); rm != nil {
			ospf.RouterID = strPtr(rm[1])
		}
		for _, am := range regexp.MustCompile(`(?i)area\s+(\S+)`).FindAllStringSubmatch(content, -1) {
			ospf.Areas = append(ospf.Areas, am[1])
		}
		routing.OSPF = ospf
	}

	if reAS := regexp.MustCompile(`(?i)router bgp (\d+)`); reAS.MatchString(content) {
		m := reAS.FindStringSubmatch(content)
		asn, _ := strconv.Atoi(m[1])
		bgp := &domain.BGPInfo{ASNumber: &asn}
		for _, pm := range regexp.MustCompile(`(?i)neighbor\s+(\S+)\s+remote-as\s+(\d+)`).FindAllStringSubmatch(content, -1) {
			remoteAS, _ := strconv.Atoi(pm[2])
			bgp.Peers = append(bgp.Peers, domain.BGPPeer{PeerAddress: pm[1], RemoteAS: &remoteAS})
		}
		routing.BGP = bgp
	}

	return routing
}

var reCDPEntry = regexp.MustCompile(`(?m)^Device ID:\s*(\S+)`)

func parseNeighbors(content string) []domain.Neighbor {
	var neighbors []domain.Neighbor

	// CDP "show cdp neighbors detail" style blocks.
	blocks := strings.Split(content, "-------------------------")
	for _, block := range blocks {
		if !strings.Contains(block, "Device ID") {
			continue
		}
		m := reCDPEntry.FindStringSubmatch(block)
		if m == nil || isNeighborHeaderArtifact(m[1]) {
			continue
		}
		n := domain.Neighbor{DeviceName: m[1], Protocol: domain.NeighborCDP}
		if im := regexp.MustCompile(`(?i)IP address:\s*(\S+)`).FindStringSubmatch(block); im != nil {
			n.IPAddress = strPtr(im[1])
		}
		if pm := regexp.MustCompile(`(?i)Platform:\s*([^,]+),`).FindStringSubmatch(block); pm != nil {
			n.Platform = strPtr(strings.TrimSpace(pm[1]))
		}
		if lm := regexp.MustCompile(`(?i)Interface:\s*(\S+),\s*Port ID \(outgoing port\):\s*(\S+)`).FindStringSubmatch(block); lm != nil {
			n.LocalPort = lm[1]
			n.RemotePort = strPtr(lm[2])
		}
		if cm := regexp.MustCompile(`(?i)Capabilities:\s*(.+)`).FindStringSubmatch(block); cm != nil {
			n.Capabilities = strings.Fields(cm[1])
		}
		neighbors = append(neighbors, n)
	}

	// LLDP neighbor table rows.
	reLLDP := regexp.MustCompile(`(?m)^(\S+)\s+(\S+)\s+(\d+)\s+(\S+)\s+(\S+)`)
	if strings.Contains(content, "LLDP neighbor") || strings.Contains(content, "Neighbor table") {
		for _, m := range reLLDP.FindAllStringSubmatch(content, -1) {
			if isNeighborHeaderArtifact(m[1]) {
				continue
			}
			neighbors = append(neighbors, domain.Neighbor{
				DeviceName: m[1], LocalPort: m[2], RemotePort: strPtr(m[5]), Protocol: domain.NeighborLLDP,
			})
		}
	}

	return neighbors
}

// isNeighborHeaderArtifact filters protocol header noise masquerading as
// a device name.
func isNeighborHeaderArtifact(name string) bool {
	switch strings.TrimSpace(name) {
	case "Device", "Device ID", "Port", "(R)", "Local", "Intf", "":
		return true
	default:
		return false
	}
}

func parseMacArp(content string) domain.MacArpInfo {
	info := domain.MacArpInfo{}
	reMac := regexp.MustCompile(`(?m)^\s*(\d+)\s+([0-9a-fA-F.:]+)\s+(DYNAMIC|STATIC)\s+(\S+)`)
	for _, m := range reMac.FindAllStringSubmatch(content, -1) {
		vlan, _ := strconv.Atoi(m[1])
		info.MacTable = append(info.MacTable, domain.MacEntry{VLAN: &vlan, MAC: m[2], Type: m[3], Interface: m[4]})
	}
	reArp := regexp.MustCompile(`(?m)^Internet\s+(\S+)\s+(\S+)\s+([0-9a-fA-F.:]+)\s+\S+\s+(\S+)`)
	for _, m := range reArp.FindAllStringSubmatch(content, -1) {
		var agePtr *int
		if age, err := strconv.Atoi(m[2]); err == nil {
			agePtr = &age
		}
		info.ArpTable = append(info.ArpTable, domain.ArpEntry{IPAddress: m[1], Age: agePtr, MAC: m[3], Interface: m[4]})
	}
	return info
}

func parseSecurity(content string) domain.SecurityInfo {
	sec := domain.SecurityInfo{}
	for _, m := range regexp.MustCompile(`(?m)^username\s+(\S+)(?:\s+privilege\s+(\d+))?`).FindAllStringSubmatch(content, -1) {
		acct := domain.UserAccount{Username: m[1]}
		if m[2] != "" {
			if p, err := strconv.Atoi(m[2]); err == nil {
				acct.Privilege = &p
			}
		}
		sec.UserAccounts = append(sec.UserAccounts, acct)
	}
	for _, m := range regexp.MustCompile(`(?m)^aaa authentication login\s+(\S+)\s+(.+)`).FindAllStringSubmatch(content, -1) {
		sec.AAA.Authentication = append(sec.AAA.Authentication, strings.TrimSpace(m[2]))
	}
	for _, m := range regexp.MustCompile(`(?m)^aaa authorization\s+(\S+)\s+(\S+)\s+(.+)`).FindAllStringSubmatch(content, -1) {
		sec.AAA.Authorization = append(sec.AAA.Authorization, strings.TrimSpace(m[3]))
	}
	for _, m := range regexp.MustCompile(`(?m)^aaa accounting\s+(\S+)\s+(\S+)\s+(.+)`).FindAllStringSubmatch(content, -1) {
		sec.AAA.Accounting = append(sec.AAA.Accounting, strings.TrimSpace(m[3]))
	}
	if strings.Contains(content, "ip ssh version") || strings.Contains(content, "transport input ssh") {
		t := true
		sec.SSHEnabled = &t
	}
	if strings.Contains(content, "snmp-server") {
		sec.SNMP.Enabled = true
		if m := regexp.MustCompile(`(?i)snmp-server community\s+(\S+)`).FindStringSubmatch(content); m != nil {
			sec.SNMP.Communities = append(sec.SNMP.Communities, m[1])
		}
		if strings.Contains(content, "version 3") {
			sec.SNMP.Version = strPtr("3")
		} else if strings.Contains(content, "version 2c") {
			sec.SNMP.Version = strPtr("2c")
		}
	}
	for _, m := range regexp.MustCompile(`(?m)^ntp server\s+(\S+)`).FindAllStringSubmatch(content, -1) {
		sec.NTP.Enabled = true
		sec.NTP.Servers = append(sec.NTP.Servers, m[1])
	}
	for _, m := range regexp.MustCompile(`(?m)^logging\s+(\S+)`).FindAllStringSubmatch(content, -1) {
		sec.Logging = append(sec.Logging, m[1])
	}
	for _, m := range regexp.MustCompile(`(?m)^(?:ip )?access-list\s+(?:(standard|extended)\s+)?(\S+)`).FindAllStringSubmatch(content, -1) {
		aclType := m[1]
		if aclType == "" {
			aclType = "numbered"
		}
		entries := strings.Count(content, "access-list "+m[2]+" ")
		sec.ACLs = append(sec.ACLs, domain.ACL{Name: m[2], Type: aclType, Entries: entries})
	}
	return sec
}

func parseHA(content string) domain.HAInfo {
	ha := domain.HAInfo{}
	poGroups := map[string][]string{}
	blocks := splitInterfaceBlocks(content)
	for _, name := range sortedBlockNames(blocks) {
		if m := regexp.MustCompile(`(?i)channel-group\s+(\d+)\s+mode\s+(\S+)`).FindStringSubmatch(blocks[name]); m != nil {
			poGroups[m[1]] = append(poGroups[m[1]], name)
			_ = m[2]
		}
	}
	groups := make([]string, 0, len(poGroups))
	for group := range poGroups {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	for _, group := range groups {
		mode := "on"
		ha.EtherChannel = append(ha.EtherChannel, domain.EtherChannel{GroupID: group, Members: poGroups[group], Mode: mode})
	}

	for _, m := range regexp.MustCompile(`(?i)standby\s+(\d+)\s+ip\s+(\S+)`).FindAllStringSubmatch(content, -1) {
		groupID, _ := strconv.Atoi(m[1])
		ha.HSRPGroups = append(ha.HSRPGroups, domain.HSRPGroup{GroupID: groupID, VirtualIP: m[2]})
	}
	for _, m := range regexp.MustCompile(`(?i)vrrp\s+(\d+)\s+ip\s+(\S+)`).FindAllStringSubmatch(content, -1) {
		groupID, _ := strconv.Atoi(m[1])
		ha.VRRPGroups = append(ha.VRRPGroups, domain.VRRPGroup{GroupID: groupID, VirtualIP: m[2]})
	}
	return ha
}

func strPtr(s string) *string { return &s }

func sortInts(in []int) []int {
	for i := 1; i < len(in); i++ {
		for j := i; j > 0 && in[j-1] > in[j]; j-- {
			in[j-1], in[j] = in[j], in[j-1]
		}
	}
	return in
}
