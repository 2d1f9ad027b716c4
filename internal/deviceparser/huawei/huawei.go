// Package huawei implements the Huawei VRP variant of the device
// parser, mirroring internal/deviceparser/cisco's shape but against
// VRP's display-command grammar.
package huawei

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

// Detect reports whether content looks like Huawei VRP show/config
// output, trying "display version" / "display current-configuration"
// first.
func Detect(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "display version") ||
		strings.Contains(lower, "display current-configuration") ||
		strings.Contains(lower, "huawei versatile routing platform") ||
		strings.Contains(content, "#") && strings.Contains(lower, "sysname ")
}

var (
	reSysname     = regexp.MustCompile(`(?m)^sysname\s+(\S+)`)
	reModel       = regexp.MustCompile(`(?i)HUAWEI\s+(\S+)\s+uptime`)
	reVersion     = regexp.MustCompile(`(?i)VRP\s*\(R\)\s*software,?\s*Version\s+([\w.]+)`)
	reSerial      = regexp.MustCompile(`(?i)[Ee]quipment serial number\s*:\s*(\S+)`)
	reUptime      = regexp.MustCompile(`(?i)uptime is (.+)`)
	reCPU         = regexp.MustCompile(`(?i)CPU [Uu]sage\s*:\s*(\d+)%`)
	reMemUsage    = regexp.MustCompile(`(?i)Memory [Uu]sage\s*:\s*(\d+)%`)
	reInterface   = regexp.MustCompile(`(?m)^interface\s+(\S+)`)
	reIPAddress   = regexp.MustCompile(`(?m)^\s*ip address\s+(\S+)\s+(\S+)`)
	reDescription = regexp.MustCompile(`(?m)^\s*description\s+(.+)`)
	reShutdown    = regexp.MustCompile(`(?m)^\s*shutdown\s*$`)
	reLinkType    = regexp.MustCompile(`(?m)^\s*port link-type\s+(\S+)`)
	rePVID        = regexp.MustCompile(`(?m)^\s*port trunk pvid vlan\s+(\d+)`)
	reAccessVLAN  = regexp.MustCompile(`(?m)^\s*port default vlan\s+(\d+)`)
	reTrunkVLAN   = regexp.MustCompile(`(?m)^\s*port trunk allow-pass vlan\s+(.+)`)
	reVLANLine    = regexp.MustCompile(`(?m)^(\d+)\s+(common|smart|mux)\s+(\S+)?`)
	reVLANBatch   = regexp.MustCompile(`(?m)^vlan\s+batch\s+(.+)`)
)

// Parse extracts a partial DeviceRecord from VRP configuration/display
// text.
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
	if m := reSysname.FindStringSubmatch(content); m != nil {
		ov.Hostname = m[1]
	}
	if m := reModel.FindStringSubmatch(content); m != nil {
		ov.Model = strPtr(m[1])
	}
	if m := reVersion.FindStringSubmatch(content); m != nil {
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
	if m := reMemUsage.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			ov.MemoryUsage = &v
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

func findMgmtIP(content string) *string {
	blocks := splitInterfaceBlocks(content)
	var fallback string
	for _, name := range sortedBlockNames(blocks) {
		lname := strings.ToLower(name)
		if m := reIPAddress.FindStringSubmatch(blocks[name]); m != nil {
			if strings.Contains(lname, "loopback") {
				return strPtr(m[1])
			}
			if strings.Contains(lname, "vlanif") && fallback == "" {
				fallback = m[1]
			}
		}
	}
	if fallback != "" {
		return strPtr(fallback)
	}
	return nil
}

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
			trimmed := strings.TrimSpace(line)
			if trimmed == "#" {
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
		if m := reLinkType.FindStringSubmatch(body); m != nil {
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
			native := 1
			if m := rePVID.FindStringSubmatch(body); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					native = v
				}
			}
			iface.NativeVLAN = &native

			if m := reTrunkVLAN.FindStringSubmatch(body); m != nil {
				raw := strings.TrimSpace(m[1])
				iface.AllowedVLANsRaw = raw
				iface.AllowedVLANs = vlanutil.ExpandRange(normalizeVRPVLANList(raw))
			}
		}

		out = append(out, iface)
	}
	return out
}

// normalizeVRPVLANList rewrites VRP's space-separated "2 to 10 20" list
// form into the comma/dash form vlanutil.ExpandRange understands.
func normalizeVRPVLANList(raw string) string {
	raw = strings.ReplaceAll(raw, " to ", "-")
	fields := strings.Fields(raw)
	return strings.Join(fields, ",")
}

func interfaceType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "gigabitethernet"):
		return "GigabitEthernet"
	case strings.HasPrefix(lower, "10ge") || strings.HasPrefix(lower, "xge"):
		return "10GE"
	case strings.HasPrefix(lower, "vlanif"):
		return "Vlanif"
	case strings.HasPrefix(lower, "loopback"):
		return "LoopBack"
	case strings.HasPrefix(lower, "eth-trunk"):
		return "Eth-Trunk"
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
		info.VLANStatus[id] = m[2]
		if m[3] != "" {
			info.VLANNames[id] = m[3]
		}
	}
	if m := reVLANBatch.FindStringSubmatch(content); m != nil {
		for _, id := range vlanutil.ExpandRange(normalizeVRPVLANList(m[1])) {
			seen[id] = true
		}
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
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "stp mode mstp") || strings.Contains(lower, "mstp"):
		stp.Mode = strPtr("MSTP")
	case strings.Contains(lower, "stp mode rstp") || strings.Contains(lower, "rstp"):
		stp.Mode = strPtr("RSTP")
	}
	if m := regexp.MustCompile(`(?i)CIST Bridge\s*:\s*(\d+)\s*\.\s*(\S+)`).FindStringSubmatch(content); m != nil {
		if p, err := strconv.Atoi(m[1]); err == nil {
			stp.BridgePriority = &p
		}
		stp.BridgeID = strPtr(m[2])
	}
	if strings.Contains(content, "CIST root/ERPC") && strings.Contains(content, "0  .") {
		t := true
		stp.RootBridgeStatus = &t
	}
	rePortLine := regexp.MustCompile(`(?m)^(\S+)\s+(DESI|ROOT|ALTE|BACK)\s+(FORWARDING|DISCARDING|LEARNING)`)
	for _, m := range rePortLine.FindAllStringSubmatch(content, -1) {
		stp.PortRoles[m[1]] = m[2]
		stp.PortStates[m[1]] = m[3]
	}
	if strings.Contains(lower, "edged port") {
		t := true
		stp.PortfastEnabled = &t
	}
	if strings.Contains(lower, "bpdu-protection") {
		t := true
		stp.BPDUGuard = &t
	}
	return stp
}

func parseRouting(content string) domain.RoutingInfo {
	routing := domain.RoutingInfo{}

	reStatic := regexp.MustCompile(`(?m)^ip route-static\s+(\S+)\s+(\S+)\s+(\S+)(?:\s+preference\s+(\d+))?`)
	for _, m := range reStatic.FindAllStringSubmatch(content, -1) {
		route := domain.StaticRoute{Destination: m[1], Mask: m[2], NextHop: m[3]}
		if m[4] != "" {
			if v, err := strconv.Atoi(m[4]); err == nil {
				route.Metric = &v
			}
		}
		routing.Static = append(routing.Static, route)
	}

	if reProc := regexp.MustCompile(`(?i)ospf\s+(\d+)`); reProc.MatchString(content) {
		m := reProc.FindStringSubmatch(content)
		ospf := &domain.OSPFInfo{ProcessID: strPtr(m[1])}
		if rm := regexp.MustCompile(`(?i)router-id\s+(\S+)`).FindStringSubmatch(content); rm != nil {
			ospf.RouterID = strPtr(rm[1])
		}
		for _, am := range regexp.MustCompile(`(?i)^\s*area\s+(\S+)`).FindAllStringSubmatch(content, -1) {
			ospf.Areas = append(ospf.Areas, am[1])
		}
		routing.OSPF = ospf
	}

	if reAS := regexp.MustCompile(`(?i)^bgp\s+(\d+)`); reAS.MatchString(content) {
		m := reAS.FindStringSubmatch(content)
		asn, _ := strconv.Atoi(m[1])
		bgp := &domain.BGPInfo{ASNumber: &asn}
		for _, pm := range regexp.MustCompile(`(?i)peer\s+(\S+)\s+as-number\s+(\d+)`).FindAllStringSubmatch(content, -1) {
			remoteAS, _ := strconv.Atoi(pm[2])
			bgp.Peers = append(bgp.Peers, domain.BGPPeer{PeerAddress: pm[1], RemoteAS: &remoteAS})
		}
		routing.BGP = bgp
	}

	return routing
}

func parseNeighbors(content string) []domain.Neighbor {
	var neighbors []domain.Neighbor
	blocks := strings.Split(content, "Neighbor index")
	for i, block := range blocks {
		if i == 0 {
			continue
		}
		var n domain.Neighbor
		n.Protocol = domain.NeighborLLDP
		if m := regexp.MustCompile(`(?i)System Name\s*:\s*(\S+)`).FindStringSubmatch(block); m != nil {
			n.DeviceName = m[1]
		} else {
			continue
		}
		if m := regexp.MustCompile(`(?i)Management address\s*:\s*(\S+)`).FindStringSubmatch(block); m != nil {
			n.IPAddress = strPtr(m[1])
		}
		if m := regexp.MustCompile(`(?i)System description\s*:\s*(.+)`).FindStringSubmatch(block); m != nil {
			n.Platform = strPtr(strings.TrimSpace(m[1]))
		}
		if m := regexp.MustCompile(`(?i)Local port\s*:\s*(\S+)`).FindStringSubmatch(block); m != nil {
			n.LocalPort = m[1]
		}
		if m := regexp.MustCompile(`(?i)Port ID\s*:\s*(\S+)`).FindStringSubmatch(block); m != nil {
			n.RemotePort = strPtr(m[1])
		}
		neighbors = append(neighbors, n)
	}
	return neighbors
}

func parseMacArp(content string) domain.MacArpInfo {
	info := domain.MacArpInfo{}
	reMac := regexp.MustCompile(`(?m)^([0-9a-fA-F-]{14})\s+(\d+)\s*/-\s*(\S+)\s+(\S+)`)
	for _, m := range reMac.FindAllStringSubmatch(content, -1) {
		vlan, _ := strconv.Atoi(m[2])
		info.MacTable = append(info.MacTable, domain.MacEntry{VLAN: &vlan, MAC: m[1], Type: m[4], Interface: m[3]})
	}
	reArp := regexp.MustCompile(`(?m)^(\d+\.\d+\.\d+\.\d+)\s+([0-9a-fA-F-]{14})\s+\d+\s+(\S+)\s+(\S+)`)
	for _, m := range reArp.FindAllStringSubmatch(content, -1) {
		info.ArpTable = append(info.ArpTable, domain.ArpEntry{IPAddress: m[1], MAC: m[2], Interface: m[4]})
	}
	return info
}

func parseSecurity(content string) domain.SecurityInfo {
	sec := domain.SecurityInfo{}
	for _, m := range regexp.MustCompile(`(?m)^local-user\s+(\S+)\s+.*privilege level\s+(\d+)`).FindAllStringSubmatch(content, -1) {
		p, _ := strconv.Atoi(m[2])
		sec.UserAccounts = append(sec.UserAccounts, domain.UserAccount{Username: m[1], Privilege: &p})
	}
	if strings.Contains(content, "aaa") {
		for _, m := range regexp.MustCompile(`(?m)^\s*authentication-scheme\s+(\S+)`).FindAllStringSubmatch(content, -1) {
			sec.AAA.Authentication = append(sec.AAA.Authentication, m[1])
		}
		for _, m := range regexp.MustCompile(`(?m)^\s*authorization-scheme\s+(\S+)`).FindAllStringSubmatch(content, -1) {
			sec.AAA.Authorization = append(sec.AAA.Authorization, m[1])
		}
		for _, m := range regexp.MustCompile(`(?m)^\s*accounting-scheme\s+(\S+)`).FindAllStringSubmatch(content, -1) {
			sec.AAA.Accounting = append(sec.AAA.Accounting, m[1])
		}
	}
	if strings.Contains(content, "stelnet server enable") || strings.Contains(content, "ssh server") {
		t := true
		sec.SSHEnabled = &t
	}
	if strings.Contains(content, "snmp-agent") {
		sec.SNMP.Enabled = true
		if m := regexp.MustCompile(`(?i)snmp-agent community\s+\S+\s+(\S+)`).FindStringSubmatch(content); m != nil {
			sec.SNMP.Communities = append(sec.SNMP.Communities, m[1])
		}
		if strings.Contains(content, "v3") {
			sec.SNMP.Version = strPtr("3")
		} else if strings.Contains(content, "v2c") {
			sec.SNMP.Version = strPtr("2c")
		}
	}
	for _, m := range regexp.MustCompile(`(?m)^ntp-service unicast-server\s+(\S+)`).FindAllStringSubmatch(content, -1) {
		sec.NTP.Enabled = true
		sec.NTP.Servers = append(sec.NTP.Servers, m[1])
	}
	for _, m := range regexp.MustCompile(`(?m)^info-center loghost\s+(\S+)`).FindAllStringSubmatch(content, -1) {
		sec.Logging = append(sec.Logging, m[1])
	}
	for _, m := range regexp.MustCompile(`(?m)^acl\s+(?:number\s+)?(\S+)`).FindAllStringSubmatch(content, -1) {
		aclType := "basic"
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 3000 {
			aclType = "advanced"
		}
		entries := strings.Count(content, "rule ")
		sec.ACLs = append(sec.ACLs, domain.ACL{Name: m[1], Type: aclType, Entries: entries})
	}
	return sec
}

func parseHA(content string) domain.HAInfo {
	ha := domain.HAInfo{}
	for _, m := range regexp.MustCompile(`(?m)^interface Eth-Trunk(\d+)`).FindAllStringSubmatch(content, -1) {
		ha.EtherChannel = append(ha.EtherChannel, domain.EtherChannel{GroupID: m[1], Mode: "lacp"})
	}
	for _, m := range regexp.MustCompile(`(?i)vrrp vrid\s+(\d+)\s+virtual-ip\s+(\S+)`).FindAllStringSubmatch(content, -1) {
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
