// Package summary builds the per-project device summary table, detects
// drift against the prior Config version, and computes dashboard
// rollups. Rows are computed concurrently (errgroup-based per-item work
// with a shared, mutex-guarded result slice),
// adapted from "start service instances in a layer" to "recompute one
// device's summary row".
package summary

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"netopscore/internal/blobstore"
	"netopscore/internal/deviceparser"
	"netopscore/internal/domain"
	"netopscore/internal/roleclassifier"
	"netopscore/internal/store"
)

// Service projects DeviceRecords into summary rows and dashboard
// rollups. Computed tables are cached per project until an Invalidate
// call (made by the Config ingest callback and the device, document and
// project delete paths) drops them, since drift detection re-parses the two
// latest raw Config versions of every device and is too expensive to
// run on each poll.
type Service struct {
	db    *sql.DB
	blobs *blobstore.Store

	mu    sync.RWMutex
	cache map[string][]domain.SummaryRow
}

// New builds a summary Service.
func New(db *sql.DB, blobs *blobstore.Store) *Service {
	return &Service{db: db, blobs: blobs, cache: make(map[string][]domain.SummaryRow)}
}

// Invalidate drops a project's cached summary table. The next Table
// call recomputes it from the device records.
func (s *Service) Invalidate(projectID string) {
	s.mu.Lock()
	delete(s.cache, projectID)
	s.mu.Unlock()
}

// Table returns every device's summary row in a project, from cache
// when a valid one exists, otherwise recomputed in parallel preserving
// device-name order in the result.
func (s *Service) Table(ctx context.Context, projectID string) ([]domain.SummaryRow, error) {
	s.mu.RLock()
	cached, ok := s.cache[projectID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	records, err := store.ListDeviceRecords(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.SummaryRow, len(records))
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			row, rowErr := s.buildRow(gctx, rec)
			if rowErr != nil {
				// Drift detection is tolerant: a device whose drift
				// check fails still renders, just without a verdict.
				row = baseRow(rec)
				row.Status = domain.SummaryOK
				row.StatusReason = fmt.Sprintf("drift check unavailable: %v", rowErr)
			}
			mu.Lock()
			rows[i] = row
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[projectID] = rows
	s.mu.Unlock()
	return rows, nil
}

// Row recomputes a single device's summary row.
func (s *Service) Row(ctx context.Context, projectID, deviceName string) (domain.SummaryRow, error) {
	rec, err := store.GetDeviceRecord(ctx, s.db, projectID, deviceName)
	if err != nil {
		return domain.SummaryRow{}, err
	}
	row, err := s.buildRow(ctx, rec)
	if err != nil {
		row = baseRow(rec)
		row.Status = domain.SummaryOK
		row.StatusReason = fmt.Sprintf("drift check unavailable: %v", err)
	}
	return row, nil
}

func (s *Service) buildRow(ctx context.Context, rec domain.DeviceRecord) (domain.SummaryRow, error) {
	row := baseRow(rec)

	drifted, reason, err := s.detectDrift(ctx, rec)
	if err != nil {
		return domain.SummaryRow{}, err
	}
	switch {
	case drifted:
		row.Status = domain.SummaryDrift
		row.StatusReason = reason
	case rec.Vendor == domain.VendorUnknown || rec.DeviceOverview.Hostname == "":
		row.Status = domain.SummaryParseIncomplete
		row.StatusReason = "no usable structure extracted from the latest Config version"
	default:
		row.Status = domain.SummaryOK
	}
	return row, nil
}

func baseRow(rec domain.DeviceRecord) domain.SummaryRow {
	ov := rec.DeviceOverview
	row := domain.SummaryRow{
		DeviceName: rec.DeviceName,
		Model:      deref(ov.Model),
		SerialNumber: deref(ov.SerialNumber),
		OSVersion:  deref(ov.OSVersion),
		MgmtIP:     deref(ov.MgmtIP),
		Role:       ov.Role,
		VLANCount:  len(rec.VLANs.VLANList),
		CPUUtilization: floatDeref(ov.CPUUtilization),
		MemoryUsage:    floatDeref(ov.MemoryUsage),
	}
	if row.Role == "" {
		row.Role = roleclassifier.RoleUnknown
	}

	var counts domain.InterfaceCounts
	var natives []string
	var trunkRanges []string
	for _, iface := range rec.Interfaces {
		counts.Total++
		switch strings.ToLower(iface.OperStatus) {
		case "up":
			counts.Up++
		case "down":
			counts.Down++
		}
		if iface.AdminStatus == "down" {
			counts.AdminDown++
			if iface.OperStatus == "down" || iface.OperStatus == "unknown" {
				counts.Unused++
			}
		}
		switch iface.PortMode {
		case domain.PortModeAccess:
			counts.Access++
		case domain.PortModeTrunk:
			counts.Trunk++
			if iface.NativeVLAN != nil {
				natives = append(natives, strconv.Itoa(*iface.NativeVLAN))
			}
			if iface.AllowedVLANsRaw != "" {
				trunkRanges = append(trunkRanges, iface.AllowedVLANsRaw)
			}
		}
	}
	row.Interfaces = counts
	row.UnusedPortCount = counts.Unused
	row.NativeVLAN = uniqueJoin(natives)
	row.TrunkAllowedSummary = uniqueJoin(trunkRanges)

	if rec.STP.Mode != nil {
		row.STP = *rec.STP.Mode
	} else {
		row.STP = "—"
	}
	switch {
	case rec.STP.RootBridgeStatus == nil:
		row.STPRole = "—"
	case *rec.STP.RootBridgeStatus:
		row.STPRole = "root"
	default:
		row.STPRole = "non-root"
	}

	if rec.Routing.OSPF != nil {
		row.OSPFNeighborCount = len(rec.Routing.OSPF.Neighbors)
	}

	var routingProtos []string
	if len(rec.Routing.Static) > 0 {
		routingProtos = append(routingProtos, "static")
	}
	if rec.Routing.OSPF != nil {
		routingProtos = append(routingProtos, "ospf")
	}
	if rec.Routing.BGP != nil {
		routingProtos = append(routingProtos, "bgp")
		asn := "?"
		if rec.Routing.BGP.ASNumber != nil {
			asn = strconv.Itoa(*rec.Routing.BGP.ASNumber)
		}
		row.BGPASNAndNeighbors = fmt.Sprintf("AS%s (%d peers)", asn, len(rec.Routing.BGP.Peers))
	} else {
		row.BGPASNAndNeighbors = "—"
	}
	if len(routingProtos) == 0 {
		row.RoutingProtocols = "—"
	} else {
		row.RoutingProtocols = strings.Join(routingProtos, ",")
	}

	if row.Model == "" {
		row.Model = "—"
	}
	if row.SerialNumber == "" {
		row.SerialNumber = "—"
	}
	if row.OSVersion == "" {
		row.OSVersion = "—"
	}
	if row.MgmtIP == "" {
		row.MgmtIP = "—"
	}
	if row.NativeVLAN == "" {
		row.NativeVLAN = "—"
	}
	if row.TrunkAllowedSummary == "" {
		row.TrunkAllowedSummary = "—"
	}
	if row.CPUUtilization == "" {
		row.CPUUtilization = "—"
	}
	if row.MemoryUsage == "" {
		row.MemoryUsage = "—"
	}

	return row
}

// detectDrift re-parses the device's two latest raw Config versions and
// compares their structured summary fields. Any difference marks the
// device Drift.
func (s *Service) detectDrift(ctx context.Context, rec domain.DeviceRecord) (bool, string, error) {
	doc, err := store.FindConfigDocumentByDeviceName(ctx, s.db, rec.ProjectID, rec.DeviceName)
	if err != nil {
		return false, "", err
	}
	versions, err := store.ListDocumentVersions(ctx, s.db, rec.ProjectID, doc.ID)
	if err != nil {
		return false, "", err
	}
	if len(versions) < 2 {
		return false, "", nil
	}

	latest := versions[len(versions)-1]
	previous := versions[len(versions)-2]

	latestBytes, err := s.blobs.Get(latest.BlobHash)
	if err != nil {
		return false, "", err
	}
	previousBytes, err := s.blobs.Get(previous.BlobHash)
	if err != nil {
		return false, "", err
	}

	latestRec := deviceparser.Parse(rec.ProjectID, rec.DeviceName, latestBytes, latest.VersionNumber)
	previousRec := deviceparser.Parse(rec.ProjectID, rec.DeviceName, previousBytes, previous.VersionNumber)

	latestRow := baseRow(latestRec)
	previousRow := baseRow(previousRec)
	// Status/StatusReason aren't structural summary fields; zero them
	// before comparing so the drift check itself doesn't self-reference.
	latestRow.Status, latestRow.StatusReason = "", ""
	previousRow.Status, previousRow.StatusReason = "", ""

	if latestRow == previousRow {
		return false, "", nil
	}
	return true, fmt.Sprintf("structured summary changed between version %d and %d", previous.VersionNumber, latest.VersionNumber), nil
}

// Dashboard rolls up a project's summary table by role and health.
func (s *Service) Dashboard(ctx context.Context, projectID string) (domain.DashboardMetrics, error) {
	rows, err := s.Table(ctx, projectID)
	if err != nil {
		return domain.DashboardMetrics{}, err
	}

	byRole := map[string]*domain.RoleRollup{}
	metrics := domain.DashboardMetrics{TotalDevices: len(rows)}
	for _, row := range rows {
		if row.Status == domain.SummaryOK {
			metrics.TotalOK++
		} else {
			metrics.TotalDrift++
		}

		rollup, ok := byRole[row.Role]
		if !ok {
			rollup = &domain.RoleRollup{Role: row.Role}
			byRole[row.Role] = rollup
		}
		rollup.Total++
		if row.Status == domain.SummaryOK {
			rollup.OK++
		} else {
			rollup.Drift++
		}
	}

	roles := make([]string, 0, len(byRole))
	for role := range byRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		metrics.ByRole = append(metrics.ByRole, *byRole[role])
	}
	return metrics, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatDeref(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 1, 64)
}

func uniqueJoin(items []string) string {
	seen := map[string]bool{}
	var out []string
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return strings.Join(out, ";")
}
