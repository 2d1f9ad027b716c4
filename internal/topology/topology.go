// Package topology implements the merged node/edge view over parsed
// devices and the most recent AI topology artifact, wholesale layout
// persistence, and the overlap-nudge relaxation pass applied after an
// LLM-generated layout lands.
package topology

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"netopscore/internal/domain"
	"netopscore/internal/roleclassifier"
	"netopscore/internal/store"
)

// minDistance and maxPasses bound the relaxation pass: nodes closer
// than 14 units are pushed apart, for at most 8 passes.
const (
	minDistance = 14.0
	maxPasses   = 8
)

// Node is one merged topology node.
type Node struct {
	DeviceName string `json:"device_name"`
	Label      string `json:"label"`
	Role       string `json:"role"`
	Source     string `json:"source"` // "device_record" or "ai"
}

// View is the full get(project) response shape.
type View struct {
	Nodes  []Node               `json:"nodes"`
	Edges  []domain.Link        `json:"edges"`
	Layout domain.TopologyState `json:"layout"`
}

// aiDraftTopology is the expected shape of a project_topology analysis
// artifact's ai_draft_json.
type aiDraftTopology struct {
	Nodes []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Role  string `json:"role"`
	} `json:"nodes"`
	Edges []struct {
		A        string `json:"a"`
		B        string `json:"b"`
		Label    string `json:"label"`
		Evidence string `json:"evidence"`
		Type     string `json:"type"`
	} `json:"edges"`
}

// Service implements the topology store's get/saveLayout operations.
type Service struct {
	db *sql.DB
}

// New builds a topology Service.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Get returns the merged node/edge view for a project: the union of
// DeviceRecords and any AI-generated nodes from the most recent
// project_topology artifact, preferring stored label/role overrides.
func (s *Service) Get(ctx context.Context, projectID string) (View, error) {
	records, err := store.ListDeviceRecords(ctx, s.db, projectID)
	if err != nil {
		return View{}, err
	}
	layout, err := store.GetTopologyState(ctx, s.db, projectID)
	if err != nil {
		return View{}, err
	}

	nodes := map[string]Node{}
	for _, rec := range records {
		role := rec.DeviceOverview.Role
		if role == "" {
			role = roleclassifier.Classify(rec.DeviceName)
		}
		nodes[rec.DeviceName] = Node{DeviceName: rec.DeviceName, Label: rec.DeviceName, Role: role, Source: "device_record"}
	}

	artifact, artErr := store.GetAnalysisArtifact(ctx, s.db, projectID, domain.KindProjectTopology, "")
	var edges []domain.Link
	if artErr == nil && artifact.AIDraftJSON != "" {
		var draft aiDraftTopology
		if err := json.Unmarshal([]byte(artifact.AIDraftJSON), &draft); err != nil {
			return View{}, fmt.Errorf("topology: unmarshal ai draft: %w", err)
		}
		for _, n := range draft.Nodes {
			if _, exists := nodes[n.ID]; exists {
				continue
			}
			role := n.Role
			if role == "" {
				role = roleclassifier.Classify(n.ID)
			}
			nodes[n.ID] = Node{DeviceName: n.ID, Label: n.Label, Role: role, Source: "ai"}
		}
		edges = draftEdges(draft)
	}

	// Apply label/role overrides after the merge: stored overrides win
	// over both parsed and AI-derived values.
	for name, node := range nodes {
		if label, ok := layout.NodeLabels[name]; ok {
			node.Label = label
		}
		if role, ok := layout.NodeRoles[name]; ok {
			node.Role = role
		}
		nodes[name] = node
	}

	if len(edges) == 0 {
		edges = deterministicFallbackEdges(nodes)
	}

	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Node, 0, len(names))
	for _, name := range names {
		out = append(out, nodes[name])
	}

	return View{Nodes: out, Edges: edges, Layout: layout}, nil
}

func draftEdges(draft aiDraftTopology) []domain.Link {
	var edges []domain.Link
	for _, e := range draft.Edges {
		evidence := domain.LinkEvidence(e.Evidence)
		if evidence == "" {
			evidence = domain.EvidenceManual
		}
		edges = append(edges, domain.Link{
			ID: uuid.NewString(), A: e.A, B: e.B,
			Label: e.Label, Evidence: evidence, Type: e.Type,
		})
	}
	return edges
}

// deterministicFallbackEdges connects core↔dist and core↔access based
// on name classification, used when no topology artifact exists.
func deterministicFallbackEdges(nodes map[string]Node) []domain.Link {
	var cores, dists, accesses []string
	for name, n := range nodes {
		switch n.Role {
		case roleclassifier.RoleCore:
			cores = append(cores, name)
		case roleclassifier.RoleDistribution:
			dists = append(dists, name)
		case roleclassifier.RoleAccess:
			accesses = append(accesses, name)
		}
	}
	sort.Strings(cores)
	sort.Strings(dists)
	sort.Strings(accesses)

	var edges []domain.Link
	for _, c := range cores {
		for _, d := range dists {
			edges = append(edges, domain.Link{ID: uuid.NewString(), A: c, B: d, Evidence: domain.EvidenceManual, Type: "uplink"})
		}
		for _, a := range accesses {
			edges = append(edges, domain.Link{ID: uuid.NewString(), A: c, B: a, Evidence: domain.EvidenceManual, Type: "uplink"})
		}
	}
	return edges
}

// SaveLayout replaces the project's whole layout document, all four
// maps at once. If the layout came from an LLM-generated topology,
// Relax should be called first.
func (s *Service) SaveLayout(ctx context.Context, projectID, updatedBy string, positions map[string]domain.Position, links []domain.Link, labels, roles map[string]string) error {
	state := domain.TopologyState{
		ProjectID: projectID, Positions: positions, Links: links,
		NodeLabels: labels, NodeRoles: roles, UpdatedBy: updatedBy, UpdatedAt: time.Now().UTC(),
	}
	return store.SaveTopologyState(ctx, s.db, state)
}

// RemoveDevice purges one device's position, label, role, and any link
// touching it from the saved layout. If the project has no saved
// layout yet, an empty one is saved.
func (s *Service) RemoveDevice(ctx context.Context, projectID, deviceName string) error {
	state, err := store.GetTopologyState(ctx, s.db, projectID)
	if err != nil {
		return err
	}

	delete(state.Positions, deviceName)
	delete(state.NodeLabels, deviceName)
	delete(state.NodeRoles, deviceName)
	links := state.Links[:0]
	for _, l := range state.Links {
		if l.A != deviceName && l.B != deviceName {
			links = append(links, l)
		}
	}
	state.Links = links

	state.UpdatedAt = time.Now().UTC()
	return store.SaveTopologyState(ctx, s.db, state)
}

// ApplyGeneratedLayout folds a freshly completed project_topology
// artifact into the persisted layout: every node the draft introduces
// that has no stored position yet is seeded at a default canvas point,
// the whole position set is run through Relax so freshly seeded nodes
// never land on top of one another, the draft's edges replace the
// stored link list, and the result is persisted as the project's
// layout. Existing positions, node labels, and node roles are kept
// untouched so human edits survive a regeneration. Called once a
// project_topology job's AI draft has been persisted as an analysis
// artifact, so a client never has to ask for the nudge explicitly.
func (s *Service) ApplyGeneratedLayout(ctx context.Context, projectID, aiDraftJSON string) error {
	if aiDraftJSON == "" {
		return nil
	}
	var draft aiDraftTopology
	if err := json.Unmarshal([]byte(aiDraftJSON), &draft); err != nil {
		return fmt.Errorf("topology: unmarshal ai draft: %w", err)
	}

	state, err := store.GetTopologyState(ctx, s.db, projectID)
	if err != nil {
		return err
	}

	for _, n := range draft.Nodes {
		if _, ok := state.Positions[n.ID]; ok {
			continue
		}
		state.Positions[n.ID] = domain.Position{X: 50, Y: 50}
	}
	state.Positions = Relax(state.Positions)

	if links := draftEdges(draft); links != nil {
		state.Links = links
	}
	state.UpdatedBy = "analysis"
	state.UpdatedAt = time.Now().UTC()
	return store.SaveTopologyState(ctx, s.db, state)
}

// Relax nudges overlapping positions apart via iterative minimum-distance
// relaxation: any pair closer than minDistance is pushed apart along
// their connecting vector, for up to maxPasses passes or until no pair
// is too close. Devices are visited in name order so the result is
// deterministic for a given input.
func Relax(positions map[string]domain.Position) map[string]domain.Position {
	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]domain.Position, len(positions))
	for name, p := range positions {
		out[name] = p
	}

	for pass := 0; pass < maxPasses; pass++ {
		moved := false
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				pi, pj := out[names[i]], out[names[j]]
				dx := pj.X - pi.X
				dy := pj.Y - pi.Y
				dist := math.Hypot(dx, dy)
				if dist >= minDistance {
					continue
				}
				moved = true
				if dist == 0 {
					// Coincident points: nudge along a fixed direction so
					// the relaxation still makes progress.
					dx, dy = 1, 0
					dist = 1
				}
				push := (minDistance - dist) / 2
				ux, uy := dx/dist, dy/dist
				pi.X -= ux * push
				pi.Y -= uy * push
				pj.X += ux * push
				pj.Y += uy * push
				out[names[i]], out[names[j]] = pi, pj
			}
		}
		if !moved {
			break
		}
	}
	return out
}
