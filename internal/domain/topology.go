package domain

import "time"

// Position is one device's coordinates on the unitless 0-100 canvas
// plane. Values outside [0,100] are legal; clients pan and zoom.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LinkEvidence records why an edge was drawn: parsed neighbor discovery
// or a user-added manual override.
type LinkEvidence string

const (
	EvidenceCDP    LinkEvidence = "cdp"
	EvidenceLLDP   LinkEvidence = "lldp"
	EvidenceManual LinkEvidence = "manual"
)

// Link is one edge between two devices on the topology canvas.
type Link struct {
	ID       string       `json:"id,omitempty"`
	A        string       `json:"a"`
	B        string       `json:"b"`
	Label    string       `json:"label,omitempty"`
	Evidence LinkEvidence `json:"evidence,omitempty"`
	Type     string       `json:"type"`
}

// TopologyState is the whole-project layout document: positions, links,
// per-node label overrides, and per-node role overrides, all keyed by
// device name. Saves are last-writer-wins over the entire document,
// not merged field by field.
type TopologyState struct {
	ProjectID  string              `json:"project_id"`
	Positions  map[string]Position `json:"positions"`
	Links      []Link              `json:"links"`
	NodeLabels map[string]string   `json:"node_labels"`
	NodeRoles  map[string]string   `json:"node_roles"`
	UpdatedBy  string              `json:"updated_by"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Normalize replaces nil maps and link list with empty ones so the
// persisted and serialized forms are always {} / [], never null.
func (t *TopologyState) Normalize() {
	if t.Positions == nil {
		t.Positions = map[string]Position{}
	}
	if t.Links == nil {
		t.Links = []Link{}
	}
	if t.NodeLabels == nil {
		t.NodeLabels = map[string]string{}
	}
	if t.NodeRoles == nil {
		t.NodeRoles = map[string]string{}
	}
}
