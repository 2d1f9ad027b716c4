package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"netopscore/internal/domain"
)

// computeAccuracyMetrics builds the diff recorded when a human verifies
// an artifact: a recursive walk over both JSON trees producing
// total_changes, changes_by_type (leaf changes grouped by field name),
// key_changes (a human-readable sample, capped), and accuracy_score =
// 100 minus the changed share of leaf fields.
func computeAccuracyMetrics(aiDraftJSON, verifiedJSON string) (*domain.AccuracyMetrics, error) {
	var draft, verified any
	if aiDraftJSON != "" {
		if err := json.Unmarshal([]byte(aiDraftJSON), &draft); err != nil {
			return nil, fmt.Errorf("analysis: unmarshal ai draft: %w", err)
		}
	}
	if verifiedJSON != "" {
		if err := json.Unmarshal([]byte(verifiedJSON), &verified); err != nil {
			return nil, fmt.Errorf("analysis: unmarshal verified json: %w", err)
		}
	}

	d := &treeDiff{changesByType: map[string][]domain.FieldChange{}}
	d.walk("", "", draft, verified, aiDraftJSON != "", verifiedJSON != "")

	score := 100.0
	if d.leafCount > 0 {
		score = 100.0 - (float64(d.total)/float64(d.leafCount))*100.0
	} else if d.total > 0 {
		score = 0
	}
	if score < 0 {
		score = 0
	}

	return &domain.AccuracyMetrics{
		TotalChanges:  d.total,
		ChangesByType: d.changesByType,
		KeyChanges:    d.keyChanges,
		AccuracyScore: score,
	}, nil
}

type treeDiff struct {
	total         int
	leafCount     int
	changesByType map[string][]domain.FieldChange
	keyChanges    []string
}

// walk recurses in parallel over the draft and verified trees. path is
// the full JSON path to the current node; field is the last map key on
// that path, which names the change group a differing leaf lands in.
func (d *treeDiff) walk(path, field string, draft, verified any, inDraft, inVerified bool) {
	draftMap, draftIsMap := draft.(map[string]any)
	verMap, verIsMap := verified.(map[string]any)
	if inDraft && inVerified && draftIsMap && verIsMap {
		keys := map[string]bool{}
		for k := range draftMap {
			keys[k] = true
		}
		for k := range verMap {
			keys[k] = true
		}
		sorted := make([]string, 0, len(keys))
		for k := range keys {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			dv, dok := draftMap[k]
			vv, vok := verMap[k]
			d.walk(joinPath(path, k), k, dv, vv, dok, vok)
		}
		return
	}

	draftArr, draftIsArr := draft.([]any)
	verArr, verIsArr := verified.([]any)
	if inDraft && inVerified && draftIsArr && verIsArr {
		n := len(draftArr)
		if len(verArr) > n {
			n = len(verArr)
		}
		for i := 0; i < n; i++ {
			var dv, vv any
			dok, vok := i < len(draftArr), i < len(verArr)
			if dok {
				dv = draftArr[i]
			}
			if vok {
				vv = verArr[i]
			}
			d.walk(path+"["+strconv.Itoa(i)+"]", field, dv, vv, dok, vok)
		}
		return
	}

	// Leaf: a scalar, a type mismatch, or a subtree present on only one
	// side. A one-sided subtree counts as a single change rather than
	// one per nested leaf, so deleting a whole recommendation item is
	// one removal, not five.
	if !inDraft && !inVerified {
		return
	}
	d.leafCount++
	if inDraft && inVerified && deepEqualJSON(draft, verified) {
		return
	}
	changeType := classifyChange(inDraft, inVerified)
	d.total++
	d.changesByType[field] = append(d.changesByType[field], domain.FieldChange{Path: path, ChangeType: changeType})
	if len(d.keyChanges) < 20 {
		d.keyChanges = append(d.keyChanges, path+": "+changeType)
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func classifyChange(inDraft, inVerified bool) string {
	switch {
	case !inDraft && inVerified:
		return "added"
	case inDraft && !inVerified:
		return "removed"
	default:
		return "modified"
	}
}

// deepEqualJSON compares two values decoded from JSON by re-encoding
// them canonically, tolerant of map key ordering.
func deepEqualJSON(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
