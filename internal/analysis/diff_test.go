package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAccuracyMetrics_NoChanges(t *testing.T) {
	draft := `{"hostname":"core-sw1","role":"core"}`
	metrics, err := computeAccuracyMetrics(draft, draft)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.TotalChanges)
	assert.Equal(t, 100.0, metrics.AccuracyScore)
	assert.Empty(t, metrics.ChangesByType)
}

func TestComputeAccuracyMetrics_FieldModifiedAndAdded(t *testing.T) {
	draft := `{"hostname":"core-sw1","role":"core"}`
	verified := `{"hostname":"core-sw1-renamed","role":"core","notes":"reviewed"}`

	metrics, err := computeAccuracyMetrics(draft, verified)
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalChanges)
	require.Len(t, metrics.ChangesByType["hostname"], 1)
	assert.Equal(t, "modified", metrics.ChangesByType["hostname"][0].ChangeType)
	require.Len(t, metrics.ChangesByType["notes"], 1)
	assert.Equal(t, "added", metrics.ChangesByType["notes"][0].ChangeType)
	assert.Less(t, metrics.AccuracyScore, 100.0)
	assert.GreaterOrEqual(t, metrics.AccuracyScore, 0.0)
}

func TestComputeAccuracyMetrics_FieldRemoved(t *testing.T) {
	draft := `{"hostname":"core-sw1","role":"core","notes":"x"}`
	verified := `{"hostname":"core-sw1","role":"core"}`

	metrics, err := computeAccuracyMetrics(draft, verified)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TotalChanges)
	require.Len(t, metrics.ChangesByType["notes"], 1)
	assert.Equal(t, "removed", metrics.ChangesByType["notes"][0].ChangeType)
}

func TestComputeAccuracyMetrics_EditedNestedRecommendation(t *testing.T) {
	draft := `{"recommendations":[
		{"severity":"high","recommendation":"patch the firmware"},
		{"severity":"medium","recommendation":"enable bpdu guard"},
		{"severity":"low","recommendation":"tidy descriptions"}]}`
	verified := `{"recommendations":[
		{"severity":"high","recommendation":"patch the firmware"},
		{"severity":"medium","recommendation":"enable bpdu guard on all access ports"},
		{"severity":"low","recommendation":"tidy descriptions"}]}`

	metrics, err := computeAccuracyMetrics(draft, verified)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TotalChanges)
	require.Len(t, metrics.ChangesByType["recommendation"], 1)
	change := metrics.ChangesByType["recommendation"][0]
	assert.Equal(t, "modified", change.ChangeType)
	assert.Equal(t, "recommendations[1].recommendation", change.Path)
	assert.Less(t, metrics.AccuracyScore, 100.0)
}

func TestComputeAccuracyMetrics_RemovedArrayItemIsOneChange(t *testing.T) {
	draft := `{"recommendations":[
		{"severity":"high","recommendation":"a"},
		{"severity":"low","recommendation":"b"}]}`
	verified := `{"recommendations":[
		{"severity":"high","recommendation":"a"}]}`

	metrics, err := computeAccuracyMetrics(draft, verified)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TotalChanges)
	require.Len(t, metrics.ChangesByType["recommendations"], 1)
	assert.Equal(t, "removed", metrics.ChangesByType["recommendations"][0].ChangeType)
}

func TestComputeAccuracyMetrics_EmptyDraft(t *testing.T) {
	metrics, err := computeAccuracyMetrics("", `{"hostname":"core-sw1"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.TotalChanges)
	assert.Equal(t, 0.0, metrics.AccuracyScore)
}

func TestComputeAccuracyMetrics_InvalidJSON(t *testing.T) {
	_, err := computeAccuracyMetrics("{not json", `{}`)
	assert.Error(t, err)
}
