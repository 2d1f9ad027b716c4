package topology

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"netopscore/internal/domain"
)

func TestRelax_PushesOverlappingPointsApart(t *testing.T) {
	in := map[string]domain.Position{
		"a": {X: 0, Y: 0},
		"b": {X: 1, Y: 0},
	}
	out := Relax(in)

	dist := math.Hypot(out["b"].X-out["a"].X, out["b"].Y-out["a"].Y)
	assert.GreaterOrEqual(t, dist, minDistance-0.01)
}

func TestRelax_LeavesFarApartPointsUntouched(t *testing.T) {
	in := map[string]domain.Position{
		"a": {X: 0, Y: 0},
		"b": {X: 100, Y: 100},
	}
	out := Relax(in)
	assert.Equal(t, in["a"], out["a"])
	assert.Equal(t, in["b"], out["b"])
}

func TestRelax_SeparatesCoincidentPoints(t *testing.T) {
	in := map[string]domain.Position{
		"a": {X: 50, Y: 50},
		"b": {X: 50, Y: 50},
		"c": {X: 50, Y: 50},
	}
	out := Relax(in)

	names := []string{"a", "b", "c"}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pi, pj := out[names[i]], out[names[j]]
			dist := math.Hypot(pj.X-pi.X, pj.Y-pi.Y)
			assert.GreaterOrEqual(t, dist, minDistance-0.01, "%s and %s too close", names[i], names[j])
		}
	}
}

func TestDeterministicFallbackEdges_ConnectsCoreToDistAndAccess(t *testing.T) {
	nodes := map[string]Node{
		"core-sw1":   {DeviceName: "core-sw1", Role: "core"},
		"dist-sw1":   {DeviceName: "dist-sw1", Role: "distribution"},
		"access-sw1": {DeviceName: "access-sw1", Role: "access"},
		"router1":    {DeviceName: "router1", Role: "router"},
	}
	edges := deterministicFallbackEdges(nodes)
	assert.Len(t, edges, 2)

	var sawDist, sawAccess bool
	for _, e := range edges {
		assert.Equal(t, "core-sw1", e.A)
		if e.B == "dist-sw1" {
			sawDist = true
		}
		if e.B == "access-sw1" {
			sawAccess = true
		}
	}
	assert.True(t, sawDist)
	assert.True(t, sawAccess)
}
