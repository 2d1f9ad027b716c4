package vlanutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandRange_Empty(t *testing.T) {
	assert.Nil(t, ExpandRange(""))
}

func TestExpandRange_All(t *testing.T) {
	got := ExpandRange("all")
	assert.Len(t, got, MaxVLAN)
	assert.Equal(t, 1, got[0])
	assert.Equal(t, MaxVLAN, got[len(got)-1])
}

func TestExpandRange_AllCaseInsensitive(t *testing.T) {
	got := ExpandRange("ALL")
	assert.Len(t, got, MaxVLAN)
}

func TestExpandRange_CommaAndRangeMix(t *testing.T) {
	got := ExpandRange("10-12,30")
	assert.Equal(t, []int{10, 11, 12, 30}, got)
}

func TestExpandRange_DuplicatesCollapsed(t *testing.T) {
	got := ExpandRange("5,5,6")
	assert.Equal(t, []int{5, 6}, got)
}

func TestCollapseToAll(t *testing.T) {
	assert.True(t, CollapseToAll(ExpandRange("all")))
	assert.False(t, CollapseToAll(ExpandRange("10-12,30")))
}
