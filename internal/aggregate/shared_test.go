package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/inferr"
)

func TestMergeScaleMinReduces(t *testing.T) {
	s := NewShared(true)
	require.NoError(t, s.MergeScale("a.laz", geometry.Point{X: 0.1, Y: 0.1, Z: 0.1}))
	require.NoError(t, s.MergeScale("b.laz", geometry.Point{X: 0.01, Y: 0.5, Z: 0.2}))

	delta, _, _ := s.Snapshot()
	require.NotNil(t, delta)
	assert.Equal(t, geometry.Point{X: 0.01, Y: 0.1, Z: 0.1}, delta.Scale)
}

func TestMergeScaleRejectsZeroComponent(t *testing.T) {
	s := NewShared(true)
	err := s.MergeScale("a.laz", geometry.Point{X: 0.01, Y: 0, Z: 0.01})
	require.Error(t, err)
	assert.True(t, inferr.Is(err, inferr.InvalidScale))
}

func TestMergeScaleIgnoredWhenDeltaNotAllowed(t *testing.T) {
	s := NewShared(false)
	require.NoError(t, s.MergeScale("a.laz", geometry.Point{X: 0.01, Y: 0.01, Z: 0.01}))
	delta, _, _ := s.Snapshot()
	assert.Nil(t, delta)
}

func TestMergeDimNamesInsertionOrderDeduped(t *testing.T) {
	s := NewShared(true)
	s.MergeDimNames([]string{"X", "Y", "Z"})
	s.MergeDimNames([]string{"Y", "Intensity"})

	_, names, _ := s.Snapshot()
	assert.Equal(t, []string{"X", "Y", "Z", "Intensity"}, names)
}
