package cesium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pcinfer/internal/geometry"
)

const epsilon = 1e-6

func approxPoint(t *testing.T, want, got geometry.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, epsilon)
	assert.InDelta(t, want.Y, got.Y, epsilon)
	assert.InDelta(t, want.Z, got.Z, epsilon)
}

func TestComputeEquatorPoint(t *testing.T) {
	equator := geometry.Point{X: 6378137, Y: 0, Z: 0}
	bounds := geometry.Bounds{Min: equator, Max: equator}

	tr, err := Compute(bounds)
	require.NoError(t, err)

	approxPoint(t, geometry.Point{X: 1, Y: 0, Z: 0}, tr.Up())
	approxPoint(t, geometry.Point{}, tr.Apply(equator))
}

func TestComputeRejectsExpanderBounds(t *testing.T) {
	_, err := Compute(geometry.Expander)
	require.Error(t, err)
}

func TestComputeTransformedZAxisParallelToUp(t *testing.T) {
	bounds := geometry.Bounds{
		Min: geometry.Point{X: 6378137, Y: -1000, Z: -1000},
		Max: geometry.Point{X: 6378137, Y: 1000, Z: 1000},
	}
	tr, err := Compute(bounds)
	require.NoError(t, err)

	origin := tr.Apply(bounds.Mid())
	up := tr.Apply(bounds.Mid().Add(tr.Up()))
	normalizedZ := geometry.Normalize(up.Sub(origin))

	assert.InDelta(t, 0, normalizedZ.X, epsilon)
	assert.InDelta(t, 0, normalizedZ.Y, epsilon)
	assert.InDelta(t, 1, normalizedZ.Z, epsilon)
}

func TestBoundsRetransformsAllCorners(t *testing.T) {
	bounds := geometry.Bounds{
		Min: geometry.Point{X: 6378137 - 10, Y: -10, Z: -10},
		Max: geometry.Point{X: 6378137 + 10, Y: 10, Z: 10},
	}
	tr, err := Compute(bounds)
	require.NoError(t, err)

	out := tr.Bounds(bounds)
	assert.False(t, out.IsExpander())
}
