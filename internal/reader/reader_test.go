package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/schema"
)

func TestDefaultTypeWellKnown(t *testing.T) {
	assert.Equal(t, schema.Unsigned, DefaultType("Classification"))
	assert.Equal(t, 1, DefaultSize("Classification"))
}

func TestDefaultTypeUnknownFallsBackToFloating8(t *testing.T) {
	assert.Equal(t, schema.Floating, DefaultType("SomeVendorField"))
	assert.Equal(t, 8, DefaultSize("SomeVendorField"))
}

func TestPLYGoodMatchesExtensionOnly(t *testing.T) {
	p := NewPLY(nil)
	assert.True(t, p.Good(context.Background(), "cloud.ply"))
	assert.True(t, p.Good(context.Background(), "CLOUD.PLY"))
	assert.False(t, p.Good(context.Background(), "cloud.las"))
}

func TestCanonicalDimName(t *testing.T) {
	assert.Equal(t, "X", canonicalDimName("x"))
	assert.Equal(t, "Red", canonicalDimName("red"))
	assert.Equal(t, "Confidence", canonicalDimName("Confidence"))
}

func TestPathExt(t *testing.T) {
	assert.Equal(t, ".ply", pathExt("a/b/cloud.ply"))
	assert.Equal(t, "", pathExt("noext"))
}

func TestTransformBoundsTranslation(t *testing.T) {
	p := NewPLY(nil)
	b := geometry.Bounds{
		Min: geometry.Point{X: 0, Y: 0, Z: 0},
		Max: geometry.Point{X: 1, Y: 2, Z: 3},
	}
	translate := [16]float64{
		1, 0, 0, 10,
		0, 1, 0, 20,
		0, 0, 1, 30,
		0, 0, 0, 1,
	}

	out := p.TransformBounds(b, translate)
	assert.Equal(t, geometry.Point{X: 10, Y: 20, Z: 30}, out.Min)
	assert.Equal(t, geometry.Point{X: 11, Y: 22, Z: 33}, out.Max)
}

func TestTransformBoundsRotationVisitsCorners(t *testing.T) {
	p := NewPLY(nil)
	b := geometry.Bounds{
		Min: geometry.Point{X: -1, Y: -1, Z: -1},
		Max: geometry.Point{X: 1, Y: 1, Z: 1},
	}
	// Rotate 90 degrees about z: (x,y,z) -> (-y,x,z).
	rotate := [16]float64{
		0, -1, 0, 0,
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}

	out := p.TransformBounds(b, rotate)
	assert.Equal(t, geometry.Point{X: -1, Y: -1, Z: -1}, out.Min)
	assert.Equal(t, geometry.Point{X: 1, Y: 1, Z: 1}, out.Max)
}
