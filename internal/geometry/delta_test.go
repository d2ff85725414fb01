package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScaleRejectsZeroComponent(t *testing.T) {
	assert.False(t, ValidScale(Point{X: 0.01, Y: 0, Z: 0.01}))
	assert.True(t, ValidScale(Point{X: 0.01, Y: 0.01, Z: 0.01}))
}

func TestRoundUpToTenOrKeep_AlreadyMultiple(t *testing.T) {
	got := RoundUpToTenOrKeep(Point{X: 20, Y: -10, Z: 0})
	assert.Equal(t, Point{X: 20, Y: -10, Z: 0}, got)
}

func TestRoundUpToTenOrKeep_RoundsUp(t *testing.T) {
	got := RoundUpToTenOrKeep(Point{X: 12.7, Y: 3.5, Z: 4.5})
	assert.Equal(t, Point{X: 20, Y: 10, Z: 10}, got)
}

func TestRoundUpToTenOrKeep_WithinTenOfMid(t *testing.T) {
	mid := Point{X: 2.5, Y: 3.5, Z: 4.5}
	got := RoundUpToTenOrKeep(mid)
	assert.LessOrEqual(t, got.X-mid.X, 10.0)
	assert.LessOrEqual(t, got.Y-mid.Y, 10.0)
	assert.LessOrEqual(t, got.Z-mid.Z, 10.0)
}

func TestQuantizeDequantize(t *testing.T) {
	d := &Delta{Scale: Point{0.01, 0.01, 0.01}, Offset: Point{100, 100, 100}}
	q := d.Quantize(Point{X: 101.005})
	back := d.Dequantize(q)
	assert.InDelta(t, 101.005, back.X, 0.01)
}
