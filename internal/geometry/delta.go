package geometry

import (
	"math"

	"github.com/shopspring/decimal"
)

// Delta describes how floating-point coordinates are quantized to
// integers: q = round((p - offset) / scale). Scale defaults to (1,1,1);
// offset is chosen post-aggregation from the bounds center.
type Delta struct {
	Scale  Point
	Offset Point
}

// NewDelta returns a Delta with the default unit scale and a zero offset.
func NewDelta() *Delta {
	return &Delta{Scale: Point{1, 1, 1}}
}

// Quantize maps a native-space point into delta space.
func (d *Delta) Quantize(p Point) Point {
	return Point{
		X: math.Round((p.X - d.Offset.X) / d.Scale.X),
		Y: math.Round((p.Y - d.Offset.Y) / d.Scale.Y),
		Z: math.Round((p.Z - d.Offset.Z) / d.Scale.Z),
	}
}

// Dequantize maps a delta-space point back into native space.
func (d *Delta) Dequantize(p Point) Point {
	return Point{
		X: p.X*d.Scale.X + d.Offset.X,
		Y: p.Y*d.Scale.Y + d.Offset.Y,
		Z: p.Z*d.Scale.Z + d.Offset.Z,
	}
}

// ValidScale reports whether every axis of s is non-zero. A zero scale
// component cannot quantize anything and is fatal to a run.
func ValidScale(s Point) bool {
	return s.X != 0 && s.Y != 0 && s.Z != 0
}

// RoundUpToTenOrKeep selects the delta offset from a bounds midpoint:
// per axis, if the coordinate is already an exact multiple of 10, keep
// it, else round it up (toward +Inf) to the next multiple of 10, for
// negative coordinates as well as positive ones. The delta bounds guarantee at least 20 units of slop, so the
// bump stays safe while producing tidy offsets. Uses
// shopspring/decimal so the "is this a multiple of 10" comparison is
// exact rather than subject to float rounding error.
func RoundUpToTenOrKeep(mid Point) Point {
	return mid.Apply(roundAxis)
}

func roundAxis(v float64) float64 {
	// v's integer part, truncated toward zero.
	whole := decimal.NewFromFloat(v).Truncate(0)
	exact := decimal.NewFromFloat(v).Equal(whole)
	ten := decimal.NewFromInt(10)

	if exact && whole.Mod(ten).IsZero() {
		f, _ := whole.Float64()
		return f
	}

	// ceil(v / 10) * 10: the next multiple of 10 above v, for either sign.
	bumped := decimal.NewFromFloat(v).Div(ten).Ceil().Mul(ten)
	f, _ := bumped.Float64()
	return f
}
