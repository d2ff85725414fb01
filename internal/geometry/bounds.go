package geometry

import "math"

// Bounds is an axis-aligned box described by its min and max corners.
type Bounds struct {
	Min, Max Point
}

// Expander is the sentinel "never grown" bounds: min=+Inf, max=-Inf on
// every axis, so that the first Grow call produces a correct result.
// Every bounds accumulator starts from it; equality to it is the
// "never grown" signal.
var Expander = Bounds{
	Min: Point{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
	Max: Point{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
}

// IsExpander reports whether b is still the un-grown sentinel, meaning
// no bounds were ever observed.
func (b Bounds) IsExpander() bool {
	return b == Expander
}

// GrowPoint returns b expanded to contain p.
func (b Bounds) GrowPoint(p Point) Bounds {
	return Bounds{Min: Min(b.Min, p), Max: Max(b.Max, p)}
}

// Grow returns b expanded to contain o.
func (b Bounds) Grow(o Bounds) Bounds {
	return Bounds{Min: Min(b.Min, o.Min), Max: Max(b.Max, o.Max)}
}

// Mid returns the midpoint of b.
func (b Bounds) Mid() Point {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains reports whether o lies entirely within b.
func (b Bounds) Contains(o Bounds) bool {
	return b.Min.X <= o.Min.X && b.Min.Y <= o.Min.Y && b.Min.Z <= o.Min.Z &&
		b.Max.X >= o.Max.X && b.Max.Y >= o.Max.Y && b.Max.Z >= o.Max.Z
}

// Cubeify expands b to a cube centered on its own midpoint, or, when a
// delta is supplied, centered on the delta's offset (so the quantized
// cube brackets the origin consistently across files). The cube's half
// extent is the largest half-extent of the three axes.
func (b Bounds) Cubeify(delta *Delta) Bounds {
	center := b.Mid()
	if delta != nil {
		center = delta.Offset
	}

	half := math.Max(b.Max.X-b.Min.X, math.Max(b.Max.Y-b.Min.Y, b.Max.Z-b.Min.Z)) / 2

	// The cube must still contain b even when centered away from b's
	// own midpoint (delta offset case): grow half until it does.
	for _, d := range []float64{
		math.Abs(b.Min.X - center.X), math.Abs(b.Max.X - center.X),
		math.Abs(b.Min.Y - center.Y), math.Abs(b.Max.Y - center.Y),
		math.Abs(b.Min.Z - center.Z), math.Abs(b.Max.Z - center.Z),
	} {
		if d > half {
			half = d
		}
	}

	return Bounds{
		Min: Point{center.X - half, center.Y - half, center.Z - half},
		Max: Point{center.X + half, center.Y + half, center.Z + half},
	}
}

// Deltify quantizes b's corners into the fixed-point space described by
// d: q = round((p - offset) / scale).
func (b Bounds) Deltify(d *Delta) Bounds {
	if d == nil {
		return b
	}
	return Bounds{Min: d.Quantize(b.Min), Max: d.Quantize(b.Max)}
}

// Undeltify reverses Deltify. A nil delta is the identity transform.
func (b Bounds) Undeltify(d *Delta) Bounds {
	if d == nil {
		return b
	}
	return Bounds{Min: d.Dequantize(b.Min), Max: d.Dequantize(b.Max)}
}
