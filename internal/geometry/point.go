// Package geometry holds the coordinate primitives shared by every stage
// of the inference pipeline: points, axis-aligned bounds, and the
// fixed-point quantization descriptor (Delta).
package geometry

import "math"

// Point is a triple of double-precision coordinates. It doubles as a
// vector type for the Cesium transform math in internal/cesium.
type Point struct {
	X, Y, Z float64
}

// Min returns the componentwise minimum of a and b.
func Min(a, b Point) Point {
	return Point{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		Z: math.Min(a.Z, b.Z),
	}
}

// Max returns the componentwise maximum of a and b.
func Max(a, b Point) Point {
	return Point{
		X: math.Max(a.X, b.X),
		Y: math.Max(a.Y, b.Y),
		Z: math.Max(a.Z, b.Z),
	}
}

// Add returns the componentwise sum.
func (p Point) Add(o Point) Point {
	return Point{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Sub returns the componentwise difference p - o.
func (p Point) Sub(o Point) Point {
	return Point{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// Scale multiplies every component by s.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s, p.Z * s}
}

// Dot returns the dot product of a and b.
func Dot(a, b Point) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a x b.
func Cross(a, b Point) Point {
	return Point{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Length returns the Euclidean norm of p.
func (p Point) Length() float64 {
	return math.Sqrt(Dot(p, p))
}

// Normalize returns p scaled to unit length. The zero vector is returned
// unchanged rather than producing NaNs.
func Normalize(p Point) Point {
	l := p.Length()
	if l == 0 {
		return p
	}
	return p.Scale(1 / l)
}

// Apply maps f over each component.
func (p Point) Apply(f func(float64) float64) Point {
	return Point{f(p.X), f(p.Y), f(p.Z)}
}
