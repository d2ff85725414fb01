// Package cesium computes the earth-tangent-plane rigid-body
// transform that re-centers ECEF (EPSG:4978) bounds on a local
// up/north/east frame, so "up" points outward from the center of the
// earth at the dataset's midpoint.
package cesium

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/inferr"
)

// Transform holds the computed rigid-body matrix M = T·R.
type Transform struct {
	matrix *mat.Dense // 4x4, row-major as built
	up     geometry.Point
}

// Up returns the local up vector the transform was built from: the
// transformed z-axis stays parallel to it.
func (t *Transform) Up() geometry.Point { return t.up }

// Matrix returns M in row-major order, the form the reader
// capability's bounds-transform operation consumes.
func (t *Transform) Matrix() [16]float64 {
	var out [16]float64
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row*4+col] = t.matrix.At(row, col)
		}
	}
	return out
}

// Apply maps p through M.
func (t *Transform) Apply(p geometry.Point) geometry.Point {
	v := mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1})
	var out mat.VecDense
	out.MulVec(t.matrix, v)
	return geometry.Point{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// Bounds re-transforms a bounding box by growing over its eight
// corners through Apply — a 4x4 affine does not commute with min/max
// the way a pure translation would, so every corner must be visited.
func (t *Transform) Bounds(b geometry.Bounds) geometry.Bounds {
	out := geometry.Expander
	corners := []geometry.Point{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	for _, c := range corners {
		out = out.GrowPoint(t.Apply(c))
	}
	return out
}

// Compute builds the transform centered on bounds' midpoint: rotate
// so the midpoint's outward radial becomes z, the projected north
// pole becomes y, and their cross product becomes x; then translate
// the rotated midpoint to the origin.
func Compute(bounds geometry.Bounds) (*Transform, error) {
	if bounds.IsExpander() {
		return nil, inferr.New(inferr.MissingBoundsForTransform)
	}

	p := bounds.Mid()
	up := geometry.Normalize(p)

	northPole := geometry.Point{X: 0, Y: 0, Z: 1}
	nRaw := northPole.Sub(up.Scale(geometry.Dot(northPole, up)))
	north := geometry.Normalize(nRaw)

	east := geometry.Cross(north, up)

	r := mat.NewDense(4, 4, []float64{
		east.X, east.Y, east.Z, 0,
		north.X, north.Y, north.Z, 0,
		up.X, up.Y, up.Z, 0,
		0, 0, 0, 1,
	})

	rotatedMid := applyDense(r, p)

	tr := mat.NewDense(4, 4, []float64{
		1, 0, 0, -rotatedMid.X,
		0, 1, 0, -rotatedMid.Y,
		0, 0, 1, -rotatedMid.Z,
		0, 0, 0, 1,
	})

	var m mat.Dense
	m.Mul(tr, r)

	return &Transform{matrix: &m, up: up}, nil
}

func applyDense(m *mat.Dense, p geometry.Point) geometry.Point {
	v := mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1})
	var out mat.VecDense
	out.MulVec(m, v)
	return geometry.Point{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
