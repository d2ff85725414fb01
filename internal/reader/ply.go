package reader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"unsafe"

	plyfile "github.com/cobaltgray/go-plyfile"

	"github.com/ecopia-map/pcinfer/internal/geometry"
)

// PLY adapts github.com/cobaltgray/go-plyfile into the Capability
// interface. PLY headers carry an exact vertex count and the vertex
// property table, but no bounding box, so Preview never returns
// bounds and every PLY file goes through a full scan.
type PLY struct {
	reproject func(geometry.Point) geometry.Point
}

// NewPLY constructs a PLY capability. reproject may be nil, meaning
// points pass through unchanged.
func NewPLY(reproject func(geometry.Point) geometry.Point) *PLY {
	return &PLY{reproject: reproject}
}

func (p *PLY) Good(ctx context.Context, path string) bool {
	return strings.EqualFold(pathExt(path), ".ply")
}

var plyMagic = []byte("ply")

// checkMagic rejects non-PLY content before handing the file to the
// plyfile binding, which expects a well-formed header.
func checkMagic(localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 3)
	if _, err := f.Read(head); err != nil {
		return err
	}
	if !bytes.Equal(head, plyMagic) {
		return fmt.Errorf("%s: not a ply file", localPath)
	}
	return nil
}

func (p *PLY) Preview(ctx context.Context, localPath string) (*PreviewResult, error) {
	if err := checkMagic(localPath); err != nil {
		return nil, err
	}

	cf, elemNames := plyfile.PlyOpenForReading(localPath)
	defer plyfile.PlyClose(cf)

	for _, name := range elemNames {
		if name != "vertex" {
			continue
		}
		plist, numElems, _ := plyfile.PlyGetElementDescription(cf, name)

		dimNames := make([]string, 0, len(plist))
		for _, prop := range plist {
			dimNames = append(dimNames, canonicalDimName(prop.Name))
		}

		return &PreviewResult{
			NumPoints: uint64(numElems),
			DimNames:  dimNames,
		}, nil
	}

	return nil, fmt.Errorf("%s: no vertex element", localPath)
}

// plyVertex is the read target for PlyGetElement; the property list
// below maps the file's x/y/z onto its fields by offset.
type plyVertex struct {
	X, Y, Z float32
}

var plyVertexProps = []plyfile.PlyProperty{
	{Name: "x", External_type: plyfile.PLY_FLOAT, Internal_type: plyfile.PLY_FLOAT, Offset: int(unsafe.Offsetof(plyVertex{}.X))},
	{Name: "y", External_type: plyfile.PLY_FLOAT, Internal_type: plyfile.PLY_FLOAT, Offset: int(unsafe.Offsetof(plyVertex{}.Y))},
	{Name: "z", External_type: plyfile.PLY_FLOAT, Internal_type: plyfile.PLY_FLOAT, Offset: int(unsafe.Offsetof(plyVertex{}.Z))},
}

func (p *PLY) Run(ctx context.Context, localPath string) (*ScanResult, error) {
	if err := checkMagic(localPath); err != nil {
		return nil, err
	}

	cf, elemNames := plyfile.PlyOpenForReading(localPath)
	defer plyfile.PlyClose(cf)

	bounds := geometry.Expander
	var count uint64

	for _, name := range elemNames {
		if name != "vertex" {
			continue
		}
		_, numElems, _ := plyfile.PlyGetElementDescription(cf, name)

		for i := range plyVertexProps {
			plyfile.PlyGetProperty(cf, name, plyVertexProps[i])
		}

		var v plyVertex
		for i := 0; i < numElems; i++ {
			plyfile.PlyGetElement(cf, &v, unsafe.Sizeof(v))
			pt := geometry.Point{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
			if p.reproject != nil {
				pt = p.reproject(pt)
			}
			bounds = bounds.GrowPoint(pt)
			count++
		}
	}

	return &ScanResult{NumPoints: count, Bounds: bounds}, nil
}

func (p *PLY) Reproject(pt geometry.Point) geometry.Point {
	if p.reproject == nil {
		return pt
	}
	return p.reproject(pt)
}

// TransformBounds visits all eight corners: a general affine does not
// commute with min/max the way a pure translation would, so growing
// over every transformed corner is the only safe reduction.
func (p *PLY) TransformBounds(b geometry.Bounds, matrix [16]float64) geometry.Bounds {
	out := geometry.Expander
	for _, x := range []float64{b.Min.X, b.Max.X} {
		for _, y := range []float64{b.Min.Y, b.Max.Y} {
			for _, z := range []float64{b.Min.Z, b.Max.Z} {
				out = out.GrowPoint(applyMatrix(matrix, geometry.Point{X: x, Y: y, Z: z}))
			}
		}
	}
	return out
}

// applyMatrix multiplies a row-major 4x4 affine with (p, 1).
func applyMatrix(m [16]float64, p geometry.Point) geometry.Point {
	return geometry.Point{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

// canonicalDimName maps a PLY vertex property name onto the schema's
// dimension-name convention (title case, matching LAS dimension
// names), so a run mixing PLY and LAS inputs produces one coherent
// schema instead of duplicate x/X dimensions.
func canonicalDimName(name string) string {
	switch strings.ToLower(name) {
	case "x":
		return "X"
	case "y":
		return "Y"
	case "z":
		return "Z"
	case "red":
		return "Red"
	case "green":
		return "Green"
	case "blue":
		return "Blue"
	default:
		return name
	}
}

func pathExt(p string) string {
	idx := strings.LastIndexByte(p, '.')
	if idx < 0 {
		return ""
	}
	return p[idx:]
}
