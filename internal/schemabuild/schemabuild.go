// Package schemabuild synthesizes the final point schema from the
// aggregated dimension names: native or quantized X/Y/Z first, the
// remaining dimensions in first-sighting order, then the synthetic
// PointId and OriginId.
package schemabuild

import (
	"math"

	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/reader"
	"github.com/ecopia-map/pcinfer/internal/schema"
)

const uint32Max = uint64(math.MaxUint32)

// Options supplies everything schema synthesis needs beyond the
// aggregated dimension names.
type Options struct {
	Bounds        geometry.Bounds
	Delta         *geometry.Delta
	MaxFilePoints uint64 // largest single file's point count, for PointId sizing
	FileCount     uint64 // manifest slot count, omitted files included, for OriginId sizing
}

// Build synthesizes the final Schema from dimNames in aggregated
// order.
func Build(dimNames []string, opts Options) schema.Schema {
	var out schema.Schema

	for _, name := range dimNames {
		if name == "X" || name == "Y" || name == "Z" {
			continue // replaced below, under delta, or re-appended as-is.
		}
		out = append(out, schema.DimInfo{
			Name: name,
			Type: reader.DefaultType(name),
			Size: reader.DefaultSize(name),
		})
	}

	xyz := xyzDims(opts.Bounds, opts.Delta)
	out = append(xyz, out...)

	pointIDSize := 4
	if opts.MaxFilePoints > uint32Max {
		pointIDSize = 8
	}
	out = append(out, schema.DimInfo{Name: "PointId", Type: schema.Unsigned, Size: pointIDSize})

	originIDSize := 4
	if opts.FileCount > uint32Max {
		originIDSize = 8
	}
	out = append(out, schema.DimInfo{Name: "OriginId", Type: schema.Unsigned, Size: originIDSize})

	return out
}

// xyzDims returns X, Y, Z in their native floating/8 form, or as
// signed integer dims sized to cover the cubified bounds when a
// delta is active.
func xyzDims(bounds geometry.Bounds, delta *geometry.Delta) schema.Schema {
	if delta == nil {
		return schema.Schema{
			{Name: "X", Type: schema.Floating, Size: 8},
			{Name: "Y", Type: schema.Floating, Size: 8},
			{Name: "Z", Type: schema.Floating, Size: 8},
		}
	}

	cube := bounds.Cubeify(delta)
	extent := cube.Max.Sub(cube.Min)

	return schema.Schema{
		{Name: "X", Type: schema.Signed, Size: integerSizeForExtent(extent.X, delta.Scale.X)},
		{Name: "Y", Type: schema.Signed, Size: integerSizeForExtent(extent.Y, delta.Scale.Y)},
		{Name: "Z", Type: schema.Signed, Size: integerSizeForExtent(extent.Z, delta.Scale.Z)},
	}
}

// integerSizeForExtent returns 4 if the quantized range fits a
// signed 32-bit integer, else 8.
func integerSizeForExtent(extent, scale float64) int {
	if scale == 0 {
		return 8
	}
	quantizedRange := extent / scale
	if quantizedRange <= float64(math.MaxInt32) {
		return 4
	}
	return 8
}
