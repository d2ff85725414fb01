package config

import (
	"github.com/ecopia-map/pcinfer/internal/cesium"
	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/schema"
)

// Descriptor is the fully resolved build descriptor handed to the
// builder. Ownership of everything in it transfers at the handoff;
// nothing is shared mutable across the boundary.
type Descriptor struct {
	FileInfo       fileinfo.List
	Schema         schema.Schema
	Bounds         geometry.Bounds
	NumPoints      uint64
	Reprojection   *Reprojection
	Delta          *geometry.Delta
	Transformation *cesium.Transform

	// FileStats and PointStats summarize FileInfo for the builder,
	// tallied at resolution time.
	FileStats  fileinfo.FileStats
	PointStats fileinfo.PointStats

	NullDepth uint64
	BaseDepth uint64
	// BumpDepth records the user's original baseDepth when subset
	// accommodation raised it, so the builder knows where user
	// intent was.
	BumpDepth *uint64

	// Continuation is true when an existing build marker was found
	// at the output endpoint: no inference ran, and newly supplied
	// inputs were appended to the existing manifest.
	Continuation bool
}
