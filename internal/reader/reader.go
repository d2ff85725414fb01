// Package reader defines the pluggable per-format capability to
// recognize, preview, and fully scan one point-cloud file. The
// inference pipeline only ever talks to this interface; format
// details stay behind it.
package reader

import (
	"context"
	"encoding/json"

	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/schema"
)

// PreviewResult is the cheap, header-only probe outcome: metadata
// read without scanning every point. Bounds is nil when the format's
// header carries no bounding box (PLY, for one) — callers must fall
// back to a full scan in that case even when headers are trusted.
type PreviewResult struct {
	NumPoints uint64
	Bounds    *geometry.Bounds
	Srs       string
	DimNames  []string
	Scale     *geometry.Point
	Metadata  json.RawMessage
}

// ScanResult is the outcome of a full point-by-point pass, used when
// the header lacks (or cannot be trusted for) count and bounds.
type ScanResult struct {
	NumPoints uint64
	Bounds    geometry.Bounds
}

// Capability is the per-format driver interface.
type Capability interface {
	// Good reports whether this capability can handle the file at
	// path at all (extension sniff). Paths that fail Good are
	// omitted from the run, not errored.
	Good(ctx context.Context, path string) bool

	// Preview extracts header metadata without a full scan. Callers
	// try Preview first; whether its output is trusted as-is or only
	// used to seed a fallback Run depends on the run's trustHeaders
	// setting and on whether the preview carried bounds.
	Preview(ctx context.Context, localPath string) (*PreviewResult, error)

	// Run performs a full point-by-point scan, computing exact point
	// count and bounds without retaining the data.
	Run(ctx context.Context, localPath string) (*ScanResult, error)

	// Reproject maps p from the file's own SRS into the run's common
	// SRS. Returns p unchanged when no reprojection is configured.
	Reproject(p geometry.Point) geometry.Point

	// TransformBounds applies a 4x4 row-major affine matrix to
	// bounds. The inference pipeline routes the earth-tangent-plane
	// re-transform through this operation rather than applying the
	// matrix itself, keeping geometric transforms the reader's
	// concern.
	TransformBounds(b geometry.Bounds, matrix [16]float64) geometry.Bounds
}

// DefaultType returns the storage class a dimension named name is
// assigned when no file-level numeric-type metadata is available.
// Unknown names fall back to floating — a deliberate lenience, since
// widening never loses data.
func DefaultType(name string) schema.DimType {
	if t, ok := wellKnownTypes[name]; ok {
		return t
	}
	return schema.Floating
}

// DefaultSize is the paired byte width for DefaultType's fallback.
func DefaultSize(name string) int {
	if s, ok := wellKnownSizes[name]; ok {
		return s
	}
	return 8
}
