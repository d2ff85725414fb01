// Package inference runs the full metadata-inference pipeline: path
// resolution, parallel per-file probes, cross-file aggregation,
// schema synthesis, and the optional earth-tangent-plane transform,
// behind a single Inference.Go() entry point.
package inference

import (
	"context"

	"github.com/ecopia-map/pcinfer/internal/aggregate"
	"github.com/ecopia-map/pcinfer/internal/blob"
	"github.com/ecopia-map/pcinfer/internal/cesium"
	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/inferr"
	"github.com/ecopia-map/pcinfer/internal/log"
	"github.com/ecopia-map/pcinfer/internal/pathresolver"
	"github.com/ecopia-map/pcinfer/internal/pool"
	"github.com/ecopia-map/pcinfer/internal/probe"
	"github.com/ecopia-map/pcinfer/internal/reader"
	"github.com/ecopia-map/pcinfer/internal/schemabuild"
)

// Options configures one Inference instance.
type Options struct {
	Endpoint     blob.Endpoint
	Capability   reader.Capability
	Threads      int
	TrustHeaders bool
	DeltaAllowed bool
	Cesium       bool
	Reprojection *Reprojection
}

// Inference runs exactly once per instance; a second call to Go
// returns DoubleRun rather than silently re-running.
type Inference struct {
	opts Options
	ran  bool
}

// New constructs an Inference ready for one Go() call.
func New(opts Options) *Inference {
	return &Inference{opts: opts}
}

// Go resolves inputs, probes every file on the worker pool, reduces
// the results, and synthesizes the final schema, optionally
// re-centering everything through the Cesium transform.
func (inf *Inference) Go(ctx context.Context, inputs []string) (*Result, error) {
	if inf.ran {
		return nil, inferr.New(inferr.DoubleRun)
	}
	inf.ran = true

	paths, err := pathresolver.Resolve(ctx, inf.opts.Endpoint, inputs)
	if err != nil {
		return nil, err
	}

	manifest := make(fileinfo.List, len(paths))
	for i, p := range paths {
		manifest[i] = fileinfo.NewOutstanding(p, uint64(i))
	}

	shared := aggregate.NewShared(inf.opts.DeltaAllowed)
	threads := inf.opts.Threads
	if threads <= 0 {
		threads = 8
	}

	p := pool.New(ctx, threads)
	for _, fi := range manifest {
		fi := fi
		p.Submit(func(ctx context.Context) error {
			return probe.Run(ctx, probe.Options{
				Endpoint:     inf.opts.Endpoint,
				Capability:   inf.opts.Capability,
				Shared:       shared,
				TrustHeaders: inf.opts.TrustHeaders,
			}, fi)
		})
	}
	if err := p.Join(); err != nil {
		return nil, err
	}

	agg, err := aggregate.Aggregate(manifest, shared)
	if err != nil {
		return nil, err
	}

	var maxFilePoints uint64
	for _, fi := range manifest {
		if fi.NumPoints > maxFilePoints {
			maxFilePoints = fi.NumPoints
		}
	}

	s := schemabuild.Build(agg.DimNames, schemabuild.Options{
		Bounds:        agg.Bounds,
		Delta:         agg.Delta,
		MaxFilePoints: maxFilePoints,
		FileCount:     uint64(len(manifest)),
	})
	if err := s.Validate(); err != nil {
		return nil, inferr.Wrap(inferr.EmptySchema, "", err)
	}

	result := &Result{
		FileInfo:     manifest,
		Schema:       s,
		Bounds:       agg.Bounds,
		NumPoints:    agg.NumPoints,
		Delta:        agg.Delta,
		SrsList:      agg.SrsList,
		Reprojection: inf.opts.Reprojection,
	}
	result.FileStats, result.PointStats = fileinfo.Tally(manifest)

	if inf.opts.Cesium {
		transform, err := cesium.Compute(agg.Bounds)
		if err != nil {
			return nil, err
		}
		if err := reTransform(inf.opts.Capability, transform, result); err != nil {
			return nil, err
		}
	}

	log.Outputf("inference complete: %d files, %d points", len(manifest), result.NumPoints)
	return result, nil
}

// reTransform pushes every inserted file's bounds through the reader
// capability's bounds-transform operation, then recomputes global
// bounds by folding grow over the transformed results.
func reTransform(cap reader.Capability, transform *cesium.Transform, result *Result) error {
	matrix := transform.Matrix()
	global := geometry.Expander

	for _, fi := range result.FileInfo {
		if fi.Status != fileinfo.Inserted {
			continue
		}
		if fi.Bounds == nil {
			return inferr.WithPath(inferr.MissingBoundsForTransform, fi.Path)
		}
		transformed := cap.TransformBounds(*fi.Bounds, matrix)
		fi.Bounds = &transformed
		global = global.Grow(transformed)
	}

	result.Bounds = global
	result.Transformation = transform
	return nil
}
