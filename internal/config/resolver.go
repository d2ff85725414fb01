package config

import (
	"context"
	"fmt"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ecopia-map/pcinfer/internal/blob"
	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/inference"
	"github.com/ecopia-map/pcinfer/internal/log"
	"github.com/ecopia-map/pcinfer/internal/pathresolver"
	"github.com/ecopia-map/pcinfer/internal/reader"
	"github.com/ecopia-map/pcinfer/internal/schemabuild"
	"github.com/ecopia-map/pcinfer/internal/subset"
)

const buildMarkerName = "entwine"

var validate = validator.New()

// Merge layers defaults under the user-supplied configuration through
// viper. User-set values win; the defaulted pointer fields
// (TrustHeaders, Compress, NullDepth, BaseDepth) are guaranteed non-nil
// afterward, while NumPointsHint, Reprojection and Subset stay nil
// unless the user set them.
func Merge(user Raw) (Raw, error) {
	v := viper.New()
	if err := v.MergeConfigMap(structToMap(Defaults())); err != nil {
		return Raw{}, fmt.Errorf("config: merge defaults: %w", err)
	}
	if err := v.MergeConfigMap(structToMap(user)); err != nil {
		return Raw{}, fmt.Errorf("config: merge user config: %w", err)
	}

	var merged Raw
	if err := v.Unmarshal(&merged); err != nil {
		return Raw{}, fmt.Errorf("config: unmarshal merged config: %w", err)
	}

	return merged, nil
}

// structToMap turns a Raw layer into the map form viper merges. Unset
// fields are omitted so they never shadow a lower layer: zero scalars
// mean "not set" (a zero thread count is never a real setting), and
// the pointer fields carry explicit zeros when the caller means them.
func structToMap(r Raw) map[string]interface{} {
	out := map[string]interface{}{
		"prefixIds": r.PrefixIds,
		"force":     r.Force,
		"verbose":   r.Verbose,
		"absolute":  r.Absolute,
	}
	if r.Tmp != "" {
		out["tmp"] = r.Tmp
	}
	if r.Threads != 0 {
		out["threads"] = r.Threads
	}
	if r.PointsPerChunk != 0 {
		out["pointsPerChunk"] = r.PointsPerChunk
	}
	if r.Output != "" {
		out["output"] = r.Output
	}
	if len(r.Input) > 0 {
		out["input"] = r.Input
	}
	if r.TrustHeaders != nil {
		out["trustHeaders"] = *r.TrustHeaders
	}
	if r.Compress != nil {
		out["compress"] = *r.Compress
	}
	if r.NullDepth != nil {
		out["nullDepth"] = *r.NullDepth
	}
	if r.BaseDepth != nil {
		out["baseDepth"] = *r.BaseDepth
	}
	if r.NumPointsHint != nil {
		out["numPointsHint"] = *r.NumPointsHint
	}
	if len(r.Bounds) > 0 {
		out["bounds"] = r.Bounds
	}
	if len(r.Schema) > 0 {
		out["schema"] = r.Schema
	}
	if len(r.Scale) > 0 {
		out["scale"] = r.Scale
	}
	if len(r.Offset) > 0 {
		out["offset"] = r.Offset
	}
	if r.Reprojection != nil {
		out["reprojection"] = map[string]interface{}{"in": r.Reprojection.In, "out": r.Reprojection.Out, "hammer": r.Reprojection.Hammer}
	}
	if r.Subset != nil {
		out["subset"] = map[string]interface{}{"id": r.Subset.ID, "of": r.Subset.Of}
	}
	if r.Formats.Cesium.Enabled {
		out["formats"] = map[string]interface{}{"cesium": map[string]interface{}{"enabled": true}}
	}
	return out
}

// Resolve merges the configuration, short-circuits on an existing
// build, runs inference when bounds/schema/numPointsHint are not all
// supplied, accommodates a subset's minimum depths, and emits the
// final Descriptor.
func Resolve(ctx context.Context, ep blob.Endpoint, cap reader.Capability, user Raw) (*Descriptor, error) {
	raw, err := Merge(user)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	// Normalize input. A previously serialized inference artifact
	// among the inputs is adopted rather than probed: its fields fill
	// any configuration the user left unset.
	paths, err := pathresolver.Resolve(ctx, ep, raw.Input)
	if err != nil {
		return nil, err
	}

	var adopted *inference.Result
	var remaining []string
	for _, p := range paths {
		if pathresolver.IsInferenceFile(p) {
			data, err := ep.GetBinary(ctx, p)
			if err != nil {
				return nil, err
			}
			adopted, err = inference.FromJSON(data)
			if err != nil {
				return nil, err
			}
			continue
		}
		remaining = append(remaining, p)
	}
	if adopted != nil {
		adoptInto(&raw, adopted)
	}

	// An existing build marker at the output short-circuits the rest
	// of resolution: this is a continuation, and newly supplied input
	// paths are appended to the existing manifest.
	markerName := buildMarkerName
	if raw.Subset != nil {
		markerName = fmt.Sprintf("%s-%d", buildMarkerName, raw.Subset.ID)
	}
	markerPath := path.Join(raw.Output, markerName)
	if !raw.Force {
		if data, err := ep.GetBinary(ctx, markerPath); err == nil {
			existing, err := inference.FromJSON(data)
			if err != nil {
				return nil, err
			}
			existing.FileInfo = append(existing.FileInfo, newOutstandingAll(remaining)...)
			fileStats, pointStats := fileinfo.Tally(existing.FileInfo)
			return &Descriptor{
				FileInfo:     existing.FileInfo,
				Schema:       existing.Schema,
				Bounds:       existing.Bounds,
				NumPoints:    existing.NumPoints,
				Delta:        existing.Delta,
				FileStats:    fileStats,
				PointStats:   pointStats,
				NullDepth:    *raw.NullDepth,
				BaseDepth:    *raw.BaseDepth,
				Continuation: true,
			}, nil
		}
	}

	// Cesium output forces absolute coordinates and ECEF output.
	if raw.Formats.Cesium.Enabled {
		raw.Absolute = true
		if raw.Reprojection == nil {
			raw.Reprojection = &Reprojection{}
		}
		raw.Reprojection.Out = "EPSG:4978"
	}

	// A user-supplied scale fixes the quantization up front; inferred
	// scales only come into play through the inference run below.
	var delta *geometry.Delta
	if !raw.Absolute && len(raw.Scale) == 3 {
		d := geometry.NewDelta()
		d.Scale = geometry.Point{X: raw.Scale[0], Y: raw.Scale[1], Z: raw.Scale[2]}
		if len(raw.Offset) == 3 {
			d.Offset = geometry.Point{X: raw.Offset[0], Y: raw.Offset[1], Z: raw.Offset[2]}
		}
		delta = d
	}

	// Inference is required iff bounds, schema, or the point-count
	// hint is missing.
	needsInference := len(raw.Bounds) == 0 || len(raw.Schema) == 0 || raw.NumPointsHint == nil

	var descriptor *Descriptor
	if needsInference {
		log.Output("bounds/schema/numPointsHint incomplete, running inference")
		inf := inference.New(inference.Options{
			Endpoint:     ep,
			Capability:   cap,
			Threads:      raw.Threads,
			TrustHeaders: *raw.TrustHeaders,
			DeltaAllowed: !raw.Absolute,
			Cesium:       raw.Formats.Cesium.Enabled,
			Reprojection: raw.Reprojection,
		})
		result, err := inf.Go(ctx, remaining)
		if err != nil {
			return nil, err
		}
		descriptor = &Descriptor{
			FileInfo:       result.FileInfo,
			Schema:         result.Schema,
			Bounds:         result.Bounds,
			NumPoints:      result.NumPoints,
			Delta:          result.Delta,
			Transformation: result.Transformation,
			FileStats:      result.FileStats,
			PointStats:     result.PointStats,
		}
	} else {
		manifest := newOutstandingAll(remaining)
		if adopted != nil {
			if delta == nil {
				delta = adopted.Delta
			}
			manifest = append(adopted.FileInfo, manifest...)
		}

		bounds := boundsFrom(raw.Bounds)
		s := schemabuild.Build(raw.Schema, schemabuild.Options{
			Bounds:        bounds,
			Delta:         delta,
			MaxFilePoints: maxFilePoints(manifest, *raw.NumPointsHint),
			FileCount:     uint64(len(manifest)),
		})

		fileStats, pointStats := fileinfo.Tally(manifest)
		descriptor = &Descriptor{
			FileInfo:   manifest,
			Schema:     s,
			Bounds:     bounds,
			NumPoints:  *raw.NumPointsHint,
			Delta:      delta,
			FileStats:  fileStats,
			PointStats: pointStats,
		}
	}

	if raw.Reprojection != nil {
		descriptor.Reprojection = raw.Reprojection
	}

	// Subset accommodation: bump the configured depths up to the
	// slice's minima, remembering the user's original base depth so
	// the builder knows where user intent was.
	nullDepth, baseDepth := *raw.NullDepth, *raw.BaseDepth
	var bumpDepth *uint64
	if raw.Subset != nil {
		s, err := subset.New(raw.Subset.ID, raw.Subset.Of)
		if err != nil {
			return nil, err
		}
		minNull := s.MinimumNullDepth()
		minBase := s.MinimumBaseDepth(raw.PointsPerChunk)
		if nullDepth < minNull {
			if raw.Verbose {
				log.Outputf("bumping null depth to accommodate subset: %d", minNull)
			}
			nullDepth = minNull
		}
		if baseDepth < minBase {
			if raw.Verbose {
				log.Outputf("bumping base depth to accommodate subset: %d", minBase)
			}
			original := *raw.BaseDepth
			bumpDepth = &original
			baseDepth = minBase
		}
	}
	descriptor.NullDepth = nullDepth
	descriptor.BaseDepth = baseDepth
	descriptor.BumpDepth = bumpDepth

	return descriptor, nil
}

// adoptInto fills configuration the user left unset from a previously
// serialized inference result. PointId and OriginId are dropped from
// the adopted dimension names — schema synthesis re-appends them with
// sizes computed for this run.
func adoptInto(raw *Raw, result *inference.Result) {
	if len(raw.Bounds) == 0 {
		raw.Bounds = []float64{result.Bounds.Min.X, result.Bounds.Min.Y, result.Bounds.Min.Z, result.Bounds.Max.X, result.Bounds.Max.Y, result.Bounds.Max.Z}
	}
	if len(raw.Schema) == 0 {
		for _, d := range result.Schema {
			if d.Name == "PointId" || d.Name == "OriginId" {
				continue
			}
			raw.Schema = append(raw.Schema, d.Name)
		}
	}
	if raw.NumPointsHint == nil {
		n := result.NumPoints
		raw.NumPointsHint = &n
	}
	if raw.Reprojection == nil && result.Reprojection != nil {
		raw.Reprojection = result.Reprojection
	}
	if len(raw.Scale) == 0 && result.Delta != nil {
		raw.Scale = []float64{result.Delta.Scale.X, result.Delta.Scale.Y, result.Delta.Scale.Z}
		raw.Offset = []float64{result.Delta.Offset.X, result.Delta.Offset.Y, result.Delta.Offset.Z}
	}
}

// maxFilePoints is the largest single manifest entry's point count,
// falling back to the run-wide hint when no entry carries one.
func maxFilePoints(list fileinfo.List, hint uint64) uint64 {
	var max uint64
	for _, f := range list {
		if f.NumPoints > max {
			max = f.NumPoints
		}
	}
	if max == 0 {
		return hint
	}
	return max
}

func newOutstandingAll(paths []string) fileinfo.List {
	out := make(fileinfo.List, len(paths))
	for i, p := range paths {
		out[i] = fileinfo.NewOutstanding(p, uint64(i))
	}
	return out
}

func boundsFrom(v []float64) geometry.Bounds {
	return geometry.Bounds{
		Min: geometry.Point{X: v[0], Y: v[1], Z: v[2]},
		Max: geometry.Point{X: v[3], Y: v[4], Z: v[5]},
	}
}
