package inference

import (
	"encoding/json"

	"github.com/ecopia-map/pcinfer/internal/cesium"
	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/schema"
)

// Reprojection names the input/output SRS pair, and whether the input
// SRS overrides whatever the files declare. It is carried on the result
// and its artifact; the reader capability does not receive it, so
// probes report coordinates in each file's own SRS.
type Reprojection struct {
	In     string `json:"in,omitempty"`
	Out    string `json:"out,omitempty"`
	Hammer bool   `json:"hammer,omitempty"`
}

// Result is everything one inference run learned about its inputs.
// Its JSON form is the on-disk artifact a later run can adopt instead
// of re-probing, so the field names must stay bit-stable.
type Result struct {
	FileInfo       fileinfo.List
	Schema         schema.Schema
	Bounds         geometry.Bounds
	NumPoints      uint64
	SrsList        []string
	Reprojection   *Reprojection
	Delta          *geometry.Delta
	Transformation *cesium.Transform

	// FileStats and PointStats summarize the manifest; recomputed
	// from FileInfo rather than serialized, so they never drift from
	// the entries they describe.
	FileStats  fileinfo.FileStats
	PointStats fileinfo.PointStats
}

type jsonFileInfo struct {
	Path      string          `json:"path"`
	NumPoints uint64          `json:"numPoints"`
	Bounds    []float64       `json:"bounds,omitempty"`
	Srs       string          `json:"srs,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

type jsonDimInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

type jsonResult struct {
	FileInfo     []jsonFileInfo `json:"fileInfo"`
	Schema       []jsonDimInfo  `json:"schema"`
	Bounds       []float64      `json:"bounds"`
	NumPoints    uint64         `json:"numPoints"`
	Reprojection *Reprojection  `json:"reprojection,omitempty"`
	Scale        []float64      `json:"scale,omitempty"`
	Offset       []float64      `json:"offset,omitempty"`
}

// ToJSON serializes Result into the stable artifact layout. The delta
// is flattened into separate scale and offset arrays, emitted only
// when a delta is active.
func (r *Result) ToJSON() ([]byte, error) {
	out := jsonResult{
		Bounds:       boundsSlice(r.Bounds),
		NumPoints:    r.NumPoints,
		Reprojection: r.Reprojection,
	}

	for _, fi := range r.FileInfo {
		if fi.Status != fileinfo.Inserted {
			continue
		}
		jf := jsonFileInfo{
			Path:      fi.Path,
			NumPoints: fi.NumPoints,
			Srs:       fi.Srs,
			Metadata:  fi.Metadata,
		}
		if fi.Bounds != nil {
			jf.Bounds = boundsSlice(*fi.Bounds)
		}
		out.FileInfo = append(out.FileInfo, jf)
	}

	for _, d := range r.Schema {
		out.Schema = append(out.Schema, jsonDimInfo{Name: d.Name, Type: string(d.Type), Size: d.Size})
	}

	if r.Delta != nil {
		out.Scale = []float64{r.Delta.Scale.X, r.Delta.Scale.Y, r.Delta.Scale.Z}
		out.Offset = []float64{r.Delta.Offset.X, r.Delta.Offset.Y, r.Delta.Offset.Z}
	}

	return json.Marshal(out)
}

func boundsSlice(b geometry.Bounds) []float64 {
	return []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z}
}

func boundsFromSlice(v []float64) geometry.Bounds {
	return geometry.Bounds{
		Min: geometry.Point{X: v[0], Y: v[1], Z: v[2]},
		Max: geometry.Point{X: v[3], Y: v[4], Z: v[5]},
	}
}

// FromJSON parses a previously serialized Result. Inputs with the
// .entwine-inference extension are read back this way instead of
// being re-probed.
func FromJSON(data []byte) (*Result, error) {
	var in jsonResult
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	result := &Result{
		Bounds:       boundsFromSlice(in.Bounds),
		NumPoints:    in.NumPoints,
		Reprojection: in.Reprojection,
	}

	for _, jf := range in.FileInfo {
		fi := fileinfo.NewOutstanding(jf.Path, 0)
		fi.Srs = jf.Srs
		fi.Metadata = jf.Metadata
		if len(jf.Bounds) == 6 {
			fi.MarkInserted(jf.NumPoints, boundsFromSlice(jf.Bounds))
		} else {
			fi.MarkInserted(jf.NumPoints, geometry.Bounds{})
		}
		result.FileInfo = append(result.FileInfo, fi)
	}

	for _, jd := range in.Schema {
		result.Schema = append(result.Schema, schema.DimInfo{
			Name: jd.Name,
			Type: schema.DimType(jd.Type),
			Size: jd.Size,
		})
	}

	if len(in.Scale) == 3 && len(in.Offset) == 3 {
		result.Delta = &geometry.Delta{
			Scale:  geometry.Point{X: in.Scale[0], Y: in.Scale[1], Z: in.Scale[2]},
			Offset: geometry.Point{X: in.Offset[0], Y: in.Offset[1], Z: in.Offset[2]},
		}
	}

	result.FileStats, result.PointStats = fileinfo.Tally(result.FileInfo)

	return result, nil
}
