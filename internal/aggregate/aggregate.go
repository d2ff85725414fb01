package aggregate

import (
	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/inferr"
)

// Result is the cross-file reduction: everything the schema
// synthesizer and config resolver need that isn't already sitting on
// individual FileInfo records.
type Result struct {
	NumPoints uint64
	Bounds    geometry.Bounds
	SrsList   []string
	DimNames  []string
	Delta     *geometry.Delta
}

// Aggregate reduces the joined probe outputs into a Result, selecting
// the delta offset from the global bounds midpoint and rewriting each
// inserted file's bounds into delta space so downstream consumers see
// quantized coordinates consistently. Runs only after Pool.Join, so
// it observes a stable snapshot.
func Aggregate(list fileinfo.List, shared *Shared) (*Result, error) {
	delta, dimNames, srsList := shared.Snapshot()

	bounds := geometry.Expander
	var numPoints uint64
	var anyInserted bool

	for _, f := range list {
		if f.Status != fileinfo.Inserted {
			continue
		}
		anyInserted = true
		numPoints += f.NumPoints
		bounds = bounds.Grow(*f.Bounds)
	}

	if !anyInserted {
		return nil, inferr.New(inferr.NoValidInputs)
	}
	if numPoints == 0 {
		return nil, inferr.New(inferr.ZeroPoints)
	}
	if bounds.IsExpander() {
		return nil, inferr.New(inferr.NoBounds)
	}

	if delta != nil {
		delta.Offset = geometry.RoundUpToTenOrKeep(bounds.Mid())
		for _, f := range list {
			if f.Status != fileinfo.Inserted {
				continue
			}
			deltified := f.Bounds.Deltify(delta)
			f.Bounds = &deltified
		}
	}

	return &Result{
		NumPoints: numPoints,
		Bounds:    bounds,
		SrsList:   srsList,
		DimNames:  dimNames,
		Delta:     delta,
	}, nil
}
