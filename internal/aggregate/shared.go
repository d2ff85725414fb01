// Package aggregate implements the cross-file reduction stage: the
// Shared state probe tasks mutate under one lock during metadata
// merge, and the Aggregate function that reduces the joined results
// into global bounds, count, SRS list, and delta.
package aggregate

import (
	"sync"

	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/inferr"
	"github.com/ecopia-map/pcinfer/internal/log"
)

// Shared is the single mutex-guarded record every probe task folds
// its metadata into. The lock is held only during metadata merge,
// never across I/O or scanning.
type Shared struct {
	mu sync.Mutex

	delta        *geometry.Delta
	deltaAllowed bool

	dimNames []string
	dimSeen  map[string]bool

	srsList []string
	srsSeen map[string]bool
}

// NewShared constructs an empty Shared record. When deltaAllowed is
// false (absolute-coordinate runs), scales reported by files are
// still validated but no delta is ever created.
func NewShared(deltaAllowed bool) *Shared {
	return &Shared{
		deltaAllowed: deltaAllowed,
		dimSeen:      make(map[string]bool),
		srsSeen:      make(map[string]bool),
	}
}

// MergeSRS folds srs into the global deduplicated SRS list,
// preserving first-seen order.
func (s *Shared) MergeSRS(srs string) {
	if srs == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.srsSeen[srs] {
		s.srsSeen[srs] = true
		s.srsList = append(s.srsList, srs)
	}
}

// MergeScale validates scale is nonzero on every axis, then
// min-reduces it into the global delta: the finest (smallest)
// per-axis scale wins. Returns InvalidScale if any component is
// zero.
func (s *Shared) MergeScale(path string, scale geometry.Point) error {
	if !geometry.ValidScale(scale) {
		return inferr.WithPath(inferr.InvalidScale, path)
	}
	if !s.deltaAllowed {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.delta == nil {
		s.delta = &geometry.Delta{Scale: scale}
		return nil
	}
	if scale != s.delta.Scale {
		log.Warn("divergent scale at", path, "- keeping componentwise minimum")
	}
	s.delta.Scale = geometry.Min(s.delta.Scale, scale)
	return nil
}

// MergeDimNames appends any name not already present to the global
// ordered dimension list. Insertion-order stable; first sighting
// wins position.
func (s *Shared) MergeDimNames(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		if !s.dimSeen[n] {
			s.dimSeen[n] = true
			s.dimNames = append(s.dimNames, n)
		}
	}
}

// Snapshot returns a stable copy of the accumulated state. Only
// meaningful after Pool.Join, once no probe can still be writing.
func (s *Shared) Snapshot() (delta *geometry.Delta, dimNames []string, srsList []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.delta != nil {
		d := *s.delta
		delta = &d
	}
	dimNames = append([]string(nil), s.dimNames...)
	srsList = append([]string(nil), s.srsList...)
	return
}
