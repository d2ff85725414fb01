// Package fileinfo models the per-input-file manifest record and the
// run-level file/point statistics tallied over a manifest.
package fileinfo

import (
	"encoding/json"

	"github.com/ecopia-map/pcinfer/internal/geometry"
)

// Status is the lifecycle state of one manifest entry.
type Status string

const (
	Outstanding Status = "outstanding"
	Inserted    Status = "inserted"
	Omitted     Status = "omitted"
	Error       Status = "error"
)

// FileInfo is one input file's manifest record. Invariant: if
// Status == Inserted then NumPoints and Bounds are set.
type FileInfo struct {
	Path      string
	Status    Status
	NumPoints uint64
	Bounds    *geometry.Bounds
	Srs       string
	Metadata  json.RawMessage
	Origin    uint64
	Err       string
}

// NewOutstanding returns a freshly-resolved path awaiting a probe.
func NewOutstanding(path string, origin uint64) *FileInfo {
	return &FileInfo{Path: path, Status: Outstanding, Origin: origin}
}

// MarkInserted records a successful preview/scan result.
func (f *FileInfo) MarkInserted(numPoints uint64, bounds geometry.Bounds) {
	f.Status = Inserted
	f.NumPoints = numPoints
	b := bounds
	f.Bounds = &b
}

// MarkOmitted records that the reader capability rejected this
// file's format.
func (f *FileInfo) MarkOmitted() {
	f.Status = Omitted
}

// MarkError records a per-file scan failure. The overall run
// continues; only this file is affected.
func (f *FileInfo) MarkError(err error) {
	f.Status = Error
	f.Err = err.Error()
}

// List is an ordered collection of FileInfo records — the manifest.
type List []*FileInfo
