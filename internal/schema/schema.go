// Package schema models the point-cloud dimension table: the ordered set
// of named, typed fields that make up one point's on-disk layout.
package schema

import "fmt"

// DimType is the storage class of a dimension.
type DimType string

const (
	Signed   DimType = "signed"
	Unsigned DimType = "unsigned"
	Floating DimType = "floating"
)

// DimInfo describes one dimension: its name, numeric class, and size in
// bytes (1, 2, 4, or 8).
type DimInfo struct {
	Name string
	Type DimType
	Size int
}

// Schema is an ordered sequence of dimensions. Invariants: all names
// unique, X/Y/Z always present, stride = sum of sizes.
type Schema []DimInfo

// Stride returns the total point size in bytes.
func (s Schema) Stride() int {
	total := 0
	for _, d := range s {
		total += d.Size
	}
	return total
}

// Find returns the DimInfo for name and whether it was present.
func (s Schema) Find(name string) (DimInfo, bool) {
	for _, d := range s {
		if d.Name == name {
			return d, true
		}
	}
	return DimInfo{}, false
}

// Validate checks the Schema invariants: unique names, X/Y/Z present,
// positive stride.
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, d := range s {
		if seen[d.Name] {
			return fmt.Errorf("duplicate dimension name %q", d.Name)
		}
		seen[d.Name] = true
	}

	for _, required := range []string{"X", "Y", "Z"} {
		if !seen[required] {
			return fmt.Errorf("schema missing required dimension %q", required)
		}
	}

	if s.Stride() <= 0 {
		return fmt.Errorf("schema stride must be positive, got %d", s.Stride())
	}

	return nil
}
