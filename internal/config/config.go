// Package config merges the recognized configuration surface across
// three layers — defaults, inferred values, user config. spf13/viper
// merges the user config over the defaults and go-playground/validator
// enforces the option constraints; inferred values (an adopted
// inference artifact or a fresh inference run) then fill what the user
// left unset while the merged result is resolved into the final build
// descriptor.
package config

import "github.com/ecopia-map/pcinfer/internal/inference"

// Reprojection names the input/output SRS pair and whether a "hammer"
// (force, ignore-file-srs) override is requested. It is the same
// record the inference artifact serializes.
type Reprojection = inference.Reprojection

// SubsetConfig names this run's slice of the overall build.
type SubsetConfig struct {
	ID uint64 `mapstructure:"id" json:"id" validate:"required_with=Of"`
	Of uint64 `mapstructure:"of" json:"of" validate:"required_with=ID"`
}

// CesiumFormat enables Cesium 3D Tiles output, which forces absolute
// coordinates and EPSG:4978 output reprojection.
type CesiumFormat struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// Formats groups output-format-specific switches.
type Formats struct {
	Cesium CesiumFormat `mapstructure:"cesium" json:"cesium"`
}

// Raw is the full recognized configuration surface, as merged across
// the defaults/inferred/user layers. Fields whose zero value is
// itself a meaningful setting (trustHeaders false, nullDepth 0) are
// pointers so "explicitly zero" and "unset" stay distinguishable
// through the merge; Merge guarantees they are non-nil afterward.
type Raw struct {
	Input          []string      `mapstructure:"input" json:"input"`
	Output         string        `mapstructure:"output" json:"output" validate:"required"`
	Tmp            string        `mapstructure:"tmp" json:"tmp"`
	Threads        int           `mapstructure:"threads" json:"threads" validate:"gt=0"`
	TrustHeaders   *bool         `mapstructure:"trustHeaders" json:"trustHeaders"`
	PrefixIds      bool          `mapstructure:"prefixIds" json:"prefixIds"`
	PointsPerChunk uint64        `mapstructure:"pointsPerChunk" json:"pointsPerChunk" validate:"gt=0"`
	NumPointsHint  *uint64       `mapstructure:"numPointsHint" json:"numPointsHint,omitempty"`
	Bounds         []float64     `mapstructure:"bounds" json:"bounds,omitempty" validate:"omitempty,len=6"`
	Schema         []string      `mapstructure:"schema" json:"schema,omitempty"`
	Compress       *bool         `mapstructure:"compress" json:"compress"`
	NullDepth      *uint64       `mapstructure:"nullDepth" json:"nullDepth"`
	BaseDepth      *uint64       `mapstructure:"baseDepth" json:"baseDepth"`
	Force          bool          `mapstructure:"force" json:"force"`
	Verbose        bool          `mapstructure:"verbose" json:"verbose"`
	Absolute       bool          `mapstructure:"absolute" json:"absolute"`
	Reprojection   *Reprojection `mapstructure:"reprojection" json:"reprojection,omitempty"`
	Scale          []float64     `mapstructure:"scale" json:"scale,omitempty" validate:"omitempty,len=3"`
	Offset         []float64     `mapstructure:"offset" json:"offset,omitempty" validate:"omitempty,len=3"`
	Subset         *SubsetConfig `mapstructure:"subset" json:"subset,omitempty"`
	Formats        Formats       `mapstructure:"formats" json:"formats"`
}

// Defaults returns the default configuration layer.
func Defaults() Raw {
	return Raw{
		Tmp:            "tmp",
		Threads:        8,
		TrustHeaders:   ptrBool(true),
		PrefixIds:      false,
		PointsPerChunk: 262144,
		Compress:       ptrBool(true),
		NullDepth:      ptrU64(7),
		BaseDepth:      ptrU64(10),
	}
}

func ptrBool(b bool) *bool    { return &b }
func ptrU64(v uint64) *uint64 { return &v }
