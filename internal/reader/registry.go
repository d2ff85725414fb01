package reader

import "github.com/ecopia-map/pcinfer/internal/schema"

// wellKnownTypes and wellKnownSizes record the numeric class/width of
// dimensions with an established meaning in the point-cloud ecosystem
// (ASPRS LAS dimension names plus the common PLY vertex properties),
// so the schema synthesizer doesn't widen every dimension to
// floating/8 the way it must for genuinely unknown names. Anything
// absent here falls back to DefaultType/DefaultSize.
var wellKnownTypes = map[string]schema.DimType{
	"X": schema.Floating, "Y": schema.Floating, "Z": schema.Floating,
	"Intensity":       schema.Unsigned,
	"ReturnNumber":    schema.Unsigned,
	"NumberOfReturns": schema.Unsigned,
	"Classification":  schema.Unsigned,
	"ScanAngleRank":   schema.Signed,
	"UserData":        schema.Unsigned,
	"PointSourceId":   schema.Unsigned,
	"GpsTime":         schema.Floating,
	"Red":             schema.Unsigned,
	"Green":           schema.Unsigned,
	"Blue":            schema.Unsigned,
}

var wellKnownSizes = map[string]int{
	"X": 8, "Y": 8, "Z": 8,
	"Intensity":       2,
	"ReturnNumber":    1,
	"NumberOfReturns": 1,
	"Classification":  1,
	"ScanAngleRank":   1,
	"UserData":        1,
	"PointSourceId":   2,
	"GpsTime":         8,
	"Red":             2,
	"Green":           2,
	"Blue":            2,
}
