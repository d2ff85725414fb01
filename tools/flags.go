package tools

import (
	"flag"

	"github.com/ecopia-map/pcinfer/internal/log"
)

const (
	CommandInfer    = "infer"
	CommandDescribe = "describe"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type InferFlags struct {
	Input          *string  `json:"input"`
	Output         *string  `json:"output"`
	Tmp            *string  `json:"tmp"`
	Threads        *int     `json:"threads"`
	TrustHeaders   *bool    `json:"trust_headers"`
	Force          *bool
	Verbose        *bool
	Absolute       *bool
	Cesium         *bool
	Scale          *float64
	Offset         *string  `json:"offset"`
	NullDepth      *int     `json:"null_depth"`
	BaseDepth      *int     `json:"base_depth"`
	PointsPerChunk *int     `json:"points_per_chunk"`
	SubsetID       *int     `json:"subset_id"`
	SubsetOf       *int     `json:"subset_of"`
	ReprojIn       *string  `json:"reproj_in"`
	ReprojOut      *string  `json:"reproj_out"`
	ReprojHammer   *bool    `json:"reproj_hammer"`
}

type FlagsForCommandInfer struct {
	InferFlags
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool
}

type FlagsForCommandDescribe struct {
	Input  *string `json:"input"`
	Silent *bool
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	// No -v shorthand here: glog registers -v (its verbosity level) on
	// the same global flag set.
	version := defineBoolFlag("version", "", false, "Displays the version of pcinfer.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandInfer(args []string) FlagsForCommandInfer {
	log.Output(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-infer", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Comma-separated input point cloud files, directories or globs. Paths may be local, s3:// or gs:// URIs. A .entwine-inference file is adopted instead of probed.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Output location for the build. May be local, s3:// or gs:// URI.")
	tmp := defineStringFlagCommand(flagCommand, "tmp", "", "tmp", "Directory for temporary files downloaded from remote inputs.")
	threads := defineIntFlagCommand(flagCommand, "threads", "t", 8, "Number of parallel probe workers.")
	trustHeaders := defineBoolFlagCommand(flagCommand, "trust-headers", "", true, "Trust per-file header metadata. Disable to force a full point scan of every input.")
	force := defineBoolFlagCommand(flagCommand, "force", "f", false, "Ignore an existing build at the output location and start over.")
	verbose := defineBoolFlagCommand(flagCommand, "verbose", "", false, "Log per-file progress and depth adjustments.")
	absolute := defineBoolFlagCommand(flagCommand, "absolute", "a", false, "Keep absolute double-precision coordinates, disabling fixed-point quantization.")
	cesium := defineBoolFlagCommand(flagCommand, "cesium", "", false, "Produce a Cesium-oriented build: forces absolute coordinates, EPSG:4978 output, and an earth-tangent-plane transform.")
	scale := defineFloat64FlagCommand(flagCommand, "scale", "", 0, "Uniform quantization scale for all three axes. 0 means infer from the inputs.")
	offset := defineStringFlagCommand(flagCommand, "offset", "", "", "Quantization offset as 'x,y,z'. Empty means infer from the aggregated bounds.")
	nullDepth := defineIntFlagCommand(flagCommand, "null-depth", "", -1, "Tree depth above which no points are stored. -1 means default.")
	baseDepth := defineIntFlagCommand(flagCommand, "base-depth", "", -1, "Tree depth at which chunked storage begins. -1 means default.")
	pointsPerChunk := defineIntFlagCommand(flagCommand, "points-per-chunk", "", 262144, "Nominal point capacity of one chunk.")
	subsetID := defineIntFlagCommand(flagCommand, "subset-id", "", 0, "1-based id of this process's subset slice. 0 means no subset.")
	subsetOf := defineIntFlagCommand(flagCommand, "subset-of", "", 0, "Total number of subset slices. Must be a power of 4.")
	reprojIn := defineStringFlagCommand(flagCommand, "reproj-in", "", "", "Input SRS override, e.g. 'EPSG:32633'. Recorded on the build descriptor and inference artifact; the reader does not receive it.")
	reprojOut := defineStringFlagCommand(flagCommand, "reproj-out", "", "", "Output SRS, e.g. 'EPSG:3857'. Recorded on the build descriptor and inference artifact; the reader does not receive it.")
	reprojHammer := defineBoolFlagCommand(flagCommand, "reproj-hammer", "", false, "Mark the input SRS as overriding the files' own. Recorded only; no probe acts on it.")

	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "", false, "Accepted but has no effect: log lines always carry glog's own timestamp header.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of pcinfer.")

	flagCommand.Parse(args)

	return FlagsForCommandInfer{
		InferFlags: InferFlags{
			Input:          input,
			Output:         output,
			Tmp:            tmp,
			Threads:        threads,
			TrustHeaders:   trustHeaders,
			Force:          force,
			Verbose:        verbose,
			Absolute:       absolute,
			Cesium:         cesium,
			Scale:          scale,
			Offset:         offset,
			NullDepth:      nullDepth,
			BaseDepth:      baseDepth,
			PointsPerChunk: pointsPerChunk,
			SubsetID:       subsetID,
			SubsetOf:       subsetOf,
			ReprojIn:       reprojIn,
			ReprojOut:      reprojOut,
			ReprojHammer:   reprojHammer,
		},
		Silent:       silent,
		LogTimestamp: logTimestamp,
		Help:         help,
		Version:      version,
	}
}

func ParseFlagsForCommandDescribe(args []string) FlagsForCommandDescribe {
	log.Output(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-describe", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Path to a serialized .entwine-inference artifact to summarize.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")

	flagCommand.Parse(args)

	return FlagsForCommandDescribe{
		Input:  input,
		Silent: silent,
	}
}

func defineStringFlag(name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flag.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
