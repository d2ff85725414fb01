package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/golang/glog"

	"github.com/ecopia-map/pcinfer/internal/blob"
	"github.com/ecopia-map/pcinfer/internal/config"
	"github.com/ecopia-map/pcinfer/internal/inference"
	"github.com/ecopia-map/pcinfer/internal/log"
	"github.com/ecopia-map/pcinfer/internal/reader"
	"github.com/ecopia-map/pcinfer/tools"
)

const VERSION = "1.0.0"

const logo = `
             _        __
 _ __   ___ (_)_ __  / _| ___ _ __
| '_ \ / __|| | '_ \| |_ / _ \ '__|
| |_) | (__ | | | | |  _|  __/ |
| .__/ \___||_|_| |_|_|  \___|_|
|_|  point cloud inference & build configuration
`

func main() {
	flagsGlobal := tools.ParseFlagsGlobal()
	log.Output(tools.FmtJSONString(flagsGlobal))

	args := flag.Args()
	if len(args) == 0 {
		glog.Fatal("Please specify a subcommand [infer|describe].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandInfer:
		mainCommandInfer(args)
	case tools.CommandDescribe:
		mainCommandDescribe(args)
	default:
		glog.Fatalf("Unrecognized command [%q]. Command must be one of [infer|describe]", cmd)
	}
}

func mainCommandInfer(args []string) {
	flags := tools.ParseFlagsForCommandInfer(args)

	if *flags.Help {
		showHelp()
		return
	}
	if *flags.Version {
		printVersion()
		return
	}
	if *flags.Silent {
		log.DisableLogger()
	} else {
		printLogo()
	}

	raw, err := rawFromFlags(&flags)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}

	ctx := context.Background()

	ep, cleanup, err := newEndpoint(ctx, *flags.Input, *flags.Tmp)
	if err != nil {
		glog.Fatal("Error opening storage endpoint: ", err)
	}
	defer cleanup()

	cap := reader.NewPLY(nil)

	desc, err := config.Resolve(ctx, ep, cap, raw)
	if err != nil {
		glog.Fatal("Error resolving build configuration: ", err)
	}

	if desc.Continuation {
		log.Outputf("existing build found at %s, continuing with %d manifest entries",
			*flags.Output, len(desc.FileInfo))
		return
	}

	result := &inference.Result{
		FileInfo:     desc.FileInfo,
		Schema:       desc.Schema,
		Bounds:       desc.Bounds,
		NumPoints:    desc.NumPoints,
		Reprojection: desc.Reprojection,
		Delta:        desc.Delta,
	}
	data, err := result.ToJSON()
	if err != nil {
		glog.Fatal("Error serializing inference artifact: ", err)
	}
	artifactPath := path.Join(*flags.Output, "entwine-inference")
	if err := ep.Put(ctx, artifactPath, strings.NewReader(string(data))); err != nil {
		glog.Fatal("Error writing inference artifact: ", err)
	}

	log.Outputf("inference artifact written to %s", ep.FullPath(artifactPath))
	log.Outputf("files: %d inserted, %d omitted, %d errored",
		desc.FileStats.Inserted, desc.FileStats.Omitted, desc.FileStats.Errors)
	log.Outputf("points: %d, schema stride: %d bytes", desc.PointStats.Inserted, desc.Schema.Stride())
	log.Outputf("bounds: [%g %g %g] - [%g %g %g]",
		desc.Bounds.Min.X, desc.Bounds.Min.Y, desc.Bounds.Min.Z,
		desc.Bounds.Max.X, desc.Bounds.Max.Y, desc.Bounds.Max.Z)
	log.Outputf("depths: null %d, base %d", desc.NullDepth, desc.BaseDepth)
	if desc.BumpDepth != nil {
		log.Outputf("base depth bumped from configured %d", *desc.BumpDepth)
	}
}

func mainCommandDescribe(args []string) {
	flags := tools.ParseFlagsForCommandDescribe(args)

	if *flags.Silent {
		log.DisableLogger()
	}
	if *flags.Input == "" {
		glog.Fatal("describe requires -input pointing at a .entwine-inference artifact")
	}

	data, err := os.ReadFile(*flags.Input)
	if err != nil {
		glog.Fatal("Error reading artifact: ", err)
	}
	result, err := inference.FromJSON(data)
	if err != nil {
		glog.Fatal("Error parsing artifact: ", err)
	}

	fmt.Printf("files:     %d (%d inserted)\n", len(result.FileInfo), result.FileStats.Inserted)
	fmt.Printf("points:    %d\n", result.NumPoints)
	fmt.Printf("bounds:    [%g %g %g] - [%g %g %g]\n",
		result.Bounds.Min.X, result.Bounds.Min.Y, result.Bounds.Min.Z,
		result.Bounds.Max.X, result.Bounds.Max.Y, result.Bounds.Max.Z)
	fmt.Printf("schema:    %s (stride %d)\n", schemaNames(result), result.Schema.Stride())
	if result.Delta != nil {
		fmt.Printf("scale:     [%g %g %g]\n",
			result.Delta.Scale.X, result.Delta.Scale.Y, result.Delta.Scale.Z)
		fmt.Printf("offset:    [%g %g %g]\n",
			result.Delta.Offset.X, result.Delta.Offset.Y, result.Delta.Offset.Z)
	}
}

func schemaNames(result *inference.Result) string {
	names := make([]string, 0, len(result.Schema))
	for _, d := range result.Schema {
		names = append(names, d.Name)
	}
	return strings.Join(names, ",")
}

// rawFromFlags maps the command line onto the recognized configuration
// surface. Flags left at their "unset" value (empty string, 0, -1) stay
// out of the user layer, so defaults merge underneath them; tmp,
// threads, trust-headers and points-per-chunk are always passed, with
// flag defaults equal to the configuration defaults.
func rawFromFlags(flags *tools.FlagsForCommandInfer) (config.Raw, error) {
	raw := config.Raw{
		Tmp:          *flags.Tmp,
		Threads:      *flags.Threads,
		TrustHeaders: flags.TrustHeaders,
		Force:        *flags.Force,
		Verbose:      *flags.Verbose,
		Absolute:     *flags.Absolute,
	}

	if *flags.Input == "" {
		return raw, fmt.Errorf("input is required")
	}
	for _, token := range strings.Split(*flags.Input, ",") {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			raw.Input = append(raw.Input, stripScheme(trimmed))
		}
	}
	if *flags.Output == "" {
		return raw, fmt.Errorf("output is required")
	}
	raw.Output = stripScheme(*flags.Output)

	if !tools.IsFloatEqual(*flags.Scale, 0) {
		raw.Scale = []float64{*flags.Scale, *flags.Scale, *flags.Scale}
	}
	if *flags.Offset != "" {
		offset, err := parseTriple(*flags.Offset)
		if err != nil {
			return raw, fmt.Errorf("offset: %w", err)
		}
		raw.Offset = offset
	}
	if *flags.NullDepth >= 0 {
		v := uint64(*flags.NullDepth)
		raw.NullDepth = &v
	}
	if *flags.BaseDepth >= 0 {
		v := uint64(*flags.BaseDepth)
		raw.BaseDepth = &v
	}
	if *flags.PointsPerChunk > 0 {
		raw.PointsPerChunk = uint64(*flags.PointsPerChunk)
	}
	if *flags.SubsetOf > 0 {
		raw.Subset = &config.SubsetConfig{
			ID: uint64(*flags.SubsetID),
			Of: uint64(*flags.SubsetOf),
		}
	}
	if *flags.ReprojIn != "" || *flags.ReprojOut != "" {
		raw.Reprojection = &config.Reprojection{
			In:     *flags.ReprojIn,
			Out:    *flags.ReprojOut,
			Hammer: *flags.ReprojHammer,
		}
	}
	raw.Formats.Cesium.Enabled = *flags.Cesium

	return raw, nil
}

func parseTriple(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected 'x,y,z', got %q", s)
	}
	out := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// newEndpoint picks the blob backend from the first input's scheme.
// Remote backends memoize their downloads in an embedded cache under
// the tmp directory.
func newEndpoint(ctx context.Context, input, tmp string) (blob.Endpoint, func(), error) {
	first := strings.TrimSpace(strings.Split(input, ",")[0])

	switch {
	case strings.HasPrefix(first, "s3://"):
		bucket, _ := splitBucket(strings.TrimPrefix(first, "s3://"))
		cache, err := blob.OpenCache(path.Join(tmp, "handle-cache"))
		if err != nil {
			return nil, nil, err
		}
		sess, err := session.NewSession()
		if err != nil {
			cache.Close()
			return nil, nil, err
		}
		return blob.NewS3(sess, bucket, "", cache), func() { cache.Close() }, nil

	case strings.HasPrefix(first, "gs://"):
		bucket, _ := splitBucket(strings.TrimPrefix(first, "gs://"))
		cache, err := blob.OpenCache(path.Join(tmp, "handle-cache"))
		if err != nil {
			return nil, nil, err
		}
		client, err := gcs.NewClient(ctx)
		if err != nil {
			cache.Close()
			return nil, nil, err
		}
		return blob.NewGCS(client, bucket, "", cache), func() { cache.Close() }, nil

	default:
		return blob.NewLocal(""), func() {}, nil
	}
}

// stripScheme drops the s3:// or gs:// prefix and the bucket segment,
// leaving the path the endpoint understands; local paths pass through.
func stripScheme(p string) string {
	for _, scheme := range []string{"s3://", "gs://"} {
		if strings.HasPrefix(p, scheme) {
			_, rest := splitBucket(strings.TrimPrefix(p, scheme))
			return rest
		}
	}
	return p
}

func splitBucket(p string) (bucket, rest string) {
	idx := strings.IndexByte(p, '/')
	if idx < 0 {
		return p, ""
	}
	return p[:idx], p[idx+1:]
}

func printLogo() {
	fmt.Print(logo)
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("pcinfer scans point cloud files and resolves the configuration of a streamable spatial index build.")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
