// Package probe extracts one input file's metadata — point count,
// bounds, dimension names, spatial reference, scale — by previewing
// its header and, when the header can't be trusted (or carries no
// bounds), streaming every point. One probe runs per file, on the
// worker pool.
package probe

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/ecopia-map/pcinfer/internal/aggregate"
	"github.com/ecopia-map/pcinfer/internal/blob"
	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/inferr"
	"github.com/ecopia-map/pcinfer/internal/log"
	"github.com/ecopia-map/pcinfer/internal/reader"
)

const previewRangeBytes = 16 * 1024

// Options configures one Probe invocation.
type Options struct {
	Endpoint     blob.Endpoint
	Capability   reader.Capability
	Shared       *aggregate.Shared
	TrustHeaders bool
}

// Run probes one file, mutating fi in place. Per-file failures are
// recorded on fi itself (omitted/error) and never abort siblings; the
// returned error is non-nil only for run-fatal conditions like an
// invalid scale.
func Run(ctx context.Context, opts Options, fi *fileinfo.FileInfo) error {
	// Format rejection happens on the raw path, before any fetch: an
	// unrecognized extension isn't worth a download.
	if !opts.Capability.Good(ctx, fi.Path) {
		fi.MarkOmitted()
		log.Outputf("skipping %s", inferr.WithPath(inferr.ReaderRejected, fi.Path))
		return nil
	}

	localPath, cleanup, err := acquireHandle(ctx, opts, fi.Path)
	if err != nil {
		fi.MarkError(err)
		return nil
	}
	defer cleanup()

	preview, previewErr := opts.Capability.Preview(ctx, localPath)

	// Metadata merge, under Shared's single lock. The lock never
	// spans the I/O above or the scan below.
	if preview != nil {
		opts.Shared.MergeSRS(preview.Srs)
		opts.Shared.MergeDimNames(preview.DimNames)
		fi.Srs = preview.Srs
		fi.Metadata = preview.Metadata

		if preview.Scale != nil {
			if err := opts.Shared.MergeScale(fi.Path, *preview.Scale); err != nil {
				return err
			}
		}
	}

	// Trust the header if allowed — but only when it actually carried
	// bounds; a bounds-less preview still forces a scan.
	if opts.TrustHeaders && preview != nil && preview.Bounds != nil {
		fi.MarkInserted(preview.NumPoints, *preview.Bounds)
		log.Outputf("probed %s: %d points (preview)", fi.Path, preview.NumPoints)
		return nil
	}

	// Fall back to a full scan. A file that can be neither previewed
	// nor scanned is omitted rather than errored. The preview handle of
	// an HTTP-derived file holds only its first 16 KiB, so the scan
	// reads a full local copy instead.
	scanPath := localPath
	if opts.Endpoint.IsHTTPDerived() {
		fullPath, fullCleanup, err := opts.Endpoint.GetLocalHandle(ctx, fi.Path)
		if err != nil {
			fi.MarkError(err)
			return nil
		}
		defer fullCleanup()
		scanPath = fullPath
	}
	scan, scanErr := opts.Capability.Run(ctx, scanPath)
	if scanErr != nil {
		if preview == nil && previewErr != nil {
			fi.MarkOmitted()
			return nil
		}
		fi.MarkError(inferr.Wrap(inferr.ScanFailure, fi.Path, scanErr))
		return nil
	}
	if scan == nil {
		fi.MarkOmitted()
		return nil
	}

	fi.MarkInserted(scan.NumPoints, scan.Bounds)
	log.Outputf("probed %s: %d points (scan)", fi.Path, scan.NumPoints)
	return nil
}

// acquireHandle returns a local path for the file: HTTP-derived
// endpoints range-fetch only the first 16 KiB into a flattened,
// uuid-disambiguated temp file for the preview pass, while local
// endpoints hand back a direct path.
func acquireHandle(ctx context.Context, opts Options, path string) (string, func(), error) {
	if !opts.Endpoint.IsHTTPDerived() {
		return opts.Endpoint.GetLocalHandle(ctx, path)
	}

	data, err := opts.Endpoint.GetRange(ctx, path, previewRangeBytes)
	if err != nil {
		return "", nil, err
	}

	// The random segment goes in the middle so the flattened name
	// keeps its extension for the capability's format sniff.
	tmp, err := os.CreateTemp("", uuid.NewString()+"-*-"+flatten(path))
	if err != nil {
		return "", nil, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	tmp.Close()

	name := tmp.Name()
	return name, func() { os.Remove(name) }, nil
}

// flatten replaces path separators so a nested remote path becomes a
// single temp-dir filename.
func flatten(path string) string {
	out := make([]byte, 0, len(path))
	for _, c := range []byte(path) {
		if c == '/' || c == '\\' {
			out = append(out, '-')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
