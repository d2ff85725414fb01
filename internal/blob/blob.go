// Package blob abstracts where point-cloud inputs live: an Endpoint
// interface with local-disk, S3, and GCS backends, so the path
// resolver and file probe treat local and remote paths uniformly.
package blob

import (
	"context"
	"io"
)

// Endpoint is the capability the path resolver and file probe use to
// reach point-cloud inputs without caring whether they live on local
// disk, S3, or GCS.
type Endpoint interface {
	// Resolve expands path (possibly a glob or directory) into the
	// concrete blob paths it names.
	Resolve(ctx context.Context, path string) ([]string, error)

	// GetBinary reads the full contents of path.
	GetBinary(ctx context.Context, path string) ([]byte, error)

	// GetRange reads at most length bytes from the start of path.
	// Remote backends issue a ranged request so a header preview
	// never downloads the whole object.
	GetRange(ctx context.Context, path string, length uint64) ([]byte, error)

	// GetLocalHandle returns a filesystem path that can be opened with
	// a reader expecting local files, fetching path to a local cache
	// location first when the endpoint is remote. The returned
	// cleanup func must be called once the handle is no longer needed.
	GetLocalHandle(ctx context.Context, path string) (localPath string, cleanup func(), err error)

	// Put writes data to path.
	Put(ctx context.Context, path string, data io.Reader) error

	// FullPath returns the endpoint-qualified form of a relative path,
	// e.g. prefixing a bucket and scheme for remote endpoints.
	FullPath(path string) string

	// TryGetSize returns the byte size of path, and whether the
	// endpoint could determine it without a full fetch.
	TryGetSize(ctx context.Context, path string) (size uint64, ok bool)

	// IsHTTPDerived reports whether paths from this endpoint must be
	// fetched before a reader can touch them (S3/GCS backends; local
	// does not).
	IsHTTPDerived() bool
}
