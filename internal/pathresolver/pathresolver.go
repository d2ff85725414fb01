// Package pathresolver expands the user-supplied input tokens —
// files, directories, globs — into a flat, ordered list of concrete
// blob paths.
package pathresolver

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/pcinfer/internal/blob"
)

const inferenceFileExt = ".entwine-inference"

// Resolve expands each input token and returns the flattened,
// ordered list of concrete paths. Tokens ending in .entwine-inference
// are passed through untouched — the config resolver adopts them
// rather than treating them as point-cloud inputs.
func Resolve(ctx context.Context, ep blob.Endpoint, tokens []string) ([]string, error) {
	var out []string
	for _, token := range tokens {
		if strings.EqualFold(filepath.Ext(token), inferenceFileExt) {
			out = append(out, token)
			continue
		}

		pattern := directorify(ep, token)
		matches, err := ep.Resolve(ctx, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// directorify turns tokens that name containers into globs:
// directories (trailing slash or resolving as one) get a trailing
// "*", extensionless basenames get "/*", and anything else passes
// through unchanged for the endpoint to glob-expand.
func directorify(ep blob.Endpoint, token string) string {
	if strings.HasSuffix(token, "/") {
		return token + "*"
	}

	if isLocalDir(ep, token) {
		return strings.TrimSuffix(token, "/") + "/*"
	}

	if filepath.Ext(filepath.Base(token)) == "" {
		return token + "/*"
	}

	return token
}

// isLocalDir best-effort-checks whether token resolves to a
// directory on disk. Remote endpoints have no stat equivalent, so
// this is only ever true for local paths; S3/GCS tokens fall through
// to the extension rules.
func isLocalDir(ep blob.Endpoint, token string) bool {
	info, err := os.Stat(ep.FullPath(token))
	return err == nil && info.IsDir()
}

// IsInferenceFile reports whether path names a previously serialized
// InferenceResult to be adopted rather than probed.
func IsInferenceFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), inferenceFileExt)
}
