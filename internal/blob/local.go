package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is the Endpoint backed by the machine's own filesystem.
type Local struct {
	Root string
}

func NewLocal(root string) *Local {
	return &Local{Root: root}
}

func (l *Local) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Root, path)
}

func (l *Local) Resolve(ctx context.Context, path string) ([]string, error) {
	full := l.resolvePath(path)

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		var out []string
		err := filepath.Walk(full, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() {
				out = append(out, p)
			}
			return nil
		})
		return out, err
	}

	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (l *Local) GetBinary(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(l.resolvePath(path))
}

func (l *Local) GetRange(ctx context.Context, path string, length uint64) ([]byte, error) {
	f, err := os.Open(l.resolvePath(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, int64(length)))
}

// GetLocalHandle is a no-op for the local endpoint: the file already
// lives on disk.
func (l *Local) GetLocalHandle(ctx context.Context, path string) (string, func(), error) {
	full := l.resolvePath(path)
	if _, err := os.Stat(full); err != nil {
		return "", nil, err
	}
	return full, func() {}, nil
}

func (l *Local) Put(ctx context.Context, path string, data io.Reader) error {
	full := l.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("blob: create directory for %s: %w", full, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, data)
	return err
}

func (l *Local) FullPath(path string) string {
	return l.resolvePath(path)
}

func (l *Local) TryGetSize(ctx context.Context, path string) (uint64, bool) {
	info, err := os.Stat(l.resolvePath(path))
	if err != nil {
		return 0, false
	}
	return uint64(info.Size()), true
}

func (l *Local) IsHTTPDerived() bool { return false }
