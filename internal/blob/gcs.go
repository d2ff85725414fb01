package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// GCS is the Endpoint backed by a Google Cloud Storage bucket,
// mirroring the S3 backend's local-handle download and cache
// behavior.
type GCS struct {
	Bucket string
	Prefix string
	client *gcs.Client
	cache  *Cache
}

func NewGCS(client *gcs.Client, bucket, prefix string, cache *Cache) *GCS {
	return &GCS{
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
		client: client,
		cache:  cache,
	}
}

func (e *GCS) key(p string) string {
	if e.Prefix == "" {
		return p
	}
	return path.Join(e.Prefix, p)
}

func (e *GCS) Resolve(ctx context.Context, p string) ([]string, error) {
	var out []string
	it := e.client.Bucket(e.Bucket).Objects(ctx, &gcs.Query{Prefix: e.key(p)})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimPrefix(attrs.Name, e.Prefix+"/"))
	}
	return out, nil
}

func (e *GCS) GetBinary(ctx context.Context, p string) ([]byte, error) {
	r, err := e.client.Bucket(e.Bucket).Object(e.key(p)).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return readAndClose(r)
}

// GetRange uses a range reader, so header previews fetch only the
// first length bytes of the object.
func (e *GCS) GetRange(ctx context.Context, p string, length uint64) ([]byte, error) {
	r, err := e.client.Bucket(e.Bucket).Object(e.key(p)).NewRangeReader(ctx, 0, int64(length))
	if err != nil {
		return nil, err
	}
	return readAndClose(r)
}

func readAndClose(r *gcs.Reader) ([]byte, error) {
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *GCS) GetLocalHandle(ctx context.Context, p string) (string, func(), error) {
	flat := flattenPath(p)
	if e.cache != nil {
		if cached, ok := e.cache.Lookup(e.Bucket, e.key(p)); ok {
			return cached, func() {}, nil
		}
	}

	data, err := e.GetBinary(ctx, p)
	if err != nil {
		return "", nil, err
	}

	tmp, err := os.CreateTemp("", fmt.Sprintf("pcinfer-%s-%s-*", flat, uuid.NewString()))
	if err != nil {
		return "", nil, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, err
	}
	tmp.Close()

	localPath := tmp.Name()
	if e.cache != nil {
		e.cache.Store(e.Bucket, e.key(p), localPath)
	}

	return localPath, func() {
		if e.cache == nil {
			os.Remove(localPath)
		}
	}, nil
}

func (e *GCS) Put(ctx context.Context, p string, data io.Reader) error {
	w := e.client.Bucket(e.Bucket).Object(e.key(p)).NewWriter(ctx)
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (e *GCS) FullPath(p string) string {
	return fmt.Sprintf("gs://%s/%s", e.Bucket, e.key(p))
}

func (e *GCS) TryGetSize(ctx context.Context, p string) (uint64, bool) {
	attrs, err := e.client.Bucket(e.Bucket).Object(e.key(p)).Attrs(ctx)
	if err != nil {
		return 0, false
	}
	return uint64(attrs.Size), true
}

func (e *GCS) IsHTTPDerived() bool { return true }
