package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// S3 is the Endpoint backed by an S3 bucket. Readers only understand
// local files, so reads go through GetLocalHandle's download path,
// optionally memoized in a Cache.
type S3 struct {
	Bucket string
	Prefix string
	client *s3.S3
	cache  *Cache
}

func NewS3(sess *session.Session, bucket, prefix string, cache *Cache) *S3 {
	return &S3{
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
		client: s3.New(sess),
		cache:  cache,
	}
}

func (e *S3) key(p string) string {
	if e.Prefix == "" {
		return p
	}
	return path.Join(e.Prefix, p)
}

func (e *S3) Resolve(ctx context.Context, p string) ([]string, error) {
	var out []string
	err := e.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(e.Bucket),
		Prefix: aws.String(e.key(p)),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			out = append(out, strings.TrimPrefix(*obj.Key, e.Prefix+"/"))
		}
		return true
	})
	return out, err
}

func (e *S3) GetBinary(ctx context.Context, p string) ([]byte, error) {
	return e.get(ctx, p, nil)
}

// GetRange issues a ranged GetObject, so header previews fetch only
// the first length bytes of the object.
func (e *S3) GetRange(ctx context.Context, p string, length uint64) ([]byte, error) {
	byteRange := fmt.Sprintf("bytes=0-%d", length-1)
	return e.get(ctx, p, aws.String(byteRange))
}

func (e *S3) get(ctx context.Context, p string, byteRange *string) ([]byte, error) {
	out, err := e.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.Bucket),
		Key:    aws.String(e.key(p)),
		Range:  byteRange,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetLocalHandle fetches p to a uniquely-named temp file: the object
// key flattened into one filename, uuid-disambiguated so concurrent
// probes of files with the same basename never collide.
func (e *S3) GetLocalHandle(ctx context.Context, p string) (string, func(), error) {
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

func (e *S3) Put(ctx context.Context, p string, data io.Reader) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	_, err = e.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(e.Bucket),
		Key:    aws.String(e.key(p)),
		Body:   bytes.NewReader(buf),
	})
	return err
}

func (e *S3) FullPath(p string) string {
	return fmt.Sprintf("s3://%s/%s", e.Bucket, e.key(p))
}

func (e *S3) TryGetSize(ctx context.Context, p string) (uint64, bool) {
	out, err := e.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(e.Bucket),
		Key:    aws.String(e.key(p)),
	})
	if err != nil || out.ContentLength == nil {
		return 0, false
	}
	return uint64(*out.ContentLength), true
}

func (e *S3) IsHTTPDerived() bool { return true }

func flattenPath(p string) string {
	r := strings.NewReplacer("/", "-", "\\", "-")
	return r.Replace(p)
}
