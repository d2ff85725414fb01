package inference

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/reader"
)

type fakeEndpoint struct{ paths []string }

func (f *fakeEndpoint) Resolve(ctx context.Context, path string) ([]string, error) {
	return f.paths, nil
}
func (f *fakeEndpoint) GetBinary(ctx context.Context, path string) ([]byte, error) { return nil, nil }
func (f *fakeEndpoint) GetRange(ctx context.Context, path string, length uint64) ([]byte, error) {
	return nil, nil
}
func (f *fakeEndpoint) GetLocalHandle(ctx context.Context, path string) (string, func(), error) {
	return path, func() {}, nil
}
func (f *fakeEndpoint) Put(ctx context.Context, path string, data io.Reader) error { return nil }
func (f *fakeEndpoint) FullPath(path string) string                                { return path }
func (f *fakeEndpoint) TryGetSize(ctx context.Context, path string) (uint64, bool) { return 0, false }
func (f *fakeEndpoint) IsHTTPDerived() bool                                        { return false }

type fakeCapability struct{ previews map[string]*reader.PreviewResult }

func (c *fakeCapability) Good(ctx context.Context, path string) bool { return true }
func (c *fakeCapability) Preview(ctx context.Context, localPath string) (*reader.PreviewResult, error) {
	return c.previews[localPath], nil
}
func (c *fakeCapability) Run(ctx context.Context, localPath string) (*reader.ScanResult, error) {
	return nil, nil
}
func (c *fakeCapability) Reproject(p geometry.Point) geometry.Point { return p }

// TransformBounds delegates to the real PLY implementation so the
// cesium re-transform behaves as in production.
func (c *fakeCapability) TransformBounds(b geometry.Bounds, matrix [16]float64) geometry.Bounds {
	return reader.NewPLY(nil).TransformBounds(b, matrix)
}

func previewOf(numPoints uint64, bounds geometry.Bounds, dims ...string) *reader.PreviewResult {
	return &reader.PreviewResult{NumPoints: numPoints, Bounds: &bounds, DimNames: dims}
}

func TestGoTwoTrustedFiles(t *testing.T) {
	ep := &fakeEndpoint{paths: []string{"a.laz", "b.laz"}}
	cap := &fakeCapability{previews: map[string]*reader.PreviewResult{
		"a.laz": previewOf(100, geometry.Bounds{Min: geometry.Point{}, Max: geometry.Point{X: 10, Y: 10, Z: 10}}, "X", "Y", "Z"),
		"b.laz": previewOf(200, geometry.Bounds{Min: geometry.Point{X: 5, Y: 5, Z: 5}, Max: geometry.Point{X: 15, Y: 15, Z: 15}}, "X", "Y", "Z"),
	}}

	inf := New(Options{Endpoint: ep, Capability: cap, Threads: 2, TrustHeaders: true})
	result, err := inf.Go(context.Background(), []string{"dir"})
	require.NoError(t, err)

	assert.Equal(t, uint64(300), result.NumPoints)
	assert.Equal(t, geometry.Point{}, result.Bounds.Min)
	assert.Equal(t, geometry.Point{X: 15, Y: 15, Z: 15}, result.Bounds.Max)
	assert.Nil(t, result.Delta)

	x, ok := result.Schema.Find("X")
	require.True(t, ok)
	assert.Equal(t, 8, x.Size)
}

func TestGoTwiceReturnsDoubleRun(t *testing.T) {
	ep := &fakeEndpoint{paths: []string{"a.laz"}}
	cap := &fakeCapability{previews: map[string]*reader.PreviewResult{
		"a.laz": previewOf(1, geometry.Bounds{Min: geometry.Point{}, Max: geometry.Point{X: 1, Y: 1, Z: 1}}),
	}}
	inf := New(Options{Endpoint: ep, Capability: cap, Threads: 1, TrustHeaders: true})

	_, err := inf.Go(context.Background(), []string{"dir"})
	require.NoError(t, err)

	_, err = inf.Go(context.Background(), []string{"dir"})
	require.Error(t, err)
}

func TestGoCesiumModeTransformsBoundsToOrigin(t *testing.T) {
	ep := &fakeEndpoint{paths: []string{"a.laz"}}
	cap := &fakeCapability{previews: map[string]*reader.PreviewResult{
		"a.laz": previewOf(1, geometry.Bounds{
			Min: geometry.Point{X: 6378137, Y: 0, Z: 0},
			Max: geometry.Point{X: 6378137, Y: 0, Z: 0},
		}),
	}}
	inf := New(Options{Endpoint: ep, Capability: cap, Threads: 1, TrustHeaders: true, Cesium: true})

	result, err := inf.Go(context.Background(), []string{"dir"})
	require.NoError(t, err)
	require.NotNil(t, result.Transformation)
	assert.InDelta(t, 0, result.Bounds.Mid().X, 1e-6)
}
