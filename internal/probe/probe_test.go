package probe

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pcinfer/internal/aggregate"
	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/reader"
)

type fakeEndpoint struct {
	httpDerived bool
	data        []byte
}

func (f *fakeEndpoint) Resolve(ctx context.Context, path string) ([]string, error) { return nil, nil }
func (f *fakeEndpoint) GetBinary(ctx context.Context, path string) ([]byte, error) { return f.data, nil }
func (f *fakeEndpoint) GetRange(ctx context.Context, path string, length uint64) ([]byte, error) {
	data := f.data
	if uint64(len(data)) > length {
		data = data[:length]
	}
	return data, nil
}
func (f *fakeEndpoint) GetLocalHandle(ctx context.Context, path string) (string, func(), error) {
	return path, func() {}, nil
}
func (f *fakeEndpoint) Put(ctx context.Context, path string, data io.Reader) error { return nil }
func (f *fakeEndpoint) FullPath(path string) string                                { return path }
func (f *fakeEndpoint) TryGetSize(ctx context.Context, path string) (uint64, bool) { return 0, false }
func (f *fakeEndpoint) IsHTTPDerived() bool                                        { return f.httpDerived }

type fakeCapability struct {
	good    bool
	preview *reader.PreviewResult
	scan    *reader.ScanResult
	scanErr error
}

func (c *fakeCapability) Good(ctx context.Context, path string) bool { return c.good }
func (c *fakeCapability) Preview(ctx context.Context, localPath string) (*reader.PreviewResult, error) {
	return c.preview, nil
}
func (c *fakeCapability) Run(ctx context.Context, localPath string) (*reader.ScanResult, error) {
	return c.scan, c.scanErr
}
func (c *fakeCapability) Reproject(p geometry.Point) geometry.Point { return p }
func (c *fakeCapability) TransformBounds(b geometry.Bounds, matrix [16]float64) geometry.Bounds {
	return b
}

func TestProbeOmitsUnrecognizedFormat(t *testing.T) {
	fi := fileinfo.NewOutstanding("a.xyz", 0)
	err := Run(context.Background(), Options{
		Endpoint:   &fakeEndpoint{},
		Capability: &fakeCapability{good: false},
		Shared:     aggregate.NewShared(true),
	}, fi)
	require.NoError(t, err)
	assert.Equal(t, fileinfo.Omitted, fi.Status)
}

func TestProbeTrustsPreviewWhenAllowed(t *testing.T) {
	bounds := geometry.Bounds{Min: geometry.Point{}, Max: geometry.Point{X: 1, Y: 1, Z: 1}}
	fi := fileinfo.NewOutstanding("a.laz", 0)
	shared := aggregate.NewShared(true)

	err := Run(context.Background(), Options{
		Endpoint:     &fakeEndpoint{},
		Capability:   &fakeCapability{good: true, preview: &reader.PreviewResult{NumPoints: 100, Bounds: &bounds, Srs: "EPSG:4326", DimNames: []string{"X", "Y", "Z"}}},
		Shared:       shared,
		TrustHeaders: true,
	}, fi)

	require.NoError(t, err)
	assert.Equal(t, fileinfo.Inserted, fi.Status)
	assert.Equal(t, uint64(100), fi.NumPoints)
	assert.Equal(t, "EPSG:4326", fi.Srs)

	_, dims, srs := shared.Snapshot()
	assert.Equal(t, []string{"X", "Y", "Z"}, dims)
	assert.Equal(t, []string{"EPSG:4326"}, srs)
}

func TestProbeFallsBackToScanWhenHeadersUntrusted(t *testing.T) {
	previewBounds := geometry.Bounds{Min: geometry.Point{}, Max: geometry.Point{X: 100, Y: 100, Z: 100}}
	scanBounds := geometry.Bounds{Min: geometry.Point{X: 1, Y: 2, Z: 3}, Max: geometry.Point{X: 4, Y: 5, Z: 6}}
	fi := fileinfo.NewOutstanding("a.laz", 0)

	err := Run(context.Background(), Options{
		Endpoint:     &fakeEndpoint{},
		Capability:   &fakeCapability{good: true, preview: &reader.PreviewResult{NumPoints: 1000, Bounds: &previewBounds}, scan: &reader.ScanResult{NumPoints: 950, Bounds: scanBounds}},
		Shared:       aggregate.NewShared(true),
		TrustHeaders: false,
	}, fi)

	require.NoError(t, err)
	assert.Equal(t, fileinfo.Inserted, fi.Status)
	assert.Equal(t, uint64(950), fi.NumPoints)
	assert.Equal(t, scanBounds, *fi.Bounds)
}

func TestProbeScansWhenTrustedPreviewLacksBounds(t *testing.T) {
	scanBounds := geometry.Bounds{Min: geometry.Point{}, Max: geometry.Point{X: 2, Y: 2, Z: 2}}
	fi := fileinfo.NewOutstanding("a.ply", 0)

	err := Run(context.Background(), Options{
		Endpoint:     &fakeEndpoint{},
		Capability:   &fakeCapability{good: true, preview: &reader.PreviewResult{NumPoints: 40, DimNames: []string{"X", "Y", "Z"}}, scan: &reader.ScanResult{NumPoints: 40, Bounds: scanBounds}},
		Shared:       aggregate.NewShared(true),
		TrustHeaders: true,
	}, fi)

	require.NoError(t, err)
	assert.Equal(t, fileinfo.Inserted, fi.Status)
	assert.Equal(t, scanBounds, *fi.Bounds)
}

func TestProbeMarksErrorOnScanFailure(t *testing.T) {
	fi := fileinfo.NewOutstanding("a.laz", 0)
	err := Run(context.Background(), Options{
		Endpoint:     &fakeEndpoint{},
		Capability:   &fakeCapability{good: true, preview: &reader.PreviewResult{NumPoints: 1}, scanErr: errors.New("corrupt")},
		Shared:       aggregate.NewShared(true),
		TrustHeaders: false,
	}, fi)
	require.NoError(t, err)
	assert.Equal(t, fileinfo.Error, fi.Status)
}

func TestProbeInvalidScaleIsFatal(t *testing.T) {
	zeroScale := geometry.Point{X: 0.01, Y: 0, Z: 0.01}
	fi := fileinfo.NewOutstanding("a.laz", 0)
	err := Run(context.Background(), Options{
		Endpoint:     &fakeEndpoint{},
		Capability:   &fakeCapability{good: true, preview: &reader.PreviewResult{NumPoints: 1, Scale: &zeroScale}},
		Shared:       aggregate.NewShared(true),
		TrustHeaders: true,
	}, fi)
	require.Error(t, err)
}

func TestProbeHTTPDerivedFetchesRangeIntoTempFile(t *testing.T) {
	bounds := geometry.Bounds{Min: geometry.Point{}, Max: geometry.Point{X: 1, Y: 1, Z: 1}}
	fi := fileinfo.NewOutstanding("remote/a.laz", 0)
	err := Run(context.Background(), Options{
		Endpoint:     &fakeEndpoint{httpDerived: true, data: make([]byte, 32*1024)},
		Capability:   &fakeCapability{good: true, preview: &reader.PreviewResult{NumPoints: 1, Bounds: &bounds}},
		Shared:       aggregate.NewShared(true),
		TrustHeaders: true,
	}, fi)
	require.NoError(t, err)
	assert.Equal(t, fileinfo.Inserted, fi.Status)
}
