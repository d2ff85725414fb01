package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/pcinfer/internal/fileinfo"
	"github.com/ecopia-map/pcinfer/internal/geometry"
	"github.com/ecopia-map/pcinfer/internal/inferr"
)

func inserted(path string, n uint64, min, max geometry.Point) *fileinfo.FileInfo {
	f := fileinfo.NewOutstanding(path, 0)
	f.MarkInserted(n, geometry.Bounds{Min: min, Max: max})
	return f
}

func TestAggregateTwoTrustedFiles(t *testing.T) {
	list := fileinfo.List{
		inserted("a.laz", 100, geometry.Point{}, geometry.Point{X: 10, Y: 10, Z: 10}),
		inserted("b.laz", 200, geometry.Point{X: 5, Y: 5, Z: 5}, geometry.Point{X: 15, Y: 15, Z: 15}),
	}
	shared := NewShared(true)

	result, err := Aggregate(list, shared)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), result.NumPoints)
	assert.Equal(t, geometry.Point{}, result.Bounds.Min)
	assert.Equal(t, geometry.Point{X: 15, Y: 15, Z: 15}, result.Bounds.Max)
	assert.Nil(t, result.Delta)
}

func TestAggregateNoValidInputsWhenAllOmitted(t *testing.T) {
	f := fileinfo.NewOutstanding("a.laz", 0)
	f.MarkOmitted()

	_, err := Aggregate(fileinfo.List{f}, NewShared(true))
	require.Error(t, err)
	assert.True(t, inferr.Is(err, inferr.NoValidInputs))
}

func TestAggregateOffsetSelection(t *testing.T) {
	list := fileinfo.List{
		inserted("a.laz", 100, geometry.Point{X: 1, Y: 1, Z: 1}, geometry.Point{X: 23, Y: 23, Z: 23}),
	}
	shared := NewShared(true)
	shared.delta = &geometry.Delta{Scale: geometry.Point{X: 0.01, Y: 0.01, Z: 0.01}}

	result, err := Aggregate(list, shared)
	require.NoError(t, err)
	require.NotNil(t, result.Delta)
	// mid = 12, already above a multiple of 10 -> rounds up to 20.
	assert.Equal(t, geometry.Point{X: 20, Y: 20, Z: 20}, result.Delta.Offset)
}

func TestAggregateDimNamesAndSrsPreserved(t *testing.T) {
	shared := NewShared(true)
	shared.MergeDimNames([]string{"X", "Y", "Z", "Intensity"})
	shared.MergeSRS("EPSG:4326")
	shared.MergeSRS("EPSG:4326")
	shared.MergeSRS("EPSG:3857")

	list := fileinfo.List{inserted("a.laz", 1, geometry.Point{}, geometry.Point{X: 1, Y: 1, Z: 1})}
	result, err := Aggregate(list, shared)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z", "Intensity"}, result.DimNames)
	assert.Equal(t, []string{"EPSG:4326", "EPSG:3857"}, result.SrsList)
}
