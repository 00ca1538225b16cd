package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volumepipe/pkg/region"
)

func TestNewAllocatesRegion(t *testing.T) {
	r := region.New(region.Index{-1, 2, 0}, region.Size{3, 4, 5})
	img := New[uint8](r)
	assert.Len(t, img.Buffer(), 60)
	assert.True(t, img.Region().Equal(r))
	assert.Equal(t, 3, img.Dimension())
}

func TestOffsetAxisZeroFastest(t *testing.T) {
	img := New[float64](region.New(region.Index{10, 20}, region.Size{4, 3}))
	assert.Equal(t, 0, img.Offset(region.Index{10, 20}))
	assert.Equal(t, 1, img.Offset(region.Index{11, 20}))
	assert.Equal(t, 4, img.Offset(region.Index{10, 21}))
	assert.Equal(t, 11, img.Offset(region.Index{13, 22}))
}

func TestAtSet(t *testing.T) {
	img := New[int16](region.FromSize(3, 3))
	img.Set(region.Index{2, 1}, -7)
	assert.Equal(t, int16(-7), img.At(region.Index{2, 1}))
	assert.Panics(t, func() { img.At(region.Index{3, 0}) })
	assert.Panics(t, func() { img.Set(region.Index{0, -1}, 1) })
}

func TestFromBuffer(t *testing.T) {
	_, err := FromBuffer(region.FromSize(2, 2), []float32{1, 2, 3})
	require.Error(t, err)

	img, err := FromBuffer(region.FromSize(2, 2), []float32{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, float32(3), img.At(region.Index{0, 1}))
}

func TestForEachIndexVisitsSubRegionOnce(t *testing.T) {
	img := New[uint16](region.FromSize(5, 4, 3))
	sub := region.New(region.Index{1, 1, 1}, region.Size{3, 2, 2})

	var visited int
	img.ForEachIndex(sub, func(idx region.Index, offset int) {
		require.True(t, sub.IsInside(idx))
		require.Equal(t, img.Offset(idx), offset)
		img.Buffer()[offset]++
		visited++
	})
	assert.Equal(t, 12, visited)

	for _, v := range img.Buffer() {
		assert.LessOrEqual(t, v, uint16(1))
	}

	assert.Panics(t, func() {
		img.ForEachIndex(region.FromSize(6, 1, 1), func(region.Index, int) {})
	})
}

func TestForEachIndexEmpty(t *testing.T) {
	img := New[uint8](region.FromSize(2, 2))
	img.ForEachIndex(region.FromSize(0, 2), func(region.Index, int) {
		t.Fatal("no pixels to visit")
	})
}

func TestFillEqual(t *testing.T) {
	a := New[float64](region.FromSize(2, 2))
	b := New[float64](region.FromSize(2, 2))
	a.Fill(1.5)
	assert.False(t, a.Equal(b))
	b.Fill(1.5)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(New[float64](region.FromSize(4))))
	assert.False(t, a.Equal(nil))
}
