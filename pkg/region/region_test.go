package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesInputs(t *testing.T) {
	idx := Index{1, 2}
	size := Size{3, 4}
	r := New(idx, size)

	idx[0] = 99
	size[0] = 99

	assert.Equal(t, Index{1, 2}, r.GetIndex())
	assert.Equal(t, Size{3, 4}, r.GetSize())
}

func TestNewPanicsOnDimensionMismatch(t *testing.T) {
	assert.Panics(t, func() { New(Index{0}, Size{1, 2}) })
}

func TestNumberOfPixels(t *testing.T) {
	tests := []struct {
		name string
		r    Region
		want uint64
	}{
		{"3d", FromSize(2, 3, 4), 24},
		{"single pixel", FromSize(1, 1, 1), 1},
		{"empty axis", FromSize(5, 0, 5), 0},
		{"zero dimensional", Region{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.NumberOfPixels())
			assert.Equal(t, tt.want == 0, tt.r.IsEmpty())
		})
	}
}

func TestEqual(t *testing.T) {
	a := New(Index{0, -1}, Size{4, 4})
	assert.True(t, a.Equal(New(Index{0, -1}, Size{4, 4})))
	assert.False(t, a.Equal(New(Index{0, 0}, Size{4, 4})))
	assert.False(t, a.Equal(New(Index{0, -1}, Size{4, 5})))
	assert.False(t, a.Equal(FromSize(4, 4, 1)))
}

func TestCrop(t *testing.T) {
	t.Run("partial overlap", func(t *testing.T) {
		r := New(Index{0, 0}, Size{10, 10})
		ok := r.Crop(New(Index{5, -3}, Size{10, 6}))
		require.True(t, ok)
		assert.Equal(t, Index{5, 0}, r.GetIndex())
		assert.Equal(t, Size{5, 3}, r.GetSize())
	})

	t.Run("contained", func(t *testing.T) {
		r := New(Index{2, 2}, Size{3, 3})
		require.True(t, r.Crop(FromSize(10, 10)))
		assert.True(t, r.Equal(New(Index{2, 2}, Size{3, 3})))
	})

	t.Run("disjoint leaves region unmodified", func(t *testing.T) {
		r := New(Index{0, 0}, Size{4, 4})
		before := r.Clone()
		assert.False(t, r.Crop(New(Index{4, 0}, Size{4, 4})))
		assert.True(t, r.Equal(before))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		r := FromSize(4, 4)
		assert.False(t, r.Crop(FromSize(4, 4, 4)))
	})

	t.Run("empty other inside bounds", func(t *testing.T) {
		r := FromSize(10, 10)
		before := r.Clone()
		assert.False(t, r.Crop(New(Index{5, 5}, Size{0, 3})))
		assert.True(t, r.Equal(before), r.String())
	})

	t.Run("empty receiver", func(t *testing.T) {
		r := New(Index{2, 2}, Size{3, 0})
		before := r.Clone()
		assert.False(t, r.Crop(FromSize(10, 10)))
		assert.True(t, r.Equal(before), r.String())
	})

	t.Run("does not alias copies", func(t *testing.T) {
		r := FromSize(10, 10)
		copyOf := r
		require.True(t, r.Crop(New(Index{5, 5}, Size{2, 2})))
		assert.Equal(t, Size{10, 10}, copyOf.GetSize())
	})
}

func TestPadByRadius(t *testing.T) {
	r := New(Index{0, 5}, Size{4, 2})
	r.PadByRadius([]uint64{1, 2})
	assert.Equal(t, Index{-1, 3}, r.GetIndex())
	assert.Equal(t, Size{6, 6}, r.GetSize())

	assert.Panics(t, func() { r.PadByRadius([]uint64{1}) })
}

func TestIsInside(t *testing.T) {
	r := New(Index{-2, 0}, Size{4, 3})
	assert.True(t, r.IsInside(Index{-2, 0}))
	assert.True(t, r.IsInside(Index{1, 2}))
	assert.False(t, r.IsInside(Index{2, 2}))
	assert.False(t, r.IsInside(Index{0, -1}))
	assert.False(t, r.IsInside(Index{0}))

	assert.True(t, r.IsInsideRegion(New(Index{-1, 1}, Size{2, 2})))
	assert.False(t, r.IsInsideRegion(New(Index{-1, 1}, Size{4, 2})))
	assert.False(t, r.IsInsideRegion(New(Index{0, 0}, Size{0, 2})))
}

func TestUpperIndex(t *testing.T) {
	r := New(Index{-2, 3}, Size{4, 1})
	assert.Equal(t, Index{1, 3}, r.UpperIndex())
}

func TestSlice(t *testing.T) {
	r := New(Index{1, 2, 3}, Size{4, 5, 6})
	s := r.Slice(1)
	assert.Equal(t, Index{1, 3}, s.GetIndex())
	assert.Equal(t, Size{4, 6}, s.GetSize())
	// the source region is untouched
	assert.Equal(t, Index{1, 2, 3}, r.GetIndex())

	assert.Panics(t, func() { r.Slice(3) })
}

func TestSetters(t *testing.T) {
	r := FromSize(4, 4)
	shared := r
	r.SetIndexAt(1, 7)
	r.SetSizeAt(0, 2)
	assert.Equal(t, Index{0, 7}, r.GetIndex())
	assert.Equal(t, Size{2, 4}, r.GetSize())
	assert.Equal(t, Index{0, 0}, shared.GetIndex())
}

func TestString(t *testing.T) {
	assert.Equal(t, "[index=(0,-1) size=(10,1)]", New(Index{0, -1}, Size{10, 1}).String())
}
