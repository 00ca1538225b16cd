// Package volume holds the N-dimensional pixel buffer filters read from and
// write to.
package volume

import (
	"fmt"

	"volumepipe/pkg/region"
)

// Pixel is the set of scalar types an Image can store.
type Pixel interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Image is a dense N-dimensional buffer covering one region. Axis 0 varies
// fastest in memory.
//
// Concurrent writes are safe as long as they touch disjoint indices; the
// image itself does no locking.
type Image[T Pixel] struct {
	region  region.Region
	strides []uint64
	pixels  []T
}

// New allocates a zero-filled image over r.
func New[T Pixel](r region.Region) *Image[T] {
	return &Image[T]{
		region:  r.Clone(),
		strides: stridesFor(r),
		pixels:  make([]T, r.NumberOfPixels()),
	}
}

func stridesFor(r region.Region) []uint64 {
	strides := make([]uint64, r.Dimension())
	stride := uint64(1)
	for d := range strides {
		strides[d] = stride
		stride *= r.SizeAt(d)
	}
	return strides
}

// FromBuffer wraps an existing buffer; its length must equal the number of
// pixels in r.
func FromBuffer[T Pixel](r region.Region, pixels []T) (*Image[T], error) {
	if uint64(len(pixels)) != r.NumberOfPixels() {
		return nil, fmt.Errorf("buffer has %d pixels, region %s needs %d", len(pixels), r, r.NumberOfPixels())
	}
	return &Image[T]{
		region:  r.Clone(),
		strides: stridesFor(r),
		pixels:  pixels,
	}, nil
}

// Region returns the region the buffer covers.
func (img *Image[T]) Region() region.Region {
	return img.region.Clone()
}

// Dimension returns the number of axes.
func (img *Image[T]) Dimension() int {
	return img.region.Dimension()
}

// Buffer exposes the underlying pixels.
func (img *Image[T]) Buffer() []T {
	return img.pixels
}

// Offset returns the position of idx in the buffer. idx must lie within the
// image region.
func (img *Image[T]) Offset(idx region.Index) int {
	var off uint64
	for d, v := range idx {
		off += uint64(v-img.region.IndexAt(d)) * img.strides[d]
	}
	return int(off)
}

// At returns the pixel at idx. It panics if idx lies outside the image.
func (img *Image[T]) At(idx region.Index) T {
	img.mustContain(idx)
	return img.pixels[img.Offset(idx)]
}

// Set stores v at idx. It panics if idx lies outside the image.
func (img *Image[T]) Set(idx region.Index, v T) {
	img.mustContain(idx)
	img.pixels[img.Offset(idx)] = v
}

func (img *Image[T]) mustContain(idx region.Index) {
	if !img.region.IsInside(idx) {
		panic(fmt.Sprintf("volume: index %v outside image region %s", idx, img.region))
	}
}

// Fill sets every pixel to v.
func (img *Image[T]) Fill(v T) {
	for i := range img.pixels {
		img.pixels[i] = v
	}
}

// Equal reports whether both images cover the same region with identical pixels.
func (img *Image[T]) Equal(other *Image[T]) bool {
	if img == nil || other == nil {
		return img == other
	}
	if !img.region.Equal(other.region) {
		return false
	}
	for i, v := range img.pixels {
		if other.pixels[i] != v {
			return false
		}
	}
	return true
}

// ForEachIndex visits every index of sub with axis 0 varying fastest, passing
// the index and its buffer offset. sub must lie within the image region. The
// index slice is reused between calls and must not be retained.
func (img *Image[T]) ForEachIndex(sub region.Region, fn func(idx region.Index, offset int)) {
	if sub.IsEmpty() {
		return
	}
	if !img.region.IsInsideRegion(sub) {
		panic(fmt.Sprintf("volume: region %s outside image region %s", sub, img.region))
	}

	idx := sub.GetIndex()
	upper := sub.UpperIndex()
	rowLen := int(sub.SizeAt(0))
	for {
		base := img.Offset(idx)
		start := idx[0]
		for x := 0; x < rowLen; x++ {
			idx[0] = start + int64(x)
			fn(idx, base+x)
		}
		idx[0] = start

		d := 1
		for ; d < len(idx); d++ {
			idx[d]++
			if idx[d] <= upper[d] {
				break
			}
			idx[d] = sub.IndexAt(d)
		}
		if d >= len(idx) {
			return
		}
	}
}
