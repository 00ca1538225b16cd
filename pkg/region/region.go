// Package region provides the N-dimensional, axis-aligned index region used to
// describe the area of an image a filter processes.
//
// A Region is a value: every constructor and method copies the index and
// size arrays it is given, so regions can be passed between goroutines and
// mutated in place without affecting the caller's copy.
package region

import (
	"fmt"
	"slices"
	"strings"
)

// Index is a signed N-dimensional pixel index. Components may be negative.
type Index []int64

// Size is the per-axis extent of a region.
type Size []uint64

// Region is an axis-aligned rectangular range of pixel indices described by
// its starting index and its size along each axis. A region with any axis of
// size zero contains no pixels.
type Region struct {
	index Index
	size  Size
}

// New creates a region from an index and a size of the same length.
// It panics if the lengths differ, as that is a programming error.
func New(index Index, size Size) Region {
	if len(index) != len(size) {
		panic(fmt.Sprintf("region: index has %d components but size has %d", len(index), len(size)))
	}
	return Region{
		index: slices.Clone(index),
		size:  slices.Clone(size),
	}
}

// FromSize creates a region anchored at the zero index.
func FromSize(size ...uint64) Region {
	return Region{
		index: make(Index, len(size)),
		size:  slices.Clone(Size(size)),
	}
}

// Dimension returns the number of axes of the region.
func (r Region) Dimension() int {
	return len(r.size)
}

// GetIndex returns a copy of the starting index.
func (r Region) GetIndex() Index {
	return slices.Clone(r.index)
}

// GetSize returns a copy of the size.
func (r Region) GetSize() Size {
	return slices.Clone(r.size)
}

// IndexAt returns the starting index along one axis.
func (r Region) IndexAt(axis int) int64 {
	return r.index[axis]
}

// SizeAt returns the extent along one axis.
func (r Region) SizeAt(axis int) uint64 {
	return r.size[axis]
}

// SetIndexAt sets the starting index along one axis.
func (r *Region) SetIndexAt(axis int, v int64) {
	r.detach()
	r.index[axis] = v
}

// SetSizeAt sets the extent along one axis.
func (r *Region) SetSizeAt(axis int, v uint64) {
	r.detach()
	r.size[axis] = v
}

// detach gives the region private backing arrays before an in-place edit,
// so copies that still share the old arrays are not affected.
func (r *Region) detach() {
	r.index = slices.Clone(r.index)
	r.size = slices.Clone(r.size)
}

// Clone returns a deep copy of the region.
func (r Region) Clone() Region {
	return Region{
		index: slices.Clone(r.index),
		size:  slices.Clone(r.size),
	}
}

// NumberOfPixels returns the product of the sizes, which is zero when any
// axis is empty. A zero-dimensional region has no pixels.
func (r Region) NumberOfPixels() uint64 {
	if len(r.size) == 0 {
		return 0
	}
	n := uint64(1)
	for _, s := range r.size {
		n *= s
	}
	return n
}

// IsEmpty reports whether the region contains no pixels.
func (r Region) IsEmpty() bool {
	return r.NumberOfPixels() == 0
}

// Equal reports whether both regions have the same index and size.
func (r Region) Equal(other Region) bool {
	return slices.Equal(r.index, other.index) && slices.Equal(r.size, other.size)
}

// UpperIndex returns the last index contained in the region along each axis.
// For an empty axis the component is one less than the starting index.
func (r Region) UpperIndex() Index {
	upper := make(Index, len(r.index))
	for d := range r.index {
		upper[d] = r.index[d] + int64(r.size[d]) - 1
	}
	return upper
}

// IsInside reports whether idx lies within the region.
func (r Region) IsInside(idx Index) bool {
	if len(idx) != len(r.index) {
		return false
	}
	for d := range idx {
		if idx[d] < r.index[d] || idx[d] >= r.index[d]+int64(r.size[d]) {
			return false
		}
	}
	return true
}

// IsInsideRegion reports whether other lies entirely within r.
// Empty regions are never considered inside.
func (r Region) IsInsideRegion(other Region) bool {
	if other.IsEmpty() {
		return false
	}
	return r.IsInside(other.index) && r.IsInside(other.UpperIndex())
}

// Crop intersects r with other in place. When the intersection is empty
// (including when either region is empty) or the dimensions differ, Crop
// returns false and leaves r unmodified. Callers treat false as "nothing to
// process".
func (r *Region) Crop(other Region) bool {
	if r.Dimension() != other.Dimension() || r.IsEmpty() || other.IsEmpty() {
		return false
	}
	for d := range r.index {
		if r.index[d] >= other.index[d]+int64(other.size[d]) ||
			other.index[d] >= r.index[d]+int64(r.size[d]) {
			return false
		}
	}

	r.detach()
	for d := range r.index {
		if r.index[d] < other.index[d] {
			crop := other.index[d] - r.index[d]
			r.index[d] += crop
			r.size[d] -= uint64(crop)
		}
		end := r.index[d] + int64(r.size[d])
		otherEnd := other.index[d] + int64(other.size[d])
		if end > otherEnd {
			r.size[d] -= uint64(end - otherEnd)
		}
	}
	return true
}

// PadByRadius grows the region by radius[d] on both sides of every axis.
func (r *Region) PadByRadius(radius []uint64) {
	if len(radius) != len(r.index) {
		panic(fmt.Sprintf("region: radius has %d components, region has %d", len(radius), len(r.index)))
	}
	r.detach()
	for d, rad := range radius {
		r.index[d] -= int64(rad)
		r.size[d] += 2 * rad
	}
}

// Slice returns the (N-1)-dimensional region obtained by dropping one axis.
func (r Region) Slice(axis int) Region {
	if axis < 0 || axis >= r.Dimension() {
		panic(fmt.Sprintf("region: slice axis %d out of range for dimension %d", axis, r.Dimension()))
	}
	return Region{
		index: slices.Delete(slices.Clone(r.index), axis, axis+1),
		size:  slices.Delete(slices.Clone(r.size), axis, axis+1),
	}
}

func (r Region) String() string {
	var b strings.Builder
	b.WriteString("[index=(")
	for d, v := range r.index {
		if d > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString(") size=(")
	for d, v := range r.size {
		if d > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString(")]")
	return b.String()
}
