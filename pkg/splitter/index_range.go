package splitter

import "fmt"

// IndexRange is the half-open range [Start, End) of container indices, used
// to partition point sets and other one-dimensional domains.
type IndexRange struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r IndexRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r IndexRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// IndexRangeSplitter partitions an IndexRange with the same arithmetic the
// RegionSplitter applies to a region's split axis.
type IndexRangeSplitter struct{}

// Partition returns piece i of n and the number of pieces that receive work.
// A range with fewer than two indices is a single piece.
func (IndexRangeSplitter) Partition(i, n uint, complete IndexRange) (IndexRange, uint) {
	count := complete.Len()
	if count < 2 {
		return complete, 1
	}
	if n == 0 {
		n = 1
	}

	valuesPerPiece, achieved := piecesFor(uint64(count), n)
	last := achieved - 1
	sub := complete
	switch {
	case i < last:
		sub.Start = complete.Start + int(uint64(i)*valuesPerPiece)
		sub.End = sub.Start + int(valuesPerPiece)
	case i == last:
		sub.Start = complete.Start + int(uint64(i)*valuesPerPiece)
		sub.End = complete.End
	}
	return sub, achieved
}
