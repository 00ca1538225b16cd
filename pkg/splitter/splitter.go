// Package splitter decides how a region is divided into pieces for parallel
// processing. It knows nothing about threads: the same inputs always produce
// the same pieces, so a decomposition can be reproduced and tested alone.
//
// # Two-step protocol
//
// Splitting a region is a two-call sequence and the first call is not the
// final word:
//
//	n := s.NumberOfSplits(r, requested)   // loop bound, may be too large
//	piece := r.Clone()
//	achieved := s.Split(0, n, &piece)     // authoritative piece count
//	for i := uint(1); i < achieved; i++ { ... s.Split(i, n, &next) ... }
//
// NumberOfSplits only reports whether the region can be split at all; when it
// can, it returns the requested count unchanged. Whether that many non-empty
// pieces exist depends on how the split axis divides, which only Split
// computes. Callers must read the piece count from Split and never launch work
// for indices at or beyond it.
package splitter

import (
	"volumepipe/pkg/region"
)

// SplitDescriptor records how one piece of a split was computed.
// SplitAxis is -1 when the region cannot be split.
type SplitDescriptor struct {
	SplitAxis       int
	ValuesPerPiece  uint64
	PieceIndex      uint
	RequestedPieces uint
	AchievedPieces  uint
}

// RegionSplitter splits a region along its outermost axis with more than one
// pixel. It holds no state and is safe for concurrent use.
type RegionSplitter struct{}

// splitAxis returns the highest axis whose size is greater than one, or -1.
func splitAxis(r region.Region) int {
	for d := r.Dimension() - 1; d >= 0; d-- {
		if r.SizeAt(d) > 1 {
			return d
		}
	}
	return -1
}

// ceilDiv is ceil(a/b) for b > 0.
func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// piecesFor returns the number of values each piece receives and the number
// of pieces that actually receive work when rng values are divided n ways.
func piecesFor(rng uint64, n uint) (valuesPerPiece uint64, achieved uint) {
	valuesPerPiece = ceilDiv(rng, uint64(n))
	return valuesPerPiece, uint(ceilDiv(rng, valuesPerPiece))
}

// NumberOfSplits returns 1 when every axis of r has at most one pixel and
// requested otherwise. The returned value is an upper bound; see the package
// documentation for why Split must be consulted for the real count.
func (RegionSplitter) NumberOfSplits(r region.Region, requested uint) uint {
	if requested == 0 {
		requested = 1
	}
	if splitAxis(r) < 0 {
		return 1
	}
	return requested
}

// Split overwrites r with piece i of numberOfPieces and returns the number of
// pieces that actually receive work. Every piece except the last spans
// ceil(range/numberOfPieces) values along the split axis; the last absorbs
// the remainder.
//
// When r cannot be split it is left unmodified and 1 is returned. Indices at
// or beyond the returned count are undefined: r is left unmodified and the
// caller must not use it.
func (RegionSplitter) Split(i, numberOfPieces uint, r *region.Region) uint {
	if numberOfPieces == 0 {
		numberOfPieces = 1
	}
	axis := splitAxis(*r)
	if axis < 0 {
		return 1
	}

	rng := r.SizeAt(axis)
	valuesPerPiece, achieved := piecesFor(rng, numberOfPieces)
	last := achieved - 1

	switch {
	case i < last:
		r.SetIndexAt(axis, r.IndexAt(axis)+int64(uint64(i)*valuesPerPiece))
		r.SetSizeAt(axis, valuesPerPiece)
	case i == last:
		offset := uint64(i) * valuesPerPiece
		r.SetIndexAt(axis, r.IndexAt(axis)+int64(offset))
		r.SetSizeAt(axis, rng-offset)
	}
	return achieved
}

// Describe reports how piece i of r would be produced without modifying r.
func (s RegionSplitter) Describe(i, numberOfPieces uint, r region.Region) SplitDescriptor {
	desc := SplitDescriptor{
		SplitAxis:       splitAxis(r),
		PieceIndex:      i,
		RequestedPieces: numberOfPieces,
		AchievedPieces:  1,
	}
	if desc.SplitAxis < 0 {
		return desc
	}
	if numberOfPieces == 0 {
		numberOfPieces = 1
	}
	desc.ValuesPerPiece, desc.AchievedPieces = piecesFor(r.SizeAt(desc.SplitAxis), numberOfPieces)
	return desc
}

// Pieces runs the two-step protocol and returns every piece of r for the
// requested count, in order.
func (s RegionSplitter) Pieces(r region.Region, requested uint) []region.Region {
	n := s.NumberOfSplits(r, requested)
	first := r.Clone()
	achieved := s.Split(0, n, &first)

	pieces := make([]region.Region, 0, achieved)
	pieces = append(pieces, first)
	for i := uint(1); i < achieved; i++ {
		piece := r.Clone()
		s.Split(i, n, &piece)
		pieces = append(pieces, piece)
	}
	return pieces
}

// Partitioner divides a complete domain of type D into pieces. Partition
// returns piece i of n and the number of pieces that receive work; the piece
// is undefined when i is at or beyond that number.
type Partitioner[D any] interface {
	Partition(i, n uint, complete D) (D, uint)
}

// RegionPartitioner adapts a RegionSplitter to the Partitioner interface.
type RegionPartitioner struct {
	Splitter RegionSplitter
}

// Partition implements Partitioner.
func (p RegionPartitioner) Partition(i, n uint, complete region.Region) (region.Region, uint) {
	piece := complete.Clone()
	achieved := p.Splitter.Split(i, n, &piece)
	return piece, achieved
}
