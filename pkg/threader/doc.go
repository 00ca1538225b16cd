// Package threader runs per-piece work in parallel over a partitioned domain.
//
// Decomposition is static: the pieces are computed up front by a splitter,
// one worker is started per piece, and the caller blocks until every worker
// returns (fork-join). There is no work stealing and no cancellation. Workers
// never share mutable state through the threader; correctness of concurrent
// writes rests on the pieces being disjoint.
//
// # Thread counts
//
// Every ceiling is bounded by GlobalMaximumThreads. The number of workers
// actually used by a dispatch can be lower than requested when the domain
// does not split that finely; surplus workers are never started.
//
// # Failures
//
// A worker that returns an error or panics does not stop the others. After
// the join, the first error is returned to the caller unmodified; panics are
// reported as *PanicError.
package threader
