package threader

import (
	"fmt"
	"sync/atomic"

	"volumepipe/pkg/splitter"
)

// WorkItem is the input one worker receives: its identifier, the number of
// workers in the dispatch, and the piece of the domain it owns. Shared state
// reaches the worker through the Work value itself and is only borrowed for
// the duration of Execute.
type WorkItem[D any] struct {
	ThreadID int
	Total    int
	Domain   D
}

// Work is the three-phase operation a DomainThreader runs. Before and After
// run on the calling goroutine; ThreadedExecution runs once per piece,
// concurrently.
type Work[D any] interface {
	// BeforeThreadedExecution receives the number of workers that will run,
	// so per-thread state can be sized.
	BeforeThreadedExecution(used int) error
	ThreadedExecution(item WorkItem[D]) error
	// AfterThreadedExecution runs only if every worker succeeded; it is the
	// place to reduce per-thread results.
	AfterThreadedExecution() error
}

// WorkFunc adapts a plain function to Work with empty Before and After phases.
type WorkFunc[D any] func(item WorkItem[D]) error

func (f WorkFunc[D]) BeforeThreadedExecution(int) error { return nil }

func (f WorkFunc[D]) ThreadedExecution(item WorkItem[D]) error { return f(item) }

func (f WorkFunc[D]) AfterThreadedExecution() error { return nil }

// DomainThreader partitions an arbitrary domain and runs a Work over the
// pieces in parallel. The domain type only needs a Partitioner: image
// regions, index ranges of a point container, and so on.
type DomainThreader[D any] struct {
	partitioner splitter.Partitioner[D]
	maxThreads  atomic.Int64
	used        atomic.Int64
	settings    settings
}

// NewDomainThreader creates a threader with the given partitioner and thread
// ceiling. The ceiling is clamped with ClampThreads.
func NewDomainThreader[D any](p splitter.Partitioner[D], maxThreads int, opts ...Option) *DomainThreader[D] {
	t := &DomainThreader[D]{
		partitioner: p,
		settings:    defaultSettings(),
	}
	for _, opt := range opts {
		opt(&t.settings)
	}
	t.maxThreads.Store(int64(ClampThreads(maxThreads)))
	return t
}

// MaximumNumberOfThreads returns the thread ceiling.
func (t *DomainThreader[D]) MaximumNumberOfThreads() int {
	return int(t.maxThreads.Load())
}

// SetMaximumNumberOfThreads changes the thread ceiling, clamped with ClampThreads.
func (t *DomainThreader[D]) SetMaximumNumberOfThreads(n int) {
	t.maxThreads.Store(int64(ClampThreads(n)))
}

// NumberOfThreadsUsed returns how many workers the last Execute ran. It can
// be lower than the ceiling when the domain does not split that finely.
func (t *DomainThreader[D]) NumberOfThreadsUsed() int {
	return int(t.used.Load())
}

// Execute partitions domain, runs the Before phase, runs one worker per
// piece, joins them, and runs the After phase. A worker error is returned
// unmodified after every worker has finished, and After is skipped.
func (t *DomainThreader[D]) Execute(domain D, work Work[D]) error {
	if work == nil {
		return ErrNilCallback
	}

	_, achieved := t.partitioner.Partition(0, uint(t.MaximumNumberOfThreads()), domain)
	used := int(achieved)
	t.used.Store(int64(used))

	if err := work.BeforeThreadedExecution(used); err != nil {
		return fmt.Errorf("before threaded execution: %w", err)
	}

	err := t.settings.run(used, func(id int) error {
		sub, _ := t.partitioner.Partition(uint(id), achieved, domain)
		return work.ThreadedExecution(WorkItem[D]{ThreadID: id, Total: used, Domain: sub})
	})
	if err != nil {
		return err
	}

	if err := work.AfterThreadedExecution(); err != nil {
		return fmt.Errorf("after threaded execution: %w", err)
	}
	return nil
}
