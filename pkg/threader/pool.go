// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0
//
// Adapted from github.com/ajroetker/go-highway/hwy/contrib/workerpool:
// Run replaces ParallelFor with per-index calls that return errors and
// recover panics, and a closed pool falls back to fresh goroutines.

package threader

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of persistent worker goroutines that can be shared by
// many dispatchers. Workers are spawned once at creation and reused for every
// Run, so repeated small dispatches do not pay goroutine start-up cost.
//
// Close must not be called while a Run is in progress, and work running on
// the pool must not call Run on the same pool.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem is one unit of a Run, released through its barrier when done.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// NewPool creates a pool with numWorkers persistent workers.
// If numWorkers <= 0, GOMAXPROCS workers are used.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts the pool down after queued work completes. Calling Close more
// than once is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Run calls fn(i) for every i in [0, n) on the pool's workers and blocks until
// all calls return. It returns the first error in completion order; a failing
// call does not stop the others. A closed pool falls back to fresh goroutines.
func (p *Pool) Run(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if p.closed.Load() {
		return forkJoin(n, fn)
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(n)
	for i := range n {
		p.workC <- workItem{
			fn: func() {
				if err := safeCall(i, fn); err != nil {
					errOnce.Do(func() { firstErr = err })
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()
	return firstErr
}
