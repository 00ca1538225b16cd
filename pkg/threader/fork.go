package threader

import (
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"volumepipe/internal/logger"
)

// GlobalMaximumThreads bounds every thread ceiling in the process.
const GlobalMaximumThreads = 128

const component = "threader"

// Option configures a Dispatcher or DomainThreader.
type Option func(*settings)

type settings struct {
	logger logger.Logger
	pool   *Pool
}

func defaultSettings() settings {
	return settings{logger: logger.Nop()}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPool runs workers on a shared persistent pool instead of spawning
// goroutines for every dispatch.
func WithPool(p *Pool) Option {
	return func(s *settings) {
		s.pool = p
	}
}

// ClampThreads returns n bounded to [1, GlobalMaximumThreads]. Values below
// one select GOMAXPROCS.
func ClampThreads(n int) int {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return min(n, GlobalMaximumThreads)
}

// safeCall runs fn(i) and turns a panic into a *PanicError.
func safeCall(i int, fn func(i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{ThreadID: i, Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(i)
}

// forkJoin runs fn(i) for i in [0, n) on fresh goroutines and waits for all
// of them. The first error is returned unmodified.
func forkJoin(n int, fn func(i int) error) error {
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			return safeCall(i, fn)
		})
	}
	return g.Wait()
}

// run dispatches n workers. A single worker runs on the calling goroutine.
func (s settings) run(n int, fn func(i int) error) error {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return safeCall(0, fn)
	case s.pool != nil:
		return s.pool.Run(n, fn)
	default:
		return forkJoin(n, fn)
	}
}
