package threader

import (
	"sync/atomic"

	"volumepipe/pkg/region"
	"volumepipe/pkg/splitter"
)

// Callback processes one piece of a region. It is called concurrently from
// several goroutines and must only write output that belongs to sub.
type Callback func(sub region.Region, threadID int) error

// Dispatcher runs a Callback over the pieces a RegionSplitter produces for a
// region, using at most a fixed number of workers.
type Dispatcher struct {
	maxThreads int
	splitter   splitter.RegionSplitter
	settings   settings
	lastUsed   atomic.Int64
}

// NewDispatcher creates a dispatcher whose thread ceiling is maxThreads,
// clamped with ClampThreads.
func NewDispatcher(maxThreads int, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		maxThreads: ClampThreads(maxThreads),
		settings:   defaultSettings(),
	}
	for _, opt := range opts {
		opt(&d.settings)
	}
	return d
}

// MaximumNumberOfThreads returns the dispatcher's thread ceiling.
func (d *Dispatcher) MaximumNumberOfThreads() int {
	return d.maxThreads
}

// LastNumberOfThreadsUsed returns the worker count of the most recent Execute.
func (d *Dispatcher) LastNumberOfThreadsUsed() int {
	return int(d.lastUsed.Load())
}

// Execute splits whole into at most requested pieces (bounded by the
// dispatcher's ceiling), runs cb once per piece on its own worker, and waits
// for all of them. It returns the number of workers used, which equals the
// piece count Split reports for the request.
//
// Workers beyond the achievable piece count are never started. If any
// callback fails, the others still run to completion and the first error is
// returned as is.
func (d *Dispatcher) Execute(whole region.Region, requested int, cb Callback) (int, error) {
	if requested < 1 {
		return 0, ErrInvalidThreadCount
	}
	if cb == nil {
		return 0, ErrNilCallback
	}
	requested = min(requested, d.maxThreads)

	n := d.splitter.NumberOfSplits(whole, uint(requested))
	first := whole.Clone()
	achieved := d.splitter.Split(0, n, &first)
	used := int(achieved)
	d.lastUsed.Store(int64(used))

	if used < requested {
		d.settings.logger.Debug(component, "region does not split into requested pieces", map[string]interface{}{
			"region":    whole.String(),
			"requested": requested,
			"achieved":  used,
		})
	}

	err := d.settings.run(used, func(id int) error {
		sub := first
		if id > 0 {
			sub = whole.Clone()
			d.splitter.Split(uint(id), achieved, &sub)
		}
		return cb(sub, id)
	})
	return used, err
}
