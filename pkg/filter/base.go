package filter

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"volumepipe/internal/logger"
	"volumepipe/internal/models"
	"volumepipe/pkg/region"
	"volumepipe/pkg/threader"
	"volumepipe/pkg/volume"
)

// ProgressCallback receives the completed fraction of a run, in [0, 1].
// Calls are serialised and never decrease within one run.
type ProgressCallback func(fraction float64)

// Input describes one input a filter needs before it can run.
type Input struct {
	Name    string
	Present bool
	// MatchOutput requires the input region to equal the output region.
	MatchOutput bool
	Region      region.Region
	// Invalid, when set, is the reason a present input cannot be used.
	Invalid error
}

// imageInput builds the Input entry for an image that must cover the output.
func imageInput[T volume.Pixel](name string, img *volume.Image[T]) Input {
	if img == nil {
		return Input{Name: name, MatchOutput: true}
	}
	return Input{Name: name, Present: true, MatchOutput: true, Region: img.Region()}
}

// Option configures a filter.
type Option func(*Base)

// WithThreads sets the thread ceiling for the filter. Values below one
// select GOMAXPROCS.
func WithThreads(n int) Option {
	return func(b *Base) {
		b.numThreads = threader.ClampThreads(n)
	}
}

// WithLogger sets the filter's logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithPool runs the filter's workers on a shared pool. The pool must stay
// open until every Update using it has returned, and Update must not be
// called from work already running on the same pool: Close during a run
// panics and a nested run deadlocks.
func WithPool(p *threader.Pool) Option {
	return func(b *Base) {
		b.pool = p
	}
}

// Base implements the generate-output protocol shared by every filter:
// validate inputs, allocate the output, dispatch the per-piece work, and
// record what happened. Filters embed Base and must not be copied.
type Base struct {
	name       string
	numThreads int
	logger     logger.Logger
	pool       *threader.Pool
	dispatcher *threader.Dispatcher

	progressMu sync.Mutex
	progressFn ProgressCallback
	total      uint64
	done       uint64

	mu     sync.Mutex
	report models.ExecutionReport
}

func (b *Base) init(name string, opts ...Option) {
	b.name = name
	b.numThreads = threader.ClampThreads(0)
	b.logger = logger.Nop()
	for _, opt := range opts {
		opt(b)
	}
	b.dispatcher = threader.NewDispatcher(threader.GlobalMaximumThreads, b.threaderOptions()...)
}

func (b *Base) threaderOptions() []threader.Option {
	opts := []threader.Option{threader.WithLogger(b.logger)}
	if b.pool != nil {
		opts = append(opts, threader.WithPool(b.pool))
	}
	return opts
}

// Name returns the filter name used in errors and logs.
func (b *Base) Name() string {
	return b.name
}

// NumberOfThreads returns the thread ceiling.
func (b *Base) NumberOfThreads() int {
	return b.numThreads
}

// SetNumberOfThreads changes the thread ceiling for subsequent runs.
func (b *Base) SetNumberOfThreads(n int) {
	b.numThreads = threader.ClampThreads(n)
}

// SetProgressCallback installs fn to be told how far the current run is.
func (b *Base) SetProgressCallback(fn ProgressCallback) {
	b.progressMu.Lock()
	defer b.progressMu.Unlock()
	b.progressFn = fn
}

// NumberOfThreadsUsed returns the worker count of the last run.
func (b *Base) NumberOfThreadsUsed() int {
	return b.LastReport().ThreadsUsed
}

// State returns the state of the last run.
func (b *Base) State() models.ExecutionState {
	return b.LastReport().State
}

// LastReport returns the diagnostics of the last run.
func (b *Base) LastReport() models.ExecutionReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.report
}

func (b *Base) setReport(r models.ExecutionReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report = r
}

// GenerateData runs cb over output split into at most NumberOfThreads
// pieces. Every required input is checked first; a missing or mismatched
// input fails with a *ConfigError before allocate or any worker runs. cb
// must write only the output pixels of the piece it is given.
func (b *Base) GenerateData(output region.Region, inputs []Input, allocate func() error, cb threader.Callback) error {
	return b.generate(output, inputs, allocate, func() (int, error) {
		return b.dispatcher.Execute(output, b.numThreads, cb)
	})
}

func (b *Base) generate(output region.Region, inputs []Input, allocate func() error, dispatch func() (int, error)) error {
	report := models.ExecutionReport{
		RunID:            uuid.NewString(),
		Filter:           b.name,
		ThreadsRequested: b.numThreads,
		Pixels:           output.NumberOfPixels(),
		State:            models.Running,
	}
	b.setReport(report)

	if err := b.validate(output, inputs); err != nil {
		return b.fail(report, err)
	}
	if allocate != nil {
		if err := allocate(); err != nil {
			return b.fail(report, fmt.Errorf("filter %s: allocate output: %w", b.name, err))
		}
	}

	b.resetProgress(report.Pixels)
	b.logger.Debug(b.name, "generate data", map[string]interface{}{
		"run_id":            report.RunID,
		"region":            output.String(),
		"threads_requested": report.ThreadsRequested,
	})

	start := time.Now()
	used, err := dispatch()
	report.Duration = time.Since(start)
	report.ThreadsUsed = used
	if err != nil {
		return b.fail(report, err)
	}

	report.State = models.Completed
	b.setReport(report)
	b.logger.Info(b.name, "generate data complete", map[string]interface{}{
		"run_id":       report.RunID,
		"threads_used": used,
		"pixels":       report.Pixels,
		"duration_ms":  report.Duration.Milliseconds(),
	})
	return nil
}

func (b *Base) validate(output region.Region, inputs []Input) error {
	for _, in := range inputs {
		if !in.Present {
			return &ConfigError{Filter: b.name, Input: in.Name, Err: ErrMissingInput}
		}
	}
	for _, in := range inputs {
		if in.Invalid != nil {
			return &ConfigError{Filter: b.name, Input: in.Name, Err: in.Invalid}
		}
		if in.MatchOutput && !in.Region.Equal(output) {
			return &ConfigError{
				Filter: b.name,
				Input:  in.Name,
				Err:    fmt.Errorf("%w: %s vs %s", ErrRegionMismatch, in.Region, output),
			}
		}
	}
	return nil
}

func (b *Base) fail(report models.ExecutionReport, err error) error {
	report.State = models.Failed
	report.Err = err
	b.setReport(report)
	b.logger.Error(b.name, err, map[string]interface{}{
		"run_id":       report.RunID,
		"threads_used": report.ThreadsUsed,
	})
	return err
}

func (b *Base) resetProgress(total uint64) {
	b.progressMu.Lock()
	defer b.progressMu.Unlock()
	b.total = total
	b.done = 0
}

// completed records that a worker finished n output pixels.
func (b *Base) completed(n uint64) {
	b.progressMu.Lock()
	defer b.progressMu.Unlock()
	b.done += n
	if b.progressFn == nil || b.total == 0 {
		return
	}
	b.progressFn(float64(b.done) / float64(b.total))
}
