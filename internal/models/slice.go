package models

import (
	"time"
)

// Slice describes one 2D image of a slice stack loaded from disk
type Slice struct {
	// Index is the position of this slice in the sorted sequence
	Index int

	// Filename is the original filename of the slice
	Filename string

	// Width and Height are the pixel dimensions of the slice
	Width, Height int
}

// ExecutionState tracks one GenerateData invocation of a filter
type ExecutionState int

const (
	NotStarted ExecutionState = iota
	Running
	Completed
	Failed
)

func (s ExecutionState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExecutionReport holds the diagnostics recorded after a filter runs
type ExecutionReport struct {
	// RunID identifies the invocation in logs
	RunID string

	// Filter is the name of the filter that ran
	Filter string

	// ThreadsRequested is the configured thread ceiling for the run
	ThreadsRequested int

	// ThreadsUsed is the number of workers the dispatcher actually started
	ThreadsUsed int

	// Pixels is the number of output pixels in the requested region
	Pixels uint64

	// Duration is the wall time spent in the threaded section
	Duration time.Duration

	// State is the final state of the invocation
	State ExecutionState

	// Err is the error that ended a failed run
	Err error
}
