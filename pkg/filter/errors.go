package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput marks a required input that was never set.
	ErrMissingInput = errors.New("required input is missing")

	// ErrRegionMismatch marks an input whose region differs from the output region.
	ErrRegionMismatch = errors.New("input region does not match output region")

	// ErrEmptyExtraction marks an extraction region that does not overlap the input.
	ErrEmptyExtraction = errors.New("extraction region does not overlap input")
)

// ConfigError reports a filter that was not set up correctly. It is raised
// before any worker starts, so nothing has been written to the output.
type ConfigError struct {
	Filter string
	Input  string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("filter %s: %s: %v", e.Filter, e.Input, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
