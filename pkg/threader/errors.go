package threader

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidThreadCount is returned when fewer than one thread is requested.
	ErrInvalidThreadCount = errors.New("threader: requested thread count must be at least 1")

	// ErrNilCallback is returned when Execute is given no work to run.
	ErrNilCallback = errors.New("threader: callback is nil")
)

// PanicError reports a panic raised inside a worker. The remaining workers
// still run to completion before it is returned.
type PanicError struct {
	ThreadID int
	Value    interface{}
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("threader: worker %d panicked: %v", e.ThreadID, e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
