package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend is returned when a requested backend name is
	// not registered.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrBackendUnavailable is returned when a backend's engine is not
	// installed or configured on this host.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ProcessingError is a per-document failure inside a backend. It is
// distinct from ErrBackendUnavailable: the engine works, this document
// does not.
type ProcessingError struct {
	Backend string
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: processing failed: %v", e.Backend, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
