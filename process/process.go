// Package process holds the primitives shared by the capture components:
// process identifiers, address types, procfs layout and the error taxonomy.
package process

import (
	"errors"
	"fmt"
)

// Fatal errors abort a capture session. Per-region errors are recorded and
// the session moves on to the next region.
var (
	// ErrDescriptorUnavailable is returned when /proc/<pid>/maps cannot be
	// opened or read (process gone, or the caller lacks permission).
	ErrDescriptorUnavailable = errors.New("memory map descriptor unavailable")

	// ErrMemoryImageUnavailable is returned when /proc/<pid>/mem cannot be opened.
	ErrMemoryImageUnavailable = errors.New("memory image unavailable")

	// ErrOutputSinkUnavailable is returned when the output sink cannot be
	// opened or stops accepting writes.
	ErrOutputSinkUnavailable = errors.New("output sink unavailable")

	ErrAllocationFailure = errors.New("allocation failure")
	ErrSeekFailure       = errors.New("seek failure")
	ErrShortRead         = errors.New("short read")

	// ErrInvalidPID is returned for process identifiers that are not positive.
	ErrInvalidPID = errors.New("invalid process id")

	// ErrAddressNotMapped is returned when a memory address is not found within any captured region.
	ErrAddressNotMapped = errors.New("address not mapped")
)

// FatalError describes a session-level failure together with the process
// and pseudo-file it concerns.
type FatalError struct {
	Kind error     // one of the fatal sentinels above
	PID  ProcessID // target process
	Path string    // pseudo-file or sink location
	Err  error     // underlying cause
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pid %d: %s: %v", e.PID, e.Path, e.Kind)
	}
	return fmt.Sprintf("pid %d: %s: %v: %v", e.PID, e.Path, e.Kind, e.Err)
}

func (e *FatalError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewFatal builds a FatalError.
func NewFatal(kind error, pid ProcessID, path string, err error) *FatalError {
	return &FatalError{Kind: kind, PID: pid, Path: path, Err: err}
}
