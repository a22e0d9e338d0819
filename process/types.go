package process

import (
	"fmt"
	"strconv"
)

// ProcessID represents a unique identifier for a process
type ProcessID int

// Validate reports whether pid is usable as a capture target.
// Anything beyond "positive" is left to the kernel.
func (pid ProcessID) Validate() error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, int(pid))
	}
	return nil
}

func (pid ProcessID) String() string {
	return strconv.Itoa(int(pid))
}

// ParseProcessID parses and validates a decimal process id.
func ParseProcessID(s string) (ProcessID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPID, s)
	}
	pid := ProcessID(n)
	if err := pid.Validate(); err != nil {
		return 0, err
	}
	return pid, nil
}

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID  ProcessID `json:"pid"`
	Name string    `json:"name"`          // from /proc/[pid]/comm
	Exe  string    `json:"exe,omitempty"` // resolved /proc/[pid]/exe, empty when unreadable
}
