package snapshot

import (
	"fmt"

	"memsnap/process/memory_map"
)

// Status is the result of reading one region.
type Status int

const (
	StatusSuccess Status = iota
	StatusAllocationFailure
	StatusSeekFailure
	StatusShortRead
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusAllocationFailure:
		return "AllocationFailure"
	case StatusSeekFailure:
		return "SeekFailure"
	case StatusShortRead:
		return "ShortRead"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText lets reports carry the status name instead of a number.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome records what happened to one selected region.
type Outcome struct {
	Region    memory_map.MemoryRegion `json:"region"`
	Status    Status                  `json:"status"`
	Requested uint64                  `json:"requested"`
	Read      uint64                  `json:"read"`     // bytes obtained from the image
	Appended  uint64                  `json:"appended"` // bytes written to the sink
	Err       error                   `json:"-"`
	Reason    string                  `json:"reason,omitempty"`
}

func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusSuccess:
		return fmt.Sprintf("Success(%d)", o.Appended)
	case StatusShortRead:
		return fmt.Sprintf("ShortRead(%d of %d)", o.Read, o.Requested)
	}
	return fmt.Sprintf("%s(%v)", o.Status, o.Err)
}

// Summary counts outcomes. Every selected region lands in exactly one of
// Succeeded or Failed.
type Summary struct {
	Selected      int            `json:"selected"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	BytesCaptured uint64         `json:"bytes_captured"`
	ByStatus      map[string]int `json:"by_status"`
}

func summarize(outcomes []Outcome) Summary {
	s := Summary{
		Selected: len(outcomes),
		ByStatus: make(map[string]int),
	}
	for _, o := range outcomes {
		if o.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
		s.BytesCaptured += o.Appended
		s.ByStatus[o.Status.String()]++
	}
	return s
}
