package snapshot

import (
	"fmt"

	"memsnap/process"
	"memsnap/process/memory_map"
)

// PartialReadPolicy decides what happens to the bytes of a region that could
// only be read in part.
type PartialReadPolicy int

const (
	// DiscardPartial drops the whole region on a short read.
	DiscardPartial PartialReadPolicy = iota
	// KeepPartial appends the prefix that was read. The region is still
	// reported as a ShortRead.
	KeepPartial
)

func (p PartialReadPolicy) String() string {
	if p == KeepPartial {
		return "keep"
	}
	return "discard"
}

// ParsePartialReadPolicy accepts "discard" (or "") and "keep".
func ParsePartialReadPolicy(s string) (PartialReadPolicy, error) {
	switch s {
	case "", "discard":
		return DiscardPartial, nil
	case "keep":
		return KeepPartial, nil
	}
	return DiscardPartial, fmt.Errorf("unknown partial read policy %q (want discard or keep)", s)
}

// DefaultMaxRegionSize applies when Options.MaxRegionSize is zero.
const DefaultMaxRegionSize process.ProcessMemorySize = 1 << 30

// Options configure a capture session.
type Options struct {
	// Selector picks the regions to read. Nil means memory_map.ReadAnywhere.
	Selector memory_map.Selector

	// MaxRegionSize rejects larger regions as an AllocationFailure before
	// any buffer is allocated. Zero means DefaultMaxRegionSize.
	MaxRegionSize process.ProcessMemorySize

	PartialReads PartialReadPolicy
}
