// Package sink provides the append-only destinations a capture writes to.
//
// Every sink receives the successfully read regions in ascending address
// order. Raw and zstd sinks keep only the bytes; the directory sink also
// keeps the region boundaries.
package sink

import (
	"fmt"

	"memsnap/process/memory_map"
)

// Sink is an append-only destination for captured regions.
type Sink interface {
	// Append adds the bytes read from region. len(data) may be smaller than
	// region.Size() when partial reads are kept.
	Append(region memory_map.MemoryRegion, data []byte) error

	// Close flushes and releases the sink. The artifact is only complete
	// once Close has returned nil.
	Close() error
}

// Opener opens a sink. Capture sessions call it once, after the memory image
// has been opened.
type Opener func() (Sink, error)

// Format names an on-disk artifact layout.
type Format string

const (
	FormatRaw  Format = "raw"  // concatenated bytes
	FormatZstd Format = "zstd" // concatenated bytes, zstd compressed
	FormatDir  Format = "dir"  // one blob per region plus a region map
)

// ParseFormat accepts the names above; the empty string means FormatRaw.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatRaw:
		return FormatRaw, nil
	case FormatZstd:
		return FormatZstd, nil
	case FormatDir:
		return FormatDir, nil
	}
	return "", fmt.Errorf("unknown output format %q (want raw, zstd or dir)", s)
}
