package sink

import (
	"bytes"

	"memsnap/process/memory_map"
)

// Buffer keeps the artifact in memory, for consumers such as an image
// encoder that want the whole capture as one flat slice.
type Buffer struct {
	buf     bytes.Buffer
	regions []memory_map.MemoryRegion
	closed  bool
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Opener returns an Opener that hands out b itself.
func (b *Buffer) Opener() Opener {
	return func() (Sink, error) {
		return b, nil
	}
}

func (b *Buffer) Append(region memory_map.MemoryRegion, data []byte) error {
	b.buf.Write(data)
	b.regions = append(b.regions, region)
	return nil
}

func (b *Buffer) Close() error {
	b.closed = true
	return nil
}

// Bytes returns the artifact. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Buffer) Len() int {
	return b.buf.Len()
}

// Regions returns the regions appended so far, in order.
func (b *Buffer) Regions() []memory_map.MemoryRegion {
	return b.regions
}

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool {
	return b.closed
}
