package snapshot

import (
	"errors"
	"io"
	"strings"
	"syscall"

	"memsnap/process"
	"memsnap/process/memory_map"
	"memsnap/sink"
)

// fakeSource serves a fixed maps descriptor.
type fakeSource struct {
	maps string
	err  error
}

func (f *fakeSource) ReadMemoryMap(process.ProcessID) ([]memory_map.MemoryRegion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return memory_map.Parse(strings.NewReader(f.maps))
}

// pathedSource is a fakeSource that knows where its descriptor lives.
type pathedSource struct {
	fakeSource
	root string
}

func (p *pathedSource) MapsPath(pid process.ProcessID) string {
	return process.ProcFS{Root: p.root}.MapsPath(pid)
}

type segment struct {
	addr uint64
	data []byte
}

// fakeImage simulates /proc/<pid>/mem: reads succeed only inside segments,
// and stop at a segment's end.
type fakeImage struct {
	segments []segment
	seekFail map[uint64]bool
	pos      uint64
	closed   bool
}

func (m *fakeImage) Seek(addr process.ProcessMemoryAddress) error {
	if m.seekFail[uint64(addr)] {
		return syscall.EINVAL
	}
	m.pos = uint64(addr)
	return nil
}

func (m *fakeImage) Read(p []byte) (int, error) {
	for _, s := range m.segments {
		if m.pos >= s.addr && m.pos < s.addr+uint64(len(s.data)) {
			n := copy(p, s.data[m.pos-s.addr:])
			m.pos += uint64(n)
			return n, nil
		}
	}
	return 0, syscall.EIO
}

func (m *fakeImage) Close() error {
	m.closed = true
	return nil
}

func (m *fakeImage) opener() ImageOpener {
	return func(process.ProcessID) (MemoryImage, error) {
		return m, nil
	}
}

func failingOpener(pid process.ProcessID) (MemoryImage, error) {
	return nil, process.NewFatal(process.ErrMemoryImageUnavailable, pid, "/proc/1/mem", syscall.EACCES)
}

// countingOpener wraps a sink opener and counts calls.
func countingOpener(open sink.Opener, calls *int) sink.Opener {
	return func() (sink.Sink, error) {
		*calls++
		return open()
	}
}

// brokenSink fails every Append.
type brokenSink struct {
	closed bool
}

func (b *brokenSink) Append(memory_map.MemoryRegion, []byte) error {
	return errors.New("disk full")
}

func (b *brokenSink) Close() error {
	b.closed = true
	return nil
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

var _ io.Reader = (*fakeImage)(nil)
