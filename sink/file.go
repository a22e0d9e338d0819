package sink

import (
	"bufio"
	"fmt"
	"os"

	"memsnap/process/memory_map"
)

const fileBufferSize = 1 << 20

// File writes the raw artifact: the regions' bytes back to back, with no
// framing.
type File struct {
	path string
	f    *os.File
	w    *bufio.Writer
	n    uint64
}

// CreateFile creates (or truncates) path.
func CreateFile(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &File{path: path, f: f, w: bufio.NewWriterSize(f, fileBufferSize)}, nil
}

// FileOpener returns an Opener for CreateFile(path).
func FileOpener(path string) Opener {
	return func() (Sink, error) {
		return CreateFile(path)
	}
}

func (s *File) Append(_ memory_map.MemoryRegion, data []byte) error {
	n, err := s.w.Write(data)
	s.n += uint64(n)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Written returns the number of bytes appended so far.
func (s *File) Written() uint64 {
	return s.n
}

func (s *File) Close() error {
	flushErr := s.w.Flush()
	closeErr := s.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", s.path, closeErr)
	}
	return nil
}
