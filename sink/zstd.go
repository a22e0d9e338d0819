package sink

import (
	"fmt"
	"io"
	"os"

	"memsnap/process/memory_map"

	"github.com/klauspost/compress/zstd"
)

// Zstd writes the raw artifact through a zstd encoder. Decompressing the
// file yields exactly what File would have written.
type Zstd struct {
	path string
	f    *os.File
	enc  *zstd.Encoder
}

// CreateZstd creates (or truncates) path.
func CreateZstd(path string) (*Zstd, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	return &Zstd{path: path, f: f, enc: enc}, nil
}

// ZstdOpener returns an Opener for CreateZstd(path).
func ZstdOpener(path string) Opener {
	return func() (Sink, error) {
		return CreateZstd(path)
	}
}

func (s *Zstd) Append(_ memory_map.MemoryRegion, data []byte) error {
	if _, err := s.enc.Write(data); err != nil {
		return fmt.Errorf("compress into %s: %w", s.path, err)
	}
	return nil
}

func (s *Zstd) Close() error {
	encErr := s.enc.Close()
	closeErr := s.f.Close()
	if encErr != nil {
		return fmt.Errorf("finish zstd stream %s: %w", s.path, encErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", s.path, closeErr)
	}
	return nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (r *zstdReadCloser) Read(p []byte) (int, error) {
	return r.dec.Read(p)
}

func (r *zstdReadCloser) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// OpenReader opens a raw or zstd artifact for reading the uncompressed bytes.
func OpenReader(path string, format Format) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatRaw:
		return f, nil
	case FormatZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		return &zstdReadCloser{dec: dec, f: f}, nil
	}

	f.Close()
	return nil, fmt.Errorf("format %q has no single-stream reader", format)
}
