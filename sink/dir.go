package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"memsnap/process"
	"memsnap/process/memory_map"
)

// File names inside a directory capture.
const (
	MetadataFile  = "metadata.json"
	RegionMapFile = "process_memory_map.json"
)

// DirMetadata describes the captured process.
type DirMetadata struct {
	SessionID  string            `json:"session_id,omitempty"`
	PID        process.ProcessID `json:"pid"`
	Name       string            `json:"name"`
	Exe        string            `json:"exe,omitempty"`
	CapturedAt time.Time         `json:"captured_at"`
}

// DirRegion is one entry of the region map: the region as enumerated plus
// the number of bytes actually stored for it.
type DirRegion struct {
	memory_map.MemoryRegion
	Length uint64 `json:"length"`
	File   string `json:"file"`
}

// BlobName returns the file name used for a region's bytes.
func BlobName(region memory_map.MemoryRegion, length int) string {
	return fmt.Sprintf("blob_0x%x_%d.bin", region.Start, length)
}

// Dir stores each region in its own file and writes a region map and
// metadata on Close, so region boundaries survive the capture.
type Dir struct {
	dir     string
	meta    DirMetadata
	regions []DirRegion
}

// CreateDir creates dir if needed.
func CreateDir(dir string, meta DirMetadata) (*Dir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if meta.CapturedAt.IsZero() {
		meta.CapturedAt = time.Now().UTC()
	}
	return &Dir{dir: dir, meta: meta}, nil
}

// DirOpener returns an Opener for CreateDir(dir, meta).
func DirOpener(dir string, meta DirMetadata) Opener {
	return func() (Sink, error) {
		return CreateDir(dir, meta)
	}
}

func (d *Dir) Append(region memory_map.MemoryRegion, data []byte) error {
	name := BlobName(region, len(data))
	if err := os.WriteFile(filepath.Join(d.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write blob for region %s: %w", region, err)
	}

	d.regions = append(d.regions, DirRegion{
		MemoryRegion: region,
		Length:       uint64(len(data)),
		File:         name,
	})
	return nil
}

func (d *Dir) Close() error {
	if d.regions == nil {
		d.regions = []DirRegion{}
	}
	if err := writeJSON(filepath.Join(d.dir, RegionMapFile), d.regions); err != nil {
		return fmt.Errorf("failed to write region map: %w", err)
	}
	if err := writeJSON(filepath.Join(d.dir, MetadataFile), d.meta); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
