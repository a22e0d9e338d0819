// Package process_blob reads back captures written in the directory layout,
// where every region keeps its own blob and its address range.
package process_blob

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"memsnap/process"
	"memsnap/process/memory_map"
	"memsnap/sink"
)

// ProcessDump is a capture loaded from disk
type ProcessDump struct {
	Metadata sink.DirMetadata
	Regions  []sink.DirRegion // sorted by start address
	blobs    map[uint64][]byte
}

// Load reads the metadata, the region map and every blob under dirname.
func Load(dirname string) (*ProcessDump, error) {
	p := &ProcessDump{blobs: make(map[uint64][]byte)}

	if err := readJSON(filepath.Join(dirname, sink.MetadataFile), &p.Metadata); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	if err := readJSON(filepath.Join(dirname, sink.RegionMapFile), &p.Regions); err != nil {
		return nil, fmt.Errorf("failed to read memory map: %w", err)
	}

	sort.Slice(p.Regions, func(i, j int) bool {
		return p.Regions[i].Start < p.Regions[j].Start
	})

	for _, region := range p.Regions {
		filename := filepath.Join(dirname, filepath.Base(region.File))
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read blob %s: %w", filename, err)
		}
		if uint64(len(data)) != region.Length {
			return nil, fmt.Errorf("blob %s holds %d bytes, region map says %d", filename, len(data), region.Length)
		}
		p.blobs[region.Start] = data
	}

	return p, nil
}

// MemoryMap returns the captured regions as enumerated at capture time.
func (p *ProcessDump) MemoryMap() []memory_map.MemoryRegion {
	result := make([]memory_map.MemoryRegion, len(p.Regions))
	for i, r := range p.Regions {
		result[i] = r.MemoryRegion
	}
	return result
}

// ReadMemory returns size bytes at addr. The range must lie within the
// captured bytes of a single region.
func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	mm := p.MemoryMap()
	region := memory_map.FindRegion(uint64(addr), mm)
	if region == nil {
		return nil, process.ErrAddressNotMapped
	}

	data := p.blobs[region.Start]

	offset := uint64(addr) - region.Start
	if offset >= uint64(len(data)) {
		return nil, fmt.Errorf("address %s was not captured (region %s kept %d bytes)", addr, region, len(data))
	}

	if uint64(size) > uint64(len(data))-offset {
		return nil, fmt.Errorf("read size %d exceeds region data bounds", size)
	}

	result := make([]byte, size)
	copy(result, data[offset:offset+uint64(size)])
	return result, nil
}

// WriteArtifact writes the regions' bytes back to back in address order,
// which is exactly the raw artifact of the same capture.
func (p *ProcessDump) WriteArtifact(w io.Writer) (int64, error) {
	var total int64
	for _, region := range p.Regions {
		n, err := w.Write(p.blobs[region.Start])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
