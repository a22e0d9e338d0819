//go:build linux

package memory_map

import (
	"os"

	"memsnap/process"
)

// LinuxMemoryMap enumerates regions from /proc/[pid]/maps
type LinuxMemoryMap struct {
	fs process.ProcFS
}

// NewLinuxMemoryMap creates a new LinuxMemoryMap reading from fs
func NewLinuxMemoryMap(fs process.ProcFS) *LinuxMemoryMap {
	return &LinuxMemoryMap{fs: fs}
}

// MapsPath returns the descriptor ReadMemoryMap reads for pid.
func (l *LinuxMemoryMap) MapsPath(pid process.ProcessID) string {
	return l.fs.MapsPath(pid)
}

// ReadMemoryMap reads and parses the memory map for a process. Any failure to
// open or read the descriptor is fatal and wraps process.ErrDescriptorUnavailable.
func (l *LinuxMemoryMap) ReadMemoryMap(pid process.ProcessID) ([]MemoryRegion, error) {
	path := l.MapsPath(pid)

	file, err := os.Open(path)
	if err != nil {
		return nil, process.NewFatal(process.ErrDescriptorUnavailable, pid, path, err)
	}
	defer file.Close()

	regions, err := Parse(file)
	if err != nil {
		return nil, process.NewFatal(process.ErrDescriptorUnavailable, pid, path, err)
	}

	return regions, nil
}
