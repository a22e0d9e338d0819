package snapshot

import (
	"io"

	"memsnap/process"
	"memsnap/process/memory_map"
)

// MemoryImage is a random-access view of a process's address space, such as
// /proc/<pid>/mem. Seek positions the handle at an absolute address; Read
// continues from there.
type MemoryImage interface {
	Seek(addr process.ProcessMemoryAddress) error
	io.Reader
	io.Closer
}

// ImageOpener opens the memory image of pid. Implementations return an error
// wrapping process.ErrMemoryImageUnavailable when they cannot.
type ImageOpener func(pid process.ProcessID) (MemoryImage, error)

// RegionSource enumerates the regions of a process.
type RegionSource interface {
	ReadMemoryMap(pid process.ProcessID) ([]memory_map.MemoryRegion, error)
}

// MapsLocator is implemented by region sources that know where the maps
// descriptor they read lives. Sources without it are assumed to read /proc.
type MapsLocator interface {
	MapsPath(pid process.ProcessID) string
}
