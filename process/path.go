package process

import (
	"path/filepath"
	"strconv"
)

// DefaultProcRoot is where procfs is mounted on a normal Linux system.
const DefaultProcRoot = "/proc"

// ProcFS locates the per-process pseudo-files. Root is configurable so a
// capture can target a procfs mounted elsewhere (containers, tests).
type ProcFS struct {
	Root string
}

// DefaultProcFS points at /proc.
var DefaultProcFS = ProcFS{Root: DefaultProcRoot}

func (fs ProcFS) root() string {
	if fs.Root == "" {
		return DefaultProcRoot
	}
	return fs.Root
}

// Dir returns /proc/<pid>.
func (fs ProcFS) Dir(pid ProcessID) string {
	return filepath.Join(fs.root(), strconv.Itoa(int(pid)))
}

// MapsPath returns the memory map descriptor, /proc/<pid>/maps.
func (fs ProcFS) MapsPath(pid ProcessID) string {
	return filepath.Join(fs.Dir(pid), "maps")
}

// MemPath returns the memory image, /proc/<pid>/mem.
func (fs ProcFS) MemPath(pid ProcessID) string {
	return filepath.Join(fs.Dir(pid), "mem")
}

func (fs ProcFS) CommPath(pid ProcessID) string {
	return filepath.Join(fs.Dir(pid), "comm")
}

func (fs ProcFS) ExePath(pid ProcessID) string {
	return filepath.Join(fs.Dir(pid), "exe")
}

// RootDir returns the procfs mount point itself.
func (fs ProcFS) RootDir() string {
	return fs.root()
}
