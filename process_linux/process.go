//go:build linux

// Package process_linux binds capture sessions to the Linux procfs: the maps
// descriptor, the memory image and process lookup.
package process_linux

import (
	"fmt"

	"memsnap/process"
	"memsnap/process/memory_map"
	"memsnap/snapshot"
)

// Backend selects how the memory image is read.
type Backend string

const (
	// BackendProcMem seeks and reads /proc/<pid>/mem.
	BackendProcMem Backend = "procmem"
	// BackendVMReadv uses process_vm_readv(2).
	BackendVMReadv Backend = "vm_readv"
)

// ParseBackend accepts "procmem" (or "") and "vm_readv".
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendProcMem:
		return BackendProcMem, nil
	case BackendVMReadv:
		return BackendVMReadv, nil
	}
	return "", fmt.Errorf("unknown reader backend %q (want %s or %s)", s, BackendProcMem, BackendVMReadv)
}

// NewImageOpener returns the snapshot.ImageOpener for backend.
func NewImageOpener(fs process.ProcFS, backend Backend) snapshot.ImageOpener {
	if backend == BackendVMReadv {
		return func(pid process.ProcessID) (snapshot.MemoryImage, error) {
			r, err := OpenVMReader(fs, pid)
			if err != nil {
				return nil, err
			}
			return r, nil
		}
	}
	return func(pid process.ProcessID) (snapshot.MemoryImage, error) {
		m, err := OpenProcMem(fs, pid)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// NewSession creates a capture session for pid reading through fs.
func NewSession(fs process.ProcFS, pid process.ProcessID, backend Backend, opts snapshot.Options) (*snapshot.Session, error) {
	return snapshot.New(pid, opts, memory_map.NewLinuxMemoryMap(fs), NewImageOpener(fs, backend))
}
