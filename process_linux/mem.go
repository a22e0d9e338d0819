//go:build linux

package process_linux

import (
	"fmt"
	"io"
	"math"
	"os"

	"memsnap/process"

	"golang.org/x/sys/unix"
)

// ProcMem is the memory image of a process backed by /proc/<pid>/mem.
// Seek maps to lseek(2) and Read to read(2), so every region read is a
// positioned read of the live address space.
type ProcMem struct {
	pid  process.ProcessID
	path string
	fd   int
}

// OpenProcMem opens /proc/<pid>/mem read-only. Failure wraps
// process.ErrMemoryImageUnavailable.
func OpenProcMem(fs process.ProcFS, pid process.ProcessID) (*ProcMem, error) {
	path := fs.MemPath(pid)

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, process.NewFatal(process.ErrMemoryImageUnavailable, pid, path, &os.PathError{Op: "open", Path: path, Err: err})
	}

	return &ProcMem{pid: pid, path: path, fd: fd}, nil
}

// Seek positions the handle at addr. Addresses that do not fit a signed
// file offset are rejected.
func (m *ProcMem) Seek(addr process.ProcessMemoryAddress) error {
	if m.fd < 0 {
		return os.ErrClosed
	}
	if uint64(addr) > math.MaxInt64 {
		return fmt.Errorf("address %s is outside the addressable range of %s", addr, m.path)
	}
	if _, err := unix.Seek(m.fd, int64(addr), io.SeekStart); err != nil {
		return &os.PathError{Op: "seek", Path: m.path, Err: err}
	}
	return nil
}

func (m *ProcMem) Read(p []byte) (int, error) {
	if m.fd < 0 {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(m.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, &os.PathError{Op: "read", Path: m.path, Err: err}
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (m *ProcMem) Close() error {
	if m.fd < 0 {
		return nil
	}
	err := unix.Close(m.fd)
	m.fd = -1
	return err
}
