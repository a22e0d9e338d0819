//go:build linux

package process_linux

import (
	"fmt"
	"io"
	"os"

	"memsnap/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv reads len(localBuf) bytes at remoteAddr of pid. It returns
// the number of bytes copied; a partial count comes back without error when
// the range runs into an unmapped page.
func process_vm_readv(pid process.ProcessID, localBuf []byte, remoteAddr process.ProcessMemoryAddress) (int, error) {
	if len(localBuf) == 0 {
		return 0, nil
	}

	localIov := []unix.Iovec{{Base: &localBuf[0]}}
	localIov[0].SetLen(len(localBuf))

	remoteIov := []unix.RemoteIovec{{
		Base: uintptr(remoteAddr),
		Len:  len(localBuf),
	}}

	n, err := unix.ProcessVMReadv(int(pid), localIov, remoteIov, 0)
	if err != nil {
		return 0, fmt.Errorf("process_vm_readv failed at %s: %w", remoteAddr, err)
	}

	return n, nil
}

// VMReader is a memory image that copies straight out of the target with
// process_vm_readv(2) instead of going through /proc/<pid>/mem.
type VMReader struct {
	pid    process.ProcessID
	addr   process.ProcessMemoryAddress
	closed bool
}

// OpenVMReader checks that pid exists; process_vm_readv needs no handle.
func OpenVMReader(fs process.ProcFS, pid process.ProcessID) (*VMReader, error) {
	if !procExists(fs, pid) {
		return nil, process.NewFatal(process.ErrMemoryImageUnavailable, pid, fs.Dir(pid), os.ErrNotExist)
	}
	return &VMReader{pid: pid}, nil
}

func (r *VMReader) Seek(addr process.ProcessMemoryAddress) error {
	if r.closed {
		return os.ErrClosed
	}
	r.addr = addr
	return nil
}

func (r *VMReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, os.ErrClosed
	}
	n, err := process_vm_readv(r.pid, p, r.addr)
	r.addr += process.ProcessMemoryAddress(n)
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (r *VMReader) Close() error {
	r.closed = true
	return nil
}
