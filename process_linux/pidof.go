//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"memsnap/process"

	"golang.org/x/sys/unix"
)

// ListByName returns the processes whose comm, or the basename of whose
// executable, equals name, ordered by pid. Matching is case-sensitive, as
// with pidof(8). The calling process never matches.
func ListByName(procfs process.ProcFS, name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, errors.New("process name is empty")
	}

	entries, err := os.ReadDir(procfs.RootDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", procfs.RootDir(), err)
	}

	self := process.ProcessID(os.Getpid())
	var matches []process.ProcessInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := process.ParseProcessID(entry.Name())
		if err != nil || pid == self {
			continue
		}

		// Processes can exit between ReadDir and here; unreadable entries just don't match.
		info := readInfo(procfs, pid)
		switch {
		case info.Name == name:
		case info.Exe != "" && filepath.Base(info.Exe) == name:
			info.Name = name
		default:
			continue
		}
		matches = append(matches, info)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].PID < matches[j].PID
	})
	return matches, nil
}

// OneByName returns the lowest-pid match for name. When nothing matches the
// error wraps os.ErrNotExist.
func OneByName(procfs process.ProcFS, name string) (process.ProcessInfo, error) {
	matches, err := ListByName(procfs, name)
	if err != nil {
		return process.ProcessInfo{}, err
	}
	if len(matches) == 0 {
		return process.ProcessInfo{}, fmt.Errorf("no process named %q: %w", name, os.ErrNotExist)
	}
	return matches[0], nil
}

// ReadProcessInfo returns the comm name of pid and, when readable, the
// target of its exe link.
func ReadProcessInfo(procfs process.ProcFS, pid process.ProcessID) (process.ProcessInfo, error) {
	if _, err := os.Stat(procfs.CommPath(pid)); err != nil {
		return process.ProcessInfo{}, fmt.Errorf("failed to read process name: %w", err)
	}
	return readInfo(procfs, pid), nil
}

func readInfo(procfs process.ProcFS, pid process.ProcessID) process.ProcessInfo {
	info := process.ProcessInfo{PID: pid}
	if comm, err := os.ReadFile(procfs.CommPath(pid)); err == nil {
		info.Name = strings.TrimRight(string(comm), "\r\n\t ")
	}
	if exe, err := os.Readlink(procfs.ExePath(pid)); err == nil {
		info.Exe = exe
	}
	return info
}

// procExists reports whether pid is still around. A missing procfs entry is
// final; other stat errors fall back to signal 0.
func procExists(procfs process.ProcFS, pid process.ProcessID) bool {
	_, err := os.Stat(procfs.Dir(pid))
	switch {
	case err == nil:
		return true
	case errors.Is(err, fs.ErrNotExist):
		return false
	}
	return unix.Kill(int(pid), 0) == nil
}
