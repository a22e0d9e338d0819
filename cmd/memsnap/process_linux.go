//go:build linux

package main

import (
	"memsnap/config"
	"memsnap/process"
	"memsnap/process_linux"
	"memsnap/snapshot"
)

func resolveTarget(cfg *config.Config) (process.ProcessInfo, error) {
	fs := cfg.ProcFS()
	if cfg.PID == 0 {
		return process_linux.OneByName(fs, cfg.Name)
	}
	pid := process.ProcessID(cfg.PID)
	info, err := process_linux.ReadProcessInfo(fs, pid)
	return targetInfo(pid, info, err), nil
}

func newSession(cfg *config.Config, pid process.ProcessID, opts snapshot.Options) (*snapshot.Session, error) {
	backend, err := process_linux.ParseBackend(cfg.ReaderName())
	if err != nil {
		return nil, err
	}
	return process_linux.NewSession(cfg.ProcFS(), pid, backend, opts)
}
