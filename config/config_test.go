package config

import (
	"os"
	"path/filepath"
	"testing"

	"memsnap/process"
	"memsnap/process/memory_map"
	"memsnap/sink"
	"memsnap/snapshot"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memsnap.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
pid: 4242
proc_root: /host/proc
reader: vm_readv
select: starts-with-r
max_region_size: 512MiB
partial_reads: keep
output:
  path: /tmp/dump.zst
  format: zstd
report: /tmp/report.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PID != 4242 {
		t.Errorf("PID = %d, want 4242", cfg.PID)
	}
	if cfg.ProcFS().MemPath(1) != "/host/proc/1/mem" {
		t.Errorf("MemPath = %q", cfg.ProcFS().MemPath(1))
	}
	if cfg.ReaderName() != "vm_readv" {
		t.Errorf("ReaderName = %q", cfg.ReaderName())
	}

	size, err := cfg.MaxRegionSize()
	if err != nil {
		t.Fatalf("MaxRegionSize: %v", err)
	}
	if size != 512<<20 {
		t.Errorf("MaxRegionSize = %d, want %d", size, 512<<20)
	}

	format, err := cfg.OutputFormat()
	if err != nil || format != sink.FormatZstd {
		t.Errorf("OutputFormat = %q, %v", format, err)
	}

	opts, err := cfg.SnapshotOptions()
	if err != nil {
		t.Fatalf("SnapshotOptions: %v", err)
	}
	if opts.PartialReads != snapshot.KeepPartial {
		t.Errorf("PartialReads = %v, want keep", opts.PartialReads)
	}
	if opts.Selector(memory_map.MemoryRegion{Start: 1, End: 2, Perms: "-r-p"}) {
		t.Error("starts-with-r selector matched -r-p")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProcFS() != process.DefaultProcFS {
		t.Errorf("ProcFS = %+v, want default", cfg.ProcFS())
	}
	if cfg.ReaderName() != DefaultReader {
		t.Errorf("ReaderName = %q", cfg.ReaderName())
	}
	size, err := cfg.MaxRegionSize()
	if err != nil || size != DefaultMaxRegionSize {
		t.Errorf("MaxRegionSize = %d, %v", size, err)
	}

	opts, err := cfg.SnapshotOptions()
	if err != nil {
		t.Fatalf("SnapshotOptions: %v", err)
	}
	if !opts.Selector(memory_map.MemoryRegion{Start: 1, End: 2, Perms: "-r-p"}) {
		t.Error("default selector should be contains-r")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil || cfg == nil {
		t.Fatalf("Load(\"\") = %v, %v", cfg, err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "pid: [1, 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMaxRegionSize_Zero(t *testing.T) {
	cfg := &Config{RawMaxRegionSize: "0"}
	size, err := cfg.MaxRegionSize()
	if err != nil || size != 0 {
		t.Errorf("MaxRegionSize = %d, %v; want 0 (session default)", size, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok pid", Config{PID: 1, Output: OutputConfig{Path: "x"}}, false},
		{"ok name", Config{Name: "cat", Output: OutputConfig{Path: "x", Format: "dir"}}, false},
		{"no target", Config{Output: OutputConfig{Path: "x"}}, true},
		{"negative pid", Config{PID: -3, Output: OutputConfig{Path: "x"}}, true},
		{"no output", Config{PID: 1}, true},
		{"bad format", Config{PID: 1, Output: OutputConfig{Path: "x", Format: "png"}}, true},
		{"bad select", Config{PID: 1, Select: "maybe", Output: OutputConfig{Path: "x"}}, true},
		{"bad size", Config{PID: 1, RawMaxRegionSize: "lots", Output: OutputConfig{Path: "x"}}, true},
		{"bad partial", Config{PID: 1, PartialReads: "half", Output: OutputConfig{Path: "x"}}, true},
	}

	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
