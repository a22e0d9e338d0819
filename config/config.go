// Package config loads and validates the optional memsnap YAML file.
package config

import (
	"fmt"
	"os"

	"memsnap/process"
	"memsnap/process/memory_map"
	"memsnap/sink"
	"memsnap/snapshot"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Default values for capture configuration.
const (
	DefaultMaxRegionSize = snapshot.DefaultMaxRegionSize
	DefaultReader        = "procmem"
)

// Config holds a capture configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	PID              int          `yaml:"pid"`
	Name             string       `yaml:"name"`            // target by process name when pid is unset
	ProcRoot         string       `yaml:"proc_root"`       // default /proc
	Reader           string       `yaml:"reader"`          // procmem | vm_readv
	Select           string       `yaml:"select"`          // contains-r | starts-with-r | all
	RawMaxRegionSize string       `yaml:"max_region_size"` // e.g. "512MiB"; "0" means the session default
	PartialReads     string       `yaml:"partial_reads"`   // discard | keep
	Output           OutputConfig `yaml:"output"`
	Report           string       `yaml:"report"` // optional JSON report path
}

// OutputConfig controls where the artifact goes.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // raw | zstd | dir
}

// ProcFS returns the procfs layout rooted at ProcRoot.
func (c *Config) ProcFS() process.ProcFS {
	if c.ProcRoot != "" {
		return process.ProcFS{Root: c.ProcRoot}
	}
	return process.DefaultProcFS
}

// ReaderName returns the configured reader backend or the default.
func (c *Config) ReaderName() string {
	if c.Reader != "" {
		return c.Reader
	}
	return DefaultReader
}

// MaxRegionSize returns the configured region size limit or the default.
func (c *Config) MaxRegionSize() (process.ProcessMemorySize, error) {
	if c.RawMaxRegionSize == "" {
		return DefaultMaxRegionSize, nil
	}
	n, err := humanize.ParseBytes(c.RawMaxRegionSize)
	if err != nil {
		return 0, fmt.Errorf("max_region_size: %w", err)
	}
	return process.ProcessMemorySize(n), nil
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (sink.Format, error) {
	return sink.ParseFormat(c.Output.Format)
}

// SnapshotOptions builds the session options described by c.
func (c *Config) SnapshotOptions() (snapshot.Options, error) {
	sel, err := memory_map.SelectorByName(c.Select)
	if err != nil {
		return snapshot.Options{}, err
	}
	maxSize, err := c.MaxRegionSize()
	if err != nil {
		return snapshot.Options{}, err
	}
	partial, err := snapshot.ParsePartialReadPolicy(c.PartialReads)
	if err != nil {
		return snapshot.Options{}, err
	}
	return snapshot.Options{
		Selector:      sel,
		MaxRegionSize: maxSize,
		PartialReads:  partial,
	}, nil
}

// Validate checks that c describes a runnable capture.
func (c *Config) Validate() error {
	if c.PID == 0 && c.Name == "" {
		return fmt.Errorf("either pid or name is required")
	}
	if c.PID != 0 {
		if err := process.ProcessID(c.PID).Validate(); err != nil {
			return err
		}
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if _, err := c.SnapshotOptions(); err != nil {
		return err
	}
	return nil
}

// Load reads a YAML configuration file. A missing file yields a default
// Config so the command line alone can drive a capture.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
