package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"memsnap/config"
	"memsnap/process"
	"memsnap/sink"
	"memsnap/snapshot"

	"github.com/dustin/go-humanize"
)

func main() {
	configFlag := flag.String("config", "", "YAML configuration file")
	pidFlag := flag.Int("pid", 0, "Process ID to capture")
	nameFlag := flag.String("name", "", "Capture the lowest-PID process with this name")
	outputFlag := flag.String("output", "", "Output file (raw, zstd) or directory (dir)")
	formatFlag := flag.String("format", "", "Output format: raw, zstd or dir")
	selectFlag := flag.String("select", "", "Region selection: contains-r, starts-with-r or all")
	readerFlag := flag.String("reader", "", "Memory reader: procmem or vm_readv")
	maxRegionFlag := flag.String("max-region", "", "Largest region to read, e.g. 512MiB (0 for the 1GiB default)")
	partialFlag := flag.String("partial", "", "Short reads: discard or keep")
	procFlag := flag.String("proc", "", "procfs mount point")
	reportFlag := flag.String("report", "", "Write a JSON report of per-region outcomes")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pid":
			cfg.PID = *pidFlag
		case "name":
			cfg.Name = *nameFlag
		case "output":
			cfg.Output.Path = *outputFlag
		case "format":
			cfg.Output.Format = *formatFlag
		case "select":
			cfg.Select = *selectFlag
		case "reader":
			cfg.Reader = *readerFlag
		case "max-region":
			cfg.RawMaxRegionSize = *maxRegionFlag
		case "partial":
			cfg.PartialReads = *partialFlag
		case "proc":
			cfg.ProcRoot = *procFlag
		case "report":
			cfg.Report = *reportFlag
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	opts, err := cfg.SnapshotOptions()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	info, err := resolveTarget(cfg)
	if err != nil {
		fmt.Printf("Error resolving target: %v\n", err)
		os.Exit(1)
	}

	session, err := newSession(cfg, info.PID, opts)
	if err != nil {
		fmt.Printf("Error creating capture session for process %d: %v\n", info.PID, err)
		os.Exit(1)
	}

	fmt.Printf("Capturing process %d (%s) to %s [%s]\n", info.PID, info.Name, cfg.Output.Path, format)

	res, err := session.Capture(sinkOpener(format, cfg.Output.Path, sink.DirMetadata{
		SessionID: session.ID.String(),
		PID:       info.PID,
		Name:      info.Name,
		Exe:       info.Exe,
	}))
	if err != nil {
		fmt.Printf("Capture failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(res)

	if cfg.Report != "" {
		if err := writeReport(cfg.Report, res); err != nil {
			fmt.Printf("Error writing report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", cfg.Report)
	}
}

func sinkOpener(format sink.Format, path string, meta sink.DirMetadata) sink.Opener {
	switch format {
	case sink.FormatZstd:
		return sink.ZstdOpener(path)
	case sink.FormatDir:
		return sink.DirOpener(path, meta)
	}
	return sink.FileOpener(path)
}

func printSummary(res *snapshot.Result) {
	s := res.Summary
	fmt.Printf("Regions: %d enumerated, %d selected\n", res.Enumerated, s.Selected)
	fmt.Printf("  - Captured: %d (%s)\n", s.Succeeded, humanize.IBytes(s.BytesCaptured))
	fmt.Printf("  - Failed: %d\n", s.Failed)
	for _, status := range []snapshot.Status{snapshot.StatusShortRead, snapshot.StatusSeekFailure, snapshot.StatusAllocationFailure} {
		if n := s.ByStatus[status.String()]; n > 0 {
			fmt.Printf("    %s: %d\n", status, n)
		}
	}
}

func writeReport(path string, res *snapshot.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// targetInfo falls back to the bare pid when /proc/<pid>/comm is unreadable.
func targetInfo(pid process.ProcessID, info process.ProcessInfo, err error) process.ProcessInfo {
	if err != nil {
		return process.ProcessInfo{PID: pid, Name: "unknown"}
	}
	return info
}
