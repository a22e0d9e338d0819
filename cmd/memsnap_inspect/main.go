package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"memsnap/process"
	"memsnap/process_blob"
	"memsnap/sink"

	"github.com/dustin/go-humanize"
)

func main() {
	fromFlag := flag.String("from", "", "Directory capture to load")
	addrFlag := flag.String("addr", "", "Address to hexdump from a directory capture (hex)")
	exportFlag := flag.String("export", "", "Write the raw artifact of a directory capture to this file")
	rawFlag := flag.String("raw", "", "Concatenated capture file to hexdump")
	formatFlag := flag.String("format", "raw", "Format of -raw: raw or zstd")
	offsetFlag := flag.Int64("offset", 0, "Byte offset into -raw")
	sizeFlag := flag.Int("size", 256, "Number of bytes to hexdump")
	flag.Parse()

	if err := checkRange(*offsetFlag, *sizeFlag); err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	switch {
	case *fromFlag != "" && *exportFlag != "":
		exportDir(*fromFlag, *exportFlag)
	case *fromFlag != "":
		inspectDir(*fromFlag, *addrFlag, *sizeFlag)
	case *rawFlag != "":
		inspectRaw(*rawFlag, *formatFlag, *offsetFlag, *sizeFlag)
	default:
		fmt.Println("Error: -from or -raw is required")
		flag.Usage()
		os.Exit(1)
	}
}

func checkRange(offset int64, size int) error {
	if offset < 0 {
		return fmt.Errorf("-offset must not be negative, got %d", offset)
	}
	if size < 0 {
		return fmt.Errorf("-size must not be negative, got %d", size)
	}
	return nil
}

func inspectDir(dir, addrStr string, size int) {
	dump, err := process_blob.Load(dir)
	if err != nil {
		fmt.Printf("Error loading capture from %s: %v\n", dir, err)
		os.Exit(1)
	}

	meta := dump.Metadata
	fmt.Printf("Loaded capture from %s\n", dir)
	fmt.Printf("Process Name: %s\n", meta.Name)
	fmt.Printf("PID: %d\n", meta.PID)
	if meta.SessionID != "" {
		fmt.Printf("Session: %s\n", meta.SessionID)
	}
	fmt.Printf("Captured: %s (%s)\n", meta.CapturedAt.Format("2006-01-02 15:04:05"), humanize.Time(meta.CapturedAt))
	fmt.Printf("Memory Regions: %d\n", len(dump.Regions))

	if addrStr == "" {
		fmt.Println("\nMemory Map:")
		for _, r := range dump.Regions {
			note := ""
			if r.Length != r.Size() {
				note = " partial"
			}
			fmt.Printf("  %016x - %016x (%s) %s%s\n", r.Start, r.End, r.Perms, humanize.IBytes(r.Length), note)
		}
		return
	}

	addrVal, err := strconv.ParseUint(strings.TrimPrefix(addrStr, "0x"), 16, 64)
	if err != nil {
		fmt.Printf("Error parsing address: %v\n", err)
		os.Exit(1)
	}
	addr := process.ProcessMemoryAddress(addrVal)

	data, err := dump.ReadMemory(addr, process.ProcessMemorySize(size))
	if err != nil {
		fmt.Printf("Error reading memory at %s: %v\n", addr, err)
		os.Exit(1)
	}

	fmt.Printf("\nHexdump at %s (%d bytes):\n", addr, len(data))
	fmt.Print(hex.Dump(data))
}

func exportDir(dir, path string) {
	dump, err := process_blob.Load(dir)
	if err != nil {
		fmt.Printf("Error loading capture from %s: %v\n", dir, err)
		os.Exit(1)
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Error creating %s: %v\n", path, err)
		os.Exit(1)
	}

	n, err := dump.WriteArtifact(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Printf("Error writing %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%s) from %d regions\n", path, humanize.IBytes(uint64(n)), len(dump.Regions))
}

func inspectRaw(path, formatStr string, offset int64, size int) {
	format, err := sink.ParseFormat(formatStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	r, err := sink.OpenReader(path, format)
	if err != nil {
		fmt.Printf("Error opening %s: %v\n", path, err)
		os.Exit(1)
	}
	defer r.Close()

	if _, err := io.CopyN(io.Discard, r, offset); err != nil {
		fmt.Printf("Error skipping to offset %d: %v\n", offset, err)
		os.Exit(1)
	}

	data := make([]byte, size)
	n, err := io.ReadFull(r, data)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		fmt.Printf("Error reading %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("Hexdump of %s at offset %d (%d bytes):\n", path, offset, n)
	fmt.Print(hex.Dump(data[:n]))
}
