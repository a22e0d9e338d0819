package memory_map

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// maxPermsLen matches the width the kernel prints: rwxp.
const maxPermsLen = 4

// maxLineLen bounds a single descriptor line; pathnames may be long.
const maxLineLen = 1 << 20

// ParseLine parses one maps line ("00400000-0040b000 r-xp 00000000 08:01 123 /bin/cat").
// Only the address range and the permission string are used. ok is false
// when the line does not have that shape or when start is not below end.
func ParseLine(line string) (MemoryRegion, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return MemoryRegion{}, false
	}

	lo, hi, found := strings.Cut(fields[0], "-")
	if !found {
		return MemoryRegion{}, false
	}

	start, err := strconv.ParseUint(lo, 16, 64)
	if err != nil {
		return MemoryRegion{}, false
	}

	end, err := strconv.ParseUint(hi, 16, 64)
	if err != nil {
		return MemoryRegion{}, false
	}

	if start >= end {
		return MemoryRegion{}, false
	}

	perms := fields[1]
	if len(perms) > maxPermsLen {
		perms = perms[:maxPermsLen]
	}

	return MemoryRegion{Start: start, End: end, Perms: perms}, true
}

// Parse reads a maps descriptor and returns its regions in input order.
// Malformed lines are skipped. The only error is a failure of r itself.
func Parse(r io.Reader) ([]MemoryRegion, error) {
	var regions []MemoryRegion

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLen)
	for scanner.Scan() {
		region, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		regions = append(regions, region)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return regions, nil
}
