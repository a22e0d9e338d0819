package process

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) String() string {
	return fmt.Sprintf("0x%x", uint64(pma))
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint64

func (pms ProcessMemorySize) String() string {
	return humanize.IBytes(uint64(pms))
}
