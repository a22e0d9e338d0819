package memory_map

import (
	"fmt"
	"sort"
)

// Permission is a set of access grants on a mapping.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
	PermShared // absent means private (copy on write)
)

func (p Permission) Has(q Permission) bool {
	return p&q == q
}

// MemoryRegion represents one contiguous mapping in a process's address space.
// End is exclusive and always greater than Start.
type MemoryRegion struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
	Perms string `json:"perms"` // as printed by the kernel, e.g. "r-xp"
}

// Size returns End - Start.
func (r MemoryRegion) Size() uint64 {
	return r.End - r.Start
}

// Contains reports whether addr lies inside the region.
func (r MemoryRegion) Contains(addr uint64) bool {
	return addr >= r.Start && addr < r.End
}

// Permissions decodes Perms into a set. A flag character counts wherever it
// appears, so nonstandard orderings decode the same as the canonical one.
func (r MemoryRegion) Permissions() Permission {
	var p Permission
	for _, c := range r.Perms {
		switch c {
		case 'r':
			p |= PermRead
		case 'w':
			p |= PermWrite
		case 'x':
			p |= PermExecute
		case 's':
			p |= PermShared
		}
	}
	return p
}

// String returns a string representation of the region in maps format
func (r MemoryRegion) String() string {
	return fmt.Sprintf("%x-%x %s", r.Start, r.End, r.Perms)
}

// Selector decides whether a region takes part in a capture.
type Selector func(MemoryRegion) bool

// ReadAnywhere selects regions whose permission string contains 'r' at any
// position. This is the default.
func ReadAnywhere(r MemoryRegion) bool {
	return r.Permissions().Has(PermRead)
}

// ReadLeading selects regions whose permission string starts with 'r'.
func ReadLeading(r MemoryRegion) bool {
	return len(r.Perms) > 0 && r.Perms[0] == 'r'
}

// All selects every region, readable or not.
func All(MemoryRegion) bool {
	return true
}

// Selector names accepted by SelectorByName.
const (
	SelectContainsRead   = "contains-r"
	SelectStartsWithRead = "starts-with-r"
	SelectAll            = "all"
)

// SelectorByName maps a configuration value to a Selector. The empty string
// means SelectContainsRead.
func SelectorByName(name string) (Selector, error) {
	switch name {
	case "", SelectContainsRead:
		return ReadAnywhere, nil
	case SelectStartsWithRead:
		return ReadLeading, nil
	case SelectAll:
		return All, nil
	}
	return nil, fmt.Errorf("unknown region selector %q (want %s, %s or %s)",
		name, SelectContainsRead, SelectStartsWithRead, SelectAll)
}

// Select returns the regions accepted by sel, in their original order.
func Select(regions []MemoryRegion, sel Selector) []MemoryRegion {
	if sel == nil {
		sel = ReadAnywhere
	}
	selected := make([]MemoryRegion, 0, len(regions))
	for _, r := range regions {
		if sel(r) {
			selected = append(selected, r)
		}
	}
	return selected
}

// FindRegion returns the region containing addr. regions must be sorted by
// Start and non-overlapping.
func FindRegion(addr uint64, regions []MemoryRegion) *MemoryRegion {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].End > addr
	})
	if i < len(regions) && regions[i].Contains(addr) {
		return &regions[i]
	}

	return nil
}

// TotalSize sums the sizes of regions.
func TotalSize(regions []MemoryRegion) uint64 {
	var total uint64
	for _, r := range regions {
		total += r.Size()
	}
	return total
}
