// Package region maps CPU virtual addresses to physical bus addresses.
//
// The 32-bit address space is split into eight 512MB slices selected by the
// top three address bits. KUSEG covers the lower four slices, KSEG0 and
// KSEG1 mirror the first 512MB of physical space (cached and uncached), and
// KSEG2 is passed through untouched.
package region

// Segment identifies a top-level division of the address space.
type Segment uint8

// Address space segments.
const (
	KUSEG Segment = iota
	KSEG0
	KSEG1
	KSEG2
)

// UncachedBase is the first address that is never served by the
// instruction cache.
const UncachedBase uint32 = 0xA0000000

var masks = [8]uint32{
	// KUSEG: 2048MB
	0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF,
	// KSEG0: 512MB
	0x7FFFFFFF,
	// KSEG1: 512MB
	0x1FFFFFFF,
	// KSEG2: 1024MB
	0xFFFFFFFF, 0xFFFFFFFF,
}

var segments = [8]Segment{KUSEG, KUSEG, KUSEG, KUSEG, KSEG0, KSEG1, KSEG2, KSEG2}

// Mask returns the physical address for addr.
func Mask(addr uint32) uint32 {
	return addr & masks[addr>>29]
}

// SegmentOf returns the segment addr falls in.
func SegmentOf(addr uint32) Segment {
	return segments[addr>>29]
}

// IsCacheable reports whether instruction fetches at addr may be served by
// the instruction cache.
func IsCacheable(addr uint32) bool {
	return addr < UncachedBase
}

// String returns the conventional segment name.
func (s Segment) String() string {
	switch s {
	case KUSEG:
		return "KUSEG"
	case KSEG0:
		return "KSEG0"
	case KSEG1:
		return "KSEG1"
	case KSEG2:
		return "KSEG2"
	default:
		return "unknown"
	}
}
