package bus

import (
	"errors"
	"fmt"
	"sort"
)

// Well known physical ranges of the console memory map.
var (
	RAMRange          = Range{Start: 0x00000000, Length: 2 * 1024 * 1024}
	ExpansionRange    = Range{Start: 0x1F000000, Length: 512 * 1024}
	ScratchpadRange   = Range{Start: 0x1F800000, Length: 1024}
	IORange           = Range{Start: 0x1F801000, Length: 8 * 1024}
	BIOSRange         = Range{Start: 0x1FC00000, Length: 512 * 1024}
	CacheControlRange = Range{Start: 0xFFFE0130, Length: 4}
)

// Range is a half-open physical address window.
type Range struct {
	Start  uint32
	Length uint32
}

// Contains reports whether addr lies inside the range.
func (r Range) Contains(addr uint32) bool {
	return addr >= r.Start && addr-r.Start < r.Length
}

// Offset returns addr relative to the start of the range. It does not check
// that the range contains addr.
func (r Range) Offset(addr uint32) uint32 {
	return addr - r.Start
}

type mapping struct {
	name   string
	rng    Range
	device Bus
}

// Interconnect routes physical addresses to the device mapped over them.
// Devices receive range-relative offsets.
type Interconnect struct {
	mappings []mapping
}

// NewInterconnect creates an empty interconnect.
func NewInterconnect() *Interconnect {
	return &Interconnect{}
}

// Map attaches device over rng. Overlapping ranges are rejected.
func (ic *Interconnect) Map(name string, rng Range, device Bus) error {
	if rng.Length == 0 {
		return fmt.Errorf("mapping %q has zero length", name)
	}
	for _, m := range ic.mappings {
		if rangesOverlap(m.rng, rng) {
			return fmt.Errorf("mapping %q overlaps %q", name, m.name)
		}
	}

	ic.mappings = append(ic.mappings, mapping{name: name, rng: rng, device: device})
	sort.Slice(ic.mappings, func(i, j int) bool {
		return ic.mappings[i].rng.Start < ic.mappings[j].rng.Start
	})
	return nil
}

func rangesOverlap(a, b Range) bool {
	aEnd := uint64(a.Start) + uint64(a.Length)
	bEnd := uint64(b.Start) + uint64(b.Length)
	return uint64(a.Start) < bEnd && uint64(b.Start) < aEnd
}

func (ic *Interconnect) find(addr uint32) *mapping {
	i := sort.Search(len(ic.mappings), func(i int) bool {
		m := ic.mappings[i]
		return uint64(m.rng.Start)+uint64(m.rng.Length) > uint64(addr)
	})
	if i < len(ic.mappings) && ic.mappings[i].rng.Contains(addr) {
		return &ic.mappings[i]
	}
	return nil
}

// Load implements Bus.
func (ic *Interconnect) Load(addr uint32, w Width) (uint32, error) {
	m := ic.find(addr)
	if m == nil {
		return 0, &FaultError{Addr: addr, Width: w}
	}
	v, err := m.device.Load(m.rng.Offset(addr), w)
	return v, rebase(err, addr)
}

// Store implements Bus.
func (ic *Interconnect) Store(addr uint32, w Width, value uint32) error {
	m := ic.find(addr)
	if m == nil {
		return &FaultError{Addr: addr, Width: w, Write: true}
	}
	return rebase(m.device.Store(m.rng.Offset(addr), w, value), addr)
}

// rebase reports device faults at the physical address rather than the
// device offset.
func rebase(err error, addr uint32) error {
	var fault *FaultError
	if errors.As(err, &fault) {
		fault.Addr = addr
	}
	return err
}
