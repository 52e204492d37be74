package emu

import (
	"github.com/sarchlab/psxsim/mem/bus"
	"github.com/sarchlab/psxsim/mem/region"
)

// Load reads from the virtual address addr the way a load instruction does.
// Together with Store it lets the Emulator act as a bus over virtual
// addresses, which is how loaders and debuggers see memory.
func (e *Emulator) Load(addr uint32, w bus.Width) (uint32, error) {
	if addr&(uint32(w)-1) != 0 {
		return 0, addressError(ExcAddressLoad, AccessLoad, addr)
	}

	dev, offset := e.route(addr)
	return dev.Load(offset, w)
}

// Store writes to the virtual address addr the way a store instruction
// does, without cache isolation.
func (e *Emulator) Store(addr uint32, w bus.Width, value uint32) error {
	if addr&(uint32(w)-1) != 0 {
		return addressError(ExcAddressStore, AccessStore, addr)
	}

	dev, offset := e.route(addr)
	return dev.Store(offset, w, value)
}

// route picks the device owning a virtual address. The scratchpad is not
// visible through the uncached segment.
func (e *Emulator) route(addr uint32) (bus.Bus, uint32) {
	phys := region.Mask(addr)

	switch {
	case bus.ScratchpadRange.Contains(phys) && region.SegmentOf(addr) != region.KSEG1:
		return e.scratchpad, bus.ScratchpadRange.Offset(phys)
	case bus.CacheControlRange.Contains(phys):
		return e.cacheControl, bus.CacheControlRange.Offset(phys)
	default:
		return e.bus, phys
	}
}

// storeData is the store path of store instructions. While the cache is
// isolated, stores land in the instruction cache instead of memory.
func (e *Emulator) storeData(addr uint32, w bus.Width, value uint32) error {
	if !e.cop0.CacheIsolated() {
		return e.Store(addr, w, value)
	}

	if addr&(uint32(w)-1) != 0 {
		return addressError(ExcAddressStore, AccessStore, addr)
	}

	phys := region.Mask(addr)
	if e.cacheControl.Value.TagTestMode() {
		e.icache.Invalidate(phys)
	} else {
		e.icache.WriteWord(phys, value)
	}
	return nil
}
