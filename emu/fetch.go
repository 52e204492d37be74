package emu

import (
	"github.com/sarchlab/psxsim/mem/bus"
	"github.com/sarchlab/psxsim/mem/region"
)

// Fetch reads the instruction word at the virtual address addr. Cacheable
// addresses go through the instruction cache while the cache-control
// register enables it; everything else reads the bus directly.
func (e *Emulator) Fetch(addr uint32) (uint32, error) {
	if addr&3 != 0 {
		return 0, addressError(ExcAddressLoad, AccessFetch, addr)
	}

	phys := region.Mask(addr)

	if region.IsCacheable(addr) && e.cacheControl.Value.ICacheEnabled() {
		evictions := e.icache.Stats().Evictions
		word, err := e.icache.Fetch(phys, e.bus)
		if e.icache.Stats().Evictions != evictions {
			e.log.V(2).Info("icache eviction", "addr", hex32(phys))
		}
		return word, err
	}

	return e.bus.Load(phys, bus.Word)
}
