package icache

import "github.com/sarchlab/psxsim/mem/bus"

// Control is the cache-control register value (0xFFFE0130).
type Control uint32

// Bits of the cache-control register interpreted by the CPU.
const (
	ControlTagTest Control = 1 << 2
	ControlICache  Control = 1 << 11
)

// ICacheEnabled reports whether instruction fetches may use the cache.
func (c Control) ICacheEnabled() bool {
	return c&ControlICache != 0
}

// TagTestMode reports whether isolated stores invalidate cache lines.
func (c Control) TagTestMode() bool {
	return c&ControlTagTest != 0
}

// ControlRegister exposes a Control value as a bus device.
type ControlRegister struct {
	Value Control
}

// Load implements bus.Bus.
func (r *ControlRegister) Load(offset uint32, w bus.Width) (uint32, error) {
	shift := (offset & 3) * 8
	return (uint32(r.Value) >> shift) & w.Mask(), nil
}

// Store implements bus.Bus. Narrow stores update only the addressed bytes.
func (r *ControlRegister) Store(offset uint32, w bus.Width, value uint32) error {
	shift := (offset & 3) * 8
	mask := w.Mask() << shift
	r.Value = Control((uint32(r.Value) &^ mask) | ((value << shift) & mask))
	return nil
}
