// Package scratchpad implements the CPU's 1KB fast local memory.
package scratchpad

import "github.com/sarchlab/psxsim/mem/bus"

// Size is the scratchpad capacity in bytes.
const Size = 1024

// Scratchpad is a fixed 1KB byte array. Only the low ten offset bits are
// used, so callers must pass scratchpad-relative offsets.
type Scratchpad struct {
	data [Size]byte
}

// New creates a zeroed scratchpad.
func New() *Scratchpad {
	return &Scratchpad{}
}

// Load implements bus.Bus. It never fails.
func (s *Scratchpad) Load(offset uint32, w bus.Width) (uint32, error) {
	var v uint32
	for i := uint32(0); i < uint32(w); i++ {
		v |= uint32(s.data[(offset+i)%Size]) << (i * 8)
	}
	return v, nil
}

// Store implements bus.Bus. It never fails.
func (s *Scratchpad) Store(offset uint32, w bus.Width, value uint32) error {
	for i := uint32(0); i < uint32(w); i++ {
		s.data[(offset+i)%Size] = byte(value >> (i * 8))
	}
	return nil
}

// Bytes returns a copy of the scratchpad contents.
func (s *Scratchpad) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, s.data[:])
	return out
}

// SetBytes overwrites the scratchpad with data, zero-filling anything past
// its end.
func (s *Scratchpad) SetBytes(data []byte) {
	s.data = [Size]byte{}
	copy(s.data[:], data)
}

// Reset clears the scratchpad.
func (s *Scratchpad) Reset() {
	s.data = [Size]byte{}
}
