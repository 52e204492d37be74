// Package bus defines the width-polymorphic load/store contract shared by
// the scratchpad, main memory and devices.
package bus

import "fmt"

// Width is the size of a bus transfer in bytes.
type Width uint8

// Supported transfer widths.
const (
	Byte Width = 1
	Half Width = 2
	Word Width = 4
)

// String returns a short name for the width.
func (w Width) String() string {
	switch w {
	case Byte:
		return "byte"
	case Half:
		return "half"
	case Word:
		return "word"
	default:
		return fmt.Sprintf("width(%d)", uint8(w))
	}
}

// Mask returns a value mask covering w bytes.
func (w Width) Mask() uint32 {
	if w >= Word {
		return 0xFFFFFFFF
	}
	return uint32(1)<<(uint(w)*8) - 1
}

// Bus is implemented by anything the CPU can load from or store to.
// Values are little-endian: the least significant byte lives at the lowest
// address. Loads return the value zero-extended to 32 bits.
type Bus interface {
	Load(addr uint32, w Width) (uint32, error)
	Store(addr uint32, w Width, value uint32) error
}

// FaultError is returned when no device answers an address.
type FaultError struct {
	Addr  uint32
	Width Width
	Write bool
}

func (e *FaultError) Error() string {
	kind := "load"
	if e.Write {
		kind = "store"
	}
	return fmt.Sprintf("bus fault: %s %s at 0x%08X", e.Width, kind, e.Addr)
}

// Unpack reads a little-endian value of width w from data at offset.
func Unpack(data []byte, offset uint32, w Width) uint32 {
	var v uint32
	for i := uint32(0); i < uint32(w); i++ {
		v |= uint32(data[offset+i]) << (i * 8)
	}
	return v
}

// Pack writes the low w bytes of value into data at offset, little-endian.
func Pack(data []byte, offset uint32, w Width, value uint32) {
	for i := uint32(0); i < uint32(w); i++ {
		data[offset+i] = byte(value >> (i * 8))
	}
}
