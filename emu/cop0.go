package emu

// Cop0 register numbers.
const (
	Cop0BadVaddr = 8
	Cop0SR       = 12
	Cop0Cause    = 13
	Cop0EPC      = 14
	Cop0PRId     = 15
)

// Status register bits.
const (
	SRIsolateCache uint32 = 1 << 16
	SRBootVectors  uint32 = 1 << 22
)

// Exception vectors.
const (
	GeneralVector = 0x80000080
	BootVector    = 0xBFC00180
)

const (
	causeWritable = 0x00000300
	causeBD       = 1 << 31
	prid          = 0x00000002
)

// Cop0 is the system control coprocessor. Only the registers taking part in
// exception handling have behavior, the others read back what was written.
type Cop0 struct {
	SR       uint32 `json:"sr" yaml:"sr"`
	Cause    uint32 `json:"cause" yaml:"cause"`
	EPC      uint32 `json:"epc" yaml:"epc"`
	BadVaddr uint32 `json:"bad_vaddr" yaml:"bad_vaddr"`

	// Other holds the registers without behavior, indexed by number.
	Other [32]uint32 `json:"other" yaml:"other"`
}

// Read returns cop0 register reg.
func (c *Cop0) Read(reg uint8) uint32 {
	switch reg {
	case Cop0BadVaddr:
		return c.BadVaddr
	case Cop0SR:
		return c.SR
	case Cop0Cause:
		return c.Cause
	case Cop0EPC:
		return c.EPC
	case Cop0PRId:
		return prid
	default:
		return c.Other[reg&0x1F]
	}
}

// Write stores value into cop0 register reg. Only the software interrupt
// bits of Cause are writable; BadVaddr, EPC and PRId are read-only.
func (c *Cop0) Write(reg uint8, value uint32) {
	switch reg {
	case Cop0SR:
		c.SR = value
	case Cop0Cause:
		c.Cause = (c.Cause &^ causeWritable) | (value & causeWritable)
	case Cop0BadVaddr, Cop0EPC, Cop0PRId:
	default:
		c.Other[reg&0x1F] = value
	}
}

// CacheIsolated reports whether stores are redirected to the cache.
func (c *Cop0) CacheIsolated() bool {
	return c.SR&SRIsolateCache != 0
}

// EnterException records exc and returns the handler address. pc is the
// address of the faulting instruction.
func (c *Cop0) EnterException(exc *Exception, pc uint32) uint32 {
	// SR[5:0] is a three deep stack of (kernel mode, interrupt enable) pairs.
	mode := c.SR & 0x3F
	c.SR = (c.SR &^ 0x3F) | ((mode << 2) & 0x3F)

	c.Cause = (c.Cause &^ 0x3000007C) | uint32(exc.Code)<<2
	if exc.Code == ExcCoprocessorUnusable {
		c.Cause |= uint32(exc.Coprocessor&3) << 28
	}

	if exc.InDelaySlot {
		c.EPC = pc - 4
		c.Cause |= causeBD
	} else {
		c.EPC = pc
		c.Cause &^= causeBD
	}

	if exc.Code == ExcAddressLoad || exc.Code == ExcAddressStore {
		c.BadVaddr = exc.BadAddr
	}

	if c.SR&SRBootVectors != 0 {
		return BootVector
	}
	return GeneralVector
}

// ReturnFromException pops the mode stack.
func (c *Cop0) ReturnFromException() {
	mode := c.SR & 0x3F
	c.SR = (c.SR &^ 0xF) | (mode >> 2)
}

// Reset sets the power-on state: boot exception vectors selected.
func (c *Cop0) Reset() {
	*c = Cop0{SR: SRBootVectors}
}
