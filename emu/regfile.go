// Package emu provides functional MIPS R3000A emulation.
package emu

// RegFile holds the general registers, the HI/LO pair and the load delay
// slot.
type RegFile struct {
	// R holds the general registers. R[0] always reads as zero.
	R [32]uint32

	// HI and LO hold multiply and divide results.
	HI uint32
	LO uint32

	load DelayedLoad
}

// DelayedLoad is a load result waiting one instruction before it lands in
// the register file.
type DelayedLoad struct {
	Reg     uint8  `json:"reg" yaml:"reg"`
	Value   uint32 `json:"value" yaml:"value"`
	Pending bool   `json:"pending" yaml:"pending"`
}

// ReadReg reads a general register.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg&0x1F]
}

// WriteReg writes a general register. Writes to register 0 are discarded.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.R[reg&0x1F] = value
	r.R[0] = 0
}

// ScheduleLoad queues value for reg. A load already waiting is dropped.
func (r *RegFile) ScheduleLoad(reg uint8, value uint32) {
	r.load = DelayedLoad{Reg: reg & 0x1F, Value: value, Pending: true}
}

// PendingLoad returns the load waiting in the delay slot, if any.
func (r *RegFile) PendingLoad() DelayedLoad {
	return r.load
}

// CommitLoad writes the pending load, if any, and empties the slot.
func (r *RegFile) CommitLoad() {
	if !r.load.Pending {
		return
	}
	r.WriteReg(r.load.Reg, r.load.Value)
	r.load = DelayedLoad{}
}

// Reset clears every register and the delay slot.
func (r *RegFile) Reset() {
	*r = RegFile{}
}
