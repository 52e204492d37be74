package emu

import (
	"github.com/sarchlab/psxsim/insts"
	"github.com/sarchlab/psxsim/mem/bus"
)

// Loads compute the effective address from rs before the pending load
// lands, and deliver their result through the load delay slot.

func (e *Emulator) effectiveAddr(inst insts.Instruction) uint32 {
	return e.reg(inst.Rs()) + inst.ImmSE()
}

func (e *Emulator) loadDelayed(inst insts.Instruction, w bus.Width, extend func(uint32) uint32) error {
	addr := e.effectiveAddr(inst)
	e.commit()

	v, err := e.Load(addr, w)
	if err != nil {
		return err
	}

	e.regFile.ScheduleLoad(inst.Rt(), extend(v))
	return nil
}

func signExtend8(v uint32) uint32 { return uint32(int32(int8(v))) }
func signExtend16(v uint32) uint32 { return uint32(int32(int16(v))) }
func zeroExtend(v uint32) uint32 { return v }

func (e *Emulator) opLB(inst insts.Instruction) error {
	return e.loadDelayed(inst, bus.Byte, signExtend8)
}

func (e *Emulator) opLBU(inst insts.Instruction) error {
	return e.loadDelayed(inst, bus.Byte, zeroExtend)
}

func (e *Emulator) opLH(inst insts.Instruction) error {
	return e.loadDelayed(inst, bus.Half, signExtend16)
}

func (e *Emulator) opLHU(inst insts.Instruction) error {
	return e.loadDelayed(inst, bus.Half, zeroExtend)
}

func (e *Emulator) opLW(inst insts.Instruction) error {
	return e.loadDelayed(inst, bus.Word, zeroExtend)
}

// unalignedLoad reads the aligned word around addr for LWL and LWR and
// returns it with the value of rt it merges into. A load to rt still in
// flight is merged with, instead of the register file contents.
func (e *Emulator) unalignedLoad(inst insts.Instruction) (addr, word, cur uint32, err error) {
	addr = e.effectiveAddr(inst)

	cur = e.reg(inst.Rt())
	if pending := e.regFile.PendingLoad(); pending.Pending && pending.Reg == inst.Rt() {
		cur = pending.Value
	}
	e.commit()

	word, err = e.Load(addr&^3, bus.Word)
	return addr, word, cur, err
}

func (e *Emulator) opLWL(inst insts.Instruction) error {
	addr, w, cur, err := e.unalignedLoad(inst)
	if err != nil {
		return err
	}

	var v uint32
	switch addr & 3 {
	case 0:
		v = (cur & 0x00FFFFFF) | (w << 24)
	case 1:
		v = (cur & 0x0000FFFF) | (w << 16)
	case 2:
		v = (cur & 0x000000FF) | (w << 8)
	default:
		v = w
	}

	e.regFile.ScheduleLoad(inst.Rt(), v)
	return nil
}

func (e *Emulator) opLWR(inst insts.Instruction) error {
	addr, w, cur, err := e.unalignedLoad(inst)
	if err != nil {
		return err
	}

	var v uint32
	switch addr & 3 {
	case 0:
		v = w
	case 1:
		v = (cur & 0xFF000000) | (w >> 8)
	case 2:
		v = (cur & 0xFFFF0000) | (w >> 16)
	default:
		v = (cur & 0xFFFFFF00) | (w >> 24)
	}

	e.regFile.ScheduleLoad(inst.Rt(), v)
	return nil
}

func (e *Emulator) storeOp(inst insts.Instruction, w bus.Width) error {
	addr := e.effectiveAddr(inst)
	t := e.reg(inst.Rt())
	e.commit()
	return e.storeData(addr, w, t&w.Mask())
}

func (e *Emulator) opSB(inst insts.Instruction) error {
	return e.storeOp(inst, bus.Byte)
}

func (e *Emulator) opSH(inst insts.Instruction) error {
	return e.storeOp(inst, bus.Half)
}

func (e *Emulator) opSW(inst insts.Instruction) error {
	return e.storeOp(inst, bus.Word)
}

// unalignedStore reads the aligned word SWL or SWR merges rt into.
func (e *Emulator) unalignedStore(inst insts.Instruction) (addr, mem, t uint32, err error) {
	addr = e.effectiveAddr(inst)
	t = e.reg(inst.Rt())
	e.commit()

	mem, err = e.Load(addr&^3, bus.Word)
	return addr, mem, t, err
}

func (e *Emulator) opSWL(inst insts.Instruction) error {
	addr, mem, t, err := e.unalignedStore(inst)
	if err != nil {
		return err
	}

	var v uint32
	switch addr & 3 {
	case 0:
		v = (mem & 0xFFFFFF00) | (t >> 24)
	case 1:
		v = (mem & 0xFFFF0000) | (t >> 16)
	case 2:
		v = (mem & 0xFF000000) | (t >> 8)
	default:
		v = t
	}

	return e.storeData(addr&^3, bus.Word, v)
}

func (e *Emulator) opSWR(inst insts.Instruction) error {
	addr, mem, t, err := e.unalignedStore(inst)
	if err != nil {
		return err
	}

	var v uint32
	switch addr & 3 {
	case 0:
		v = t
	case 1:
		v = (mem & 0x000000FF) | (t << 8)
	case 2:
		v = (mem & 0x0000FFFF) | (t << 16)
	default:
		v = (mem & 0x00FFFFFF) | (t << 24)
	}

	return e.storeData(addr&^3, bus.Word, v)
}
