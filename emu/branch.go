package emu

import "github.com/sarchlab/psxsim/insts"

// Every branch and jump marks the following instruction as a delay slot,
// taken or not. At execution time e.pc already holds the delay slot address,
// which is the base for relative targets and the return address is the
// instruction after it.

func (e *Emulator) branchTo(target uint32) {
	e.nextPC = target
}

func (e *Emulator) branchRelative(inst insts.Instruction, taken bool) {
	e.branch = true
	if taken {
		e.branchTo(e.pc + inst.ImmSE()<<2)
	}
}

func (e *Emulator) opJ(inst insts.Instruction) error {
	e.commit()
	e.branch = true
	e.branchTo(inst.JumpTarget(e.pc))
	return nil
}

func (e *Emulator) opJAL(inst insts.Instruction) error {
	e.commit()
	e.branch = true
	e.regFile.WriteReg(31, e.nextPC)
	e.branchTo(inst.JumpTarget(e.pc))
	return nil
}

// opJR jumps to rs. The target is not checked for alignment here; a
// misaligned target raises the address error when it is fetched.
func (e *Emulator) opJR(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.branch = true
	e.branchTo(s)
	return nil
}

func (e *Emulator) opJALR(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.branch = true
	e.regFile.WriteReg(inst.Rd(), e.nextPC)
	e.branchTo(s)
	return nil
}

func (e *Emulator) opBEQ(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.branchRelative(inst, s == t)
	return nil
}

func (e *Emulator) opBNE(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.branchRelative(inst, s != t)
	return nil
}

func (e *Emulator) opBLEZ(inst insts.Instruction) error {
	s := int32(e.reg(inst.Rs()))
	e.commit()
	e.branchRelative(inst, s <= 0)
	return nil
}

func (e *Emulator) opBGTZ(inst insts.Instruction) error {
	s := int32(e.reg(inst.Rs()))
	e.commit()
	e.branchRelative(inst, s > 0)
	return nil
}

// opBcondZ handles BLTZ, BGEZ, BLTZAL and BGEZAL. The link variants write
// ra whether or not the branch is taken.
func (e *Emulator) opBcondZ(inst insts.Instruction) error {
	s := int32(e.reg(inst.Rs()))
	e.commit()

	var taken bool
	switch inst.Op {
	case insts.OpBGEZ, insts.OpBGEZAL:
		taken = s >= 0
	default:
		taken = s < 0
	}

	if inst.Op == insts.OpBLTZAL || inst.Op == insts.OpBGEZAL {
		e.regFile.WriteReg(31, e.nextPC)
	}

	e.branchRelative(inst, taken)
	return nil
}
