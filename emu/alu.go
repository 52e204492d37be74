package emu

import "github.com/sarchlab/psxsim/insts"

// The handlers below follow one shape: read operands, commit the pending
// load, compute, write back.

func (e *Emulator) reg(r uint8) uint32 {
	return e.regFile.ReadReg(r)
}

// opADD adds with a trap on signed overflow. rd is not written on overflow.
func (e *Emulator) opADD(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	r, ok := addSigned(s, t)
	if !ok {
		return &Exception{Code: ExcOverflow}
	}
	e.regFile.WriteReg(inst.Rd(), r)
	return nil
}

func (e *Emulator) opADDU(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), s+t)
	return nil
}

// opSUB subtracts with a trap on signed overflow.
func (e *Emulator) opSUB(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	r := s - t
	if int32((s^t)&(s^r)) < 0 {
		return &Exception{Code: ExcOverflow}
	}
	e.regFile.WriteReg(inst.Rd(), r)
	return nil
}

func (e *Emulator) opSUBU(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), s-t)
	return nil
}

func (e *Emulator) opAND(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), s&t)
	return nil
}

func (e *Emulator) opOR(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), s|t)
	return nil
}

func (e *Emulator) opXOR(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), s^t)
	return nil
}

func (e *Emulator) opNOR(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), ^(s | t))
	return nil
}

func (e *Emulator) opSLT(inst insts.Instruction) error {
	s, t := int32(e.reg(inst.Rs())), int32(e.reg(inst.Rt()))
	e.commit()
	e.regFile.WriteReg(inst.Rd(), boolToWord(s < t))
	return nil
}

func (e *Emulator) opSLTU(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), boolToWord(s < t))
	return nil
}

// opADDI adds a sign-extended immediate with a trap on signed overflow.
func (e *Emulator) opADDI(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	r, ok := addSigned(s, inst.ImmSE())
	if !ok {
		return &Exception{Code: ExcOverflow}
	}
	e.regFile.WriteReg(inst.Rt(), r)
	return nil
}

func (e *Emulator) opADDIU(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.regFile.WriteReg(inst.Rt(), s+inst.ImmSE())
	return nil
}

func (e *Emulator) opSLTI(inst insts.Instruction) error {
	s := int32(e.reg(inst.Rs()))
	e.commit()
	e.regFile.WriteReg(inst.Rt(), boolToWord(s < int32(inst.ImmSE())))
	return nil
}

// opSLTIU compares unsigned against the sign-extended immediate.
func (e *Emulator) opSLTIU(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.regFile.WriteReg(inst.Rt(), boolToWord(s < inst.ImmSE()))
	return nil
}

func (e *Emulator) opANDI(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.regFile.WriteReg(inst.Rt(), s&inst.Imm())
	return nil
}

func (e *Emulator) opORI(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.regFile.WriteReg(inst.Rt(), s|inst.Imm())
	return nil
}

func (e *Emulator) opXORI(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.regFile.WriteReg(inst.Rt(), s^inst.Imm())
	return nil
}

func (e *Emulator) opLUI(inst insts.Instruction) error {
	e.commit()
	e.regFile.WriteReg(inst.Rt(), inst.Imm()<<16)
	return nil
}

func (e *Emulator) opSLL(inst insts.Instruction) error {
	t := e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), t<<inst.Shamt())
	return nil
}

func (e *Emulator) opSRL(inst insts.Instruction) error {
	t := e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), t>>inst.Shamt())
	return nil
}

func (e *Emulator) opSRA(inst insts.Instruction) error {
	t := int32(e.reg(inst.Rt()))
	e.commit()
	e.regFile.WriteReg(inst.Rd(), uint32(t>>inst.Shamt()))
	return nil
}

func (e *Emulator) opSLLV(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), t<<(s&0x1F))
	return nil
}

func (e *Emulator) opSRLV(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()
	e.regFile.WriteReg(inst.Rd(), t>>(s&0x1F))
	return nil
}

func (e *Emulator) opSRAV(inst insts.Instruction) error {
	s, t := e.reg(inst.Rs()), int32(e.reg(inst.Rt()))
	e.commit()
	e.regFile.WriteReg(inst.Rd(), uint32(t>>(s&0x1F)))
	return nil
}

// addSigned returns a+b and whether the signed addition did not overflow.
func addSigned(a, b uint32) (uint32, bool) {
	r := a + b
	return r, int32((a^r)&(b^r)) >= 0
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
