package emu

import "github.com/sarchlab/psxsim/insts"

func (e *Emulator) opMULT(inst insts.Instruction) error {
	s, t := int64(int32(e.reg(inst.Rs()))), int64(int32(e.reg(inst.Rt())))
	e.commit()
	r := uint64(s * t)
	e.regFile.HI = uint32(r >> 32)
	e.regFile.LO = uint32(r)
	return nil
}

func (e *Emulator) opMULTU(inst insts.Instruction) error {
	s, t := uint64(e.reg(inst.Rs())), uint64(e.reg(inst.Rt()))
	e.commit()
	r := s * t
	e.regFile.HI = uint32(r >> 32)
	e.regFile.LO = uint32(r)
	return nil
}

// opDIV divides signed. Division by zero and 0x80000000 / -1 do not trap;
// they leave the results the hardware produces.
func (e *Emulator) opDIV(inst insts.Instruction) error {
	n, d := int32(e.reg(inst.Rs())), int32(e.reg(inst.Rt()))
	e.commit()

	switch {
	case d == 0:
		e.regFile.HI = uint32(n)
		if n >= 0 {
			e.regFile.LO = 0xFFFFFFFF
		} else {
			e.regFile.LO = 1
		}
	case uint32(n) == 0x80000000 && d == -1:
		e.regFile.HI = 0
		e.regFile.LO = 0x80000000
	default:
		e.regFile.HI = uint32(n % d)
		e.regFile.LO = uint32(n / d)
	}
	return nil
}

func (e *Emulator) opDIVU(inst insts.Instruction) error {
	n, d := e.reg(inst.Rs()), e.reg(inst.Rt())
	e.commit()

	if d == 0 {
		e.regFile.HI = n
		e.regFile.LO = 0xFFFFFFFF
		return nil
	}
	e.regFile.HI = n % d
	e.regFile.LO = n / d
	return nil
}

func (e *Emulator) opMFHI(inst insts.Instruction) error {
	e.commit()
	e.regFile.WriteReg(inst.Rd(), e.regFile.HI)
	return nil
}

func (e *Emulator) opMFLO(inst insts.Instruction) error {
	e.commit()
	e.regFile.WriteReg(inst.Rd(), e.regFile.LO)
	return nil
}

func (e *Emulator) opMTHI(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.regFile.HI = s
	return nil
}

func (e *Emulator) opMTLO(inst insts.Instruction) error {
	s := e.reg(inst.Rs())
	e.commit()
	e.regFile.LO = s
	return nil
}
