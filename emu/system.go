package emu

import "github.com/sarchlab/psxsim/insts"

func (e *Emulator) opSYSCALL(inst insts.Instruction) error {
	e.commit()
	return &Exception{Code: ExcSyscall}
}

func (e *Emulator) opBREAK(inst insts.Instruction) error {
	e.commit()
	return &Exception{Code: ExcBreak}
}

// opMFC0 moves a cop0 register into rt through the load delay slot.
func (e *Emulator) opMFC0(inst insts.Instruction) error {
	e.commit()
	e.regFile.ScheduleLoad(inst.Rt(), e.cop0.Read(inst.Rd()))
	return nil
}

func (e *Emulator) opMTC0(inst insts.Instruction) error {
	t := e.reg(inst.Rt())
	e.commit()
	e.cop0.Write(inst.Rd(), t)
	return nil
}

func (e *Emulator) opRFE(inst insts.Instruction) error {
	e.commit()
	e.cop0.ReturnFromException()
	return nil
}

// opCoprocessor rejects COP1-3 operations and their loads and stores; the
// core has no coprocessor besides COP0.
func (e *Emulator) opCoprocessor(inst insts.Instruction) error {
	e.commit()
	return &Exception{
		Code:        ExcCoprocessorUnusable,
		Coprocessor: uint8(inst.CopNum()),
	}
}
