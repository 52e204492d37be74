package emu

import "github.com/sarchlab/psxsim/insts"

// handler executes one decoded instruction.
type handler func(e *Emulator, inst insts.Instruction) error

// handlers is indexed by insts.Op. An empty slot is a reserved instruction.
var handlers = [insts.NumOps]handler{
	insts.OpSLL:  (*Emulator).opSLL,
	insts.OpSRL:  (*Emulator).opSRL,
	insts.OpSRA:  (*Emulator).opSRA,
	insts.OpSLLV: (*Emulator).opSLLV,
	insts.OpSRLV: (*Emulator).opSRLV,
	insts.OpSRAV: (*Emulator).opSRAV,

	insts.OpJR:     (*Emulator).opJR,
	insts.OpJALR:   (*Emulator).opJALR,
	insts.OpJ:      (*Emulator).opJ,
	insts.OpJAL:    (*Emulator).opJAL,
	insts.OpBEQ:    (*Emulator).opBEQ,
	insts.OpBNE:    (*Emulator).opBNE,
	insts.OpBLEZ:   (*Emulator).opBLEZ,
	insts.OpBGTZ:   (*Emulator).opBGTZ,
	insts.OpBLTZ:   (*Emulator).opBcondZ,
	insts.OpBGEZ:   (*Emulator).opBcondZ,
	insts.OpBLTZAL: (*Emulator).opBcondZ,
	insts.OpBGEZAL: (*Emulator).opBcondZ,

	insts.OpSYSCALL: (*Emulator).opSYSCALL,
	insts.OpBREAK:   (*Emulator).opBREAK,

	insts.OpMFHI:  (*Emulator).opMFHI,
	insts.OpMTHI:  (*Emulator).opMTHI,
	insts.OpMFLO:  (*Emulator).opMFLO,
	insts.OpMTLO:  (*Emulator).opMTLO,
	insts.OpMULT:  (*Emulator).opMULT,
	insts.OpMULTU: (*Emulator).opMULTU,
	insts.OpDIV:   (*Emulator).opDIV,
	insts.OpDIVU:  (*Emulator).opDIVU,

	insts.OpADD:  (*Emulator).opADD,
	insts.OpADDU: (*Emulator).opADDU,
	insts.OpSUB:  (*Emulator).opSUB,
	insts.OpSUBU: (*Emulator).opSUBU,
	insts.OpAND:  (*Emulator).opAND,
	insts.OpOR:   (*Emulator).opOR,
	insts.OpXOR:  (*Emulator).opXOR,
	insts.OpNOR:  (*Emulator).opNOR,
	insts.OpSLT:  (*Emulator).opSLT,
	insts.OpSLTU: (*Emulator).opSLTU,

	insts.OpADDI:  (*Emulator).opADDI,
	insts.OpADDIU: (*Emulator).opADDIU,
	insts.OpSLTI:  (*Emulator).opSLTI,
	insts.OpSLTIU: (*Emulator).opSLTIU,
	insts.OpANDI:  (*Emulator).opANDI,
	insts.OpORI:   (*Emulator).opORI,
	insts.OpXORI:  (*Emulator).opXORI,
	insts.OpLUI:   (*Emulator).opLUI,

	insts.OpLB:  (*Emulator).opLB,
	insts.OpLBU: (*Emulator).opLBU,
	insts.OpLH:  (*Emulator).opLH,
	insts.OpLHU: (*Emulator).opLHU,
	insts.OpLW:  (*Emulator).opLW,
	insts.OpLWL: (*Emulator).opLWL,
	insts.OpLWR: (*Emulator).opLWR,
	insts.OpSB:  (*Emulator).opSB,
	insts.OpSH:  (*Emulator).opSH,
	insts.OpSW:  (*Emulator).opSW,
	insts.OpSWL: (*Emulator).opSWL,
	insts.OpSWR: (*Emulator).opSWR,

	insts.OpMFC0: (*Emulator).opMFC0,
	insts.OpMTC0: (*Emulator).opMTC0,
	insts.OpRFE:  (*Emulator).opRFE,
	insts.OpCOP:  (*Emulator).opCoprocessor,
	insts.OpLWC:  (*Emulator).opCoprocessor,
	insts.OpSWC:  (*Emulator).opCoprocessor,
}

// execute dispatches a decoded instruction to its handler.
func (e *Emulator) execute(inst insts.Instruction) error {
	h := handlers[inst.Op]
	if h == nil {
		e.commit()
		return &Exception{Code: ExcReservedInstruction}
	}
	return h(e, inst)
}
