package insts

import "fmt"

// String renders the instruction with branch and jump targets shown as
// offsets. Use Disassemble to resolve them.
func (i Instruction) String() string {
	return i.render(0, false)
}

// Disassemble renders the instruction as if it were located at pc.
func (i Instruction) Disassemble(pc uint32) string {
	return i.render(pc, true)
}

func (i Instruction) render(pc uint32, resolve bool) string {
	rs, rt, rd := RegNames[i.Rs()], RegNames[i.Rt()], RegNames[i.Rd()]
	name := i.Op.String()
	simm := int32(i.ImmSE())

	branch := func() string {
		if resolve {
			return fmt.Sprintf("0x%08X", pc+4+(i.ImmSE()<<2))
		}
		return fmt.Sprintf("%+d", simm<<2)
	}

	switch i.Op {
	case OpUnknown:
		return fmt.Sprintf(".word 0x%08X", uint32(i.Word))
	case OpSLL, OpSRL, OpSRA:
		if i.Word == 0 {
			return "nop"
		}
		return fmt.Sprintf("%s %s, %s, %d", name, rd, rt, i.Shamt())
	case OpSLLV, OpSRLV, OpSRAV:
		return fmt.Sprintf("%s %s, %s, %s", name, rd, rt, rs)
	case OpJR, OpMTHI, OpMTLO:
		return fmt.Sprintf("%s %s", name, rs)
	case OpJALR:
		return fmt.Sprintf("%s %s, %s", name, rd, rs)
	case OpSYSCALL, OpBREAK:
		return fmt.Sprintf("%s 0x%X", name, i.Code())
	case OpMFHI, OpMFLO:
		return fmt.Sprintf("%s %s", name, rd)
	case OpMULT, OpMULTU, OpDIV, OpDIVU:
		return fmt.Sprintf("%s %s, %s", name, rs, rt)
	case OpADD, OpADDU, OpSUB, OpSUBU, OpAND, OpOR, OpXOR, OpNOR, OpSLT, OpSLTU:
		return fmt.Sprintf("%s %s, %s, %s", name, rd, rs, rt)
	case OpBLTZ, OpBGEZ, OpBLTZAL, OpBGEZAL, OpBLEZ, OpBGTZ:
		return fmt.Sprintf("%s %s, %s", name, rs, branch())
	case OpBEQ, OpBNE:
		return fmt.Sprintf("%s %s, %s, %s", name, rs, rt, branch())
	case OpJ, OpJAL:
		if resolve {
			return fmt.Sprintf("%s 0x%08X", name, i.JumpTarget(pc+4))
		}
		return fmt.Sprintf("%s 0x%07X", name, i.Target())
	case OpADDI, OpADDIU, OpSLTI, OpSLTIU:
		return fmt.Sprintf("%s %s, %s, %d", name, rt, rs, simm)
	case OpANDI, OpORI, OpXORI:
		return fmt.Sprintf("%s %s, %s, 0x%04X", name, rt, rs, i.Imm())
	case OpLUI:
		return fmt.Sprintf("%s %s, 0x%04X", name, rt, i.Imm())
	case OpLB, OpLH, OpLWL, OpLW, OpLBU, OpLHU, OpLWR,
		OpSB, OpSH, OpSWL, OpSW, OpSWR:
		return fmt.Sprintf("%s %s, %d(%s)", name, rt, simm, rs)
	case OpMFC0, OpMTC0:
		return fmt.Sprintf("%s %s, cop0r%d", name, rt, i.Rd())
	case OpRFE:
		return name
	case OpCOP:
		return fmt.Sprintf("cop%d 0x%07X", i.CopNum(), uint32(i.Word)&0x01FFFFFF)
	case OpLWC, OpSWC:
		return fmt.Sprintf("%s%d %d, %d(%s)", name, i.CopNum(), i.Rt(), simm, rs)
	default:
		return name
	}
}
