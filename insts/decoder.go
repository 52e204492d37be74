package insts

// Op represents a MIPS opcode.
type Op uint8

// MIPS opcodes.
const (
	OpUnknown Op = iota

	// SPECIAL (primary opcode 0), selected by the function field.
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpJR
	OpJALR
	OpSYSCALL
	OpBREAK
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU

	// REGIMM (primary opcode 1), selected by the rt field.
	OpBLTZ
	OpBGEZ
	OpBLTZAL
	OpBGEZAL

	// Primary opcodes.
	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI
	OpLB
	OpLH
	OpLWL
	OpLW
	OpLBU
	OpLHU
	OpLWR
	OpSB
	OpSH
	OpSWL
	OpSW
	OpSWR

	// Coprocessor 0, selected by the rs field.
	OpMFC0
	OpMTC0
	OpRFE

	// Coprocessors 1-3 and their loads and stores.
	OpCOP
	OpLWC
	OpSWC

	opCount
)

// NumOps is the size of a table indexed by Op.
const NumOps = int(opCount)

var opNames = [opCount]string{
	OpUnknown: "unknown",
	OpSLL:     "sll", OpSRL: "srl", OpSRA: "sra",
	OpSLLV: "sllv", OpSRLV: "srlv", OpSRAV: "srav",
	OpJR: "jr", OpJALR: "jalr",
	OpSYSCALL: "syscall", OpBREAK: "break",
	OpMFHI: "mfhi", OpMTHI: "mthi", OpMFLO: "mflo", OpMTLO: "mtlo",
	OpMULT: "mult", OpMULTU: "multu", OpDIV: "div", OpDIVU: "divu",
	OpADD: "add", OpADDU: "addu", OpSUB: "sub", OpSUBU: "subu",
	OpAND: "and", OpOR: "or", OpXOR: "xor", OpNOR: "nor",
	OpSLT: "slt", OpSLTU: "sltu",
	OpBLTZ: "bltz", OpBGEZ: "bgez", OpBLTZAL: "bltzal", OpBGEZAL: "bgezal",
	OpJ: "j", OpJAL: "jal",
	OpBEQ: "beq", OpBNE: "bne", OpBLEZ: "blez", OpBGTZ: "bgtz",
	OpADDI: "addi", OpADDIU: "addiu", OpSLTI: "slti", OpSLTIU: "sltiu",
	OpANDI: "andi", OpORI: "ori", OpXORI: "xori", OpLUI: "lui",
	OpLB: "lb", OpLH: "lh", OpLWL: "lwl", OpLW: "lw",
	OpLBU: "lbu", OpLHU: "lhu", OpLWR: "lwr",
	OpSB: "sb", OpSH: "sh", OpSWL: "swl", OpSW: "sw", OpSWR: "swr",
	OpMFC0: "mfc0", OpMTC0: "mtc0", OpRFE: "rfe",
	OpCOP: "cop", OpLWC: "lwc", OpSWC: "swc",
}

// String returns the mnemonic of the opcode.
func (op Op) String() string {
	if op >= opCount {
		return "unknown"
	}
	return opNames[op]
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // Register: rs, rt, rd, shamt, funct
	FormatI              // Immediate: rs, rt, imm16
	FormatJ              // Jump: 26-bit target
	FormatCop            // Coprocessor
)

// Instruction is a decoded instruction word.
type Instruction struct {
	Word
	Op     Op
	Format Format
}

var primaryOps = [64]Op{
	0x02: OpJ, 0x03: OpJAL,
	0x04: OpBEQ, 0x05: OpBNE, 0x06: OpBLEZ, 0x07: OpBGTZ,
	0x08: OpADDI, 0x09: OpADDIU, 0x0A: OpSLTI, 0x0B: OpSLTIU,
	0x0C: OpANDI, 0x0D: OpORI, 0x0E: OpXORI, 0x0F: OpLUI,
	0x11: OpCOP, 0x12: OpCOP, 0x13: OpCOP,
	0x20: OpLB, 0x21: OpLH, 0x22: OpLWL, 0x23: OpLW,
	0x24: OpLBU, 0x25: OpLHU, 0x26: OpLWR,
	0x28: OpSB, 0x29: OpSH, 0x2A: OpSWL, 0x2B: OpSW, 0x2E: OpSWR,
	0x30: OpLWC, 0x31: OpLWC, 0x32: OpLWC, 0x33: OpLWC,
	0x38: OpSWC, 0x39: OpSWC, 0x3A: OpSWC, 0x3B: OpSWC,
}

var specialOps = [64]Op{
	0x00: OpSLL, 0x02: OpSRL, 0x03: OpSRA,
	0x04: OpSLLV, 0x06: OpSRLV, 0x07: OpSRAV,
	0x08: OpJR, 0x09: OpJALR,
	0x0C: OpSYSCALL, 0x0D: OpBREAK,
	0x10: OpMFHI, 0x11: OpMTHI, 0x12: OpMFLO, 0x13: OpMTLO,
	0x18: OpMULT, 0x19: OpMULTU, 0x1A: OpDIV, 0x1B: OpDIVU,
	0x20: OpADD, 0x21: OpADDU, 0x22: OpSUB, 0x23: OpSUBU,
	0x24: OpAND, 0x25: OpOR, 0x26: OpXOR, 0x27: OpNOR,
	0x2A: OpSLT, 0x2B: OpSLTU,
}

var cop0Ops = [32]Op{
	0x00: OpMFC0,
	0x04: OpMTC0,
}

// Decoder decodes MIPS machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word.
func (d *Decoder) Decode(word uint32) Instruction {
	w := Word(word)
	inst := Instruction{Word: w}

	switch w.Opcode() {
	case 0x00:
		inst.Op = specialOps[w.Funct()]
		inst.Format = FormatR
	case 0x01:
		inst.Op = d.decodeRegImm(w)
		inst.Format = FormatI
	case 0x10:
		inst.Op = d.decodeCop0(w)
		inst.Format = FormatCop
	default:
		inst.Op = primaryOps[w.Opcode()]
		inst.Format = primaryFormat(inst.Op)
	}

	if inst.Op == OpUnknown {
		inst.Format = FormatUnknown
	}

	return inst
}

// decodeRegImm decodes the BcondZ group. The hardware only looks at bit 16
// (greater-or-equal) and whether bits 20:17 equal 0b1000 (link), so every rt
// value decodes to one of the four branches.
func (d *Decoder) decodeRegImm(w Word) Op {
	rt := w.Rt()
	geq := rt&0x01 != 0
	link := rt&0x1E == 0x10

	switch {
	case geq && link:
		return OpBGEZAL
	case geq:
		return OpBGEZ
	case link:
		return OpBLTZAL
	default:
		return OpBLTZ
	}
}

// decodeCop0 decodes COP0 moves and RFE.
func (d *Decoder) decodeCop0(w Word) Op {
	if w.CopOp() == 0x10 {
		if w.Funct() == 0x10 {
			return OpRFE
		}
		return OpUnknown
	}
	return cop0Ops[w.CopOp()]
}

func primaryFormat(op Op) Format {
	switch op {
	case OpUnknown:
		return FormatUnknown
	case OpJ, OpJAL:
		return FormatJ
	case OpCOP:
		return FormatCop
	default:
		return FormatI
	}
}

// IsBranch reports whether the instruction transfers control through the
// branch delay slot.
func (i Instruction) IsBranch() bool {
	switch i.Op {
	case OpJ, OpJAL, OpJR, OpJALR,
		OpBEQ, OpBNE, OpBLEZ, OpBGTZ,
		OpBLTZ, OpBGEZ, OpBLTZAL, OpBGEZAL:
		return true
	default:
		return false
	}
}

// IsLoad reports whether the instruction delivers its result through the
// load delay slot.
func (i Instruction) IsLoad() bool {
	switch i.Op {
	case OpLB, OpLBU, OpLH, OpLHU, OpLW, OpLWL, OpLWR, OpMFC0:
		return true
	default:
		return false
	}
}
