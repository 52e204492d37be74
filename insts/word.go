package insts

// Word is a raw 32-bit instruction word. Its methods extract bit fields and
// never fail.
type Word uint32

// Opcode returns the primary opcode (bits 31:26).
func (w Word) Opcode() uint32 {
	return uint32(w) >> 26
}

// Funct returns the secondary opcode of SPECIAL instructions (bits 5:0).
func (w Word) Funct() uint32 {
	return uint32(w) & 0x3F
}

// Rs returns the source or base register selector (bits 25:21).
func (w Word) Rs() uint8 {
	return uint8((uint32(w) >> 21) & 0x1F)
}

// Rt returns the target register selector (bits 20:16).
func (w Word) Rt() uint8 {
	return uint8((uint32(w) >> 16) & 0x1F)
}

// Rd returns the destination register selector (bits 15:11).
func (w Word) Rd() uint8 {
	return uint8((uint32(w) >> 11) & 0x1F)
}

// Shamt returns the shift amount (bits 10:6).
func (w Word) Shamt() uint32 {
	return (uint32(w) >> 6) & 0x1F
}

// ImmSE returns the 16-bit immediate sign-extended to 32 bits.
func (w Word) ImmSE() uint32 {
	return uint32(int32(int16(uint16(w))))
}

// Imm returns the 16-bit immediate zero-extended to 32 bits.
func (w Word) Imm() uint32 {
	return uint32(w) & 0xFFFF
}

// Target returns the 26-bit jump index shifted to a byte offset.
func (w Word) Target() uint32 {
	return (uint32(w) & 0x03FFFFFF) << 2
}

// JumpTarget returns the absolute target of J and JAL executed with the
// given delay-slot pc.
func (w Word) JumpTarget(pc uint32) uint32 {
	return (pc & 0xF0000000) | w.Target()
}

// CopOp returns the coprocessor sub-operation (bits 25:21, same as Rs).
func (w Word) CopOp() uint32 {
	return (uint32(w) >> 21) & 0x1F
}

// CopNum returns the coprocessor number of COPn, LWCn and SWCn (bits 27:26).
func (w Word) CopNum() uint32 {
	return (uint32(w) >> 26) & 0x3
}

// Code returns the 20-bit comment field of SYSCALL and BREAK.
func (w Word) Code() uint32 {
	return (uint32(w) >> 6) & 0xFFFFF
}
