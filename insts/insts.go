// Package insts provides MIPS R3000A instruction definitions and decoding.
//
// Decoding is total: every 32-bit word yields an Instruction. Words whose
// opcode combination has no meaning decode to OpUnknown and are rejected by
// the executor, not by the decoder.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x27BDFFE8) // addiu sp, sp, -24
//	fmt.Printf("Op: %v, Rs: %d, Rt: %d, Imm: %d\n", inst.Op, inst.Rs(), inst.Rt(), int32(inst.ImmSE()))
package insts

// RegNames holds the calling-convention names of the general registers.
var RegNames = [32]string{
	"r0", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}
