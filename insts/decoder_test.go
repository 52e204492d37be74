package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/psxsim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Field accessors", func() {
		// addiu sp, sp, -24 -> 0x27BDFFE8
		It("should extract I-type fields", func() {
			w := insts.Word(0x27BDFFE8)

			Expect(w.Opcode()).To(Equal(uint32(0x09)))
			Expect(w.Rs()).To(Equal(uint8(29)))
			Expect(w.Rt()).To(Equal(uint8(29)))
			Expect(w.ImmSE()).To(Equal(uint32(0xFFFFFFE8)))
			Expect(w.Imm()).To(Equal(uint32(0xFFE8)))
		})

		// addu v0, a0, a1 -> 0x00851021
		It("should extract R-type fields", func() {
			w := insts.Word(0x00851021)

			Expect(w.Opcode()).To(BeZero())
			Expect(w.Funct()).To(Equal(uint32(0x21)))
			Expect(w.Rs()).To(Equal(uint8(4)))
			Expect(w.Rt()).To(Equal(uint8(5)))
			Expect(w.Rd()).To(Equal(uint8(2)))
		})

		It("should use all six function bits", func() {
			// sltu has function 0x2B, which a five bit mask would alias to 0x0B.
			Expect(insts.Word(0x0000002B).Funct()).To(Equal(uint32(0x2B)))
		})

		It("should zero-extend the full 16-bit immediate", func() {
			Expect(insts.Word(0x3508F00F).Imm()).To(Equal(uint32(0xF00F)))
			Expect(insts.Word(0x24008000).ImmSE()).To(Equal(uint32(0xFFFF8000)))
		})

		// sll t0, t1, 4 -> 0x00094100
		It("should extract the shift amount", func() {
			Expect(insts.Word(0x00094100).Shamt()).To(Equal(uint32(4)))
		})

		// j 0x80010000 -> 0x08004000
		It("should combine the jump target with the pc region", func() {
			w := insts.Word(0x08004000)
			Expect(w.Target()).To(Equal(uint32(0x00010000)))
			Expect(w.JumpTarget(0x80000004)).To(Equal(uint32(0x80010000)))
			Expect(w.JumpTarget(0xBFC00004)).To(Equal(uint32(0xB0010000)))
		})
	})

	DescribeTable("Decode",
		func(word uint32, op insts.Op, format insts.Format) {
			inst := decoder.Decode(word)
			Expect(inst.Op).To(Equal(op))
			Expect(inst.Format).To(Equal(format))
			Expect(uint32(inst.Word)).To(Equal(word))
		},
		Entry("nop", uint32(0x00000000), insts.OpSLL, insts.FormatR),
		Entry("addu", uint32(0x00851021), insts.OpADDU, insts.FormatR),
		Entry("sltu", uint32(0x0085102B), insts.OpSLTU, insts.FormatR),
		Entry("syscall", uint32(0x0000000C), insts.OpSYSCALL, insts.FormatR),
		Entry("break", uint32(0x0000000D), insts.OpBREAK, insts.FormatR),
		Entry("addiu", uint32(0x27BDFFE8), insts.OpADDIU, insts.FormatI),
		Entry("lui", uint32(0x3C081F80), insts.OpLUI, insts.FormatI),
		Entry("lw", uint32(0x8FA80004), insts.OpLW, insts.FormatI),
		Entry("sw", uint32(0xAFBF0014), insts.OpSW, insts.FormatI),
		Entry("j", uint32(0x08004000), insts.OpJ, insts.FormatJ),
		Entry("jal", uint32(0x0C004000), insts.OpJAL, insts.FormatJ),
		Entry("bltz", uint32(0x04800004), insts.OpBLTZ, insts.FormatI),
		Entry("bgez", uint32(0x04810004), insts.OpBGEZ, insts.FormatI),
		Entry("bltzal", uint32(0x04900004), insts.OpBLTZAL, insts.FormatI),
		Entry("bgezal", uint32(0x04910004), insts.OpBGEZAL, insts.FormatI),
		Entry("regimm rt=3 aliases bgez", uint32(0x04830004), insts.OpBGEZ, insts.FormatI),
		Entry("mfc0", uint32(0x40086000), insts.OpMFC0, insts.FormatCop),
		Entry("mtc0", uint32(0x40886000), insts.OpMTC0, insts.FormatCop),
		Entry("rfe", uint32(0x42000010), insts.OpRFE, insts.FormatCop),
		Entry("cop2", uint32(0x4A000000), insts.OpCOP, insts.FormatCop),
		Entry("lwc2", uint32(0xC8000000), insts.OpLWC, insts.FormatI),
		Entry("unknown special", uint32(0x00000001), insts.OpUnknown, insts.FormatUnknown),
		Entry("unknown primary", uint32(0xFC000000), insts.OpUnknown, insts.FormatUnknown),
		Entry("unknown cop0 op", uint32(0x40400000), insts.OpUnknown, insts.FormatUnknown),
	)

	It("should decode every word without panicking", func() {
		for w := uint32(0); w < 64; w++ {
			_ = decoder.Decode(w << 26)
			_ = decoder.Decode(w)
		}
	})

	Describe("Classification", func() {
		It("should flag branches and loads", func() {
			Expect(decoder.Decode(0x08004000).IsBranch()).To(BeTrue())
			Expect(decoder.Decode(0x03E00008).IsBranch()).To(BeTrue())
			Expect(decoder.Decode(0x8FA80004).IsLoad()).To(BeTrue())
			Expect(decoder.Decode(0x40086000).IsLoad()).To(BeTrue())
			Expect(decoder.Decode(0x00851021).IsBranch()).To(BeFalse())
			Expect(decoder.Decode(0x00851021).IsLoad()).To(BeFalse())
		})
	})

	Describe("Disassembly", func() {
		DescribeTable("String",
			func(word uint32, text string) {
				Expect(decoder.Decode(word).String()).To(Equal(text))
			},
			Entry("nop", uint32(0x00000000), "nop"),
			Entry("addiu", uint32(0x27BDFFE8), "addiu sp, sp, -24"),
			Entry("addu", uint32(0x00851021), "addu v0, a0, a1"),
			Entry("sll", uint32(0x00094100), "sll t0, t1, 4"),
			Entry("lui", uint32(0x3C081F80), "lui t0, 0x1F80"),
			Entry("lw", uint32(0x8FA80004), "lw t0, 4(sp)"),
			Entry("sw", uint32(0xAFBF0014), "sw ra, 20(sp)"),
			Entry("jr", uint32(0x03E00008), "jr ra"),
			Entry("beq", uint32(0x1000FFFF), "beq r0, r0, -4"),
			Entry("mtc0", uint32(0x40886000), "mtc0 t0, cop0r12"),
			Entry("rfe", uint32(0x42000010), "rfe"),
			Entry("unknown", uint32(0xFC000000), ".word 0xFC000000"),
		)

		It("should resolve targets against a pc", func() {
			Expect(decoder.Decode(0x1000FFFF).Disassemble(0x80000100)).
				To(Equal("beq r0, r0, 0x80000100"))
			Expect(decoder.Decode(0x08004000).Disassemble(0x80000000)).
				To(Equal("j 0x80010000"))
		})
	})
})
