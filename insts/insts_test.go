package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/psxsim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should name every register by calling convention", func() {
		Expect(insts.RegNames[0]).To(Equal("r0"))
		Expect(insts.RegNames[22]).To(Equal("s6"))
		Expect(insts.RegNames[23]).To(Equal("s7"))
		Expect(insts.RegNames[31]).To(Equal("ra"))
	})
})
