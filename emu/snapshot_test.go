package emu_test

import (
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/psxsim/emu"
	"github.com/sarchlab/psxsim/mem/bus"
	"github.com/sarchlab/psxsim/mem/icache"
)

// loop stores, reloads and branches back forever, so a snapshot taken
// mid-way has a pending load and a branch in flight.
func loop(e *emu.Emulator) {
	program(e,
		addiu(r1, r1, 5),
		addu(r2, r1, r1),
		sw(r2, r0, 0x100),
		lw(r3, r0, 0x100),
		beq(r0, r0, -5),
		addiu(r4, r4, 1),
	)
}

func newLoopSystem() *emu.Emulator {
	e, _ := newSystem(emu.WithFillPolicy(icache.FillToLineEnd))
	e.CacheControl().Value = icache.ControlICache
	Expect(e.Store(0x1F800000, bus.Word, 0xA5A5A5A5)).To(Succeed())
	loop(e)
	return e
}

var _ = Describe("Snapshot", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = newLoopSystem()
		step(e, 4)
	})

	It("should capture the in-flight pipeline", func() {
		s := e.Snapshot()

		Expect(s.Format).To(Equal(emu.SnapshotFormat))
		Expect(s.Load.Pending).To(BeTrue())
		Expect(s.Load.Reg).To(Equal(uint8(r3)))
		Expect(s.ICache).To(HaveLen(icache.NumLines))
		Expect(s.ICache[icache.LineIndex(0x10000)].Valid).To(
			Equal([icache.WordsPerLine]bool{true, true, true, true}))
		Expect(s.Scratchpad[:4]).To(Equal([]byte{0xA5, 0xA5, 0xA5, 0xA5}))
	})

	It("should reproduce execution after restore", func() {
		s := e.Snapshot()

		other := newLoopSystem()
		Expect(other.Restore(s)).To(Succeed())
		Expect(cmp.Diff(s, other.Snapshot())).To(BeEmpty())

		step(e, 20)
		step(other, 20)

		Expect(cmp.Diff(e.Snapshot(), other.Snapshot())).To(BeEmpty())
	})

	DescribeTable("file round trip",
		func(name string) {
			path := filepath.Join(GinkgoT().TempDir(), name)
			s := e.Snapshot()

			Expect(emu.SaveSnapshot(path, s)).To(Succeed())
			loaded, err := emu.LoadSnapshot(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Diff(s, loaded)).To(BeEmpty())
		},
		Entry("json", "state.json"),
		Entry("yaml", "state.yaml"),
	)

	It("should reject an incompatible format", func() {
		s := e.Snapshot()
		s.Format = "2.0.0"
		pc := e.PC()

		err := e.Restore(s)

		Expect(err).To(MatchError(ContainSubstring("unsupported snapshot format")))
		Expect(e.PC()).To(Equal(pc))
	})

	It("should reject a pending load to a register that does not exist", func() {
		before := e.Snapshot()
		s := e.Snapshot()
		s.Load = emu.DelayedLoad{Reg: 40, Value: 7, Pending: true}
		s.Regs[r1] = 0xDEADBEEF

		err := e.Restore(s)

		Expect(err).To(MatchError(ContainSubstring("register 40")))
		Expect(cmp.Diff(before, e.Snapshot())).To(BeEmpty())
		Expect(func() { step(e, 6) }).NotTo(Panic())
	})

	It("should leave the state alone when a cache line is rejected", func() {
		before := e.Snapshot()
		s := e.Snapshot()
		s.Regs[r1] = 0xDEADBEEF
		s.ICache[0] = icache.LineState{}
		s.ICache[7] = icache.LineState{Present: true, Tag: 0x1000}

		Expect(e.Restore(s)).NotTo(Succeed())
		Expect(cmp.Diff(before, e.Snapshot())).To(BeEmpty())
	})

	It("should reject a malformed format", func() {
		s := e.Snapshot()
		s.Format = "not-a-version"

		Expect(e.Restore(s)).NotTo(Succeed())
	})
})

var _ = Describe("Dump", func() {
	It("should list pc, hi, lo and every register by name", func() {
		e, _ := newSystem()
		e.RegFile().WriteReg(29, 0x801FFFF0)
		e.RegFile().HI = 0xAB

		out := e.String()
		lines := strings.Split(strings.TrimSpace(out), "\n")

		Expect(lines).To(HaveLen(35))
		Expect(lines[0]).To(Equal("pc: 0x80010000"))
		Expect(lines[1]).To(Equal("hi: 0x000000ab"))
		Expect(lines[3]).To(Equal("r0: 0x00000000"))
		Expect(out).To(ContainSubstring("sp: 0x801ffff0"))
		Expect(lines[34]).To(Equal("ra: 0x00000000"))
	})
})
