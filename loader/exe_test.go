package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/psxsim/emu"
	"github.com/sarchlab/psxsim/loader"
	"github.com/sarchlab/psxsim/mem/bus"
)

func buildEXE(pc, gp, addr uint32, text []byte, stackBase, stackOff uint32) []byte {
	le := binary.LittleEndian

	data := make([]byte, loader.EXEHeaderSize+len(text))
	copy(data, "PS-X EXE")
	le.PutUint32(data[0x10:], pc)
	le.PutUint32(data[0x14:], gp)
	le.PutUint32(data[0x18:], addr)
	le.PutUint32(data[0x1C:], uint32(len(text)))
	le.PutUint32(data[0x30:], stackBase)
	le.PutUint32(data[0x34:], stackOff)
	copy(data[loader.EXEHeaderSize:], text)

	return data
}

var _ = Describe("PS-X EXE Loader", func() {
	text := []byte{0xE8, 0xFF, 0xBD, 0x27, 0x08, 0x00, 0xE0, 0x03}

	It("should parse the header", func() {
		prog, err := loader.ParseEXE(buildEXE(0x80010008, 0x8001F000, 0x80010000, text, 0x801FFF00, 0xF0))

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.EntryPoint).To(Equal(uint32(0x80010008)))
		Expect(prog.GP).To(Equal(uint32(0x8001F000)))
		Expect(prog.InitialSP).To(Equal(uint32(0x801FFFF0)))
		Expect(prog.Segments).To(HaveLen(1))
		Expect(prog.Segments[0].VirtAddr).To(Equal(uint32(0x80010000)))
		Expect(prog.Segments[0].Data).To(Equal(text))
	})

	It("should fall back to the default stack", func() {
		prog, err := loader.ParseEXE(buildEXE(0x80010000, 0, 0x80010000, text, 0, 0))

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.InitialSP).To(Equal(uint32(loader.DefaultStackTop)))
	})

	It("should add a BSS segment", func() {
		data := buildEXE(0x80010000, 0, 0x80010000, text, 0, 0)
		binary.LittleEndian.PutUint32(data[0x28:], 0x80020000)
		binary.LittleEndian.PutUint32(data[0x2C:], 0x100)

		prog, err := loader.ParseEXE(data)

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments).To(HaveLen(2))
		Expect(prog.Segments[1].VirtAddr).To(Equal(uint32(0x80020000)))
		Expect(prog.Segments[1].Data).To(BeEmpty())
		Expect(prog.Segments[1].MemSize).To(Equal(uint32(0x100)))
	})

	It("should reject bad images", func() {
		_, err := loader.ParseEXE([]byte("PS-X EXE"))
		Expect(err).To(MatchError(ContainSubstring("too short")))

		_, err = loader.ParseEXE(make([]byte, loader.EXEHeaderSize))
		Expect(err).To(MatchError(ContainSubstring("not a PS-X EXE")))

		data := buildEXE(0, 0, 0x80010000, text, 0, 0)
		_, err = loader.ParseEXE(data[:len(data)-1])
		Expect(err).To(MatchError(ContainSubstring("truncated")))
	})

	It("should reject segments that do not fit in RAM", func() {
		data := buildEXE(0x80010000, 0, 0x80010000, text, 0, 0)
		binary.LittleEndian.PutUint32(data[0x28:], 0x80020000)
		binary.LittleEndian.PutUint32(data[0x2C:], 0xFFFFFFFF)

		_, err := loader.ParseEXE(data)
		Expect(err).To(MatchError(ContainSubstring("bss")))

		data = buildEXE(0x80010000, 0, 0x801FFFFC, text, 0, 0)
		_, err = loader.ParseEXE(data)
		Expect(err).To(MatchError(ContainSubstring("does not fit in RAM")))

		data = buildEXE(0xBFC00000, 0, 0xBFC00000, text, 0, 0)
		_, err = loader.ParseEXE(data)
		Expect(err).To(MatchError(ContainSubstring("text")))
	})

	It("should be detected by Load and installed into memory", func() {
		path := filepath.Join(GinkgoT().TempDir(), "prog.exe")
		Expect(os.WriteFile(path, buildEXE(0x80010000, 0, 0x80010000, text, 0, 0), 0644)).To(Succeed())

		prog, err := loader.Load(path)
		Expect(err).NotTo(HaveOccurred())

		ram := bus.NewRAM(int(bus.RAMRange.Length))
		ic := bus.NewInterconnect()
		Expect(ic.Map("ram", bus.RAMRange, ram)).To(Succeed())
		e := emu.NewEmulator(ic)

		Expect(prog.Install(e)).To(Succeed())

		Expect(ram.Bytes()[0x10000:0x10008]).To(Equal(text))
		Expect(e.Load(0x80010000, bus.Word)).To(Equal(uint32(0x27BDFFE8)))
	})

	It("should report install faults", func() {
		prog := &loader.Program{Segments: []loader.Segment{{
			VirtAddr: 0x1F000000, Data: []byte{1}, MemSize: 1,
		}}}

		err := prog.Install(bus.NewInterconnect())

		Expect(err).To(MatchError(ContainSubstring("failed to install segment")))
	})
})
