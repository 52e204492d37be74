package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/psxsim/loader"
)

// elfSegment describes one PT_LOAD entry for writeELF.
type elfSegment struct {
	vaddr   uint32
	data    []byte
	memSize uint32
	flags   uint32
}

const (
	pfX = 0x1
	pfW = 0x2
	pfR = 0x4
)

// writeELF writes a little-endian ELF executable header with the given class
// and machine, followed by 32-bit PT_LOAD entries and their data.
func writeELF(path string, class, machine uint16, entry uint32, segs ...elfSegment) {
	le := binary.LittleEndian

	header := make([]byte, 52)
	copy(header[0:4], []byte{0x7f, 'E', 'L', 'F'})
	header[4] = byte(class)
	header[5] = 1                                  // little endian
	header[6] = 1                                  // version
	le.PutUint16(header[16:18], 2)                 // executable
	le.PutUint16(header[18:20], machine)           // machine
	le.PutUint32(header[20:24], 1)                 // version
	le.PutUint32(header[24:28], entry)             // entry
	le.PutUint32(header[28:32], 52)                // phoff
	le.PutUint16(header[40:42], 52)                // ehsize
	le.PutUint16(header[42:44], 32)                // phentsize
	le.PutUint16(header[44:46], uint16(len(segs))) // phnum
	le.PutUint16(header[46:48], 40)                // shentsize

	offset := uint32(52 + 32*len(segs))
	var phdrs, body []byte
	for _, s := range segs {
		ph := make([]byte, 32)
		le.PutUint32(ph[0:4], 1) // PT_LOAD
		le.PutUint32(ph[4:8], offset)
		le.PutUint32(ph[8:12], s.vaddr)
		le.PutUint32(ph[12:16], s.vaddr)
		le.PutUint32(ph[16:20], uint32(len(s.data)))
		le.PutUint32(ph[20:24], s.memSize)
		le.PutUint32(ph[24:28], s.flags)
		le.PutUint32(ph[28:32], 0x1000)

		phdrs = append(phdrs, ph...)
		body = append(body, s.data...)
		offset += uint32(len(s.data))
	}

	file, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = file.Close() }()

	_, _ = file.Write(header)
	_, _ = file.Write(phdrs)
	_, _ = file.Write(body)
}

const (
	elfClass32 = 1
	elfClass64 = 2
	emMIPS     = 8
	emARM      = 40
)

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	// addiu sp, sp, -24; jr ra
	code := []byte{0xE8, 0xFF, 0xBD, 0x27, 0x08, 0x00, 0xE0, 0x03}

	Context("with a valid MIPS ELF binary", func() {
		var elfPath string

		BeforeEach(func() {
			elfPath = filepath.Join(tempDir, "test.elf")
			writeELF(elfPath, elfClass32, emMIPS, 0x80010000,
				elfSegment{vaddr: 0x80010000, data: code, memSize: uint32(len(code)), flags: pfR | pfX})
		})

		It("should extract the entry point and segment", func() {
			prog, err := loader.LoadELF(elfPath)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.EntryPoint).To(Equal(uint32(0x80010000)))
			Expect(prog.Segments).To(HaveLen(1))
			Expect(prog.Segments[0].VirtAddr).To(Equal(uint32(0x80010000)))
			Expect(prog.Segments[0].Data).To(Equal(code))
			Expect(prog.Segments[0].Flags & loader.SegmentFlagExecute).NotTo(BeZero())
		})

		It("should use the default stack", func() {
			prog, err := loader.LoadELF(elfPath)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.InitialSP).To(Equal(uint32(loader.DefaultStackTop)))
			Expect(prog.GP).To(BeZero())
		})

		It("should be detected by Load", func() {
			prog, err := loader.Load(elfPath)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.EntryPoint).To(Equal(uint32(0x80010000)))
		})
	})

	It("should load code and data segments", func() {
		path := filepath.Join(tempDir, "multi.elf")
		data := []byte{1, 2, 3, 4}
		writeELF(path, elfClass32, emMIPS, 0x80010000,
			elfSegment{vaddr: 0x80010000, data: code, memSize: uint32(len(code)), flags: pfR | pfX},
			elfSegment{vaddr: 0x80020000, data: data, memSize: 1024, flags: pfR | pfW},
		)

		prog, err := loader.LoadELF(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments).To(HaveLen(2))
		Expect(prog.Segments[1].Data).To(Equal(data))
		Expect(prog.Segments[1].MemSize).To(Equal(uint32(1024)))
		Expect(prog.Segments[1].Flags & loader.SegmentFlagWrite).NotTo(BeZero())
	})

	It("should reject a segment larger than RAM", func() {
		path := filepath.Join(tempDir, "huge.elf")
		writeELF(path, elfClass32, emMIPS, 0x80010000,
			elfSegment{vaddr: 0x80020000, data: code, memSize: 0xFFFFFFFF, flags: pfR | pfW},
		)

		_, err := loader.LoadELF(path)

		Expect(err).To(MatchError(ContainSubstring("bad size")))
	})

	Context("with an invalid file", func() {
		It("should return error for non-existent file", func() {
			_, err := loader.LoadELF("/nonexistent/path/to/file.elf")

			Expect(err).To(MatchError(ContainSubstring("failed to open")))
		})

		It("should return error for non-ELF file", func() {
			path := filepath.Join(tempDir, "not-elf.bin")
			Expect(os.WriteFile(path, []byte("not an elf file"), 0644)).To(Succeed())

			_, err := loader.Load(path)

			Expect(err).To(MatchError(ContainSubstring("ELF")))
		})

		It("should reject other machines", func() {
			path := filepath.Join(tempDir, "arm.elf")
			writeELF(path, elfClass32, emARM, 0)

			_, err := loader.LoadELF(path)

			Expect(err).To(MatchError(ContainSubstring("not a MIPS")))
		})

		It("should reject 64-bit files", func() {
			path := filepath.Join(tempDir, "elf64.elf")
			header := make([]byte, 64)
			copy(header, []byte{0x7f, 'E', 'L', 'F', elfClass64, 1, 1})
			binary.LittleEndian.PutUint16(header[16:18], 2)
			binary.LittleEndian.PutUint16(header[18:20], emMIPS)
			binary.LittleEndian.PutUint32(header[20:24], 1)
			binary.LittleEndian.PutUint16(header[52:54], 64)
			Expect(os.WriteFile(path, header, 0644)).To(Succeed())

			_, err := loader.LoadELF(path)

			Expect(err).To(MatchError(ContainSubstring("not a 32-bit")))
		})
	})
})
