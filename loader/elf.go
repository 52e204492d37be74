// Package loader reads MIPS programs (ELF32 and PS-X EXE) and installs them
// into emulated memory.
package loader

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/sarchlab/psxsim/mem/bus"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the initial stack pointer used when the program does
// not name one: the top of 2MB RAM seen through KSEG0, minus a small
// argument area.
const DefaultStackTop = 0x801FFFF0

// Segment represents a loadable region of a program.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded program ready for execution.
type Program struct {
	// EntryPoint is the virtual address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint32
	// GP is the initial global pointer, zero when the format has none.
	GP uint32
}

// LoadELF parses a little-endian MIPS ELF32 executable.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}

	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("not a MIPS ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
		InitialSP:  DefaultStackTop,
	}

	if gp, ok := elfGP(f); ok {
		prog.GP = gp
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		if phdr.Memsz > uint64(bus.RAMRange.Length) || phdr.Filesz > phdr.Memsz {
			return nil, fmt.Errorf("segment at 0x%x has bad size: %d bytes in file, %d in memory",
				phdr.Vaddr, phdr.Filesz, phdr.Memsz)
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	return prog, nil
}

// elfGP looks up the _gp symbol the MIPS linker defines for small data.
func elfGP(f *elf.File) (uint32, bool) {
	syms, err := f.Symbols()
	if err != nil {
		return 0, false
	}
	for _, s := range syms {
		if s.Name == "_gp" {
			return uint32(s.Value), true
		}
	}
	return 0, false
}

// Install writes every segment through target, zero-filling the part of
// each segment past its file data. target addresses are virtual.
func (p *Program) Install(target bus.Bus) error {
	for _, seg := range p.Segments {
		size := seg.MemSize
		if size < uint32(len(seg.Data)) {
			size = uint32(len(seg.Data))
		}

		for off := uint32(0); off < size; off++ {
			var b uint32
			if off < uint32(len(seg.Data)) {
				b = uint32(seg.Data[off])
			}
			if err := target.Store(seg.VirtAddr+off, bus.Byte, b); err != nil {
				return fmt.Errorf("failed to install segment at 0x%08X: %w", seg.VirtAddr, err)
			}
		}
	}

	return nil
}
