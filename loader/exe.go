package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/sarchlab/psxsim/mem/bus"
	"github.com/sarchlab/psxsim/mem/region"
)

// EXEHeaderSize is the size of the PS-X EXE header; the text image follows
// it.
const EXEHeaderSize = 0x800

var exeMagic = []byte("PS-X EXE")

// exeHeader is the part of the PS-X EXE header the loader uses.
type exeHeader struct {
	PC        uint32
	GP        uint32
	TextAddr  uint32
	TextSize  uint32
	BSSAddr   uint32
	BSSSize   uint32
	StackBase uint32
	StackOff  uint32
}

func parseEXEHeader(data []byte) exeHeader {
	le := binary.LittleEndian
	return exeHeader{
		PC:        le.Uint32(data[0x10:]),
		GP:        le.Uint32(data[0x14:]),
		TextAddr:  le.Uint32(data[0x18:]),
		TextSize:  le.Uint32(data[0x1C:]),
		BSSAddr:   le.Uint32(data[0x28:]),
		BSSSize:   le.Uint32(data[0x2C:]),
		StackBase: le.Uint32(data[0x30:]),
		StackOff:  le.Uint32(data[0x34:]),
	}
}

// IsEXE reports whether data starts with the PS-X EXE magic.
func IsEXE(data []byte) bool {
	return bytes.HasPrefix(data, exeMagic)
}

// ParseEXE decodes a PS-X EXE image.
func ParseEXE(data []byte) (*Program, error) {
	if len(data) < EXEHeaderSize {
		return nil, fmt.Errorf("PS-X EXE too short: %d bytes", len(data))
	}
	if !IsEXE(data) {
		return nil, fmt.Errorf("not a PS-X EXE file")
	}

	h := parseEXEHeader(data)

	text := data[EXEHeaderSize:]
	if uint64(h.TextSize) > uint64(len(text)) {
		return nil, fmt.Errorf("PS-X EXE text truncated: header says %d bytes, file has %d",
			h.TextSize, len(text))
	}

	if err := checkRAMSegment("text", h.TextAddr, h.TextSize); err != nil {
		return nil, err
	}
	if h.BSSSize > 0 {
		if err := checkRAMSegment("bss", h.BSSAddr, h.BSSSize); err != nil {
			return nil, err
		}
	}

	prog := &Program{
		EntryPoint: h.PC,
		GP:         h.GP,
		InitialSP:  DefaultStackTop,
		Segments: []Segment{{
			VirtAddr: h.TextAddr,
			Data:     text[:h.TextSize],
			MemSize:  h.TextSize,
			Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}

	if h.BSSSize > 0 {
		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: h.BSSAddr,
			MemSize:  h.BSSSize,
			Flags:    SegmentFlagRead | SegmentFlagWrite,
		})
	}

	if h.StackBase != 0 {
		prog.InitialSP = h.StackBase + h.StackOff
	}

	return prog, nil
}

// checkRAMSegment rejects a segment that does not lie inside main RAM.
func checkRAMSegment(kind string, addr, size uint32) error {
	phys := uint64(region.Mask(addr))
	start := uint64(bus.RAMRange.Start)
	end := start + uint64(bus.RAMRange.Length)
	if phys < start || phys+uint64(size) > end {
		return fmt.Errorf("PS-X EXE %s at 0x%08X (%d bytes) does not fit in RAM", kind, addr, size)
	}
	return nil
}

// LoadEXE reads and parses a PS-X EXE file.
func LoadEXE(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PS-X EXE file: %w", err)
	}
	return ParseEXE(data)
}

// Load reads a program, picking the format from the file contents.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}

	magic := make([]byte, len(exeMagic))
	n, _ := f.Read(magic)
	_ = f.Close()

	if IsEXE(magic[:n]) {
		return LoadEXE(path)
	}
	return LoadELF(path)
}
