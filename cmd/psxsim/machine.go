package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/sarchlab/psxsim/config"
	"github.com/sarchlab/psxsim/emu"
	"github.com/sarchlab/psxsim/loader"
	"github.com/sarchlab/psxsim/mem/bus"
)

// Registers the loader initialises besides the program counter.
const (
	regGP = 28
	regSP = 29
	regFP = 30
)

// machine is the CPU together with the external memory the command line
// tool provides for it.
type machine struct {
	ram          *bus.RAM
	interconnect *bus.Interconnect
	cpu          *emu.Emulator
	program      *loader.Program
}

// newMachine builds a machine from cfg. The I/O window is backed by plain
// memory so that register writes land somewhere and read back; no
// peripheral behind it is emulated.
func newMachine(cfg *config.Config, log logr.Logger) (*machine, error) {
	fill, err := cfg.FillPolicy()
	if err != nil {
		return nil, err
	}

	m := &machine{
		ram:          bus.NewRAM(int(cfg.RAMSize)),
		interconnect: bus.NewInterconnect(),
	}

	if err := m.interconnect.Map("ram", bus.RAMRange, m.ram); err != nil {
		return nil, err
	}
	if err := m.interconnect.Map("io", bus.IORange, bus.NewRAM(int(bus.IORange.Length))); err != nil {
		return nil, err
	}

	if cfg.BIOS != "" {
		image, err := os.ReadFile(cfg.BIOS)
		if err != nil {
			return nil, fmt.Errorf("failed to read BIOS: %w", err)
		}
		if len(image) == 0 || uint32(len(image)) > bus.BIOSRange.Length {
			return nil, fmt.Errorf("BIOS image is %d bytes, want 1 to %d",
				len(image), bus.BIOSRange.Length)
		}
		if err := m.interconnect.Map("bios", bus.BIOSRange, bus.NewROM(image)); err != nil {
			return nil, err
		}
	}

	opts := []emu.EmulatorOption{
		emu.WithLogger(log),
		emu.WithFillPolicy(fill),
		emu.WithExceptionVectoring(cfg.VectorExceptions),
	}
	if cfg.MaxSteps > 0 {
		opts = append(opts, emu.WithMaxInstructions(cfg.MaxSteps))
	}
	m.cpu = emu.NewEmulator(m.interconnect, opts...)

	if cfg.EXE != "" {
		if err := m.loadProgram(cfg.EXE); err != nil {
			return nil, err
		}
	} else if cfg.BIOS == "" {
		return nil, fmt.Errorf("nothing to run: set a BIOS or a program")
	}

	return m, nil
}

// loadProgram installs the program at path and points the CPU at its entry.
func (m *machine) loadProgram(path string) error {
	prog, err := loader.Load(path)
	if err != nil {
		return err
	}

	if err := prog.Install(m.cpu); err != nil {
		return err
	}

	rf := m.cpu.RegFile()
	rf.WriteReg(regGP, prog.GP)
	rf.WriteReg(regSP, prog.InitialSP)
	rf.WriteReg(regFP, prog.InitialSP)
	m.cpu.SetPC(prog.EntryPoint)

	m.program = prog
	return nil
}
