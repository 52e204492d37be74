package emu

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"

	"github.com/sarchlab/psxsim/mem/icache"
)

// SnapshotFormat is the format version written into new snapshots.
const SnapshotFormat = "1.0.0"

// snapshotConstraint accepts every snapshot layout Restore understands.
const snapshotConstraint = "^1.0"

// Snapshot is the complete CPU state. Restoring it reproduces execution bit
// for bit given the same bus contents.
type Snapshot struct {
	Format string `json:"format" yaml:"format"`

	Regs      [32]uint32  `json:"regs" yaml:"regs"`
	HI        uint32      `json:"hi" yaml:"hi"`
	LO        uint32      `json:"lo" yaml:"lo"`
	PC        uint32      `json:"pc" yaml:"pc"`
	NextPC    uint32      `json:"next_pc" yaml:"next_pc"`
	CurrentPC uint32      `json:"current_pc" yaml:"current_pc"`
	Load      DelayedLoad `json:"pending_load" yaml:"pending_load"`
	Branch    bool        `json:"branch" yaml:"branch"`
	DelaySlot bool        `json:"delay_slot" yaml:"delay_slot"`

	Cop0         Cop0               `json:"cop0" yaml:"cop0"`
	CacheControl uint32             `json:"cache_control" yaml:"cache_control"`
	ICache       []icache.LineState `json:"icache" yaml:"icache"`
	Scratchpad   []byte             `json:"scratchpad" yaml:"scratchpad"`

	InstructionCount uint64 `json:"instruction_count" yaml:"instruction_count"`
}

// Snapshot captures the current state.
func (e *Emulator) Snapshot() *Snapshot {
	return &Snapshot{
		Format:           SnapshotFormat,
		Regs:             e.regFile.R,
		HI:               e.regFile.HI,
		LO:               e.regFile.LO,
		PC:               e.pc,
		NextPC:           e.nextPC,
		CurrentPC:        e.currentPC,
		Load:             e.regFile.PendingLoad(),
		Branch:           e.branch,
		DelaySlot:        e.delaySlot,
		Cop0:             *e.cop0,
		CacheControl:     uint32(e.cacheControl.Value),
		ICache:           e.icache.Lines(),
		Scratchpad:       e.scratchpad.Bytes(),
		InstructionCount: e.instructionCount,
	}
}

// Restore replaces the current state with s. A snapshot that is rejected
// leaves the emulator unchanged. A snapshot without cache lines restores an
// empty cache.
func (e *Emulator) Restore(s *Snapshot) error {
	if err := checkSnapshotFormat(s.Format); err != nil {
		return err
	}
	if s.Load.Reg >= uint8(len(e.regFile.R)) {
		return fmt.Errorf("pending load targets register %d", s.Load.Reg)
	}

	if s.ICache != nil {
		if err := e.icache.SetLines(s.ICache); err != nil {
			return fmt.Errorf("failed to restore instruction cache: %w", err)
		}
	} else {
		e.icache.Reset()
	}

	e.regFile.R = s.Regs
	e.regFile.R[0] = 0
	e.regFile.HI = s.HI
	e.regFile.LO = s.LO
	e.regFile.load = s.Load
	e.pc = s.PC
	e.nextPC = s.NextPC
	e.currentPC = s.CurrentPC
	e.branch = s.Branch
	e.delaySlot = s.DelaySlot
	*e.cop0 = s.Cop0
	e.cacheControl.Value = icache.Control(s.CacheControl)
	e.scratchpad.SetBytes(s.Scratchpad)
	e.instructionCount = s.InstructionCount

	e.log.V(2).Info("snapshot restored", "pc", hex32(e.pc), "format", s.Format)

	return nil
}

func checkSnapshotFormat(format string) error {
	v, err := semver.NewVersion(format)
	if err != nil {
		return fmt.Errorf("invalid snapshot format %q: %w", format, err)
	}

	c, err := semver.NewConstraint(snapshotConstraint)
	if err != nil {
		return err
	}

	if !c.Check(v) {
		return fmt.Errorf("unsupported snapshot format %s (want %s)", v, snapshotConstraint)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// SaveSnapshot writes s to path, as YAML for .yaml/.yml files and JSON
// otherwise.
func SaveSnapshot(path string, s *Snapshot) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	s := &Snapshot{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return s, nil
}
