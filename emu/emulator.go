package emu

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/psxsim/insts"
	"github.com/sarchlab/psxsim/mem/bus"
	"github.com/sarchlab/psxsim/mem/icache"
	"github.com/sarchlab/psxsim/mem/scratchpad"
)

// ResetPC is the address of the first instruction after reset.
const ResetPC = 0xBFC00000

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// PC is the address the instruction was fetched from.
	PC uint32

	// Inst is the decoded instruction. It is zero when the fetch failed.
	Inst insts.Instruction

	// Exception is the exception the instruction raised, if any. It is set
	// both when the CPU vectored to a handler and when it halted.
	Exception *Exception

	// Err is set when the step did not complete. The CPU is left ready to
	// retry the same instruction.
	Err error
}

// Emulator executes MIPS instructions functionally. It owns the register
// file, COP0, the instruction cache, the scratchpad and the cache-control
// register; main memory and devices are reached through an external bus.
type Emulator struct {
	regFile      *RegFile
	cop0         *Cop0
	decoder      *insts.Decoder
	bus          bus.Bus
	icache       *icache.Cache
	scratchpad   *scratchpad.Scratchpad
	cacheControl *icache.ControlRegister

	log              logr.Logger
	vectorExceptions bool

	// Pipeline state. pc is the next instruction to fetch and nextPC the one
	// after it; a taken branch rewrites nextPC so that the delay slot at pc
	// still executes.
	pc        uint32
	nextPC    uint32
	currentPC uint32
	branch    bool
	delaySlot bool
	committed bool

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.log = log
	}
}

// WithExceptionVectoring makes the CPU enter the COP0 exception handler
// instead of halting when an instruction raises an exception.
func WithExceptionVectoring(enabled bool) EmulatorOption {
	return func(e *Emulator) {
		e.vectorExceptions = enabled
	}
}

// WithFillPolicy sets the instruction cache fill policy.
func WithFillPolicy(policy icache.FillPolicy) EmulatorOption {
	return func(e *Emulator) {
		e.icache = icache.New(policy)
	}
}

// WithCacheControl shares a cache-control register owned by the memory
// control subsystem.
func WithCacheControl(reg *icache.ControlRegister) EmulatorOption {
	return func(e *Emulator) {
		e.cacheControl = reg
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates an emulator reading and writing memory through b.
// The CPU starts at ResetPC.
func NewEmulator(b bus.Bus, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:      &RegFile{},
		cop0:         &Cop0{},
		decoder:      insts.NewDecoder(),
		bus:          b,
		icache:       icache.New(icache.FillWord),
		scratchpad:   scratchpad.New(),
		cacheControl: &icache.ControlRegister{},
		log:          logr.Discard(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.Reset()

	return e
}

// RegFile returns the register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Cop0 returns the system control coprocessor.
func (e *Emulator) Cop0() *Cop0 {
	return e.cop0
}

// ICache returns the instruction cache.
func (e *Emulator) ICache() *icache.Cache {
	return e.icache
}

// Scratchpad returns the scratchpad.
func (e *Emulator) Scratchpad() *scratchpad.Scratchpad {
	return e.scratchpad
}

// CacheControl returns the cache-control register.
func (e *Emulator) CacheControl() *icache.ControlRegister {
	return e.cacheControl
}

// PC returns the address of the next instruction to execute.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// NextPC returns the address of the instruction after PC.
func (e *Emulator) NextPC() uint32 {
	return e.nextPC
}

// CurrentPC returns the address of the instruction executed last.
func (e *Emulator) CurrentPC() uint32 {
	return e.currentPC
}

// SetPC jumps to pc outside of any delay slot.
func (e *Emulator) SetPC(pc uint32) {
	e.pc = pc
	e.nextPC = pc + 4
	e.branch = false
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Reset restores the power-on CPU state. The instruction cache, scratchpad
// and cache-control register keep their contents.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.cop0.Reset()
	e.SetPC(ResetPC)
	e.currentPC = ResetPC
	e.delaySlot = false
	e.committed = false
	e.instructionCount = 0
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{PC: e.pc, Err: ErrMaxInstructions}
	}

	saved := e.savePipeline()

	e.currentPC = e.pc
	e.delaySlot = e.branch
	e.branch = false
	e.committed = false

	word, err := e.Fetch(e.currentPC)
	if err != nil {
		return e.fault(err, insts.Instruction{}, saved)
	}

	inst := e.decoder.Decode(word)

	e.pc = e.nextPC
	e.nextPC = e.pc + 4

	err = e.execute(inst)
	e.commit()
	if err != nil {
		return e.fault(err, inst, saved)
	}

	e.instructionCount++

	return StepResult{PC: e.currentPC, Inst: inst}
}

// Run executes up to n instructions, or without limit when n is 0. It stops
// at the first step that returns an error and reports how many instructions
// completed.
func (e *Emulator) Run(n uint64) (uint64, error) {
	var done uint64
	for n == 0 || done < n {
		result := e.Step()
		if result.Err != nil {
			return done, result.Err
		}
		done++
	}
	return done, nil
}

// pipelineState is what a halted step has to put back so that the same
// instruction can be retried.
type pipelineState struct {
	pc, nextPC uint32
	branch     bool
	load       DelayedLoad
	loadOld    uint32
}

func (e *Emulator) savePipeline() pipelineState {
	load := e.regFile.PendingLoad()
	return pipelineState{
		pc:      e.pc,
		nextPC:  e.nextPC,
		branch:  e.branch,
		load:    load,
		loadOld: e.regFile.ReadReg(load.Reg),
	}
}

func (e *Emulator) restorePipeline(s pipelineState) {
	e.pc = s.pc
	e.nextPC = s.nextPC
	e.branch = s.branch
	if s.load.Pending {
		e.regFile.R[s.load.Reg&0x1F] = s.loadOld
		e.regFile.load = s.load
	}
}

// commit lands the pending delayed load. It runs once per step; handlers
// call it after reading their operands and before writing results.
func (e *Emulator) commit() {
	if e.committed {
		return
	}
	e.regFile.CommitLoad()
	e.committed = true
}

// fault finishes a step that raised err.
func (e *Emulator) fault(err error, inst insts.Instruction, saved pipelineState) StepResult {
	result := StepResult{PC: e.currentPC, Inst: inst}

	var exc *Exception
	if !errors.As(err, &exc) {
		e.restorePipeline(saved)
		e.log.V(1).Info("bus fault", "pc", hex32(e.currentPC), "err", err.Error())
		result.Err = fmt.Errorf("step at 0x%08X: %w", e.currentPC, err)
		return result
	}

	exc.PC = e.currentPC
	exc.Word = uint32(inst.Word)
	exc.InDelaySlot = e.delaySlot
	result.Exception = exc

	if !e.vectorExceptions {
		e.restorePipeline(saved)
		e.log.V(1).Info("exception halted cpu",
			"code", exc.Code.String(), "pc", hex32(exc.PC))
		result.Err = exc
		return result
	}

	e.commit()
	handler := e.cop0.EnterException(exc, e.currentPC)
	e.SetPC(handler)
	e.instructionCount++
	e.log.V(1).Info("exception",
		"code", exc.Code.String(), "pc", hex32(exc.PC), "handler", hex32(handler))

	return result
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}
