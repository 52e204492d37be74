package emu

import (
	"errors"
	"fmt"
)

// ErrMaxInstructions is returned by Step once the instruction limit set with
// WithMaxInstructions has been reached.
var ErrMaxInstructions = errors.New("max instructions reached")

// ExceptionCode is the value stored in the Cause register ExcCode field.
type ExceptionCode uint8

// Exception codes raised by the core.
const (
	ExcInterrupt           ExceptionCode = 0x0
	ExcAddressLoad         ExceptionCode = 0x4
	ExcAddressStore        ExceptionCode = 0x5
	ExcSyscall             ExceptionCode = 0x8
	ExcBreak               ExceptionCode = 0x9
	ExcReservedInstruction ExceptionCode = 0xA
	ExcCoprocessorUnusable ExceptionCode = 0xB
	ExcOverflow            ExceptionCode = 0xC
)

func (c ExceptionCode) String() string {
	switch c {
	case ExcInterrupt:
		return "interrupt"
	case ExcAddressLoad:
		return "address error (load)"
	case ExcAddressStore:
		return "address error (store)"
	case ExcSyscall:
		return "syscall"
	case ExcBreak:
		return "break"
	case ExcReservedInstruction:
		return "reserved instruction"
	case ExcCoprocessorUnusable:
		return "coprocessor unusable"
	case ExcOverflow:
		return "arithmetic overflow"
	default:
		return fmt.Sprintf("exception(%d)", uint8(c))
	}
}

// AccessKind tells which kind of memory access raised an address error.
type AccessKind uint8

// Access kinds.
const (
	AccessNone AccessKind = iota
	AccessFetch
	AccessLoad
	AccessStore
)

func (k AccessKind) String() string {
	switch k {
	case AccessFetch:
		return "fetch"
	case AccessLoad:
		return "load"
	case AccessStore:
		return "store"
	default:
		return "none"
	}
}

// Exception is a CPU exception raised while executing an instruction.
type Exception struct {
	Code ExceptionCode

	// PC is the address of the instruction that raised the exception.
	PC uint32

	// Word is the raw instruction word, zero for fetch errors.
	Word uint32

	// InDelaySlot is set when the instruction sat in a branch delay slot.
	InDelaySlot bool

	// BadAddr and Access describe address errors.
	BadAddr uint32
	Access  AccessKind

	// Coprocessor is the coprocessor number for ExcCoprocessorUnusable.
	Coprocessor uint8
}

func (e *Exception) Error() string {
	switch e.Code {
	case ExcAddressLoad, ExcAddressStore:
		return fmt.Sprintf("%s: misaligned %s of 0x%08X at pc=0x%08X",
			e.Code, e.Access, e.BadAddr, e.PC)
	case ExcCoprocessorUnusable:
		return fmt.Sprintf("%s: cop%d at pc=0x%08X", e.Code, e.Coprocessor, e.PC)
	default:
		return fmt.Sprintf("%s at pc=0x%08X (0x%08X)", e.Code, e.PC, e.Word)
	}
}

func addressError(code ExceptionCode, access AccessKind, addr uint32) *Exception {
	return &Exception{Code: code, Access: access, BadAddr: addr}
}
