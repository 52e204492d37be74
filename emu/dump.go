package emu

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/psxsim/insts"
)

// Dump writes the program counter, HI/LO and every general register by its
// ABI name, one per line.
func (e *Emulator) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "pc: 0x%08x\nhi: 0x%08x\nlo: 0x%08x\n",
		e.pc, e.regFile.HI, e.regFile.LO); err != nil {
		return err
	}

	for i, name := range insts.RegNames {
		if _, err := fmt.Fprintf(w, "%s: 0x%08x\n", name, e.regFile.R[i]); err != nil {
			return err
		}
	}

	return nil
}

func (e *Emulator) String() string {
	var sb strings.Builder
	_ = e.Dump(&sb)
	return sb.String()
}
