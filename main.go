// Package main provides the entry point for psxsim.
// psxsim is a functional model of the PlayStation MIPS R3000A CPU core.
//
// For the full CLI, use: go run ./cmd/psxsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("psxsim - PlayStation R3000A CPU Simulator")
	fmt.Println("")
	fmt.Println("Usage: psxsim [options] [program.exe|program.elf]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config       Path to a JSON or YAML configuration file")
	fmt.Println("  -bios         Path to the BIOS ROM image")
	fmt.Println("  -steps        Stop after this many instructions")
	fmt.Println("  -debug        Single-step interactively")
	fmt.Println("  -snapshot     Write the final CPU state to a file")
	fmt.Println("  -restore      Restore CPU state before running")
	fmt.Println("  -determinism  Run N instances and compare their final state")
	fmt.Println("  -v            Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/psxsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/psxsim' instead.")
	}
}
