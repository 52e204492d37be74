// Package main provides the entry point for psxsim.
// psxsim runs MIPS R3000A programs on a functional model of the PlayStation
// CPU core.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/psxsim/config"
	"github.com/sarchlab/psxsim/emu"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON or YAML configuration file")
	biosPath    = flag.String("bios", "", "Path to the BIOS ROM image")
	maxSteps    = flag.Uint64("steps", 0, "Stop after this many instructions (0 = config value)")
	verbose     = flag.Bool("v", false, "Verbose output")
	trace       = flag.Bool("trace", false, "Log every executed instruction")
	debugMode   = flag.Bool("debug", false, "Single-step interactively in the terminal")
	snapshotOut = flag.String("snapshot", "", "Write the final CPU state to this file (.json or .yaml)")
	restoreIn   = flag.String("restore", "", "Restore CPU state from this snapshot before running")
	determinism = flag.Int("determinism", 0, "Run N instances concurrently and compare their final state")
	statsAddr   = flag.String("statsview", "", "Serve runtime statistics on this address, e.g. localhost:12600")
	memvizOut   = flag.String("memviz", "", "Write a graphviz dump of the final CPU state to this file")
)

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		usage()
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(level)
	log, runID := newLogger(logger)

	if *statsAddr != "" {
		launchStatsView(*statsAddr)
	}

	if *determinism > 0 {
		if err := checkDeterminism(context.Background(), cfg, *determinism, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(run(cfg, log, runID))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: psxsim [options] [program.exe|program.elf]\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

// buildConfig merges the configuration file with the command line.
func buildConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *biosPath != "" {
		cfg.BIOS = *biosPath
	}
	if flag.NArg() > 0 {
		cfg.EXE = flag.Arg(0)
	}
	if *maxSteps > 0 {
		cfg.MaxSteps = *maxSteps
	}
	if *trace {
		cfg.Trace = true
	}
	if *verbose && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}

	if cfg.BIOS == "" && cfg.EXE == "" {
		return nil, errors.New("no BIOS or program given")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// launchStatsView serves the go runtime statistics in the background.
func launchStatsView(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(os.Stderr, "stats server available at %s/debug/statsview\n", addr)
}

// run executes the configured machine and returns the process exit code.
func run(cfg *config.Config, log logr.Logger, runID string) int {
	m, err := newMachine(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *verbose && m.program != nil {
		fmt.Printf("Loaded: %s\n", cfg.EXE)
		fmt.Printf("Entry point: 0x%08X\n", m.program.EntryPoint)
		fmt.Printf("Segments: %d\n", len(m.program.Segments))
	}

	if *restoreIn != "" {
		s, err := emu.LoadSnapshot(*restoreIn)
		if err == nil {
			err = m.cpu.Restore(s)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error restoring snapshot: %v\n", err)
			return 1
		}
	}

	var code int
	if *debugMode {
		code = runDebugger(m.cpu)
	} else {
		code = runBatch(m.cpu, cfg.Trace, log)
	}

	if err := writeOutputs(m.cpu); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *verbose {
		stats := m.cpu.ICache().Stats()
		fmt.Printf("\nRun: %s\n", runID)
		fmt.Printf("Instructions executed: %d\n", m.cpu.InstructionCount())
		fmt.Printf("Final PC: 0x%08X\n", m.cpu.PC())
		fmt.Printf("ICache: %d reads, %d hits, %d misses, %d evictions\n",
			stats.Reads, stats.Hits, stats.Misses, stats.Evictions)
		fmt.Print(m.cpu.String())
	}

	return code
}

// runBatch steps the CPU until it stops. A halting exception exits with 2,
// a bus fault with 1 and the instruction limit with 0.
func runBatch(cpu *emu.Emulator, traceOn bool, log logr.Logger) int {
	for {
		result := cpu.Step()
		if traceOn && result.Err == nil {
			log.Info("exec", "pc", fmt.Sprintf("0x%08X", result.PC),
				"inst", result.Inst.Disassemble(result.PC))
		}
		if result.Err == nil {
			continue
		}

		var exc *emu.Exception
		switch {
		case errors.Is(result.Err, emu.ErrMaxInstructions):
			return 0
		case errors.As(result.Err, &exc):
			log.Info("cpu halted", "exception", exc.Code.String(),
				"pc", fmt.Sprintf("0x%08X", exc.PC))
			return 2
		default:
			log.Error(result.Err, "cpu stopped")
			return 1
		}
	}
}

func runDebugger(cpu *emu.Emulator) int {
	tty, err := openTTY()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = tty.Close() }()

	if err := newDebugger(cpu, tty, os.Stdout).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\r\n", err)
		return 1
	}
	return 0
}

// writeOutputs saves the snapshot and the memviz graph when requested.
func writeOutputs(cpu *emu.Emulator) error {
	if *snapshotOut != "" {
		if err := emu.SaveSnapshot(*snapshotOut, cpu.Snapshot()); err != nil {
			return err
		}
	}

	if *memvizOut != "" {
		f, err := os.Create(*memvizOut)
		if err != nil {
			return fmt.Errorf("failed to create memviz output: %w", err)
		}
		defer func() { _ = f.Close() }()
		memviz.Map(f, cpu.Snapshot())
	}

	return nil
}
