package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/psxsim/config"
	"github.com/sarchlab/psxsim/emu"
)

// defaultDeterminismSteps bounds a determinism check when the configuration
// sets no instruction limit.
const defaultDeterminismSteps = 1_000_000

// checkDeterminism runs n independent machines built from cfg concurrently
// and reports the first one whose final state differs from the first
// machine's.
func checkDeterminism(ctx context.Context, cfg *config.Config, n int, log logr.Logger) error {
	if n < 2 {
		return fmt.Errorf("determinism check needs at least 2 instances, got %d", n)
	}

	cfg = cfg.Clone()
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = defaultDeterminismSteps
	}

	snapshots := make([]*emu.Snapshot, n)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			m, err := newMachine(cfg, log.WithValues("instance", i))
			if err != nil {
				return err
			}
			if err := runUntilStop(ctx, m.cpu); err != nil {
				return fmt.Errorf("instance %d: %w", i, err)
			}
			snapshots[i] = m.cpu.Snapshot()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i := 1; i < n; i++ {
		if diff := cmp.Diff(snapshots[0], snapshots[i]); diff != "" {
			return fmt.Errorf("instance %d diverged from instance 0 (-want +got):\n%s", i, diff)
		}
	}

	log.Info("determinism check passed",
		"instances", n, "instructions", snapshots[0].InstructionCount)
	return nil
}

// runUntilStop steps cpu until it reaches its instruction limit or halts.
// A halting exception ends the run normally; bus faults are errors.
func runUntilStop(ctx context.Context, cpu *emu.Emulator) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := cpu.Run(4096)
		if err == nil {
			continue
		}

		var exc *emu.Exception
		switch {
		case errors.Is(err, emu.ErrMaxInstructions), errors.As(err, &exc):
			return nil
		default:
			return err
		}
	}
}
