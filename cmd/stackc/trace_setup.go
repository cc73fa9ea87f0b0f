package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stackc/internal/config"
	"stackc/internal/trace"
)

// setupTracing creates the tracer described by cfg and attaches it to the
// command context. The cleanup it registers flushes and closes the tracer.
func setupTracing(cmd *cobra.Command, cfg config.Config) error {
	tcfg, err := cfg.Tracing()
	if err != nil {
		return fmt.Errorf("invalid trace settings: %w", err)
	}
	if tcfg.Level == trace.LevelOff {
		tracer = trace.Nop
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}

	t, err := trace.New(tcfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	tracer = t

	ctx := trace.WithTracer(cmd.Context(), t)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	cleanups = append(cleanups, func() {
		if err := t.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := t.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	})
	return nil
}

// dumpTraceRing writes the ring buffer history to stderr after a failure,
// when the tracer keeps one.
func dumpTraceRing() {
	var ring *trace.RingTracer
	switch t := tracer.(type) {
	case *trace.RingTracer:
		ring = t
	case *trace.MultiTracer:
		ring = t.Ring()
	}
	if ring == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "trace history:")
	if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}
