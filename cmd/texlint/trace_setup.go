package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"texlint/internal/trace"
)

// traceConfig turns the --trace* flags into a tracer config. A zero level
// means tracing is off.
func traceConfig(flags *pflag.FlagSet) (trace.Config, error) {
	var cfg trace.Config
	output, _ := flags.GetString("trace")
	rawLevel, _ := flags.GetString("trace-level")
	rawMode, _ := flags.GetString("trace-mode")
	rawFormat, _ := flags.GetString("trace-format")
	cfg.RingSize, _ = flags.GetInt("trace-ring-size")
	cfg.OutputPath = output

	var err error
	if cfg.Level, err = trace.ParseLevel(rawLevel); err != nil {
		return cfg, fmt.Errorf("--trace-level: %w", err)
	}
	// --trace без уровня включает фазы
	if cfg.Level == trace.LevelOff && output != "" && !flags.Changed("trace-level") {
		cfg.Level = trace.LevelPhase
	}
	if cfg.Mode, err = trace.ParseMode(rawMode); err != nil {
		return cfg, fmt.Errorf("--trace-mode: %w", err)
	}
	if cfg.Format, err = trace.ParseFormat(rawFormat); err != nil {
		return cfg, fmt.Errorf("--trace-format: %w", err)
	}
	return cfg, nil
}

// setupTracing installs the tracer on the command context and starts the
// heartbeat. The returned cleanup stops both.
func setupTracing(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	cfg, err := traceConfig(flags)
	if err != nil {
		return nil, err
	}
	if cfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	interval, _ := flags.GetDuration("trace-heartbeat")
	stop := trace.StartHeartbeat(ctx, interval)
	return func() {
		stop()
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

// dumpTraceRing writes the ring buffer (if any) so that a failed run can
// be inspected after the fact.
func dumpTraceRing(cmd *cobra.Command, w io.Writer, reason string) {
	ring, ok := trace.RingOf(trace.FromContext(cmd.Context()))
	if !ok {
		return
	}
	fmt.Fprintf(w, "trace: %s, last %d events:\n", reason, len(ring.Snapshot()))
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump failed: %v\n", err)
	}
}

// dumpTraceOnPanic is deferred by commands; it prints the ring and re-panics.
func dumpTraceOnPanic(cmd *cobra.Command) {
	if r := recover(); r != nil {
		dumpTraceRing(cmd, os.Stderr, fmt.Sprintf("panic: %v", r))
		panic(r)
	}
}
