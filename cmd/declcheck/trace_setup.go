package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotnet/roslyn-sub221/internal/trace"
)

// traceFlags mirrors the persistent --trace* flags of the root command.
type traceFlags struct {
	output    string
	level     string
	mode      string
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	pf := cmd.Root().PersistentFlags()
	var (
		tf                     traceFlags
		errOut, errLvl, errMod error
		errRing, errBeat       error
	)
	tf.output, errOut = pf.GetString("trace")
	tf.level, errLvl = pf.GetString("trace-level")
	tf.mode, errMod = pf.GetString("trace-mode")
	tf.ringSize, errRing = pf.GetInt("trace-ring-size")
	tf.heartbeat, errBeat = pf.GetDuration("trace-heartbeat")
	if err := errors.Join(errOut, errLvl, errMod, errRing, errBeat); err != nil {
		return traceFlags{}, fmt.Errorf("trace flags: %w", err)
	}
	return tf, nil
}

// config turns the flags into a tracer config. A nil config means tracing
// stays off.
func (tf traceFlags) config() (*trace.Config, error) {
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return nil, fmt.Errorf("--trace-level: %w", err)
	}
	if level == trace.LevelOff && tf.output == "" {
		return nil, nil
	}
	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return nil, fmt.Errorf("--trace-mode: %w", err)
	}
	return &trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
		Heartbeat:  tf.heartbeat,
	}, nil
}

// setupTracing installs a tracer into the command context and hands back
// the function that shuts it down.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := tf.config()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(*cfg)
	if err != nil {
		return nil, fmt.Errorf("start tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	var beat *trace.Heartbeat
	if cfg.Heartbeat > 0 {
		beat = trace.StartHeartbeat(tracer, cfg.Heartbeat)
	}
	return func() {
		// heartbeat goes first so it cannot write into a closed tracer
		if beat != nil {
			beat.Stop()
		}
		if err := errors.Join(tracer.Flush(), tracer.Close()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: shutdown: %v\n", err)
		}
	}, nil
}

// dumpTraceOnPanic prints the ring buffer of a panicking command to stderr
// and panics again.
func dumpTraceOnPanic(cmd *cobra.Command) {
	r := recover()
	if r == nil {
		return
	}
	ring := trace.Ring(trace.FromContext(cmd.Context()))
	if ring != nil {
		fmt.Fprintln(os.Stderr, "== trace (last events) ==")
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
