package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"parsetrace/internal/trace"
)

// setupTracing builds the event sink described by the trace settings and
// attaches it to the command context. Every full tracer the command creates
// emits into this one sink.
func (a *app) setupTracing(cmd *cobra.Command) error {
	s := a.settings
	ctx := cmd.Context()

	// Level off keeps logs in memory; msgpack logs are written per input
	if s.Level == trace.LevelOff || s.Msgpack || s.Strategy != trace.StrategyFull {
		cmd.SetContext(trace.WithSink(ctx, trace.Nop))
		return nil
	}

	var sink trace.Sink
	switch s.Mode {
	case trace.ModeStream:
		w, err := openTraceOutput(s.TraceOut, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		sink = trace.NewStreamSink(w, s.Level, s.Format)
	case trace.ModeRing:
		a.ring = trace.NewRingSink(s.RingSize, s.Level)
		sink = a.ring
	case trace.ModeBoth:
		w, err := openTraceOutput(s.TraceOut, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		a.ring = trace.NewRingSink(s.RingSize, s.Level)
		sink = trace.NewMultiSink(trace.NewStreamSink(w, s.Level, s.Format), a.ring)
	default:
		return fmt.Errorf("unknown storage mode: %v", s.Mode)
	}
	a.sink = sink
	a.log.Debugf("tracing at level %s to %s (%s)", s.Level, traceTarget(s.TraceOut), s.Mode)

	cmd.SetContext(trace.WithSink(ctx, sink))
	return nil
}

// openTraceOutput opens path for the event stream; empty and "-" mean
// stderr, which the sink must not close.
func openTraceOutput(path string, stderr io.Writer) (io.Writer, error) {
	if path == "" || path == "-" {
		return struct{ io.Writer }{stderr}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

func traceTarget(path string) string {
	if path == "" || path == "-" {
		return "stderr"
	}
	return path
}

// tracerConfig is the per-input tracer configuration for the current
// command.
func (a *app) tracerConfig(cmd *cobra.Command) trace.Config {
	return trace.Config{
		Strategy: a.settings.Strategy,
		Sink:     trace.SinkFromContext(cmd.Context()),
	}
}
