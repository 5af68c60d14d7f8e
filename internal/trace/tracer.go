package trace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// Tracer mirrors the call stack of a recursive-descent parser. Every rule
// calls Enter first and exactly one of Ok or Err on every return path.
// A Tracer belongs to a single parse and is not safe for concurrent use.
type Tracer interface {
	// Enter pushes rule fn, entered at span.
	Enter(fn diag.Code, span source.Span)
	// Step notes a named point inside the current rule.
	Step(step string, span source.Span)
	// Debug attaches a free-form note to the current rule.
	Debug(msg string)
	// Suggest records that code could have matched at span.
	Suggest(code diag.Code, span source.Span)
	// Expect records that code was required at span.
	Expect(code diag.Code, span source.Span)
	// Stash retires an error the rule decided not to propagate.
	Stash(err *diag.ParserError)
	// Ok resolves the current rule as matched.
	Ok(rest, matched source.Span)
	// Err resolves the current rule as failed and returns err enriched with
	// the rule's hints.
	Err(err *diag.ParserError) *diag.ParserError

	// Depth is the number of unresolved rules.
	Depth() int
	// Suggestions returns the suggestions left over by successful
	// outermost rules.
	Suggestions() []diag.Suggest
	// Close flushes and releases the tracer's sink, if any.
	Close() error
}

// Strategy selects a Tracer implementation.
type Strategy uint8

const (
	StrategyFull   Strategy = iota + 1 // frames and event log
	StrategyReplay                     // frames only
	StrategyNone                       // pass-through
)

// String returns the string representation of Strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyFull:
		return "full"
	case StrategyReplay:
		return "replay"
	case StrategyNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a string to Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "full":
		return StrategyFull, nil
	case "replay":
		return StrategyReplay, nil
	case "none":
		return StrategyNone, nil
	default:
		return StrategyFull, fmt.Errorf("invalid tracer strategy: %q (expected: full|replay|none)", s)
	}
}

// StorageMode determines where the full tracer streams its events.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // immediate write
	ModeRing                          // circular buffer
	ModeBoth                          // stream + ring
)

// String returns the string representation of StorageMode.
func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Strategy   Strategy    // tracer implementation
	Level      Level       // sink level; LevelOff keeps the log in memory only
	Mode       StorageMode // sink storage mode
	Format     Format      // stream output format
	Output     io.Writer   // for stream mode (if nil, use OutputPath)
	OutputPath string      // alternative: file path ("-" for stderr)
	RingSize   int         // for ring mode (default 4096)
	Sink       Sink        // explicit sink; overrides Mode and Output
}

// New creates a Tracer based on Config.
func New(cfg Config) (Tracer, error) {
	switch cfg.Strategy {
	case StrategyNone:
		return NewNoTracer(), nil
	case StrategyReplay:
		return NewRTracer(), nil
	case StrategyFull, 0:
		sink, err := newSink(cfg)
		if err != nil {
			return nil, err
		}
		return NewCTracer(sink), nil
	default:
		return nil, fmt.Errorf("unknown tracer strategy: %v", cfg.Strategy)
	}
}

func newSink(cfg Config) (Sink, error) {
	if cfg.Sink != nil {
		return cfg.Sink, nil
	}
	if cfg.Level == LevelOff {
		return nil, nil
	}

	switch cfg.Mode {
	case ModeStream, 0:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamSink(w, cfg.Level, cfg.Format), nil

	case ModeRing:
		return NewRingSink(cfg.RingSize, cfg.Level), nil

	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewMultiSink(NewStreamSink(w, cfg.Level, cfg.Format), NewRingSink(cfg.RingSize, cfg.Level)), nil

	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
}

// openOutput opens the output writer from config.
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}

	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return nopCloser{os.Stderr}, nil
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}

	return f, nil
}

// nopCloser keeps StreamSink.Close from closing stderr.
type nopCloser struct{ io.Writer }
