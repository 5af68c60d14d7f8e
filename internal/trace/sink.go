package trace

// Sink receives events as the full tracer records them. Sinks may be shared
// between tracers running on different goroutines, so Emit must be
// goroutine-safe.
type Sink interface {
	// Emit records a trace event. The event must not be retained by
	// reference; it may be reused by the caller.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the level the sink filters with.
	Level() Level
}

// nopSink is a no-op implementation for zero overhead when tracing is disabled.
type nopSink struct{}

func (nopSink) Emit(*Event)  {}
func (nopSink) Flush() error { return nil }
func (nopSink) Close() error { return nil }
func (nopSink) Level() Level { return LevelOff }

// Nop is the package-level singleton nop sink.
var Nop Sink = nopSink{}
