package trace

// MultiSink fans out trace events to multiple sinks.
type MultiSink struct {
	sinks []Sink
	level Level
}

// NewMultiSink creates a new MultiSink that emits to all provided sinks. Its
// level is the most verbose level among them.
func NewMultiSink(sinks ...Sink) *MultiSink {
	level := LevelOff
	for _, s := range sinks {
		level = max(level, s.Level())
	}
	return &MultiSink{
		sinks: sinks,
		level: level,
	}
}

// Emit sends the event to all underlying sinks.
func (m *MultiSink) Emit(ev *Event) {
	for _, s := range m.sinks {
		s.Emit(ev)
	}
}

// Flush flushes all underlying sinks.
func (m *MultiSink) Flush() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying sinks.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Level returns the configured level.
func (m *MultiSink) Level() Level {
	return m.level
}
