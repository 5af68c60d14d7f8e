package trace

import (
	"io"
	"sync"
)

// StreamSink writes events immediately to an io.Writer.
type StreamSink struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	err    error // first write error
}

// NewStreamSink creates a new StreamSink.
func NewStreamSink(w io.Writer, level Level, format Format) *StreamSink {
	return &StreamSink{
		w:      w,
		level:  level,
		format: format,
	}
}

// Emit writes an event to the output.
func (s *StreamSink) Emit(ev *Event) {
	if !s.level.ShouldEmit(ev.Kind) {
		return
	}

	data := FormatEvent(ev, s.format)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write errors do not interrupt parsing; the first one is reported by Flush.
	if _, err := s.w.Write(data); err != nil && s.err == nil {
		s.err = err
	}
}

// Flush reports the first write error and flushes the writer if it buffers.
func (s *StreamSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if flusher, ok := s.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (s *StreamSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if closer, ok := s.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Level returns the current tracing level.
func (s *StreamSink) Level() Level {
	return s.level
}
