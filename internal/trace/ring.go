package trace

import (
	"io"
	"sync"
)

// RingSink keeps the last N events in memory (circular buffer).
type RingSink struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
}

// NewRingSink creates a new RingSink with specified capacity.
func NewRingSink(capacity int, level Level) *RingSink {
	if capacity <= 0 {
		capacity = 4096
	}

	return &RingSink{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
	}
}

// Emit adds an event to the ring buffer.
func (r *RingSink) Emit(ev *Event) {
	if !r.level.ShouldEmit(ev.Kind) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.head] = *ev
	r.head = (r.head + 1) % r.capacity

	if r.head == 0 {
		r.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (r *RingSink) Snapshot() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		result := make([]Event, r.head)
		copy(result, r.events[:r.head])
		return result
	}

	// Wrapped - return [head:capacity] + [0:head]
	result := make([]Event, r.capacity)
	copy(result, r.events[r.head:])
	copy(result[r.capacity-r.head:], r.events[:r.head])
	return result
}

// Dump writes all events to the provided writer in the specified format.
func (r *RingSink) Dump(w io.Writer, format Format) error {
	events := r.Snapshot()

	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}

	return nil
}

// Flush is a no-op for RingSink since everything is in memory.
func (r *RingSink) Flush() error {
	return nil
}

// Close is a no-op for RingSink.
func (r *RingSink) Close() error {
	return nil
}

// Level returns the current tracing level.
func (r *RingSink) Level() Level {
	return r.level
}
