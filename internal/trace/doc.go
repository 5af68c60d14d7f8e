// Package trace records what a recursive-descent parser tried.
//
// A Tracer mirrors the parser's call stack. Each rule calls Enter on entry
// and exactly one of Ok or Err before it returns; in between it may record
// Suggest and Expect hints, note steps, and Stash errors of alternatives it
// abandoned.
//
// # Frames
//
// Enter pushes an expect frame and a suggest frame. On Ok the expect frame is
// dropped and the suggest frame bubbles into the enclosing one (or, for the
// outermost rule, into Suggestions). On Err both frames are folded into the
// error, which then carries everything the failed rule and its abandoned
// alternatives expected. The error code is never rewritten on the way out.
//
// # Strategies
//
//   - CTracer: frames plus an event log, optionally mirrored into a Sink.
//   - RTracer: frames only.
//   - NoTracer: depth counting only; errors pass through untouched.
//
// New selects one from a Config.
//
// # Levels
//
// Sinks filter events by level:
//
//   - LevelOff: nothing
//   - LevelFrames: Enter, Ok, Err and Exit
//   - LevelHints: frames plus steps and resolved hint frames
//   - LevelDebug: everything
//
// # Sinks
//
//   - StreamSink: immediate text or NDJSON output
//   - RingSink: the last N events, for dumps
//   - MultiSink: fan-out
//
// The event log can be persisted with WriteLog and read back with ReadLog.
//
// Contract violations such as Ok without Enter panic with an error wrapping
// ErrContract.
package trace
