// Package fuzztests holds fuzz harnesses that run arbitrary input through
// every demo grammar with each tracer strategy. They guard against panics,
// hangs and broken span or frame invariants.
package fuzztests
