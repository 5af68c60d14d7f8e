package testkit

import (
	"fmt"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parse
// outcome:
// 1) after a success, rest lies in the input buffer and ends where the input
// ends
// 2) after a failure, the error span and every hint span lie inside the input
func CheckSpanInvariants(in, rest source.Span, err *diag.ParserError) error {
	if err != nil {
		return checkError(in, err)
	}
	// 1) rest sanity
	if !source.SameBuffer(in, rest) {
		return fmt.Errorf("rest %v is not cut from the input buffer", rest)
	}
	if rest.Offset() < in.Offset() || rest.End() != in.End() {
		return fmt.Errorf("rest %d..%d does not end the input %d..%d", rest.Offset(), rest.End(), in.Offset(), in.End())
	}
	return nil
}

// 2) error and hints inside the input
func checkError(in source.Span, err *diag.ParserError) error {
	if e := within(in, err.Span); e != nil {
		return fmt.Errorf("error span: %w", e)
	}
	for i, h := range err.Hints {
		if e := within(in, h.At()); e != nil {
			return fmt.Errorf("hint %d (%v): %w", i, h, e)
		}
	}
	return nil
}

func within(in, sp source.Span) error {
	if !source.SameBuffer(in, sp) {
		return fmt.Errorf("span %v from another buffer", sp)
	}
	if sp.Offset() < in.Offset() || sp.End() > in.End() {
		return fmt.Errorf("span %d..%d outside input %d..%d", sp.Offset(), sp.End(), in.Offset(), in.End())
	}
	return nil
}
