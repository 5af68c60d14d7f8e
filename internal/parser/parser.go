// Package parser defines the contract between grammar rules and the tracer:
// a Parser has an identifying code, a cheap look-ahead and a Parse method
// that threads a trace.Tracer through the recursion.
package parser

import (
	"parsetrace/internal/diag"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// LookAhead is the verdict of a parser's cheap pre-check.
type LookAhead uint8

const (
	// Parse means the input may start this construct; run the parser.
	Parse LookAhead = iota
	// Skip means the input cannot start this construct.
	Skip
)

func (l LookAhead) String() string {
	if l == Skip {
		return "skip"
	}
	return "parse"
}

// Parser is a grammar rule producing values of type O.
//
// Parse must call t.Enter(ID(), in) first and resolve the frame with exactly
// one of t.Ok or t.Err on every return path. Returned errors are always
// *diag.ParserError.
type Parser[O any] interface {
	ID() diag.Code
	LookAhead(in source.Span) LookAhead
	Parse(t trace.Tracer, in source.Span) (source.Span, O, error)
}

// Rule adapts plain functions to Parser.
type Rule[O any] struct {
	Code diag.Code
	// Peek is the look-ahead; nil means "parse unless the input is empty".
	Peek func(in source.Span) bool
	Fn   func(t trace.Tracer, in source.Span) (source.Span, O, error)
}

func (r Rule[O]) ID() diag.Code {
	return r.Code
}

func (r Rule[O]) LookAhead(in source.Span) LookAhead {
	if r.Peek == nil {
		if in.Empty() {
			return Skip
		}
		return Parse
	}
	if r.Peek(in) {
		return Parse
	}
	return Skip
}

func (r Rule[O]) Parse(t trace.Tracer, in source.Span) (source.Span, O, error) {
	return r.Fn(t, in)
}

// Consumed returns the part of in that lies before rest.
func Consumed(in, rest source.Span) source.Span {
	return in.Take(rest.Offset() - in.Offset())
}
