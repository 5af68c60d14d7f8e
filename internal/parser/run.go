package parser

import (
	"fmt"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// Options tune Run.
type Options struct {
	// AllowIncomplete accepts input left over after the top-level rule.
	AllowIncomplete bool
}

// Result is the outcome of a top-level parse.
type Result[O any] struct {
	Value O
	Rest  source.Span
	// Err is nil on success.
	Err *diag.ParserError
	// Suggestions are hints about optional constructs the successful parse
	// passed over.
	Suggestions []diag.Suggest
}

func (r Result[O]) OK() bool {
	return r.Err == nil
}

// Run parses in with p as the top-level rule. Unless opts allow it, input
// left over after p is reported as an Incomplete error. Run panics with
// trace.ErrContract when p leaves frames unresolved.
func Run[O any](t trace.Tracer, p Parser[O], in source.Span, opts Options) Result[O] {
	depth := t.Depth()
	rest, val, err := p.Parse(t, in)
	if got := t.Depth(); got != depth {
		panic(fmt.Errorf("%w: %s left %d unresolved frames", trace.ErrContract, p.ID(), got-depth))
	}

	res := Result[O]{Rest: rest, Suggestions: t.Suggestions()}
	if err != nil {
		res.Err = diag.AsParserError(err, in)
		return res
	}
	res.Value = val
	if !opts.AllowIncomplete {
		if cerr := Complete(rest); cerr != nil {
			res.Err = diag.AsParserError(cerr, rest)
		}
	}
	return res
}
