package parser

import (
	"parsetrace/internal/diag"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// Maybe runs p as an optional part of the current rule. When the look-ahead
// skips, p is recorded as a suggestion. A soft failure is stashed, so its
// hints resurface only if the current rule fails later; the input is not
// consumed. Fatal failures propagate.
func Maybe[O any](t trace.Tracer, p Parser[O], in source.Span) (source.Span, O, bool, error) {
	var zero O
	if p.LookAhead(in) == Skip {
		t.Suggest(p.ID(), in)
		return in, zero, false, nil
	}
	rest, val, err := p.Parse(t, in)
	if err == nil {
		return rest, val, true, nil
	}
	perr := diag.AsParserError(err, in)
	if perr.IsFatal() {
		return in, zero, false, perr
	}
	t.Stash(perr)
	return in, zero, false, nil
}

// Alt is the rule code that succeeds with the first alternative that does.
// Alternatives whose look-ahead skips are recorded as expectations, failed
// ones are stashed. A fatal failure ends the search.
func Alt[O any](code diag.Code, alts ...Parser[O]) Parser[O] {
	return Rule[O]{
		Code: code,
		Peek: func(in source.Span) bool {
			for _, p := range alts {
				if p.LookAhead(in) == Parse {
					return true
				}
			}
			return false
		},
		Fn: func(t trace.Tracer, in source.Span) (source.Span, O, error) {
			t.Enter(code, in)
			for _, p := range alts {
				if p.LookAhead(in) == Skip {
					t.Expect(p.ID(), in)
					continue
				}
				t.Step(p.ID().String(), in)
				rest, val, err := p.Parse(t, in)
				if err == nil {
					return trace.Ok(t, rest, Consumed(in, rest), val)
				}
				perr := diag.AsParserError(err, in)
				if perr.IsFatal() {
					return trace.Fail[O](t, perr)
				}
				t.Stash(perr)
			}
			return trace.FailAs[O](t, code, in)
		},
	}
}

// Complete fails with an Incomplete error when rest still holds input.
func Complete(rest source.Span) error {
	if rest.Empty() {
		return nil
	}
	return diag.IncompleteAt(rest)
}
