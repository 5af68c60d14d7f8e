package trace

import (
	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// Ok resolves the current rule as matched and returns the parser result
// triple. It lets a rule end with a single return statement:
//
//	return trace.Ok(t, rest, matched, value)
func Ok[O any](t Tracer, rest, matched source.Span, val O) (source.Span, O, error) {
	t.Ok(rest, matched)
	return rest, val, nil
}

// Fail resolves the current rule as failed with err, typically the error of
// a sub-rule:
//
//	rest, a, err := parseA(t, rest)
//	if err != nil {
//		return trace.Fail[A](t, err)
//	}
//
// An err that is not a *diag.ParserError is wrapped with code MatchError and
// an empty span.
func Fail[O any](t Tracer, err error) (source.Span, O, error) {
	var zero O
	perr := diag.AsParserError(err, source.Span{})
	if perr == nil {
		contractPanic("fail with nil error")
	}
	return perr.Span, zero, t.Err(perr)
}

// FailAs resolves the current rule as failed with a fresh error for code at
// span.
func FailAs[O any](t Tracer, code diag.Code, span source.Span) (source.Span, O, error) {
	return Fail[O](t, diag.New(code, span))
}
