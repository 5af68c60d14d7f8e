package trace

import (
	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// NoTracer does no hint bookkeeping. Errors pass through unchanged, so they
// carry only the hints their producers attached. It still counts the rule
// depth, so an unbalanced Enter/Ok/Err sequence panics like it does under the
// other tracers.
type NoTracer struct {
	depth int
}

func NewNoTracer() *NoTracer {
	return &NoTracer{}
}

func (t *NoTracer) check(op string) {
	if t.depth == 0 {
		contractPanic("%s without enter", op)
	}
}

func (t *NoTracer) Enter(fn diag.Code, _ source.Span) {
	if fn == nil {
		contractPanic("enter with nil code")
	}
	t.depth++
}

func (t *NoTracer) Step(string, source.Span)       { t.check("step") }
func (t *NoTracer) Debug(string)                   { t.check("debug") }
func (t *NoTracer) Suggest(diag.Code, source.Span) { t.check("suggest") }
func (t *NoTracer) Expect(diag.Code, source.Span)  { t.check("expect") }

func (t *NoTracer) Stash(err *diag.ParserError) {
	if err == nil {
		contractPanic("stash of nil error")
	}
	t.check("stash")
}

func (t *NoTracer) Ok(_, _ source.Span) {
	t.check("ok")
	t.depth--
}

func (t *NoTracer) Err(err *diag.ParserError) *diag.ParserError {
	if err == nil {
		contractPanic("err with nil error")
	}
	t.check("err")
	t.depth--
	return err
}

func (t *NoTracer) Depth() int                  { return t.depth }
func (t *NoTracer) Suggestions() []diag.Suggest { return nil }
func (t *NoTracer) Close() error                { return nil }
