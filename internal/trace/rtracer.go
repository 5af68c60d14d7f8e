package trace

import (
	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// RTracer keeps the frames but no event log. It is the tracer to use when
// only the final error and its hints matter.
type RTracer struct {
	frames
}

func NewRTracer() *RTracer {
	return &RTracer{}
}

func (t *RTracer) Enter(fn diag.Code, _ source.Span) {
	t.enter(fn)
}

func (t *RTracer) Step(string, source.Span) {
	t.fn("step")
}

func (t *RTracer) Debug(string) {
	t.fn("debug")
}

func (t *RTracer) Suggest(code diag.Code, span source.Span) {
	t.addSuggest(code, span)
}

func (t *RTracer) Expect(code diag.Code, span source.Span) {
	t.addExpect(code, span)
}

func (t *RTracer) Stash(err *diag.ParserError) {
	t.stash(err)
}

func (t *RTracer) Ok(_, _ source.Span) {
	t.fn("ok")
	t.popExpect(UsageDrop)
	sug := t.popSuggest(UsageBubble)
	t.bubble(sug.List)
	t.popFunc()
}

func (t *RTracer) Err(err *diag.ParserError) *diag.ParserError {
	if err == nil {
		contractPanic("err with nil error")
	}
	t.see(err)
	err.AppendExpect(t.popExpect(UsageUse).List...)
	err.AppendSuggest(t.popSuggest(UsageUse).List...)
	t.popFunc()
	return err
}

func (t *RTracer) Depth() int {
	return t.depth()
}

func (t *RTracer) Suggestions() []diag.Suggest {
	return t.residual
}

func (t *RTracer) Close() error {
	return nil
}

// Frames returns copies of the unresolved frames, outermost first.
func (t *RTracer) Frames() ([]ExpectFrame, []SuggestFrame) {
	return cloneFrames(&t.frames)
}

// TakeExpect drains the Expect hints of all unresolved frames, outermost
// first. The frames themselves stay in place.
func (t *RTracer) TakeExpect() []diag.Expect {
	var out []diag.Expect
	for i := range t.expect {
		out = append(out, t.expect[i].List...)
		t.expect[i].List = nil
	}
	return out
}

// TakeSuggest drains the Suggest hints of all unresolved frames and the
// residual suggestions left by finished rules.
func (t *RTracer) TakeSuggest() []diag.Suggest {
	out := t.residual
	t.residual = nil
	for i := range t.suggest {
		out = append(out, t.suggest[i].List...)
		t.suggest[i].List = nil
	}
	return out
}

func cloneFrames(f *frames) ([]ExpectFrame, []SuggestFrame) {
	exp := make([]ExpectFrame, len(f.expect))
	for i, fr := range f.expect {
		fr.List = append([]diag.Expect(nil), fr.List...)
		exp[i] = fr
	}
	sug := make([]SuggestFrame, len(f.suggest))
	for i, fr := range f.suggest {
		fr.List = append([]diag.Suggest(nil), fr.List...)
		sug[i] = fr
	}
	return exp, sug
}
