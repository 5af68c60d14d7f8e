package trace

import (
	"iter"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// CTracer is the full tracer: it keeps the frames and an append-only event
// log, and mirrors every event into an optional Sink.
type CTracer struct {
	frames
	log  []Event
	seq  uint64
	sink Sink
}

// NewCTracer creates a full tracer. sink may be nil.
func NewCTracer(sink Sink) *CTracer {
	return &CTracer{sink: sink}
}

func (t *CTracer) record(ev Event) {
	t.seq++
	ev.Seq = t.seq
	ev.Func, _ = t.chain.Top()
	ev.Parents = t.chain
	t.log = append(t.log, ev)
	if t.sink != nil {
		t.sink.Emit(&t.log[len(t.log)-1])
	}
}

func (t *CTracer) Enter(fn diag.Code, span source.Span) {
	t.enter(fn)
	t.record(Event{Kind: KindEnter, Span: span})
}

func (t *CTracer) Step(step string, span source.Span) {
	t.fn("step")
	t.record(Event{Kind: KindStep, Step: step, Span: span})
}

func (t *CTracer) Debug(msg string) {
	t.fn("debug")
	t.record(Event{Kind: KindDebug, Detail: msg})
}

func (t *CTracer) Suggest(code diag.Code, span source.Span) {
	t.addSuggest(code, span)
}

func (t *CTracer) Expect(code diag.Code, span source.Span) {
	t.addExpect(code, span)
}

func (t *CTracer) Stash(err *diag.ParserError) {
	t.stash(err)
}

func (t *CTracer) Ok(rest, matched source.Span) {
	t.fn("ok")
	t.record(Event{Kind: KindOk, Span: matched, Rest: rest})

	exp := t.popExpect(UsageDrop)
	if len(exp.List) > 0 {
		t.record(Event{Kind: KindExpect, Usage: exp.Usage, Expect: exp.List})
	}
	sug := t.popSuggest(UsageBubble)
	if len(sug.List) > 0 {
		t.record(Event{Kind: KindSuggest, Usage: sug.Usage, Suggest: sug.List})
	}
	t.bubble(sug.List)

	t.record(Event{Kind: KindExit})
	t.popFunc()
}

func (t *CTracer) Err(err *diag.ParserError) *diag.ParserError {
	if err == nil {
		contractPanic("err with nil error")
	}
	t.see(err)

	exp := t.popExpect(UsageUse)
	if len(exp.List) > 0 {
		t.record(Event{Kind: KindExpect, Usage: exp.Usage, Expect: exp.List})
	}
	err.AppendExpect(exp.List...)

	sug := t.popSuggest(UsageUse)
	if len(sug.List) > 0 {
		t.record(Event{Kind: KindSuggest, Usage: sug.Usage, Suggest: sug.List})
	}
	err.AppendSuggest(sug.List...)

	t.record(Event{Kind: KindErr, Span: err.Span, Code: err.Code, Detail: err.Error()})
	t.record(Event{Kind: KindExit})
	t.popFunc()
	return err
}

func (t *CTracer) Depth() int {
	return t.depth()
}

func (t *CTracer) Suggestions() []diag.Suggest {
	return t.residual
}

// Close flushes and closes the sink.
func (t *CTracer) Close() error {
	if t.sink == nil {
		return nil
	}
	return t.sink.Close()
}

// Sink returns the sink events are mirrored to, or nil.
func (t *CTracer) Sink() Sink {
	return t.sink
}

// Len is the number of recorded events.
func (t *CTracer) Len() int {
	return len(t.log)
}

// Events iterates the log in recording order, skipping events the filter
// rejects. A nil filter passes everything.
func (t *CTracer) Events(filter Filter) iter.Seq[*Event] {
	return func(yield func(*Event) bool) {
		for i := range t.log {
			ev := &t.log[i]
			if filter != nil && !filter(ev) {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// Frames returns copies of the unresolved frames, outermost first.
func (t *CTracer) Frames() ([]ExpectFrame, []SuggestFrame) {
	return cloneFrames(&t.frames)
}
