package trace

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

type rule uint8

const (
	ruleOuter rule = iota + 1
	ruleInner
	ruleAltA
	ruleAltB
	ruleOpt
	ruleOther
)

var ruleNames = map[rule]string{
	ruleOuter: "Outer",
	ruleInner: "Inner",
	ruleAltA:  "AltA",
	ruleAltB:  "AltB",
	ruleOpt:   "Opt",
	ruleOther: "Other",
}

func (r rule) String() string { return ruleNames[r] }
func (rule) IsSpecial() bool { return false }

// tracers builds one instance of every frame-keeping strategy.
func tracers() map[string]func() Tracer {
	return map[string]func() Tracer{
		"full":   func() Tracer { return NewCTracer(nil) },
		"replay": func() Tracer { return NewRTracer() },
	}
}

func codesOf[H interface{ diag.Hint }](hints []H, code func(H) diag.Code) []diag.Code {
	var out []diag.Code
	for _, h := range hints {
		out = append(out, code(h))
	}
	return out
}

func expectCodes(err *diag.ParserError) []diag.Code {
	return codesOf(err.Expects(), func(x diag.Expect) diag.Code { return x.Code })
}

func suggestCodes(err *diag.ParserError) []diag.Code {
	return codesOf(err.Suggests(), func(s diag.Suggest) diag.Code { return s.Code })
}

func TestFrameBalance(t *testing.T) {
	for name, mk := range tracers() {
		t.Run(name, func(t *testing.T) {
			tr := mk()
			in := source.New("AB")

			tr.Enter(ruleOuter, in)
			tr.Enter(ruleInner, in)
			if tr.Depth() != 2 {
				t.Fatalf("depth = %d, want 2", tr.Depth())
			}
			rest, head := in.Split(1)
			tr.Ok(rest, head)
			tr.Enter(ruleInner, rest)
			_ = tr.Err(diag.New(ruleInner, rest))
			_ = tr.Err(diag.New(ruleOuter, in))

			if tr.Depth() != 0 {
				t.Fatalf("depth = %d after outermost resolution", tr.Depth())
			}
			require.PanicsWithError(t, "trace: tracer contract violated: ok without enter", func() {
				tr.Ok(rest, head)
			})
			require.Panics(t, func() { tr.Err(diag.New(ruleOuter, in)) })
			require.Panics(t, func() { tr.Suggest(ruleOpt, in) })
			require.Panics(t, func() { tr.Stash(diag.New(ruleAltA, in)) })
		})
	}
}

func TestStacksStayAligned(t *testing.T) {
	tr := NewCTracer(nil)
	in := source.New("A")
	check := func() {
		t.Helper()
		if !tr.balanced() {
			t.Fatalf("stacks out of step: chain %d, expect %d, suggest %d", tr.chain.Len(), len(tr.expect), len(tr.suggest))
		}
	}
	tr.Enter(ruleOuter, in)
	check()
	tr.Enter(ruleInner, in)
	tr.Suggest(ruleOpt, in)
	tr.Stash(diag.New(ruleAltA, in))
	check()
	tr.Ok(in.Skip(1), in)
	check()
	_ = tr.Err(diag.New(ruleOuter, in))
	check()
}

func TestHintPropagation(t *testing.T) {
	for name, mk := range tracers() {
		t.Run(name, func(t *testing.T) {
			tr := mk()
			in := source.New("AB")
			rest := in.Skip(1)

			tr.Enter(ruleOuter, in)
			tr.Enter(ruleInner, in)
			tr.Suggest(ruleOpt, in)
			tr.Ok(rest, in.Take(1))
			err := tr.Err(diag.New(ruleOther, rest))

			sugs := err.Suggests()
			if len(sugs) != 1 || sugs[0].Code != ruleOpt {
				t.Fatalf("suggests = %v", sugs)
			}
			if !sugs[0].Parents.Contains(ruleInner) {
				t.Fatalf("suggest parents %v must contain Inner", sugs[0].Parents)
			}
			if diff := cmp.Diff([]diag.Code{ruleOuter, ruleInner}, sugs[0].Parents.Codes()); diff != "" {
				t.Fatalf("parent chain mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStashScoping(t *testing.T) {
	for name, mk := range tracers() {
		t.Run(name, func(t *testing.T) {
			tr := mk()
			in := source.New("B")

			// A fails and is stashed, B succeeds: the success hides A.
			tr.Enter(ruleOuter, in)
			tr.Enter(ruleAltA, in)
			errA := tr.Err(diag.New(ruleAltA, in))
			tr.Stash(errA)
			tr.Enter(ruleAltB, in)
			tr.Ok(in.Skip(1), in)
			tr.Ok(in.Skip(1), in)
			if got := tr.Suggestions(); len(got) != 0 {
				t.Fatalf("successful parse leaked hints: %v", got)
			}

			// Same shape, but the enclosing rule fails afterwards.
			tr.Enter(ruleOuter, in)
			tr.Enter(ruleAltA, in)
			tr.Stash(tr.Err(diag.New(ruleAltA, in)))
			tr.Enter(ruleAltB, in)
			tr.Ok(in.Skip(1), in)
			err := tr.Err(diag.New(ruleOther, in.Skip(1)))

			if !err.IsExpected(ruleAltA) {
				t.Fatalf("stashed alternative missing from %v", expectCodes(err))
			}
			if err.Code != ruleOther {
				t.Fatalf("code re-stamped to %v", err.Code)
			}
		})
	}
}

func TestErrRecordsCodeOnce(t *testing.T) {
	tr := NewRTracer()
	in := source.New("x")

	tr.Enter(ruleOuter, in)
	tr.Enter(ruleInner, in)
	err := tr.Err(diag.New(ruleInner, in))
	if !err.Seen {
		t.Fatal("Err must mark the error seen")
	}
	err = tr.Err(err)

	want := []diag.Code{ruleInner}
	if diff := cmp.Diff(want, expectCodes(err)); diff != "" {
		t.Fatalf("expect codes mismatch (-want +got):\n%s", diff)
	}
	if err.Code != ruleInner {
		t.Fatalf("code = %v, want Inner", err.Code)
	}
}

func TestErrReplacesSentinelWithRule(t *testing.T) {
	tr := NewCTracer(nil)
	in := source.New("x")
	tr.Enter(ruleInner, in)
	err := tr.Err(diag.NewRawMatch(diag.MatchError, diag.KindChar, in))

	if diff := cmp.Diff([]diag.Code{ruleInner}, expectCodes(err)); diff != "" {
		t.Fatalf("expect codes mismatch (-want +got):\n%s", diff)
	}
	if err.Code != diag.MatchError || !err.IsKind(diag.KindChar) {
		t.Fatalf("error changed: %v", err)
	}
}

func TestStashDropsRawMatches(t *testing.T) {
	tr := NewRTracer()
	in := source.New("x")
	inner := diag.NewRawMatch(ruleAltA, diag.KindTag, in)
	inner.AppendExpect(diag.Expect{Code: ruleInner, Span: in})
	inner.AddSuggest(ruleOpt, in)

	tr.Enter(ruleOuter, in)
	tr.Stash(inner)
	err := tr.Err(diag.New(ruleOuter, in))

	if len(err.RawMatches()) != 0 {
		t.Fatal("raw matches must not be stashed")
	}
	want := []diag.Code{ruleAltA, ruleInner, ruleOuter}
	if diff := cmp.Diff(want, expectCodes(err)); diff != "" {
		t.Fatalf("expect codes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]diag.Code{ruleOpt}, suggestCodes(err)); diff != "" {
		t.Fatalf("suggest codes mismatch (-want +got):\n%s", diff)
	}
}

func TestResidualSuggestions(t *testing.T) {
	for name, mk := range tracers() {
		t.Run(name, func(t *testing.T) {
			tr := mk()
			in := source.New("A")
			tr.Enter(ruleOuter, in)
			tr.Suggest(ruleOpt, in)
			tr.Ok(in.Skip(1), in)

			got := tr.Suggestions()
			if len(got) != 1 || got[0].Code != ruleOpt {
				t.Fatalf("residual suggestions = %v", got)
			}
			if tr.Depth() != 0 {
				t.Fatalf("depth = %d", tr.Depth())
			}
		})
	}
}

func TestNoTracerPassThrough(t *testing.T) {
	var tr Tracer = NewNoTracer()
	in := source.New("x")
	orig := diag.New(ruleInner, in)

	tr.Enter(ruleOuter, in)
	tr.Suggest(ruleOpt, in)
	tr.Stash(diag.New(ruleAltA, in))
	if tr.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", tr.Depth())
	}
	got := tr.Err(orig)

	if got != orig || len(got.Hints) != 0 || got.Seen {
		t.Fatalf("NoTracer altered the error: %+v", got)
	}
	if tr.Depth() != 0 || tr.Suggestions() != nil {
		t.Fatal("NoTracer keeps no hints")
	}
	require.Panics(t, func() { tr.Err(nil) })
}

func TestNoTracerBalance(t *testing.T) {
	tr := NewNoTracer()
	in := source.New("AB")

	tr.Enter(ruleOuter, in)
	tr.Enter(ruleInner, in)
	tr.Ok(in.Skip(1), in.Take(1))
	_ = tr.Err(diag.New(ruleOuter, in))
	require.Equal(t, 0, tr.Depth())

	require.PanicsWithError(t, "trace: tracer contract violated: ok without enter", func() {
		tr.Ok(in, in)
	})
	require.PanicsWithError(t, "trace: tracer contract violated: err without enter", func() {
		tr.Err(diag.New(ruleOuter, in))
	})
	require.Panics(t, func() { tr.Stash(diag.New(ruleAltA, in)) })
	require.Panics(t, func() { tr.Suggest(ruleOpt, in) })
	require.Panics(t, func() { tr.Enter(nil, in) })
}

func TestRTracerTake(t *testing.T) {
	tr := NewRTracer()
	in := source.New("AB")

	tr.Enter(ruleOuter, in)
	tr.Expect(ruleAltA, in)
	tr.Enter(ruleInner, in)
	tr.Suggest(ruleOpt, in)
	tr.Expect(ruleAltB, in.Skip(1))

	exp := tr.TakeExpect()
	if diff := cmp.Diff([]diag.Code{ruleAltA, ruleAltB}, codesOf(exp, func(x diag.Expect) diag.Code { return x.Code })); diff != "" {
		t.Fatalf("TakeExpect mismatch (-want +got):\n%s", diff)
	}
	if len(tr.TakeExpect()) != 0 {
		t.Fatal("TakeExpect must drain")
	}
	sug := tr.TakeSuggest()
	if len(sug) != 1 || sug[0].Code != ruleOpt {
		t.Fatalf("TakeSuggest = %v", sug)
	}
	if tr.Depth() != 2 {
		t.Fatalf("draining must keep the frames, depth = %d", tr.Depth())
	}

	exps, sugs := tr.Frames()
	if len(exps) != 2 || len(sugs) != 2 {
		t.Fatalf("frames = %d/%d", len(exps), len(sugs))
	}
	if !exps[1].Parents.Contains(ruleOuter) || exps[1].Parents.Contains(ruleInner) {
		t.Fatalf("frame must carry its caller chain, got %v", exps[1].Parents)
	}
}

func TestEventLog(t *testing.T) {
	tr := NewCTracer(nil)
	in := source.New("AB")
	rest, head := in.Split(1)

	tr.Enter(ruleOuter, in)
	tr.Step("first", in)
	tr.Enter(ruleInner, in)
	tr.Suggest(ruleOpt, in)
	tr.Ok(rest, head)
	tr.Debug("after inner")
	_ = tr.Err(diag.New(ruleOther, rest))

	var kinds []Kind
	for ev := range tr.Events(nil) {
		kinds = append(kinds, ev.Kind)
	}
	want := []Kind{
		KindEnter, KindStep, KindEnter, KindOk, KindSuggest, KindExit,
		KindDebug, KindExpect, KindSuggest, KindErr, KindExit,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("event kinds mismatch (-want +got):\n%s", diff)
	}

	var seqs []uint64
	for ev := range tr.Events(All) {
		seqs = append(seqs, ev.Seq)
	}
	if !slices.IsSorted(seqs) || seqs[0] != 1 || len(seqs) != tr.Len() {
		t.Fatalf("sequence numbers = %v", seqs)
	}

	var usages []Usage
	for ev := range tr.Events(OnlyKinds(KindSuggest)) {
		usages = append(usages, ev.Usage)
	}
	if diff := cmp.Diff([]Usage{UsageBubble, UsageUse}, usages); diff != "" {
		t.Fatalf("suggest usages mismatch (-want +got):\n%s", diff)
	}

	for ev := range tr.Events(OnlyKinds(KindErr)) {
		if ev.Code != ruleOther || ev.Func != ruleOuter || ev.Depth() != 1 {
			t.Fatalf("err event = %+v", ev)
		}
	}
}

func TestEventsStopEarly(t *testing.T) {
	tr := NewCTracer(nil)
	in := source.New("A")
	tr.Enter(ruleOuter, in)
	tr.Ok(in.Skip(1), in)

	n := 0
	for range tr.Events(nil) {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("iterated %d events after break", n)
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		check    func(Tracer) bool
	}{
		{"full", StrategyFull, func(t Tracer) bool { _, ok := t.(*CTracer); return ok }},
		{"default", 0, func(t Tracer) bool { _, ok := t.(*CTracer); return ok }},
		{"replay", StrategyReplay, func(t Tracer) bool { _, ok := t.(*RTracer); return ok }},
		{"none", StrategyNone, func(t Tracer) bool { _, ok := t.(*NoTracer); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(Config{Strategy: tt.strategy})
			require.NoError(t, err)
			if !tt.check(tr) {
				t.Fatalf("New(%v) = %T", tt.strategy, tr)
			}
		})
	}
	_, err := New(Config{Strategy: Strategy(42)})
	require.Error(t, err)
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{StrategyFull, StrategyReplay, StrategyNone} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := ParseStrategy("fast")
	require.Error(t, err)
}

func TestStashRecordsSentinelCode(t *testing.T) {
	for name, mk := range tracers() {
		t.Run(name, func(t *testing.T) {
			tr := mk()
			in := source.New("xy")
			at := in.Skip(1)

			tr.Enter(ruleOuter, in)
			tr.Stash(diag.NewRawMatch(diag.MatchError, diag.KindTag, at))
			err := tr.Err(diag.New(ruleOuter, in))

			want := []diag.Expect{
				{Code: diag.MatchError, Span: at},
				{Code: ruleOuter, Span: in},
			}
			got := err.Expects()
			require.Len(t, got, len(want))
			for i := range want {
				require.Equal(t, want[i].Code, got[i].Code)
				require.Equal(t, want[i].Span.Offset(), got[i].Span.Offset())
			}
		})
	}
}

func TestStashRecordsResolvedSentinel(t *testing.T) {
	tr := NewRTracer()
	in := source.New("x")

	tr.Enter(ruleOuter, in)
	tr.Enter(ruleInner, in)
	inner := tr.Err(diag.NewRawMatch(diag.MatchError, diag.KindChar, in))
	tr.Stash(inner)
	err := tr.Err(diag.New(ruleOuter, in))

	want := []diag.Code{diag.MatchError, ruleInner, ruleOuter}
	if diff := cmp.Diff(want, expectCodes(err)); diff != "" {
		t.Fatalf("expect codes mismatch (-want +got):\n%s", diff)
	}
}

func TestOutermostResolution(t *testing.T) {
	for name, mk := range tracers() {
		t.Run(name+"/ok", func(t *testing.T) {
			tr := mk()
			in := source.New("A")
			tr.Enter(ruleOuter, in)
			tr.Ok(in.Skip(1), in.Take(1))
			require.Equal(t, 0, tr.Depth())
		})
		t.Run(name+"/err", func(t *testing.T) {
			tr := mk()
			in := source.New("A")
			tr.Enter(ruleOuter, in)
			err := tr.Err(diag.New(ruleOuter, in))
			require.Equal(t, 0, tr.Depth())
			require.Equal(t, []diag.Code{ruleOuter}, expectCodes(err))
		})
		t.Run(name+"/stash then err", func(t *testing.T) {
			tr := mk()
			in := source.New("A")
			tr.Enter(ruleOuter, in)
			tr.Stash(diag.New(ruleAltA, in))
			err := tr.Err(diag.New(ruleOuter, in))
			require.Equal(t, 0, tr.Depth())
			require.Equal(t, []diag.Code{ruleAltA, ruleOuter}, expectCodes(err))
		})
	}
}
