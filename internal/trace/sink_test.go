package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// runSample drives a small parse through a full tracer with the given sink.
func runSample(sink Sink) *CTracer {
	tr := NewCTracer(sink)
	in := source.New("AB")
	rest, head := in.Split(1)

	tr.Enter(ruleOuter, in)
	tr.Debug("start")
	tr.Enter(ruleInner, in)
	tr.Step("tag", in)
	tr.Ok(rest, head)
	_ = tr.Err(diag.New(ruleOther, rest))
	return tr
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level Level
		want  []Kind
	}{
		{LevelOff, nil},
		{LevelFrames, []Kind{KindEnter, KindEnter, KindOk, KindExit, KindErr, KindExit}},
		{LevelHints, []Kind{KindEnter, KindEnter, KindStep, KindOk, KindExit, KindExpect, KindErr, KindExit}},
		{LevelDebug, []Kind{KindEnter, KindDebug, KindEnter, KindStep, KindOk, KindExit, KindExpect, KindErr, KindExit}},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			ring := NewRingSink(64, tt.level)
			runSample(ring)

			var got []Kind
			for _, ev := range ring.Snapshot() {
				got = append(got, ev.Kind)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingSink(3, LevelDebug)
	tr := runSample(ring)

	snap := ring.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot len = %d, want 3", len(snap))
	}
	last := uint64(tr.Len())
	if diff := cmp.Diff([]uint64{last - 2, last - 1, last}, []uint64{snap[0].Seq, snap[1].Seq, snap[2].Seq}); diff != "" {
		t.Fatalf("ring must keep the newest events (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	require.NoError(t, ring.Dump(&buf, FormatText))
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Fatalf("dump has %d lines", got)
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	runSample(NewStreamSink(&buf, LevelFrames, FormatText))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "→ Outer \"AB\"") {
		t.Errorf("enter line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "  → Inner") {
		t.Errorf("nested enter must be indented: %q", lines[1])
	}
	if !strings.Contains(lines[2], "✓ Inner \"A\" rest \"B\"") {
		t.Errorf("ok line = %q", lines[2])
	}
	if !strings.Contains(lines[4], "✗ Outer Other expects") {
		t.Errorf("err line = %q", lines[4])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	runSample(NewStreamSink(&buf, LevelHints, FormatNDJSON))

	var kinds []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &obj))
		kinds = append(kinds, obj["kind"].(string))
		if obj["kind"] == "expect" {
			require.Equal(t, "use", obj["usage"])
			hints := obj["expect"].([]any)
			require.Len(t, hints, 1)
			require.Equal(t, "Other", hints[0].(map[string]any)["code"])
		}
	}
	want := []string{"enter", "enter", "step", "ok", "exit", "expect", "err", "exit"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, context.DeadlineExceeded }

func TestStreamReportsWriteError(t *testing.T) {
	sink := NewStreamSink(failingWriter{}, LevelDebug, FormatText)
	runSample(sink)
	require.ErrorIs(t, sink.Flush(), context.DeadlineExceeded)
}

func TestMultiSink(t *testing.T) {
	frames := NewRingSink(64, LevelFrames)
	debug := NewRingSink(64, LevelDebug)
	multi := NewMultiSink(frames, debug)
	require.Equal(t, LevelDebug, multi.Level())

	tr := runSample(multi)
	require.Len(t, debug.Snapshot(), tr.Len())
	require.Len(t, frames.Snapshot(), 6)
	require.NoError(t, tr.Close())
}

func TestSinkContext(t *testing.T) {
	require.Equal(t, Nop, SinkFromContext(context.Background()))
	ring := NewRingSink(4, LevelFrames)
	ctx := WithSink(context.Background(), ring)
	require.Same(t, ring, SinkFromContext(ctx).(*RingSink))
	require.Equal(t, Nop, SinkFromContext(WithSink(context.Background(), nil)))
}

func TestNewWithSinkConfig(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Strategy: StrategyFull, Level: LevelFrames, Mode: ModeBoth, Output: &buf, RingSize: 8})
	require.NoError(t, err)
	ct := tr.(*CTracer)
	multi, ok := ct.Sink().(*MultiSink)
	require.True(t, ok)
	require.Equal(t, LevelFrames, multi.Level())

	in := source.New("A")
	tr.Enter(ruleOuter, in)
	tr.Ok(in.Skip(1), in)
	require.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestParseLevelAndFormat(t *testing.T) {
	for _, l := range []Level{LevelOff, LevelFrames, LevelHints, LevelDebug} {
		got, err := ParseLevel(strings.ToUpper(l.String()))
		require.NoError(t, err)
		require.Equal(t, l, got)
	}
	_, err := ParseLevel("verbose")
	require.Error(t, err)

	f, err := ParseFormat("ndjson")
	require.NoError(t, err)
	require.Equal(t, FormatNDJSON, f)
	_, err = ParseFormat("chrome")
	require.Error(t, err)

	m, err := ParseMode("both")
	require.NoError(t, err)
	require.Equal(t, ModeBoth, m)
}

func TestFilters(t *testing.T) {
	tr := runSample(nil)

	count := func(f Filter) int {
		n := 0
		for range tr.Events(f) {
			n++
		}
		return n
	}
	require.Equal(t, tr.Len(), count(All))
	// Inner: enter, step, ok, exit.
	require.Equal(t, 4, count(OnlyFunc(ruleInner)))
	require.Equal(t, 4, count(And(Within(ruleInner), Not(OnlyKinds(KindExpect)))))
	require.Equal(t, tr.Len()-4, count(Not(OnlyFunc(ruleInner))))
	require.Equal(t, 6, count(AtLevel(LevelFrames)))
}
