package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"parsetrace/internal/demo"
	"parsetrace/internal/diag"
	"parsetrace/internal/parser"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

type code uint8

const (
	codeRoot code = iota + 1
	codeItem
	codeValue
)

func (c code) String() string {
	return [...]string{"?", "Root", "Item", "Value"}[c]
}

func (code) IsSpecial() bool { return false }

// sampleError fails at the "d" of the second line with two expectations and
// one suggestion one line up.
func sampleError() *diag.ParserError {
	s := source.New("ab\ncd\nef")
	at := s.Skip(4)
	err := diag.New(codeValue, at)
	err.AppendExpect(
		diag.Expect{Code: codeValue, Span: at, Parents: diag.ChainOf(codeRoot, codeValue)},
		diag.Expect{Code: codeItem, Span: at, Parents: diag.ChainOf(codeRoot)},
	)
	err.AppendSuggest(diag.Suggest{Code: codeItem, Span: s.Skip(1), Parents: diag.ChainOf(codeRoot)})
	return err
}

func TestParseWidth(t *testing.T) {
	tests := []struct {
		in   string
		want Width
		err  bool
	}{
		{"short", Short, false},
		{"M", Medium, false},
		{"", Medium, false},
		{" long ", Long, false},
		{"huge", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWidth(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
	require.Equal(t, 20, Short.Excerpt())
	require.Equal(t, 40, Medium.Excerpt())
	require.Equal(t, 60, Long.Excerpt())
	require.Equal(t, "long", Long.String())
}

func TestErrorWidths(t *testing.T) {
	tests := []struct {
		name  string
		width Width
		want  string
	}{
		{
			name:  "short",
			width: Short,
			want:  `input:2:2: error: Value at "d\nef" (expected Value, Item)` + "\n",
		},
		{
			name:  "medium",
			width: Medium,
			want: `input:2:2: error: Value at "d\nef"
  expect Value at 2:2 "d\nef" in Root > Value
  expect Item at 2:2 "d\nef" in Root
  suggest Item at 1:2 "b\ncd\nef" in Root
`,
		},
		{
			name:  "long",
			width: Long,
			want: `input:2:2: error: Value
  |
1 | ab
2 | cd
  |  ^ Value
3 | ef
  |
expected:
  line 2: Value@2, Item@2 in Root
suggested:
  line 1: Item@2 in Root
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Error(&buf, sampleError(), Options{Width: tt.width, Context: 1}))
			require.Equal(t, tt.want, buf.String())
		})
	}
}

func TestErrorLongWithoutContext(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Error(&buf, sampleError(), Options{Width: Long, Path: "x.txt"}))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "x.txt:2:2: error: Value\n"))
	require.NotContains(t, out, "1 | ab")
	require.NotContains(t, out, "3 | ef")
	require.Contains(t, out, "2 | cd")
}

func TestErrorShowsCause(t *testing.T) {
	err := diag.FromError(codeValue, source.New("9"), errors.New("out of range"))
	var buf bytes.Buffer
	require.NoError(t, Error(&buf, err, Options{Width: Short}))
	require.Equal(t, `input:1:1: error: Value at "9": out of range`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Error(&buf, nil, Options{}))
	require.Empty(t, buf.String())
}

func TestColor(t *testing.T) {
	var plainOut, colored bytes.Buffer
	require.NoError(t, Error(&plainOut, sampleError(), Options{Width: Medium}))
	require.NoError(t, Error(&colored, sampleError(), Options{Width: Medium, Color: true}))
	require.NotContains(t, plainOut.String(), "\x1b[")
	require.Contains(t, colored.String(), "\x1b[")
}

func TestStylesPaint(t *testing.T) {
	var buf bytes.Buffer
	st := newStyles(&buf, true)
	for _, p := range []paint{st.err, st.code, st.loc, st.gutter, st.caret, st.expect, st.suggest, st.ok, st.dim} {
		got := p("Value")
		require.Contains(t, got, "Value")
		require.Contains(t, got, "\x1b[")
	}
	require.Equal(t, "Value", newStyles(&buf, false).err("Value"))
}

func TestSuggestions(t *testing.T) {
	res := parser.Run(trace.NewCTracer(nil), demo.CalcRule(), source.New("7"), parser.Options{})
	require.True(t, res.OK())

	var buf bytes.Buffer
	require.NoError(t, Suggestions(&buf, res.Suggestions, Options{Path: "calc"}))
	require.Equal(t, `calc:1:1: hint: Sign may appear at "7" in Calc > Expr > Term > Factor`+"\n", buf.String())
}

func TestTrace(t *testing.T) {
	tr := trace.NewCTracer(nil)
	res := parser.Run(tr, demo.ParseSingleA, source.New("A"), parser.Options{})
	require.True(t, res.OK())

	var buf bytes.Buffer
	require.NoError(t, Trace(&buf, tr, trace.All, Options{}))
	out := buf.String()
	require.Contains(t, out, "→ SingleA \"A\"")
	require.Contains(t, out, "  → TerminalA \"A\"")
	require.Contains(t, out, "✓ TerminalA \"A\" rest \"\"")
	require.Contains(t, out, "← SingleA")
	require.NotContains(t, out, "open frames")
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), tr.Len())

	buf.Reset()
	require.NoError(t, Trace(&buf, tr, trace.OnlyFunc(demo.End), Options{}))
	require.NotContains(t, buf.String(), "TerminalA")
}

func TestTraceListsOpenFrames(t *testing.T) {
	tr := trace.NewCTracer(nil)
	in := source.New("x")
	tr.Enter(codeRoot, in)
	tr.Enter(codeItem, in)
	tr.Expect(codeValue, in)

	var buf bytes.Buffer
	require.NoError(t, Trace(&buf, tr, trace.All, Options{}))
	require.Contains(t, buf.String(), "open frames:\n  Root\n    Item expect Value@0\n")
}

func TestReplay(t *testing.T) {
	in := source.New("x")

	open := trace.NewRTracer()
	open.Enter(codeRoot, in)
	open.Expect(codeItem, in)
	var buf bytes.Buffer
	require.NoError(t, Replay(&buf, open, Options{}))
	require.Equal(t, "  Root expect Item@0\n", buf.String())

	done := trace.NewRTracer()
	done.Enter(codeRoot, in)
	done.Suggest(codeItem, in)
	done.Ok(in.Skip(1), in)
	buf.Reset()
	require.NoError(t, Replay(&buf, done, Options{}))
	require.Equal(t, "no open frames\nresidual suggest Item at 1:1\n", buf.String())
}

func TestRecords(t *testing.T) {
	tr := trace.NewCTracer(nil)
	res := parser.Run(tr, demo.ParseSingleA, source.New("AA"), parser.Options{})
	require.False(t, res.OK())

	var log bytes.Buffer
	require.NoError(t, trace.WriteLog(&log, "sample", tr))
	decoded, err := trace.ReadLog(&log)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Records(&buf, decoded, Options{}))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "log of sample\n"))
	require.Contains(t, out, "→ SingleA 1:0 \"AA\"")
	require.Contains(t, out, "→ End 1:1 \"A\"")
	require.Contains(t, out, "✗ End")
	require.Contains(t, out, "… expect End use End@1")
}
