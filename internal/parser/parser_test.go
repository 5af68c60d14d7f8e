package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"parsetrace/internal/diag"
	"parsetrace/internal/match"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

type code uint8

const (
	codeX code = iota + 1
	codeY
	codeZ
	codeXY
	codeSeq
)

func (c code) String() string {
	return [...]string{"?", "X", "Y", "Z", "XY", "Seq"}[c]
}

func (code) IsSpecial() bool { return false }

// letter parses the single character ch under rule c.
func letter(c diag.Code, ch rune, fatal bool) Rule[string] {
	fn := match.Char(ch)
	if fatal {
		fn = match.Cut(fn)
	}
	return Rule[string]{
		Code: c,
		Peek: func(in source.Span) bool {
			return len(in.Fragment()) > 0 && rune(in.Fragment()[0]) == ch
		},
		Fn: func(t trace.Tracer, in source.Span) (source.Span, string, error) {
			t.Enter(c, in)
			rest, tok, fail := fn(in)
			if fail != nil {
				return trace.Fail[string](t, fail.WithCode(c))
			}
			return trace.Ok(t, rest, tok, tok.Fragment())
		},
	}
}

// unguarded drops the look-ahead so the parser always runs.
func unguarded(r Rule[string]) Rule[string] {
	r.Peek = func(source.Span) bool { return true }
	return r
}

func expectCodes(err *diag.ParserError) []diag.Code {
	var out []diag.Code
	for _, x := range err.Expects() {
		out = append(out, x.Code)
	}
	return out
}

func TestRuleLookAhead(t *testing.T) {
	r := Rule[int]{Code: codeX}
	require.Equal(t, Skip, r.LookAhead(source.New("")))
	require.Equal(t, Parse, r.LookAhead(source.New("a")))
	require.Equal(t, Skip, letter(codeX, 'x', false).LookAhead(source.New("y")))
	require.Equal(t, "skip", Skip.String())
}

func TestMaybe(t *testing.T) {
	seq := Rule[string]{
		Code: codeSeq,
		Fn: func(t trace.Tracer, in source.Span) (source.Span, string, error) {
			t.Enter(codeSeq, in)
			rest, x, _, err := Maybe[string](t, letter(codeX, 'x', false), in)
			if err != nil {
				return trace.Fail[string](t, err)
			}
			rest, y, err := letter(codeY, 'y', false).Parse(t, rest)
			if err != nil {
				return trace.Fail[string](t, err)
			}
			return trace.Ok(t, rest, Consumed(in, rest), x+y)
		},
	}

	t.Run("present", func(t *testing.T) {
		res := Run(trace.NewCTracer(nil), seq, source.New("xy"), Options{})
		require.True(t, res.OK())
		require.Equal(t, "xy", res.Value)
		require.Empty(t, res.Suggestions)
	})
	t.Run("skipped leaves a suggestion", func(t *testing.T) {
		res := Run(trace.NewCTracer(nil), seq, source.New("y"), Options{})
		require.True(t, res.OK())
		require.Equal(t, "y", res.Value)
		require.Len(t, res.Suggestions, 1)
		require.Equal(t, diag.Code(codeX), res.Suggestions[0].Code)
	})
	t.Run("skipped then failure reports it", func(t *testing.T) {
		res := Run(trace.NewRTracer(), seq, source.New("z"), Options{})
		require.False(t, res.OK())
		require.Equal(t, diag.Code(codeY), res.Err.Code)
		sugs := res.Err.Suggests()
		require.Len(t, sugs, 1)
		require.Equal(t, diag.Code(codeX), sugs[0].Code)
	})
}

func TestMaybeStashesSoftFailure(t *testing.T) {
	tr := trace.NewRTracer()
	in := source.New("z")
	tr.Enter(codeSeq, in)
	rest, _, ok, err := Maybe[string](tr, unguarded(letter(codeX, 'x', false)), in)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, rest.Equal(in))

	perr := tr.Err(diag.New(codeSeq, in))
	require.True(t, perr.IsExpected(codeX))
}

func TestMaybePropagatesFatal(t *testing.T) {
	tr := trace.NewRTracer()
	in := source.New("z")
	tr.Enter(codeSeq, in)
	_, _, ok, err := Maybe[string](tr, unguarded(letter(codeX, 'x', true)), in)
	require.Error(t, err)
	require.False(t, ok)
	_ = tr.Err(diag.AsParserError(err, in))
	require.Equal(t, 0, tr.Depth())
}

func TestAlt(t *testing.T) {
	xy := Alt[string](codeXY, letter(codeX, 'x', false), unguarded(letter(codeY, 'y', false)))

	t.Run("second wins", func(t *testing.T) {
		tr := trace.NewCTracer(nil)
		res := Run(tr, xy, source.New("y"), Options{})
		require.True(t, res.OK())
		require.Equal(t, "y", res.Value)
	})
	t.Run("none match", func(t *testing.T) {
		res := Run(trace.NewCTracer(nil), xy, source.New("z"), Options{})
		require.False(t, res.OK())
		require.Equal(t, diag.Code(codeXY), res.Err.Code)
		// X skipped by look-ahead, Y tried and stashed, then XY itself.
		want := []diag.Code{codeX, codeY, codeY, codeXY}
		if diff := cmp.Diff(want, expectCodes(res.Err)); diff != "" {
			t.Fatalf("expect codes mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("fatal stops the search", func(t *testing.T) {
		fatal := Alt[string](codeXY, unguarded(letter(codeX, 'x', true)), unguarded(letter(codeY, 'y', false)))
		res := Run(trace.NewCTracer(nil), fatal, source.New("y"), Options{})
		require.False(t, res.OK())
		require.True(t, res.Err.IsFatal())
		require.Equal(t, diag.Code(codeX), res.Err.Code)
	})
	require.Equal(t, Parse, xy.LookAhead(source.New("q")))
	require.Equal(t, Skip, Alt[string](codeXY, letter(codeX, 'x', false)).LookAhead(source.New("q")))
}

func TestRunIncomplete(t *testing.T) {
	x := letter(codeX, 'x', false)

	res := Run(trace.NewCTracer(nil), x, source.New("xx"), Options{})
	require.False(t, res.OK())
	require.Equal(t, diag.Code(diag.Incomplete), res.Err.Code)
	require.Equal(t, 1, res.Err.Span.Offset())

	res = Run(trace.NewCTracer(nil), x, source.New("xx"), Options{AllowIncomplete: true})
	require.True(t, res.OK())
	require.Equal(t, "x", res.Rest.Fragment())

	require.NoError(t, Complete(source.New("x").Skip(1)))
}

func TestRunDetectsUnbalancedRule(t *testing.T) {
	leaky := Rule[int]{
		Code: codeZ,
		Fn: func(t trace.Tracer, in source.Span) (source.Span, int, error) {
			t.Enter(codeZ, in)
			return in, 0, nil
		},
	}
	for name, tr := range map[string]trace.Tracer{
		"replay": trace.NewRTracer(),
		"none":   trace.NewNoTracer(),
	} {
		t.Run(name, func(t *testing.T) {
			require.PanicsWithError(t, "trace: tracer contract violated: Z left 1 unresolved frames", func() {
				Run(tr, leaky, source.New("z"), Options{})
			})
		})
	}
}
