package testkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"parsetrace/internal/demo"
	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// recorder stands in for *testing.T so failing checks can be observed.
type recorder struct {
	testing.TB
	errors  []string
	logs    []string
	stopped bool
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recorder) Log(args ...any) {
	r.logs = append(r.logs, fmt.Sprint(args...))
}

func (r *recorder) FailNow() {
	r.stopped = true
}

func TestPassingChecks(t *testing.T) {
	Parse(t, demo.ParseA, "A").OK().Rest(1, "").Done()
	Parse(t, demo.ParseA, "AB").OK().Rest(1, "B").Done()
	Parse(t, demo.ParseSingleA, "AA").Fails(demo.End).At(1).Expects(demo.End, 1).Done()
	Parse(t, demo.ParseNonTerminal3, "AAA").
		Fails(demo.TerminalC).At(2).
		Expects(demo.TerminalC, 2).
		Expects(demo.TerminalB, 2).
		Done()
	Parse(t, demo.CalcRule(), "2 * 3").
		OK().
		Value(func(v int64) string {
			if v != 6 {
				return fmt.Sprintf("got %d", v)
			}
			return ""
		}).
		Suggests(demo.Sign, 0).
		Done()
}

func TestFailingCheckDumpsTrace(t *testing.T) {
	rec := &recorder{}
	Parse(rec, demo.ParseSingleA, "AA").OK().Done()

	require.True(t, rec.stopped)
	require.Len(t, rec.errors, 1)
	require.Contains(t, rec.errors[0], "expected success")
	require.Len(t, rec.logs, 1)
	require.Contains(t, rec.logs[0], `when parsing "AA"`)
	require.Contains(t, rec.logs[0], "SingleA")
	require.Contains(t, rec.logs[0], "error: End")
}

func TestWrongExpectations(t *testing.T) {
	rec := &recorder{}
	Parse(rec, demo.ParseSingleA, "AA").
		Fails(demo.TerminalA).
		At(0).
		Expects(demo.TerminalB, 1).
		Suggests(demo.TerminalA, 0).
		Done()
	require.Len(t, rec.errors, 4)
	require.True(t, rec.stopped)

	rec = &recorder{}
	Parse(rec, demo.ParseA, "A").Fails(demo.TerminalA).At(0).Rest(0, "A").Done()
	require.Len(t, rec.errors, 3)
}

func TestDumpWithoutFailure(t *testing.T) {
	rec := &recorder{}
	Parse(rec, demo.ParseA, "A").Dump().Done()
	require.False(t, rec.stopped)
	require.Empty(t, rec.errors)
	require.Len(t, rec.logs, 1)
	require.Contains(t, rec.logs[0], `rest 1:""`)
}

func TestCheckSpanInvariants(t *testing.T) {
	in := source.New("abc")
	other := source.New(strings.Clone("abc"))

	require.NoError(t, CheckSpanInvariants(in, in.Skip(1), nil))
	require.Error(t, CheckSpanInvariants(in, other, nil))
	require.Error(t, CheckSpanInvariants(in.Skip(1), in, nil))

	err := diag.New(demo.End, in.Skip(3))
	require.NoError(t, CheckSpanInvariants(in, in.Skip(3), err))

	err.AddSuggest(demo.TerminalA, other)
	require.ErrorContains(t, CheckSpanInvariants(in, in.Skip(3), err), "another buffer")
}
