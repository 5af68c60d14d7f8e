// Package testkit runs grammar rules under a full tracer in tests and dumps
// the trace when a check fails.
package testkit

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"parsetrace/internal/diag"
	"parsetrace/internal/parser"
	"parsetrace/internal/render"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// Case is the recorded outcome of one parse. The check methods report
// through the test and return the case, so checks chain:
//
//	testkit.Parse(t, demo.ParseSingleA, "AA").
//		Fails(demo.End).At(1).
//		Expects(demo.End, 1).
//		Done()
//
// Done dumps the trace and stops the test if any check failed.
type Case[O any] struct {
	tb      testing.TB
	Input   source.Span
	Tracer  *trace.CTracer
	Result  parser.Result[O]
	Elapsed time.Duration

	filter trace.Filter
	failed bool
}

// Parse runs p on input. Left-over input is not an error here; check it
// with Rest.
func Parse[O any](tb testing.TB, p parser.Parser[O], input string) *Case[O] {
	tb.Helper()
	in := source.New(input)
	tr := trace.NewCTracer(nil)

	start := time.Now()
	res := parser.Run(tr, p, in, parser.Options{AllowIncomplete: true})
	elapsed := time.Since(start)

	c := &Case[O]{tb: tb, Input: in, Tracer: tr, Result: res, Elapsed: elapsed, filter: trace.All}
	if err := CheckSpanInvariants(in, res.Rest, res.Err); err != nil {
		c.fail("span invariants: %v", err)
	}
	return c
}

// Filter restricts the trace dump to matching events.
func (c *Case[O]) Filter(f trace.Filter) *Case[O] {
	c.filter = f
	return c
}

func (c *Case[O]) fail(format string, args ...any) {
	c.tb.Helper()
	c.failed = true
	c.tb.Errorf(format, args...)
}

// OK checks that the parse succeeded.
func (c *Case[O]) OK() *Case[O] {
	c.tb.Helper()
	if c.Result.Err != nil {
		c.fail("expected success, got %v", c.Result.Err)
	}
	return c
}

// Fails checks that the parse failed with code.
func (c *Case[O]) Fails(code diag.Code) *Case[O] {
	c.tb.Helper()
	switch {
	case c.Result.Err == nil:
		c.fail("expected failure %s, parse succeeded", code)
	case c.Result.Err.Code != code:
		c.fail("expected failure %s, got %s", code, c.Result.Err.Code)
	}
	return c
}

// At checks the offset of the error.
func (c *Case[O]) At(offset int) *Case[O] {
	c.tb.Helper()
	if c.Result.Err == nil {
		c.fail("expected failure at %d, parse succeeded", offset)
	} else if got := c.Result.Err.Span.Offset(); got != offset {
		c.fail("expected failure at %d, got %d", offset, got)
	}
	return c
}

// Rest checks the unparsed input after a success.
func (c *Case[O]) Rest(offset int, fragment string) *Case[O] {
	c.tb.Helper()
	rest := c.Result.Rest
	if rest.Offset() != offset || rest.Fragment() != fragment {
		c.fail("expected rest %d %q, got %d %q", offset, fragment, rest.Offset(), rest.Fragment())
	}
	return c
}

// Value runs check on the parsed value. check returns a description of the
// mismatch, or "" when the value is fine.
func (c *Case[O]) Value(check func(O) string) *Case[O] {
	c.tb.Helper()
	if c.Result.Err != nil {
		c.fail("no value, parse failed: %v", c.Result.Err)
		return c
	}
	if msg := check(c.Result.Value); msg != "" {
		c.fail("value: %s", msg)
	}
	return c
}

// Expects checks for an Expect hint with code at offset.
func (c *Case[O]) Expects(code diag.Code, offset int) *Case[O] {
	c.tb.Helper()
	if c.Result.Err == nil {
		c.fail("expected hint %s@%d, parse succeeded", code, offset)
		return c
	}
	for _, x := range c.Result.Err.Expects() {
		if x.Code == code && x.Span.Offset() == offset {
			return c
		}
	}
	c.fail("missing expect %s@%d", code, offset)
	return c
}

// Suggests checks for a Suggest hint with code at offset, either on the
// error or among the suggestions of a successful parse.
func (c *Case[O]) Suggests(code diag.Code, offset int) *Case[O] {
	c.tb.Helper()
	sugs := c.Result.Suggestions
	if c.Result.Err != nil {
		sugs = c.Result.Err.Suggests()
	}
	for _, s := range sugs {
		if s.Code == code && s.Span.Offset() == offset {
			return c
		}
	}
	c.fail("missing suggest %s@%d", code, offset)
	return c
}

// Dump writes the trace, the error or value and the timing to the test log.
func (c *Case[O]) Dump() *Case[O] {
	c.tb.Helper()
	c.tb.Log(c.report())
	return c
}

// Done ends the chain: when a check failed it dumps the trace and stops
// the test.
func (c *Case[O]) Done() {
	c.tb.Helper()
	if c.failed {
		c.tb.Log(c.report())
		c.tb.FailNow()
	}
}

func (c *Case[O]) report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nwhen parsing %q in %s =>\n", c.Input.Fragment(), c.Elapsed)
	_ = render.Trace(&b, c.Tracer, c.filter, render.Options{Width: render.Medium})
	if c.Result.Err != nil {
		b.WriteString("error\n")
		_ = render.Error(&b, c.Result.Err, render.Options{Width: render.Medium})
	} else {
		fmt.Fprintf(&b, "rest %d:%q\n%v\n", c.Result.Rest.Offset(), c.Result.Rest.Fragment(), c.Result.Value)
	}
	return b.String()
}
