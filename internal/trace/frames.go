package trace

import (
	"errors"
	"fmt"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// ErrContract is wrapped by the panic raised when a parser breaks the
// enter/ok/err discipline, e.g. calls Ok without a matching Enter.
var ErrContract = errors.New("trace: tracer contract violated")

// ExpectFrame accumulates the Expect hints of one rule invocation.
type ExpectFrame struct {
	Func    diag.Code
	Usage   Usage
	List    []diag.Expect
	Parents diag.Chain // caller chain, Func not included
}

// SuggestFrame accumulates the Suggest hints of one rule invocation.
type SuggestFrame struct {
	Func    diag.Code
	Usage   Usage
	List    []diag.Suggest
	Parents diag.Chain // caller chain, Func not included
}

// frames holds the three parallel stacks shared by the full and the replay
// tracer: the rule chain and one expect and one suggest frame per rule.
// len(expect) == len(suggest) == chain.Len() between calls.
type frames struct {
	chain    diag.Chain
	expect   []ExpectFrame
	suggest  []SuggestFrame
	residual []diag.Suggest // suggestions bubbled out of the outermost rule
}

func contractPanic(format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrContract}, args...)...))
}

func (f *frames) enter(fn diag.Code) {
	if fn == nil {
		contractPanic("enter with nil code")
	}
	caller := f.chain
	f.chain = f.chain.Push(fn)
	f.expect = append(f.expect, ExpectFrame{Func: fn, Usage: UsageTrack, Parents: caller})
	f.suggest = append(f.suggest, SuggestFrame{Func: fn, Usage: UsageTrack, Parents: caller})
}

// fn returns the innermost rule; op names the caller in the panic message.
func (f *frames) fn(op string) diag.Code {
	top, ok := f.chain.Top()
	if !ok || len(f.expect) == 0 || len(f.suggest) == 0 {
		contractPanic("%s without enter", op)
	}
	return top
}

func (f *frames) addSuggest(code diag.Code, span source.Span) {
	f.fn("suggest")
	top := &f.suggest[len(f.suggest)-1]
	top.List = append(top.List, diag.Suggest{Code: code, Span: span, Parents: f.chain})
}

func (f *frames) addExpect(code diag.Code, span source.Span) {
	f.fn("expect")
	top := &f.expect[len(f.expect)-1]
	top.List = append(top.List, diag.Expect{Code: code, Span: span, Parents: f.chain})
}

// stash retires err into the current frames: its own code becomes an Expect
// hint and its Expect and Suggest hints move over. Raw matcher hints are
// dropped.
func (f *frames) stash(err *diag.ParserError) {
	if err == nil {
		contractPanic("stash of nil error")
	}
	f.addExpect(err.Code, err.Span)
	exp := &f.expect[len(f.expect)-1]
	sug := &f.suggest[len(f.suggest)-1]
	for _, h := range err.Hints {
		switch h := h.(type) {
		case diag.Expect:
			exp.List = append(exp.List, h)
		case diag.Suggest:
			sug.List = append(sug.List, h)
		}
	}
}

// see records a fresh error's code once, in the frame that first observes it.
// Sentinel codes say nothing about the grammar, so the rule's own code is
// recorded in their place.
func (f *frames) see(err *diag.ParserError) {
	if err.Seen {
		return
	}
	err.Seen = true
	code := err.Code
	if code.IsSpecial() {
		code = f.fn("err")
	}
	f.addExpect(code, err.Span)
}

func (f *frames) popExpect(usage Usage) ExpectFrame {
	f.fn("pop expect")
	top := f.expect[len(f.expect)-1]
	f.expect = f.expect[:len(f.expect)-1]
	top.Usage = usage
	return top
}

// popSuggest runs after popExpect, so only the suggest stack is checked.
func (f *frames) popSuggest(usage Usage) SuggestFrame {
	if len(f.suggest) == 0 {
		contractPanic("pop suggest without enter")
	}
	top := f.suggest[len(f.suggest)-1]
	f.suggest = f.suggest[:len(f.suggest)-1]
	top.Usage = usage
	return top
}

// bubble merges the suggestions of a successful rule into the enclosing
// frame, or into the residual list when the rule was the outermost one.
func (f *frames) bubble(list []diag.Suggest) {
	if len(list) == 0 {
		return
	}
	if n := len(f.suggest); n > 0 {
		f.suggest[n-1].List = append(f.suggest[n-1].List, list...)
		return
	}
	f.residual = append(f.residual, list...)
}

func (f *frames) popFunc() {
	if f.chain.Empty() {
		contractPanic("exit without enter")
	}
	f.chain = f.chain.Pop()
}

func (f *frames) depth() int {
	return f.chain.Len()
}

// balanced reports whether the three stacks agree on the depth.
func (f *frames) balanced() bool {
	d := f.chain.Len()
	return len(f.expect) == d && len(f.suggest) == d
}
