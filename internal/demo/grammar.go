package demo

import (
	"fmt"
	"slices"
	"strings"

	"parsetrace/internal/diag"
	"parsetrace/internal/parser"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// Grammar is a named top-level rule with its value type erased, so the
// driver and the CLI can run any of them.
type Grammar struct {
	Name    string
	Summary string
	Start   diag.Code
	run     func(t trace.Tracer, in source.Span, opts parser.Options) parser.Result[any]
}

// Run parses in with the grammar's start rule.
func (g Grammar) Run(t trace.Tracer, in source.Span, opts parser.Options) parser.Result[any] {
	return g.run(t, in, opts)
}

func erase[O any](p parser.Parser[O]) func(trace.Tracer, source.Span, parser.Options) parser.Result[any] {
	return func(t trace.Tracer, in source.Span, opts parser.Options) parser.Result[any] {
		res := parser.Run(t, p, in, opts)
		out := parser.Result[any]{Rest: res.Rest, Err: res.Err, Suggestions: res.Suggestions}
		if res.OK() {
			out.Value = res.Value
		}
		return out
	}
}

var grammars = map[string]Grammar{
	"a":        {Name: "a", Summary: "the terminal A", Start: TerminalA, run: erase[Token](ParseA)},
	"single-a": {Name: "single-a", Summary: "A followed by end of input", Start: SingleA, run: erase[Token](ParseSingleA)},
	"nt1":      {Name: "nt1", Summary: "A B", Start: NonTerminal1, run: erase[Pair](ParseNonTerminal1)},
	"nt2":      {Name: "nt2", Summary: "A? B C", Start: NonTerminal2, run: erase[Triple](ParseNonTerminal2)},
	"nt3":      {Name: "nt3", Summary: "A A (B | C)", Start: NonTerminal3, run: erase[Branch](ParseNonTerminal3)},
	"calc":     {Name: "calc", Summary: "integer arithmetic with + - * / and parentheses", Start: Calc, run: erase(CalcRule())},
}

// DefaultGrammar is used when no grammar is configured.
const DefaultGrammar = "calc"

// Names lists the registered grammars in sorted order.
func Names() []string {
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the grammar registered under name.
func Lookup(name string) (Grammar, error) {
	if g, ok := grammars[strings.ToLower(strings.TrimSpace(name))]; ok {
		return g, nil
	}
	return Grammar{}, fmt.Errorf("unknown grammar %q (want one of %s)", name, strings.Join(Names(), ", "))
}
