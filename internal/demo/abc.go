package demo

import (
	"fmt"
	"strconv"
	"strings"

	"parsetrace/internal/diag"
	"parsetrace/internal/match"
	"parsetrace/internal/parser"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// Token is a matched terminal.
type Token struct {
	Text string
	Span source.Span
}

func (t Token) String() string { return t.Text }

// Int is a TerminalC value.
type Int struct {
	Value uint32
	Span  source.Span
}

func (i Int) String() string { return strconv.FormatUint(uint64(i.Value), 10) }

type Pair struct {
	A, B Token
	Span source.Span
}

func (p Pair) String() string { return fmt.Sprintf("(%s %s)", p.A, p.B) }

// Triple is NonTerminal2: an optional A, then B and C.
type Triple struct {
	A    *Token
	B    Token
	C    Int
	Span source.Span
}

func (t Triple) String() string {
	a := "-"
	if t.A != nil {
		a = t.A.Text
	}
	return fmt.Sprintf("(%s %s %s)", a, t.B, t.C)
}

// Branch is NonTerminal3: two A terminals followed by either B or C.
type Branch struct {
	A1, A2 Token
	B      *Token
	C      *Int
	Span   source.Span
}

func (b Branch) String() string {
	if b.B != nil {
		return fmt.Sprintf("(%s %s %s)", b.A1, b.A2, b.B)
	}
	return fmt.Sprintf("(%s %s %s)", b.A1, b.A2, b.C)
}

func hasPrefix(lit string) func(source.Span) bool {
	return func(in source.Span) bool {
		return strings.HasPrefix(in.Fragment(), lit)
	}
}

// ParseA matches the terminal "A". A tag mismatch is relabelled as
// TerminalA so it reads as a grammar failure.
var ParseA = parser.Rule[Token]{
	Code: TerminalA,
	Peek: hasPrefix("A"),
	Fn: func(t trace.Tracer, in source.Span) (source.Span, Token, error) {
		t.Enter(TerminalA, in)
		rest, tok, fail := match.Tag("A")(in)
		if fail != nil {
			return trace.Fail[Token](t, fail.WithCode(TerminalA))
		}
		return trace.Ok(t, rest, tok, Token{Text: tok.Fragment(), Span: tok})
	},
}

// ParseB matches "B". Failures keep the matcher's sentinel code; the tracer
// records TerminalB for them.
var ParseB = parser.Rule[Token]{
	Code: TerminalB,
	Peek: hasPrefix("B"),
	Fn: func(t trace.Tracer, in source.Span) (source.Span, Token, error) {
		t.Enter(TerminalB, in)
		rest, tok, fail := match.Tag("B")(in)
		if fail != nil {
			return trace.Fail[Token](t, fail.ParserError())
		}
		return trace.Ok(t, rest, tok, Token{Text: tok.Fragment(), Span: tok})
	},
}

// ParseC matches a decimal number that fits uint32.
var ParseC = parser.Rule[Int]{
	Code: TerminalC,
	Peek: func(in source.Span) bool {
		f := in.Fragment()
		return f != "" && f[0] >= '0' && f[0] <= '9'
	},
	Fn: func(t trace.Tracer, in source.Span) (source.Span, Int, error) {
		t.Enter(TerminalC, in)
		rest, tok, fail := match.Digit1()(in)
		if fail != nil {
			return trace.Fail[Int](t, fail.WithCode(TerminalC))
		}
		v, err := strconv.ParseUint(tok.Fragment(), 10, 32)
		if err != nil {
			return trace.Fail[Int](t, diag.FromError(Integer, tok, err))
		}
		return trace.Ok(t, rest, tok, Int{Value: uint32(v), Span: tok})
	},
}

// ParseEnd matches the end of input.
var ParseEnd = parser.Rule[struct{}]{
	Code: End,
	Peek: func(source.Span) bool { return true },
	Fn: func(t trace.Tracer, in source.Span) (source.Span, struct{}, error) {
		t.Enter(End, in)
		rest, tok, fail := match.Eof()(in)
		if fail != nil {
			return trace.Fail[struct{}](t, fail.WithCode(End))
		}
		return trace.Ok(t, rest, tok, struct{}{})
	},
}

// ParseNonTerminal1 is A B.
var ParseNonTerminal1 = parser.Rule[Pair]{
	Code: NonTerminal1,
	Peek: hasPrefix("A"),
	Fn: func(t trace.Tracer, in source.Span) (source.Span, Pair, error) {
		t.Enter(NonTerminal1, in)
		rest, a, err := ParseA.Parse(t, in)
		if err != nil {
			return trace.Fail[Pair](t, err)
		}
		rest, b, err := ParseB.Parse(t, rest)
		if err != nil {
			return trace.Fail[Pair](t, err)
		}
		span := source.Union(a.Span, b.Span)
		return trace.Ok(t, rest, span, Pair{A: a, B: b, Span: span})
	},
}

// ParseNonTerminal2 is A? B C. A failed A is stashed, so it shows up among
// the hints only when B or C fails afterwards.
var ParseNonTerminal2 = parser.Rule[Triple]{
	Code: NonTerminal2,
	Fn: func(t trace.Tracer, in source.Span) (source.Span, Triple, error) {
		t.Enter(NonTerminal2, in)
		var out Triple

		rest, a, err := ParseA.Parse(t, in)
		if err != nil {
			t.Stash(diag.AsParserError(err, in))
			rest = in
		} else {
			out.A = &a
		}

		rest, out.B, err = ParseB.Parse(t, rest)
		if err != nil {
			return trace.Fail[Triple](t, err)
		}
		rest, out.C, err = ParseC.Parse(t, rest)
		if err != nil {
			return trace.Fail[Triple](t, err)
		}

		var first *source.Span
		if out.A != nil {
			first = &out.A.Span
		}
		out.Span = source.UnionOpt(first, out.C.Span)
		return trace.Ok(t, rest, out.Span, out)
	},
}

// ParseNonTerminal3 is A A (B | C). B is tried first and stashed on failure;
// a failing C ends the rule.
var ParseNonTerminal3 = parser.Rule[Branch]{
	Code: NonTerminal3,
	Peek: hasPrefix("A"),
	Fn: func(t trace.Tracer, in source.Span) (source.Span, Branch, error) {
		t.Enter(NonTerminal3, in)
		var out Branch

		rest, a1, err := ParseA.Parse(t, in)
		if err != nil {
			return trace.Fail[Branch](t, err)
		}
		rest, a2, err := ParseA.Parse(t, rest)
		if err != nil {
			return trace.Fail[Branch](t, err)
		}
		out.A1, out.A2 = a1, a2

		t.Step("B", rest)
		next, b, err := ParseB.Parse(t, rest)
		if err == nil {
			out.B = &b
			out.Span = source.Union(a1.Span, b.Span)
			return trace.Ok(t, next, out.Span, out)
		}
		t.Stash(diag.AsParserError(err, rest))

		t.Step("C", rest)
		rest, c, err := ParseC.Parse(t, rest)
		if err != nil {
			return trace.Fail[Branch](t, err)
		}
		out.C = &c
		out.Span = source.Union(a1.Span, c.Span)
		return trace.Ok(t, rest, out.Span, out)
	},
}

// ParseSingleA is A followed by the end of input.
var ParseSingleA = parser.Rule[Token]{
	Code: SingleA,
	Peek: hasPrefix("A"),
	Fn: func(t trace.Tracer, in source.Span) (source.Span, Token, error) {
		t.Enter(SingleA, in)
		rest, a, err := ParseA.Parse(t, in)
		if err != nil {
			return trace.Fail[Token](t, err)
		}
		rest, _, err = ParseEnd.Parse(t, rest)
		if err != nil {
			return trace.Fail[Token](t, err)
		}
		return trace.Ok(t, rest, a.Span, a)
	},
}
