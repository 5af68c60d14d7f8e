package demo

import (
	"errors"
	"strconv"

	"parsetrace/internal/diag"
	"parsetrace/internal/match"
	"parsetrace/internal/parser"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// ErrDivisionByZero is the cause of a Divisor error.
var ErrDivisionByZero = errors.New("division by zero")

// lexeme skips leading blanks before fn.
func lexeme(fn match.Func) match.Func {
	return match.Preceded(match.Space0(), fn)
}

func peekLexeme(fn match.Func) func(source.Span) bool {
	return func(in source.Span) bool {
		_, _, fail := lexeme(fn)(in)
		return fail == nil
	}
}

// The calc rules reference each other, so they are built by functions
// rather than held in package variables.

// CalcRule parses a whole arithmetic expression followed by optional blanks
// and the end of input.
func CalcRule() parser.Parser[int64] {
	return parser.Rule[int64]{Code: Calc, Fn: parseCalc}
}

func ExprRule() parser.Parser[int64] {
	return parser.Rule[int64]{Code: Expr, Fn: parseExpr}
}

func TermRule() parser.Parser[int64] {
	return parser.Rule[int64]{Code: Term, Fn: parseTerm}
}

func FactorRule() parser.Parser[int64] {
	return parser.Rule[int64]{Code: Factor, Fn: parseFactor}
}

func SignRule() parser.Parser[Token] {
	return parser.Rule[Token]{Code: Sign, Peek: peekLexeme(match.OneOf("+-")), Fn: parseSign}
}

func NumberRule() parser.Parser[int64] {
	return parser.Rule[int64]{Code: Number, Peek: peekLexeme(match.Digit1()), Fn: parseNumber}
}

func ParenRule() parser.Parser[int64] {
	return parser.Rule[int64]{Code: Paren, Peek: peekLexeme(match.Char('(')), Fn: parseParen}
}

func PrimaryRule() parser.Parser[int64] {
	return parser.Alt[int64](Primary, NumberRule(), ParenRule())
}

func parseCalc(t trace.Tracer, in source.Span) (source.Span, int64, error) {
	t.Enter(Calc, in)
	rest, v, err := ExprRule().Parse(t, in)
	if err != nil {
		return trace.Fail[int64](t, err)
	}
	rest, _, fail := lexeme(match.Eof())(rest)
	if fail != nil {
		return trace.Fail[int64](t, fail.WithCode(End))
	}
	return trace.Ok(t, rest, parser.Consumed(in, rest), v)
}

// parseExpr is term (("+" | "-") term)*.
func parseExpr(t trace.Tracer, in source.Span) (source.Span, int64, error) {
	t.Enter(Expr, in)
	rest, acc, err := TermRule().Parse(t, in)
	if err != nil {
		return trace.Fail[int64](t, err)
	}
	for {
		next, op, fail := lexeme(match.OneOf("+-"))(rest)
		if fail != nil {
			break
		}
		t.Step(op.Fragment(), op)
		var rhs int64
		next, rhs, err = TermRule().Parse(t, next)
		if err != nil {
			return trace.Fail[int64](t, err)
		}
		if op.Fragment() == "+" {
			acc += rhs
		} else {
			acc -= rhs
		}
		rest = next
	}
	return trace.Ok(t, rest, parser.Consumed(in, rest), acc)
}

// parseTerm is factor (("*" | "/") factor)*.
func parseTerm(t trace.Tracer, in source.Span) (source.Span, int64, error) {
	t.Enter(Term, in)
	rest, acc, err := FactorRule().Parse(t, in)
	if err != nil {
		return trace.Fail[int64](t, err)
	}
	for {
		next, op, fail := lexeme(match.OneOf("*/"))(rest)
		if fail != nil {
			break
		}
		t.Step(op.Fragment(), op)
		var rhs int64
		start := next
		next, rhs, err = FactorRule().Parse(t, next)
		if err != nil {
			return trace.Fail[int64](t, err)
		}
		if op.Fragment() == "*" {
			acc *= rhs
		} else {
			if rhs == 0 {
				return trace.Fail[int64](t, diag.FromError(Divisor, parser.Consumed(start, next), ErrDivisionByZero))
			}
			acc /= rhs
		}
		rest = next
	}
	return trace.Ok(t, rest, parser.Consumed(in, rest), acc)
}

// parseFactor is sign? primary. A missing sign is offered as a suggestion.
func parseFactor(t trace.Tracer, in source.Span) (source.Span, int64, error) {
	t.Enter(Factor, in)
	rest, sign, signed, err := parser.Maybe(t, SignRule(), in)
	if err != nil {
		return trace.Fail[int64](t, err)
	}
	rest, v, err := PrimaryRule().Parse(t, rest)
	if err != nil {
		return trace.Fail[int64](t, err)
	}
	if signed && sign.Text == "-" {
		v = -v
	}
	return trace.Ok(t, rest, parser.Consumed(in, rest), v)
}

func parseSign(t trace.Tracer, in source.Span) (source.Span, Token, error) {
	t.Enter(Sign, in)
	rest, tok, fail := lexeme(match.OneOf("+-"))(in)
	if fail != nil {
		return trace.Fail[Token](t, fail.WithCode(Sign))
	}
	return trace.Ok(t, rest, tok, Token{Text: tok.Fragment(), Span: tok})
}

func parseNumber(t trace.Tracer, in source.Span) (source.Span, int64, error) {
	t.Enter(Number, in)
	rest, tok, fail := lexeme(match.Digit1())(in)
	if fail != nil {
		return trace.Fail[int64](t, fail.WithCode(Number))
	}
	v, err := strconv.ParseInt(tok.Fragment(), 10, 64)
	if err != nil {
		// The digits matched, so no other alternative can do better.
		return trace.Fail[int64](t, diag.FromError(diag.MatchFatal, tok, err).IntoCode(Integer))
	}
	return trace.Ok(t, rest, tok, v)
}

// parseParen is "(" expr ")". Once the opening parenthesis matched, a
// missing closing one is fatal.
func parseParen(t trace.Tracer, in source.Span) (source.Span, int64, error) {
	t.Enter(Paren, in)
	rest, _, fail := lexeme(match.Char('('))(in)
	if fail != nil {
		return trace.Fail[int64](t, fail.WithCode(Paren))
	}
	rest, v, err := ExprRule().Parse(t, rest)
	if err != nil {
		return trace.Fail[int64](t, err)
	}
	rest, _, fail = lexeme(match.Cut(match.Char(')')))(rest)
	if fail != nil {
		return trace.Fail[int64](t, fail.WithCode(Paren))
	}
	return trace.Ok(t, rest, parser.Consumed(in, rest), v)
}
