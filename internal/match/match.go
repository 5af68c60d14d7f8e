// Package match provides elementary matchers over source spans. A matcher
// either consumes a prefix of its input and returns the remainder and the
// matched token, or reports a Failure. Matchers know nothing about grammar
// rules or tracers.
package match

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// Failure is a raw mismatch. Fatal failures must not be recovered by an
// enclosing alternative.
type Failure struct {
	Kind  diag.MatchKind
	Span  source.Span
	Fatal bool
}

func (f *Failure) Error() string {
	sev := "mismatch"
	if f.Fatal {
		sev = "fatal mismatch"
	}
	return fmt.Sprintf("%s %s at %d", f.Kind, sev, f.Span.Offset())
}

// ParserError converts the failure into a sentinel parser error carrying a
// RawMatch hint.
func (f *Failure) ParserError() *diag.ParserError {
	code := diag.MatchError
	if f.Fatal {
		code = diag.MatchFatal
	}
	return diag.NewRawMatch(code, f.Kind, f.Span)
}

// WithCode converts the failure into a parser error for a grammar rule. A
// fatal failure keeps MatchFatal as an archived Expect hint, so IsFatal still
// holds after the relabel.
func (f *Failure) WithCode(code diag.Code) *diag.ParserError {
	if f.Fatal {
		return f.ParserError().IntoCode(code)
	}
	return diag.NewRawMatch(code, f.Kind, f.Span)
}

// Func is an elementary matcher.
type Func func(in source.Span) (rest, tok source.Span, fail *Failure)

func mismatch(kind diag.MatchKind, at source.Span) (source.Span, source.Span, *Failure) {
	return at, source.Span{}, &Failure{Kind: kind, Span: at}
}

// Tag matches the literal s.
func Tag(s string) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		if !strings.HasPrefix(in.Fragment(), s) {
			return mismatch(diag.KindTag, in)
		}
		rest, tok := in.Split(len(s))
		return rest, tok, nil
	}
}

// Char matches the single rune c.
func Char(c rune) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		r, size := utf8.DecodeRuneInString(in.Fragment())
		if size == 0 || r != c {
			return mismatch(diag.KindChar, in)
		}
		rest, tok := in.Split(size)
		return rest, tok, nil
	}
}

// OneOf matches one rune contained in set.
func OneOf(set string) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		r, size := utf8.DecodeRuneInString(in.Fragment())
		if size == 0 || !strings.ContainsRune(set, r) {
			return mismatch(diag.KindOneOf, in)
		}
		rest, tok := in.Split(size)
		return rest, tok, nil
	}
}

// prefixLen is the byte length of the longest prefix whose runes satisfy pred.
func prefixLen(text string, pred func(rune) bool) int {
	for i, r := range text {
		if !pred(r) {
			return i
		}
	}
	return len(text)
}

// TakeWhile matches the longest, possibly empty, prefix satisfying pred.
func TakeWhile(pred func(rune) bool) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		rest, tok := in.Split(prefixLen(in.Fragment(), pred))
		return rest, tok, nil
	}
}

// TakeWhile1 is TakeWhile that fails with kind when nothing matches.
func TakeWhile1(kind diag.MatchKind, pred func(rune) bool) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		n := prefixLen(in.Fragment(), pred)
		if n == 0 {
			return mismatch(kind, in)
		}
		rest, tok := in.Split(n)
		return rest, tok, nil
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Digit1 matches one or more ASCII digits.
func Digit1() Func {
	return TakeWhile1(diag.KindDigit, isDigit)
}

// Alpha1 matches one or more letters.
func Alpha1() Func {
	return TakeWhile1(diag.KindAlpha, unicode.IsLetter)
}

// Space0 matches optional white space, line breaks included.
func Space0() Func {
	return TakeWhile(unicode.IsSpace)
}

// Eof matches only the end of input.
func Eof() Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		if !in.Empty() {
			return mismatch(diag.KindEof, in)
		}
		return in, in, nil
	}
}

// Preceded runs first, drops its token and returns the token of second.
func Preceded(first, second Func) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		rest, _, fail := first(in)
		if fail != nil {
			return in, source.Span{}, fail
		}
		return second(rest)
	}
}

// Recognize runs all matchers in sequence and returns the whole consumed
// region as one token.
func Recognize(fns ...Func) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		rest := in
		for _, fn := range fns {
			var fail *Failure
			if rest, _, fail = fn(rest); fail != nil {
				return in, source.Span{}, fail
			}
		}
		return rest, in.Take(rest.Offset() - in.Offset()), nil
	}
}

// Cut turns a mismatch of fn into a fatal one.
func Cut(fn Func) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		rest, tok, fail := fn(in)
		if fail != nil {
			fail.Fatal = true
		}
		return rest, tok, fail
	}
}

// Verify runs fn and fails with KindVerify when check rejects the token.
func Verify(fn Func, check func(tok string) bool) Func {
	return func(in source.Span) (source.Span, source.Span, *Failure) {
		rest, tok, fail := fn(in)
		if fail != nil {
			return rest, tok, fail
		}
		if !check(tok.Fragment()) {
			return mismatch(diag.KindVerify, in)
		}
		return rest, tok, nil
	}
}
