package diag

import (
	"errors"
	"fmt"
	"strings"

	"parsetrace/internal/source"
)

// shortExcerpt is the excerpt width used by Error().
const shortExcerpt = 20

// ParserError is the failure value every parser returns. Code names the rule
// that failed at Span; Hints carries the expectations, suggestions and raw
// matcher failures collected on the way out.
type ParserError struct {
	Code  Code
	Span  source.Span
	Seen  bool // the tracer has already recorded Code as an Expect hint
	Hints []Hint

	cause error
}

func New(code Code, span source.Span) *ParserError {
	return &ParserError{Code: code, Span: span}
}

// NewSuggest creates an error that also suggests its own code at span.
func NewSuggest(code Code, span source.Span) *ParserError {
	return &ParserError{
		Code:  code,
		Span:  span,
		Hints: []Hint{Suggest{Code: code, Span: span}},
	}
}

// NewRawMatch creates an error carrying the matcher failure that caused it.
func NewRawMatch(code Code, kind MatchKind, span source.Span) *ParserError {
	return &ParserError{
		Code:  code,
		Span:  span,
		Hints: []Hint{RawMatch{Kind: kind, Span: span}},
	}
}

// IncompleteAt reports unparsed input starting at rest.
func IncompleteAt(rest source.Span) *ParserError {
	return New(Incomplete, rest)
}

// FromError wraps a failure from outside the parser (number conversion,
// semantic checks) so it travels as a ParserError. The original error stays
// reachable through errors.Is/As.
func FromError(code Code, span source.Span, cause error) *ParserError {
	return &ParserError{Code: code, Span: span, cause: cause}
}

// AsParserError extracts a *ParserError from err. Errors of any other kind are
// wrapped with code MatchError at span.
func AsParserError(err error, span source.Span) *ParserError {
	if err == nil {
		return nil
	}
	var perr *ParserError
	if errors.As(err, &perr) {
		return perr
	}
	return FromError(MatchError, span, err)
}

// IntoCode relabels the error. The previous code is kept as an Expect hint at
// the error span so the relabel history stays queryable.
func (e *ParserError) IntoCode(code Code) *ParserError {
	e.Hints = append(e.Hints, Expect{Code: e.Code, Span: e.Span})
	e.Code = code
	return e
}

func (e *ParserError) IsSpecial() bool {
	return e.Code.IsSpecial()
}

// IsFatal reports whether the error stems from a fatal mismatch, either
// directly or through a relabelled MatchFatal.
func (e *ParserError) IsFatal() bool {
	return e.Code == MatchFatal || e.IsExpected(MatchFatal)
}

// IsParser reports whether the code names a grammar rule.
func (e *ParserError) IsParser() bool {
	return !e.Code.IsSpecial()
}

// IsKind reports whether any raw matcher failure of the given kind is attached.
func (e *ParserError) IsKind(kind MatchKind) bool {
	for _, h := range e.Hints {
		if r, ok := h.(RawMatch); ok && r.Kind == kind {
			return true
		}
	}
	return false
}

// IsExpected reports whether any Expect hint carries code.
func (e *ParserError) IsExpected(code Code) bool {
	for _, h := range e.Hints {
		if x, ok := h.(Expect); ok && x.Code == code {
			return true
		}
	}
	return false
}

// IsExpectedAfter reports whether, among the Expect hints in order, one with
// parent is immediately followed by one with code. That is the trace IntoCode
// leaves when parent was relabelled to code.
func (e *ParserError) IsExpectedAfter(code, parent Code) bool {
	expects := e.Expects()
	for i := 1; i < len(expects); i++ {
		if expects[i-1].Code == parent && expects[i].Code == code {
			return true
		}
	}
	return false
}

func (e *ParserError) RawMatches() []RawMatch {
	return HintsOf[RawMatch](e.Hints)
}

func (e *ParserError) Expects() []Expect {
	return HintsOf[Expect](e.Hints)
}

func (e *ParserError) Suggests() []Suggest {
	return HintsOf[Suggest](e.Hints)
}

func (e *ParserError) AppendExpect(exp ...Expect) {
	for _, x := range exp {
		e.Hints = append(e.Hints, x)
	}
}

func (e *ParserError) AppendSuggest(sug ...Suggest) {
	for _, s := range sug {
		e.Hints = append(e.Hints, s)
	}
}

// AddSuggest appends a suggestion without a parent chain.
func (e *ParserError) AddSuggest(code Code, span source.Span) {
	e.Hints = append(e.Hints, Suggest{Code: code, Span: span})
}

func (e *ParserError) ExpectByOffset() []Group[Expect] {
	return GroupByOffset(e.Expects())
}

func (e *ParserError) ExpectByLine() []Group[Expect] {
	return GroupByLine(e.Expects())
}

func (e *ParserError) SuggestByOffset() []Group[Suggest] {
	return GroupByOffset(e.Suggests())
}

func (e *ParserError) SuggestByLine() []Group[Suggest] {
	return GroupByLine(e.Suggests())
}

// Error renders `Code expects A:"..." B:"..." for span 12 "..."`.
func (e *ParserError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s expects", e.Code)
	for _, x := range e.Expects() {
		fmt.Fprintf(&b, " %s:%q", x.Code, source.Excerpt(x.Span, shortExcerpt))
	}
	fmt.Fprintf(&b, " for span %d %q", e.Span.Offset(), source.Excerpt(e.Span, shortExcerpt))
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *ParserError) Unwrap() error {
	return e.cause
}
