package diag

import (
	"fmt"

	"parsetrace/internal/source"
)

// Hint is one piece of context attached to a parser error. The set of hint
// types is closed: RawMatch, Expect and Suggest.
type Hint interface {
	At() source.Span
	hint()
}

// RawMatch records the elementary matcher that failed and where.
type RawMatch struct {
	Kind MatchKind
	Span source.Span
}

// Expect records a rule that was required at Span but did not match.
type Expect struct {
	Code    Code
	Span    source.Span
	Parents Chain
}

// Suggest records a rule that could have matched at Span; optional
// constructs leave these behind when they are skipped.
type Suggest struct {
	Code    Code
	Span    source.Span
	Parents Chain
}

func (h RawMatch) At() source.Span { return h.Span }
func (h Expect) At() source.Span   { return h.Span }
func (h Suggest) At() source.Span  { return h.Span }

func (RawMatch) hint() {}
func (Expect) hint()   {}
func (Suggest) hint()  {}

func (h RawMatch) String() string {
	return fmt.Sprintf("raw %s at %d", h.Kind, h.Span.Offset())
}

func (h Expect) String() string {
	return fmt.Sprintf("expect %s at %d", h.Code, h.Span.Offset())
}

func (h Suggest) String() string {
	return fmt.Sprintf("suggest %s at %d", h.Code, h.Span.Offset())
}

// HintsOf filters hints down to one concrete type, keeping their order.
func HintsOf[H Hint](hints []Hint) []H {
	var out []H
	for _, h := range hints {
		if v, ok := h.(H); ok {
			out = append(out, v)
		}
	}
	return out
}
