package diag

import (
	"fmt"
	"strings"

	"parsetrace/internal/source"
)

// FormatGolden renders an error into a stable, single-line-per-entry text
// suitable for golden files and for short CLI output. The first line is the
// error itself, every further line one hint in insertion order.
func FormatGolden(err *ParserError) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "error %s %s", err.Code, position(err.Span))
	for _, h := range err.Hints {
		b.WriteByte('\n')
		switch h := h.(type) {
		case RawMatch:
			fmt.Fprintf(&b, "raw %s %s", h.Kind, position(h.Span))
		case Expect:
			fmt.Fprintf(&b, "expect %s %s", h.Code, position(h.Span))
			writeParents(&b, h.Parents)
		case Suggest:
			fmt.Fprintf(&b, "suggest %s %s", h.Code, position(h.Span))
			writeParents(&b, h.Parents)
		}
	}
	return b.String()
}

func position(s source.Span) string {
	return fmt.Sprintf("%d:%d@%d", s.Line(), s.Column(), s.Offset())
}

func writeParents(b *strings.Builder, parents Chain) {
	if parents.Empty() {
		return
	}
	b.WriteString(" in ")
	b.WriteString(parents.String())
}
