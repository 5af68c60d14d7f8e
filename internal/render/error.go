// Package render turns parser errors, tracer logs and persisted records into
// terminal text.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// Error writes err in the layout selected by opts.Width:
//
//   - Short: one line with the location, the code and the expected codes.
//   - Medium: the Short line followed by one line per hint.
//   - Long: the failing source line with a caret, context lines and the
//     hints grouped by line.
func Error(w io.Writer, err *diag.ParserError, opts Options) error {
	if err == nil {
		return nil
	}
	st := newStyles(w, opts.Color)
	var b strings.Builder
	switch opts.width() {
	case Short:
		writeHeadline(&b, st, err, opts)
		if codes := expectedCodes(err); len(codes) > 0 {
			fmt.Fprintf(&b, " (expected %s)", st.expect(strings.Join(codes, ", ")))
		}
		b.WriteByte('\n')
	case Long:
		writeLong(&b, st, err, opts)
	default:
		writeHeadline(&b, st, err, opts)
		b.WriteByte('\n')
		writeHints(&b, st, err, opts.width().Excerpt())
	}
	_, werr := io.WriteString(w, b.String())
	return werr
}

func location(s source.Span) string {
	return fmt.Sprintf("%d:%d", s.Line(), s.GraphemeColumn())
}

func writeHeadline(b *strings.Builder, st styles, err *diag.ParserError, opts Options) {
	fmt.Fprintf(b, "%s: %s %s at \"%s\"",
		st.loc(opts.path()+":"+location(err.Span)),
		st.err("error:"),
		st.code(err.Code.String()),
		source.Excerpt(err.Span, opts.width().Excerpt()))
	if cause := errors.Unwrap(err); cause != nil {
		fmt.Fprintf(b, ": %v", cause)
	}
}

// expectedCodes lists the distinct Expect codes in first-seen order.
func expectedCodes(err *diag.ParserError) []string {
	var out []string
	seen := make(map[string]bool)
	for _, x := range err.Expects() {
		if x.Code.IsSpecial() {
			continue
		}
		name := x.Code.String()
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func writeHints(b *strings.Builder, st styles, err *diag.ParserError, width int) {
	for _, h := range err.Hints {
		switch h := h.(type) {
		case diag.RawMatch:
			fmt.Fprintf(b, "  %s %s at %s\n", st.dim("raw"), h.Kind, location(h.Span))
		case diag.Expect:
			fmt.Fprintf(b, "  %s %s at %s \"%s\"", st.expect("expect"), st.code(h.Code.String()), location(h.Span), source.Excerpt(h.Span, width))
			writeParents(b, st, h.Parents)
		case diag.Suggest:
			fmt.Fprintf(b, "  %s %s at %s \"%s\"", st.suggest("suggest"), st.code(h.Code.String()), location(h.Span), source.Excerpt(h.Span, width))
			writeParents(b, st, h.Parents)
		}
	}
}

func writeParents(b *strings.Builder, st styles, parents diag.Chain) {
	if !parents.Empty() {
		b.WriteString(st.dim(" in " + parents.String()))
	}
	b.WriteByte('\n')
}

func writeLong(b *strings.Builder, st styles, err *diag.ParserError, opts Options) {
	fmt.Fprintf(b, "%s: %s %s", st.loc(opts.path()+":"+location(err.Span)), st.err("error:"), st.code(err.Code.String()))
	if cause := errors.Unwrap(err); cause != nil {
		fmt.Fprintf(b, ": %v", cause)
	}
	b.WriteByte('\n')

	before := source.LinesBefore(err.Span, opts.Context)
	after := source.LinesAfter(err.Span, opts.Context)
	last := after[len(after)-1].Line()
	gw := len(strconv.FormatUint(uint64(last), 10))
	blank := st.gutter(strings.Repeat(" ", gw+1) + "|")

	b.WriteString(blank)
	b.WriteByte('\n')
	for _, line := range before {
		writeSourceLine(b, st, line, gw)
	}
	current := before[len(before)-1]
	prefix := current.Take(err.Span.Offset() - current.Offset()).Fragment()
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
	carets := max(1, runewidth.StringWidth(source.Excerpt(err.Span.Take(min(err.Span.Len(), current.End()-err.Span.Offset())), 0)))
	fmt.Fprintf(b, "%s %s%s %s\n", blank, pad, st.caret(strings.Repeat("^", min(carets, opts.width().Excerpt()))), st.code(err.Code.String()))
	for _, line := range after[1:] {
		writeSourceLine(b, st, line, gw)
	}
	b.WriteString(blank)
	b.WriteByte('\n')

	if groups := err.ExpectByLine(); len(groups) > 0 {
		b.WriteString(st.expect("expected:"))
		b.WriteByte('\n')
		for _, g := range groups {
			items := make([]string, 0, len(g.Hints))
			for _, h := range g.Hints {
				items = append(items, hintItem(st, h.Code, h.Span, h.Parents))
			}
			fmt.Fprintf(b, "  line %d: %s\n", g.Key, strings.Join(items, ", "))
		}
	}
	if groups := err.SuggestByLine(); len(groups) > 0 {
		b.WriteString(st.suggest("suggested:"))
		b.WriteByte('\n')
		for _, g := range groups {
			items := make([]string, 0, len(g.Hints))
			for _, h := range g.Hints {
				items = append(items, hintItem(st, h.Code, h.Span, h.Parents))
			}
			fmt.Fprintf(b, "  line %d: %s\n", g.Key, strings.Join(items, ", "))
		}
	}
}

func hintItem(st styles, code diag.Code, span source.Span, parents diag.Chain) string {
	item := fmt.Sprintf("%s@%d", st.code(code.String()), span.GraphemeColumn())
	if top, ok := parents.Top(); ok && top != code {
		item += st.dim(" in " + top.String())
	}
	return item
}

func writeSourceLine(b *strings.Builder, st styles, line source.Span, gw int) {
	num := fmt.Sprintf("%*d |", gw, line.Line())
	fmt.Fprintf(b, "%s %s\n", st.gutter(num), line.Fragment())
}

// Suggestions writes the hints a successful parse passed over, one per line.
func Suggestions(w io.Writer, sugs []diag.Suggest, opts Options) error {
	if len(sugs) == 0 {
		return nil
	}
	st := newStyles(w, opts.Color)
	var b strings.Builder
	for _, s := range sugs {
		fmt.Fprintf(&b, "%s: %s %s may appear at \"%s\"",
			st.loc(opts.path()+":"+location(s.Span)),
			st.suggest("hint:"),
			st.code(s.Code.String()),
			source.Excerpt(s.Span, opts.width().Excerpt()))
		writeParents(&b, st, s.Parents)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
