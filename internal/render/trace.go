package render

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// Trace writes the events of a full tracer's log as an indented tree, one
// line per event. Frames still open when the log ends are listed after it.
func Trace(w io.Writer, t *trace.CTracer, filter trace.Filter, opts Options) error {
	st := newStyles(w, opts.Color)
	width := opts.width().Excerpt()
	var b strings.Builder
	writeEvents(&b, st, t.Events(filter), width)

	exp, sug := t.Frames()
	if len(exp) > 0 {
		b.WriteString(st.err("open frames:"))
		b.WriteByte('\n')
		writeFrames(&b, st, exp, sug)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeEvents(b *strings.Builder, st styles, events iter.Seq[*trace.Event], width int) {
	for ev := range events {
		fmt.Fprintf(b, "%s %s", st.dim(fmt.Sprintf("%5d", ev.Seq)), indent(ev.Depth()))
		name := st.code(codeName(ev.Func))
		switch ev.Kind {
		case trace.KindEnter:
			fmt.Fprintf(b, "%s %s \"%s\"", st.loc("\u2192"), name, source.Excerpt(ev.Span, width))
		case trace.KindExit:
			fmt.Fprintf(b, "%s %s", st.dim("\u2190"), name)
		case trace.KindStep:
			fmt.Fprintf(b, "%s %s %s \"%s\"", st.dim("\u2022"), name, ev.Step, source.Excerpt(ev.Span, width))
		case trace.KindDebug:
			fmt.Fprintf(b, "%s %s %s", st.dim("#"), name, ev.Detail)
		case trace.KindOk:
			fmt.Fprintf(b, "%s %s \"%s\" rest \"%s\"", st.ok("\u2713"), name,
				source.Excerpt(ev.Span, width), source.Excerpt(ev.Rest, width))
		case trace.KindErr:
			fmt.Fprintf(b, "%s %s %s", st.err("\u2717"), name, ev.Detail)
		case trace.KindExpect:
			fmt.Fprintf(b, "%s %s %s", st.expect("\u2026 expect"), name, ev.Usage)
			for _, x := range ev.Expect {
				fmt.Fprintf(b, " %s@%d", st.code(x.Code.String()), x.Span.Offset())
			}
		case trace.KindSuggest:
			fmt.Fprintf(b, "%s %s %s", st.suggest("\u2026 suggest"), name, ev.Usage)
			for _, s := range ev.Suggest {
				fmt.Fprintf(b, " %s@%d", st.code(s.Code.String()), s.Span.Offset())
			}
		}
		b.WriteByte('\n')
	}
}

func codeName(c diag.Code) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

func indent(depth int) string {
	if depth <= 1 {
		return ""
	}
	return strings.Repeat("  ", depth-1)
}

func writeFrames(b *strings.Builder, st styles, exp []trace.ExpectFrame, sug []trace.SuggestFrame) {
	for i, f := range exp {
		fmt.Fprintf(b, "  %s%s", indent(i+1), st.code(f.Func.String()))
		for _, x := range f.List {
			fmt.Fprintf(b, " %s", st.expect(fmt.Sprintf("expect %s@%d", x.Code, x.Span.Offset())))
		}
		if i < len(sug) {
			for _, s := range sug[i].List {
				fmt.Fprintf(b, " %s", st.suggest(fmt.Sprintf("suggest %s@%d", s.Code, s.Span.Offset())))
			}
		}
		b.WriteByte('\n')
	}
}

// Replay writes the frame state of a replay tracer: one line per open rule
// with the hints collected so far, and the residual suggestions.
func Replay(w io.Writer, t *trace.RTracer, opts Options) error {
	st := newStyles(w, opts.Color)
	var b strings.Builder
	exp, sug := t.Frames()
	if len(exp) == 0 {
		b.WriteString(st.dim("no open frames"))
		b.WriteByte('\n')
	} else {
		writeFrames(&b, st, exp, sug)
	}
	for _, s := range t.Suggestions() {
		fmt.Fprintf(&b, "%s %s at %s\n", st.suggest("residual suggest"), st.code(s.Code.String()), location(s.Span))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Records writes a decoded event log. The output matches Trace except that
// spans are shown by offset, since the input buffer is gone.
func Records(w io.Writer, log *trace.LogFile, opts Options) error {
	st := newStyles(w, opts.Color)
	width := opts.width().Excerpt()
	var b strings.Builder
	if log.Input != "" {
		fmt.Fprintf(&b, "%s %s\n", st.loc("log of"), log.Input)
	}
	for i := range log.Records {
		r := &log.Records[i]
		fmt.Fprintf(&b, "%s %s", st.dim(fmt.Sprintf("%5d", r.Seq)), indent(r.Depth()))
		name := st.code(r.Func)
		text := excerpt(r.Text, width)
		switch r.Kind {
		case trace.KindEnter:
			fmt.Fprintf(&b, "%s %s %d:%d \"%s\"", st.loc("\u2192"), name, r.Line, r.Offset, text)
		case trace.KindExit:
			fmt.Fprintf(&b, "%s %s", st.dim("\u2190"), name)
		case trace.KindStep:
			fmt.Fprintf(&b, "%s %s %s @%d", st.dim("\u2022"), name, r.Step, r.Offset)
		case trace.KindDebug:
			fmt.Fprintf(&b, "%s %s %s", st.dim("#"), name, r.Detail)
		case trace.KindOk:
			fmt.Fprintf(&b, "%s %s \"%s\" rest @%d", st.ok("\u2713"), name, text, r.Rest)
		case trace.KindErr:
			fmt.Fprintf(&b, "%s %s %s", st.err("\u2717"), name, r.Detail)
		case trace.KindExpect:
			fmt.Fprintf(&b, "%s %s %s", st.expect("\u2026 expect"), name, r.Usage)
			for _, h := range r.Expect {
				fmt.Fprintf(&b, " %s@%d", st.code(h.Code), h.Offset)
			}
		case trace.KindSuggest:
			fmt.Fprintf(&b, "%s %s %s", st.suggest("\u2026 suggest"), name, r.Usage)
			for _, h := range r.Suggest {
				fmt.Fprintf(&b, " %s@%d", st.code(h.Code), h.Offset)
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func excerpt(text string, width int) string {
	return source.Excerpt(source.New(text), width)
}
