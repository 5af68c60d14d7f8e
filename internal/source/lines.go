package source

import (
	"iter"
	"slices"
	"strings"
)

// Direction selects which neighbours ContextLines walks to.
type Direction uint8

const (
	Before Direction = iota + 1 // lines preceding the span
	After                       // lines following the span
)

func (d Direction) String() string {
	switch d {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "unknown"
	}
}

// ContextLines yields the line containing s and up to n neighbouring lines in
// the given direction, in source order. Each yielded span covers one line
// without its terminating newline.
func ContextLines(s Span, n int, dir Direction) iter.Seq[Span] {
	switch dir {
	case Before:
		return slices.Values(LinesBefore(s, n))
	case After:
		return slices.Values(LinesAfter(s, n))
	default:
		return func(func(Span) bool) {}
	}
}

// LinesBefore returns up to n lines before the line holding s, followed by
// that line itself. Fewer lines come back near the start of the buffer.
func LinesBefore(s Span, n int) []Span {
	start := s.lineStart()
	out := make([]Span, 0, n+1)
	out = append(out, Span{buf: s.buf, off: start, n: lineLen(s.buf, start), line: s.line})

	pos, line := start, s.line
	for i := 0; i < n && pos > 0 && line > 1; i++ {
		// buf[pos-1] is the newline ending the previous line.
		prevEnd := pos - 1
		prevStart := strings.LastIndexByte(s.buf[:prevEnd], '\n') + 1
		line--
		out = append(out, Span{buf: s.buf, off: prevStart, n: prevEnd - prevStart, line: line})
		pos = prevStart
	}

	slices.Reverse(out)
	return out
}

// LinesAfter returns the line holding s followed by up to n more lines. A
// trailing newline at the end of the buffer does not open another line.
func LinesAfter(s Span, n int) []Span {
	out := make([]Span, 0, n+1)
	pos, line := s.lineStart(), s.line
	for i := 0; i <= n; i++ {
		if i > 0 && pos >= len(s.buf) {
			break
		}
		size := lineLen(s.buf, pos)
		out = append(out, Span{buf: s.buf, off: pos, n: size, line: line})
		if pos+size >= len(s.buf) {
			break
		}
		pos += size + 1
		line++
	}
	return out
}

func lineLen(buf string, start int) int {
	if end := strings.IndexByte(buf[start:], '\n'); end >= 0 {
		return end
	}
	return len(buf) - start
}
