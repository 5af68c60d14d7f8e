package source

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"fortio.org/safecast"
	"github.com/rivo/uniseg"
)

// ErrSpanContract is wrapped by the panic raised when a span operation is
// called with arguments that break its preconditions.
var ErrSpanContract = errors.New("source: span contract violated")

// Span is a zero-copy cursor into a source buffer. It remembers the whole
// buffer, the byte offset and length of its fragment and the 1-based line the
// fragment starts on. Spans are values; every operation returns a new Span
// over the same buffer.
type Span struct {
	buf  string // whole buffer, shared
	off  int    // byte offset of the fragment
	n    int    // fragment length in bytes
	line uint32 // 1-based line of buf[off]
}

// New returns a span covering all of text, at offset 0 on line 1.
func New(text string) Span {
	return Span{buf: text, n: len(text), line: 1}
}

func (s Span) Offset() int {
	return s.off
}

func (s Span) Line() uint32 {
	return s.line
}

func (s Span) Len() int {
	return s.n
}

func (s Span) Empty() bool {
	return s.n == 0
}

// End is the byte offset just past the fragment.
func (s Span) End() int {
	return s.off + s.n
}

// Fragment returns the text covered by the span.
func (s Span) Fragment() string {
	return s.buf[s.off : s.off+s.n]
}

// Column returns the 1-based byte column of the span start.
func (s Span) Column() int {
	return s.off - s.lineStart() + 1
}

// GraphemeColumn returns the 1-based column counted in user-perceived
// characters, which is what a caret under the source line has to use.
func (s Span) GraphemeColumn() int {
	return uniseg.GraphemeClusterCount(s.buf[s.lineStart():s.off]) + 1
}

func (s Span) lineStart() int {
	return strings.LastIndexByte(s.buf[:s.off], '\n') + 1
}

// Split cuts the fragment after n bytes and returns the remainder and the
// head, in that order. The remainder's line accounts for the newlines
// consumed by the head.
func (s Span) Split(n int) (rest, head Span) {
	if n < 0 || n > s.n {
		panic(fmt.Errorf("%w: split at %d outside fragment of length %d", ErrSpanContract, n, s.n))
	}
	head = Span{buf: s.buf, off: s.off, n: n, line: s.line}
	rest = Span{buf: s.buf, off: s.off + n, n: s.n - n, line: addLines(s.line, head.Fragment())}
	return rest, head
}

// Take returns the first n bytes of the fragment.
func (s Span) Take(n int) Span {
	_, head := s.Split(n)
	return head
}

// Skip drops the first n bytes of the fragment.
func (s Span) Skip(n int) Span {
	rest, _ := s.Split(n)
	return rest
}

// Equal reports whether both spans cover the same region of the same buffer.
func (s Span) Equal(other Span) bool {
	return SameBuffer(s, other) && s.off == other.off && s.n == other.n && s.line == other.line
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d %q", s.off, s.line, s.Fragment())
}

// SameBuffer reports whether a and b were cut from the same buffer. The
// buffers are compared by identity, not by content.
func SameBuffer(a, b Span) bool {
	if len(a.buf) != len(b.buf) {
		return false
	}
	if len(a.buf) == 0 {
		return true
	}
	return unsafe.StringData(a.buf) == unsafe.StringData(b.buf)
}

// Union returns the span that starts at a and reaches through the end of b.
// Both spans must come from the same buffer and a must not start after b;
// anything else panics with ErrSpanContract.
func Union(a, b Span) Span {
	if !SameBuffer(a, b) {
		panic(fmt.Errorf("%w: union of spans from different buffers", ErrSpanContract))
	}
	if a.off > b.off {
		panic(fmt.Errorf("%w: union out of order (offset %d after %d)", ErrSpanContract, a.off, b.off))
	}
	return Span{
		buf:  a.buf,
		off:  a.off,
		n:    (b.off - a.off) + b.n,
		line: a.line,
	}
}

// UnionOpt is Union for a leading element that may not have matched. A nil a
// yields b unchanged.
func UnionOpt(a *Span, b Span) Span {
	if a == nil {
		return b
	}
	return Union(*a, b)
}

// Origin returns a span over the whole buffer s was cut from.
func Origin(s Span) Span {
	return New(s.buf)
}

func addLines(line uint32, text string) uint32 {
	n, err := safecast.Conv[uint32](strings.Count(text, "\n"))
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	return line + n
}
