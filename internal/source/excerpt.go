package source

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

var excerptEscaper = strings.NewReplacer(
	"\\", `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Excerpt renders the span fragment on a single line, escaping line breaks
// and tabs, and cuts it to at most max display columns followed by "...".
// A non-positive max disables truncation.
func Excerpt(s Span, max int) string {
	text := excerptEscaper.Replace(s.Fragment())
	if max <= 0 || runewidth.StringWidth(text) <= max {
		return text
	}
	return runewidth.Truncate(text, max, "") + "..."
}
