package render

import (
	"fmt"
	"strings"
)

// Width selects how much text the renderers quote from the input.
type Width uint8

const (
	Short Width = iota + 1
	Medium
	Long
)

func (w Width) String() string {
	switch w {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	default:
		return "unknown"
	}
}

// Excerpt is the number of columns quoted from a span at this width.
func (w Width) Excerpt() int {
	switch w {
	case Short:
		return 20
	case Long:
		return 60
	default:
		return 40
	}
}

// ParseWidth parses a width name.
func ParseWidth(s string) (Width, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "s":
		return Short, nil
	case "medium", "m", "":
		return Medium, nil
	case "long", "l":
		return Long, nil
	default:
		return 0, fmt.Errorf("unknown width %q (want short, medium or long)", s)
	}
}

// Options configures rendering.
type Options struct {
	Width   Width
	Context int    // lines of source shown around the error in Long mode
	Color   bool
	Path    string // display name of the input, "input" when empty
}

func (o Options) path() string {
	if o.Path == "" {
		return "input"
	}
	return o.Path
}

func (o Options) width() Width {
	if o.Width == 0 {
		return Medium
	}
	return o.Width
}
