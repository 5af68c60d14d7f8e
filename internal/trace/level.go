package trace

import (
	"fmt"
	"strings"
)

// Level controls which events reach a Sink. The in-memory log of the full
// tracer always keeps everything.
type Level uint8

const (
	LevelOff    Level = iota // nothing
	LevelFrames              // enter, ok, err, exit
	LevelHints               // frames plus steps and resolved hint frames
	LevelDebug               // everything including debug notes
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelFrames:
		return "frames"
	case LevelHints:
		return "hints"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "frames":
		return LevelFrames, nil
	case "hints":
		return LevelHints, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|frames|hints|debug)", s)
	}
}

// ShouldEmit returns true if events of the given kind pass at this level.
func (l Level) ShouldEmit(kind Kind) bool {
	switch l {
	case LevelOff:
		return false
	case LevelFrames:
		return kind == KindEnter || kind == KindOk || kind == KindErr || kind == KindExit
	case LevelHints:
		return kind != KindDebug
	case LevelDebug:
		return true
	}
	return false
}
