package trace

import (
	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindEnter   Kind = iota + 1 // rule entered
	KindStep                    // named step inside a rule
	KindDebug                   // free-form debug note
	KindExpect                  // expect frame resolved
	KindSuggest                 // suggest frame resolved
	KindOk                      // rule matched
	KindErr                     // rule failed
	KindExit                    // rule left, after Ok or Err
)

var kindNames = [...]string{
	KindEnter:   "enter",
	KindStep:    "step",
	KindDebug:   "debug",
	KindExpect:  "expect",
	KindSuggest: "suggest",
	KindOk:      "ok",
	KindErr:     "err",
	KindExit:    "exit",
}

// String returns the string representation of Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Usage tells what happened to a frame's hints when the frame resolved.
type Usage uint8

const (
	UsageTrack  Usage = iota // frame still collecting
	UsageDrop                // discarded on success
	UsageBubble              // merged into the enclosing frame on success
	UsageUse                 // folded into the failing error
)

func (u Usage) String() string {
	switch u {
	case UsageTrack:
		return "track"
	case UsageDrop:
		return "drop"
	case UsageBubble:
		return "bubble"
	case UsageUse:
		return "use"
	default:
		return "unknown"
	}
}

// Event is one entry of the full tracer's log. Which fields are set depends
// on Kind:
//
//   - Enter: Span.
//   - Step: Step, Span.
//   - Debug: Detail.
//   - Expect / Suggest: Usage and the frame content.
//   - Ok: Span (matched) and Rest.
//   - Err: Span, Code and Detail (the error text at the time it passed).
type Event struct {
	Seq     uint64
	Kind    Kind
	Func    diag.Code  // innermost rule
	Parents diag.Chain // rule stack, Func on top
	Span    source.Span
	Rest    source.Span
	Step    string
	Detail  string
	Usage   Usage
	Expect  []diag.Expect
	Suggest []diag.Suggest
	Code    diag.Code // error code, Err only
}

// Depth is the nesting depth of the event, 1 for the outermost rule.
func (ev *Event) Depth() int {
	return ev.Parents.Len()
}
