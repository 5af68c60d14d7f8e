package trace

import (
	"encoding/json"
	"fmt"
	"strings"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatText   Format = iota // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatNDJSON:
		return "ndjson"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatText, fmt.Errorf("invalid trace format: %q (expected: text|ndjson)", s)
	}
}

// excerptWidth bounds the fragments written by the text format.
const excerptWidth = 20

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	default:
		return formatText(ev)
	}
}

type jsonHint struct {
	Code   string `json:"code"`
	Offset int    `json:"offset"`
	Line   uint32 `json:"line"`
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Seq     uint64     `json:"seq"`
		Kind    string     `json:"kind"`
		Func    string     `json:"func"`
		Parents []string   `json:"parents,omitempty"`
		Offset  int        `json:"offset"`
		Line    uint32     `json:"line"`
		Text    string     `json:"text,omitempty"`
		Rest    *int       `json:"rest,omitempty"`
		Step    string     `json:"step,omitempty"`
		Detail  string     `json:"detail,omitempty"`
		Usage   string     `json:"usage,omitempty"`
		Expect  []jsonHint `json:"expect,omitempty"`
		Suggest []jsonHint `json:"suggest,omitempty"`
	}

	j := jsonEvent{
		Seq:     ev.Seq,
		Kind:    ev.Kind.String(),
		Func:    codeName(ev.Func),
		Parents: chainNames(ev.Parents),
		Offset:  ev.Span.Offset(),
		Line:    ev.Span.Line(),
		Text:    source.Excerpt(ev.Span, excerptWidth),
		Step:    ev.Step,
		Detail:  ev.Detail,
	}
	switch ev.Kind {
	case KindOk:
		rest := ev.Rest.Offset()
		j.Rest = &rest
	case KindExpect, KindSuggest:
		j.Usage = ev.Usage.String()
	case KindDebug, KindExit:
		j.Text = ""
	}
	for _, x := range ev.Expect {
		j.Expect = append(j.Expect, jsonHint{Code: codeName(x.Code), Offset: x.Span.Offset(), Line: x.Span.Line()})
	}
	for _, s := range ev.Suggest {
		j.Suggest = append(j.Suggest, jsonHint{Code: codeName(s.Code), Offset: s.Span.Offset(), Line: s.Span.Line()})
	}

	data, _ := json.Marshal(j)
	data = append(data, '\n')
	return data
}

// formatText formats an event as human-readable text.
// Format: seq [indent]arrow func details
func formatText(ev *Event) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%6d ", ev.Seq)
	if d := ev.Depth(); d > 1 {
		sb.WriteString(strings.Repeat("  ", d-1))
	}

	switch ev.Kind {
	case KindEnter:
		sb.WriteString("\u2192 ") // →
	case KindExit:
		sb.WriteString("\u2190 ") // ←
	case KindOk:
		sb.WriteString("\u2713 ") // ✓
	case KindErr:
		sb.WriteString("\u2717 ") // ✗
	case KindStep:
		sb.WriteString("\u2022 ") // •
	case KindDebug:
		sb.WriteString("# ")
	case KindExpect, KindSuggest:
		sb.WriteString("\u2026 ") // …
	}
	sb.WriteString(codeName(ev.Func))

	switch ev.Kind {
	case KindEnter:
		fmt.Fprintf(&sb, " %q", source.Excerpt(ev.Span, excerptWidth))
	case KindStep:
		fmt.Fprintf(&sb, " %s %q", ev.Step, source.Excerpt(ev.Span, excerptWidth))
	case KindDebug:
		sb.WriteString(" ")
		sb.WriteString(ev.Detail)
	case KindOk:
		fmt.Fprintf(&sb, " %q rest %q", source.Excerpt(ev.Span, excerptWidth), source.Excerpt(ev.Rest, excerptWidth))
	case KindErr:
		sb.WriteString(" ")
		sb.WriteString(ev.Detail)
	case KindExpect:
		fmt.Fprintf(&sb, " expect %s", ev.Usage)
		for _, x := range ev.Expect {
			fmt.Fprintf(&sb, " %s@%d", codeName(x.Code), x.Span.Offset())
		}
	case KindSuggest:
		fmt.Fprintf(&sb, " suggest %s", ev.Usage)
		for _, s := range ev.Suggest {
			fmt.Fprintf(&sb, " %s@%d", codeName(s.Code), s.Span.Offset())
		}
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}

func codeName(c diag.Code) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

func chainNames(c diag.Chain) []string {
	codes := c.Codes()
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = code.String()
	}
	return out
}
