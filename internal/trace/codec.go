package trace

import (
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"parsetrace/internal/diag"
	"parsetrace/internal/source"
)

// Current schema version - increment when the Record layout changes.
const logSchemaVersion uint16 = 1

// LogFile is the persisted form of an event log.
type LogFile struct {
	Schema  uint16
	Input   string // display name of the parsed input
	Records []Record
}

// Record is an Event detached from its source buffer. Spans are reduced to
// offset, line and text, codes to their names.
type Record struct {
	Seq     uint64
	Kind    Kind
	Func    string
	Parents []string
	Offset  uint32
	Line    uint32
	Text    string
	Rest    uint32
	Step    string
	Detail  string
	Usage   Usage
	Code    string
	Expect  []RecordHint
	Suggest []RecordHint
}

// RecordHint is a detached Expect or Suggest hint.
type RecordHint struct {
	Code    string
	Offset  uint32
	Line    uint32
	Parents []string
}

// Depth mirrors Event.Depth.
func (r *Record) Depth() int {
	return len(r.Parents)
}

// NewRecord detaches ev from its buffer.
func NewRecord(ev *Event) Record {
	r := Record{
		Seq:     ev.Seq,
		Kind:    ev.Kind,
		Func:    codeName(ev.Func),
		Parents: chainNames(ev.Parents),
		Offset:  offset32(ev.Span),
		Line:    ev.Span.Line(),
		Text:    ev.Span.Fragment(),
		Step:    ev.Step,
		Detail:  ev.Detail,
		Usage:   ev.Usage,
	}
	switch ev.Kind {
	case KindOk:
		r.Rest = offset32(ev.Rest)
	case KindErr:
		r.Code = codeName(ev.Code)
	case KindDebug, KindExit:
		r.Text = ""
	}
	for _, x := range ev.Expect {
		r.Expect = append(r.Expect, recordHint(x.Code, x.Span, x.Parents))
	}
	for _, s := range ev.Suggest {
		r.Suggest = append(r.Suggest, recordHint(s.Code, s.Span, s.Parents))
	}
	return r
}

func recordHint(code diag.Code, span source.Span, parents diag.Chain) RecordHint {
	return RecordHint{
		Code:    codeName(code),
		Offset:  offset32(span),
		Line:    span.Line(),
		Parents: chainNames(parents),
	}
}

func offset32(s source.Span) uint32 {
	off, err := safecast.Conv[uint32](s.Offset())
	if err != nil {
		panic(fmt.Errorf("span offset overflow: %w", err))
	}
	return off
}

// Records detaches the tracer's whole log.
func (t *CTracer) Records() []Record {
	out := make([]Record, 0, len(t.log))
	for i := range t.log {
		out = append(out, NewRecord(&t.log[i]))
	}
	return out
}

// WriteLog writes the tracer's log to w as msgpack.
func WriteLog(w io.Writer, input string, t *CTracer) error {
	payload := LogFile{
		Schema:  logSchemaVersion,
		Input:   input,
		Records: t.Records(),
	}
	if err := msgpack.NewEncoder(w).Encode(&payload); err != nil {
		return fmt.Errorf("encode trace log: %w", err)
	}
	return nil
}

// ReadLog reads a log written by WriteLog.
func ReadLog(r io.Reader) (*LogFile, error) {
	var payload LogFile
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode trace log: %w", err)
	}
	if payload.Schema != logSchemaVersion {
		return nil, fmt.Errorf("trace log schema %d not supported (want %d)", payload.Schema, logSchemaVersion)
	}
	return &payload, nil
}
