// Package diag defines the error and hint model shared by parsers, the tracer
// and the rendering layer.
//
// # Data model
//
// ParserError is the central record. It contains:
//
//   - Code – the grammar rule (or reserved Sentinel) that failed.
//   - Span – where it failed.
//   - Seen – set once the tracer has recorded Code as an Expect hint.
//   - Hints – RawMatch, Expect and Suggest entries in the order they were
//     collected.
//
// Expect and Suggest carry the rule call stack at the time they were recorded
// as a Chain. Chains are persistent: a recorded chain is never modified, and
// all hints recorded inside one rule share the same links.
//
// # Codes
//
// Grammars declare their own comparable code type implementing Code. The
// reserved codes MatchError, MatchFatal and Incomplete are of type Sentinel
// and report IsSpecial.
//
// # Queries
//
// IsExpected, IsExpectedAfter and IsKind answer the questions grammar rules ask
// when they decide how to relabel a failure. ExpectByOffset, ExpectByLine,
// SuggestByOffset and SuggestByLine group hints for display: groups come in
// descending source order, hints inside a group in insertion order.
//
// Package diag does no formatting beyond Error() and FormatGolden; rendering
// lives in internal/render.
package diag
