package diag

// Code identifies a grammar rule. Grammars declare their own code type and
// implement Code on it; the dynamic value must be comparable because hints are
// matched against codes with ==.
type Code interface {
	String() string
	// IsSpecial reports whether the code is one of the reserved sentinels
	// rather than a grammar rule.
	IsSpecial() bool
}

// Sentinel is the code type of the reserved non-grammar codes.
type Sentinel uint8

const (
	// MatchError marks a recoverable mismatch reported by an elementary matcher.
	MatchError Sentinel = iota + 1
	// MatchFatal marks a mismatch no enclosing alternative may recover from.
	MatchFatal
	// Incomplete marks input left over after a complete parse.
	Incomplete
)

func (s Sentinel) String() string {
	switch s {
	case MatchError:
		return "MatchError"
	case MatchFatal:
		return "MatchFatal"
	case Incomplete:
		return "Incomplete"
	default:
		return "Sentinel(?)"
	}
}

func (Sentinel) IsSpecial() bool { return true }

// MatchKind names the elementary matcher that failed.
type MatchKind uint8

const (
	KindTag MatchKind = iota + 1
	KindChar
	KindOneOf
	KindDigit
	KindAlpha
	KindSpace
	KindTakeWhile
	KindEof
	KindVerify
)

var matchKindNames = [...]string{
	KindTag:       "Tag",
	KindChar:      "Char",
	KindOneOf:     "OneOf",
	KindDigit:     "Digit",
	KindAlpha:     "Alpha",
	KindSpace:     "Space",
	KindTakeWhile: "TakeWhile",
	KindEof:       "Eof",
	KindVerify:    "Verify",
}

func (k MatchKind) String() string {
	if int(k) < len(matchKindNames) && matchKindNames[k] != "" {
		return matchKindNames[k]
	}
	return "MatchKind(?)"
}
