// Package demo holds the small grammars the CLI and the tests parse with:
// the abc grammar of single-letter terminals and a calc grammar of integer
// arithmetic.
package demo

// Code names the rules of the demo grammars.
type Code uint8

const (
	TerminalA Code = iota + 1
	TerminalB
	TerminalC
	Integer
	NonTerminal1
	NonTerminal2
	NonTerminal3
	SingleA
	End

	Expr
	Term
	Factor
	Sign
	Primary
	Number
	Paren
	Divisor
	Calc
)

var codeNames = [...]string{
	TerminalA:    "TerminalA",
	TerminalB:    "TerminalB",
	TerminalC:    "TerminalC",
	Integer:      "Integer",
	NonTerminal1: "NonTerminal1",
	NonTerminal2: "NonTerminal2",
	NonTerminal3: "NonTerminal3",
	SingleA:      "SingleA",
	End:          "End",
	Expr:         "Expr",
	Term:         "Term",
	Factor:       "Factor",
	Sign:         "Sign",
	Primary:      "Primary",
	Number:       "Number",
	Paren:        "Paren",
	Divisor:      "Divisor",
	Calc:         "Calc",
}

func (c Code) String() string {
	if int(c) < len(codeNames) && codeNames[c] != "" {
		return codeNames[c]
	}
	return "Code(?)"
}

func (Code) IsSpecial() bool { return false }
