package diag

import "strings"

// Chain is an immutable snapshot of the rule call stack, innermost code on
// top. Push shares the existing links, so taking a snapshot costs nothing and
// a recorded chain never changes afterwards.
type Chain struct {
	top *link
}

type link struct {
	code  Code
	up    *link
	depth int
}

// Push returns a chain with code on top of c. c itself is left untouched.
func (c Chain) Push(code Code) Chain {
	return Chain{top: &link{code: code, up: c.top, depth: c.Len() + 1}}
}

// Pop returns the chain below the top code. Popping an empty chain returns it
// unchanged.
func (c Chain) Pop() Chain {
	if c.top == nil {
		return c
	}
	return Chain{top: c.top.up}
}

func (c Chain) Len() int {
	if c.top == nil {
		return 0
	}
	return c.top.depth
}

func (c Chain) Empty() bool {
	return c.top == nil
}

// Top returns the innermost code.
func (c Chain) Top() (Code, bool) {
	if c.top == nil {
		return nil, false
	}
	return c.top.code, true
}

// Codes lists the chain outermost first.
func (c Chain) Codes() []Code {
	out := make([]Code, c.Len())
	for l := c.top; l != nil; l = l.up {
		out[l.depth-1] = l.code
	}
	return out
}

func (c Chain) Contains(code Code) bool {
	for l := c.top; l != nil; l = l.up {
		if l.code == code {
			return true
		}
	}
	return false
}

// Same reports whether both chains are the very same snapshot.
func (c Chain) Same(other Chain) bool {
	return c.top == other.top
}

// String renders the chain as "Outer > Inner".
func (c Chain) String() string {
	codes := c.Codes()
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = code.String()
	}
	return strings.Join(parts, " > ")
}

// ChainOf builds a chain from codes listed outermost first.
func ChainOf(codes ...Code) Chain {
	var c Chain
	for _, code := range codes {
		c = c.Push(code)
	}
	return c
}
