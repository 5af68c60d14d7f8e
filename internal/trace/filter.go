package trace

import (
	"slices"

	"parsetrace/internal/diag"
)

// Filter selects events from the full tracer's log.
type Filter func(ev *Event) bool

// All passes every event.
func All(*Event) bool { return true }

// OnlyFunc passes events recorded while one of codes was the innermost rule.
func OnlyFunc(codes ...diag.Code) Filter {
	return func(ev *Event) bool {
		return slices.Contains(codes, ev.Func)
	}
}

// Within passes events recorded anywhere below rule code.
func Within(code diag.Code) Filter {
	return func(ev *Event) bool {
		return ev.Parents.Contains(code)
	}
}

// OnlyKinds passes events of the given kinds.
func OnlyKinds(kinds ...Kind) Filter {
	return func(ev *Event) bool {
		return slices.Contains(kinds, ev.Kind)
	}
}

// AtLevel passes the events a sink at level l would receive.
func AtLevel(l Level) Filter {
	return func(ev *Event) bool {
		return l.ShouldEmit(ev.Kind)
	}
}

func Not(f Filter) Filter {
	return func(ev *Event) bool {
		return !f(ev)
	}
}

// And passes events accepted by every filter.
func And(filters ...Filter) Filter {
	return func(ev *Event) bool {
		for _, f := range filters {
			if !f(ev) {
				return false
			}
		}
		return true
	}
}
