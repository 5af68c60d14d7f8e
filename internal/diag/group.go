package diag

import (
	"cmp"
	"slices"
)

// Group is a run of hints sharing one key: a byte offset or a line number.
type Group[H Hint] struct {
	Key   int
	Hints []H
}

// GroupByOffset orders hints by descending offset and groups equal offsets.
// Within a group the insertion order is kept.
func GroupByOffset[H Hint](hints []H) []Group[H] {
	return groupBy(hints, func(h H) int { return h.At().Offset() })
}

// GroupByLine orders hints by descending offset and groups them by line.
// Within a line the hints keep the descending offset order, ties in insertion
// order.
func GroupByLine[H Hint](hints []H) []Group[H] {
	return groupBy(hints, func(h H) int { return int(h.At().Line()) })
}

func groupBy[H Hint](hints []H, key func(H) int) []Group[H] {
	sorted := slices.Clone(hints)
	slices.SortStableFunc(sorted, func(a, b H) int {
		return cmp.Compare(b.At().Offset(), a.At().Offset())
	})

	var groups []Group[H]
	for _, h := range sorted {
		k := key(h)
		if n := len(groups); n > 0 && groups[n-1].Key == k {
			groups[n-1].Hints = append(groups[n-1].Hints, h)
			continue
		}
		groups = append(groups, Group[H]{Key: k, Hints: []H{h}})
	}
	return groups
}
