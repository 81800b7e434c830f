// Package overlap implements the overlap resolver (C10): greedy interval
// selection over candidate pairs grouped by callable-pair identity,
// ordered by refactoring priority.
package overlap

import (
	"sort"

	"github.com/e4c5/dupscan/internal/window"
)

// Pair is one surviving candidate pair with the fields C10's ordering and
// overlap test need.
type Pair struct {
	WindowA        window.Window
	WindowB        window.Window
	EscapeCount    int // sum of escaping-write/read counts across both windows
	IsFullBody     bool
	StatementCount int
}

// callablePairKey is the order-independent identity of the two enclosing
// callables a pair spans.
type callablePairKey struct {
	a, b window.EnclosingCallableKey
}

func keyOf(p Pair) callablePairKey {
	ka := p.WindowA.EnclosingCallableKey()
	kb := p.WindowB.EnclosingCallableKey()
	if less(kb, ka) {
		ka, kb = kb, ka
	}
	return callablePairKey{a: ka, b: kb}
}

func less(a, b window.EnclosingCallableKey) bool {
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	if a.Range.Start.Line != b.Range.Start.Line {
		return a.Range.Start.Line < b.Range.Start.Line
	}
	return a.Range.Start.Column < b.Range.Start.Column
}

// Resolve groups pairs by callable-pair key and, within each group, keeps
// a greedy maximal set under the refactoring-priority order of §4.10.
func Resolve(pairs []Pair) []Pair {
	groups := map[callablePairKey][]Pair{}
	var order []callablePairKey
	for _, p := range pairs {
		k := keyOf(p)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], p)
	}
	sort.Slice(order, func(i, j int) bool {
		return lessKey(order[i], order[j])
	})

	var kept []Pair
	for _, k := range order {
		kept = append(kept, resolveGroup(groups[k])...)
	}
	return kept
}

func lessKey(a, b callablePairKey) bool {
	if a.a != b.a {
		return less(a.a, b.a)
	}
	return less(a.b, b.b)
}

// resolveGroup implements the priority ordering and greedy selection
// within a single callable-pair group.
func resolveGroup(pairs []Pair) []Pair {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return higherPriority(sorted[i], sorted[j])
	})

	var kept []Pair
	for _, p := range sorted {
		if !overlapsAny(p, kept) {
			kept = append(kept, p)
		}
	}
	return kept
}

// higherPriority reports whether a should be tried before b under §4.10's
// five-level order: fewer escapes, full-body first, broader range first,
// more statements first, earlier appearance first.
func higherPriority(a, b Pair) bool {
	if a.EscapeCount != b.EscapeCount {
		return a.EscapeCount < b.EscapeCount
	}
	if a.IsFullBody != b.IsFullBody {
		return a.IsFullBody
	}
	ra := lineSpan(a)
	rb := lineSpan(b)
	if ra != rb {
		return ra > rb
	}
	if a.StatementCount != b.StatementCount {
		return a.StatementCount > b.StatementCount
	}
	return a.WindowA.Range.Start.Line < b.WindowA.Range.Start.Line
}

func lineSpan(p Pair) int {
	span := func(w window.Window) int { return w.Range.End.Line - w.Range.Start.Line }
	sa, sb := span(p.WindowA), span(p.WindowB)
	if sa > sb {
		return sa
	}
	return sb
}

// overlapsAny reports whether p's first-side or second-side window shares
// a line with the corresponding side of any pair already in kept.
func overlapsAny(p Pair, kept []Pair) bool {
	for _, k := range kept {
		if p.WindowA.Path() == k.WindowA.Path() && p.WindowA.Range.Overlaps(k.WindowA.Range) {
			return true
		}
		if p.WindowB.Path() == k.WindowB.Path() && p.WindowB.Range.Overlaps(k.WindowB.Range) {
			return true
		}
	}
	return false
}
