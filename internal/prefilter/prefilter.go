// Package prefilter implements the pre-filter chain (C5): two stateless
// filters rejecting candidate pairs before expensive similarity scoring.
package prefilter

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/normalize"
	"github.com/e4c5/dupscan/internal/window"
)

// Reject reports whether the pair (a, b) should be rejected before C6 is
// invoked: physically overlapping, size-mismatched beyond 30%, or
// control-keyword-dissimilar beyond the 0.5 Jaccard floor.
func Reject(a, b window.Window) bool {
	if physicallyOverlapping(a, b) {
		return true
	}
	if sizeRejects(a.Len(), b.Len()) {
		return true
	}
	return structuralRejects(a.Statements, b.Statements)
}

// physicallyOverlapping reports same file, same enclosing callable (or
// both outside any callable), and intersecting line ranges.
func physicallyOverlapping(a, b window.Window) bool {
	if a.Path() != b.Path() {
		return false
	}
	if (a.Callable != nil || b.Callable != nil) && a.EnclosingCallableKey() != b.EnclosingCallableKey() {
		return false
	}
	return a.Range.Overlaps(b.Range)
}

// sizeRejects implements the size filter: reject if
// |a-b| / max(a,b) > 0.30. An equal statement count is never rejected
// (the size-filter-safety law).
func sizeRejects(a, b int) bool {
	if a == b {
		return false
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return false
	}
	return float64(diff)/float64(max) > 0.30
}

// structuralRejects implements the structural filter: reject if the
// Jaccard similarity of the control-keyword multisets is below 0.5.
func structuralRejects(a, b []ast.Node) bool {
	ca := controlMultiset(a)
	cb := controlMultiset(b)
	return jaccard(ca, cb) < 0.5
}

func controlMultiset(stmts []ast.Node) map[string]int {
	out := map[string]int{}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if label, ok := normalize.ControlFlowLabel(n.Kind()); ok {
			out[label]++
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	for _, s := range stmts {
		walk(s)
	}
	return out
}

func jaccard(a, b map[string]int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	keys := map[string]bool{}
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	var inter, union int
	for k := range keys {
		ca, cb := a[k], b[k]
		if ca < cb {
			inter += ca
			union += cb
		} else {
			inter += cb
			union += ca
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}
