// Package similarity implements the similarity engine (C6): LCS,
// edit-distance, and structural scores over normalized atom sequences.
package similarity

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/atom"
	"github.com/e4c5/dupscan/internal/normalize"
)

// Weights are the overall-score coefficients; must sum to 1.0 (enforced
// by config.Validate, not here).
type Weights struct {
	LCS        float64
	Levenshtein float64
	Structural float64
}

// DefaultWeights matches §6's configuration defaults.
var DefaultWeights = Weights{LCS: 0.40, Levenshtein: 0.40, Structural: 0.20}

// Result holds the four scores §3 requires, plus the token counts on each
// side. Variation analysis, type-compatibility, and refactorability are
// attached downstream by C7/C12.
type Result struct {
	Overall    float64
	LCS        float64
	Levenshtein float64
	Structural float64
	LenA, LenB int
}

// Score computes the similarity result for two equal-length normalized
// atom sequences, plus the original statement lists (needed only for the
// structural score's control-flow/depth/call-count signature). Unequal-length
// sequences short-circuit to a zero result here; the orchestrator passes
// every candidate pair to Score and relies on this guard.
func Score(a, b []atom.Atom, stmtsA, stmtsB []ast.Node, w Weights) Result {
	if len(a) != len(b) {
		return Result{LenA: len(a), LenB: len(b)}
	}
	lcsLen := lcsLength(a, b)
	editDist := editDistance(a, b)

	lcsScore := ratio(float64(lcsLen), float64(maxInt(len(a), len(b))))
	editScore := 1 - ratio(float64(editDist), float64(maxInt(len(a), len(b))))
	structScore := structuralScore(stmtsA, stmtsB)

	overall := w.LCS*lcsScore + w.Levenshtein*editScore + w.Structural*structScore
	return Result{
		Overall:    overall,
		LCS:        lcsScore,
		Levenshtein: editScore,
		Structural: structScore,
		LenA:       len(a),
		LenB:       len(b),
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// lcsLength computes |LCS(a,b)| with a rolling two-row DP, O(min(m,n))
// space.
func lcsLength(a, b []atom.Atom) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if atom.Equal(a[i-1], b[j-1]) {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// editDistance computes the Levenshtein distance between a and b with a
// rolling two-row DP, O(min(m,n)) space.
func editDistance(a, b []atom.Atom) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if atom.Equal(a[i-1], b[j-1]) {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + minInt(prev[j-1], minInt(prev[j], curr[j-1]))
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// structuralScore implements §4.6's 0.5/0.3/0.2 blend over the
// control-keyword multiset Jaccard, max-nesting-depth closeness, and
// call-count closeness.
func structuralScore(stmtsA, stmtsB []ast.Node) float64 {
	ctrlA, depthA, callsA := controlStats(stmtsA)
	ctrlB, depthB, callsB := controlStats(stmtsB)

	j := jaccardMultiset(ctrlA, ctrlB)
	depthTerm := closeness(depthA, depthB)
	callTerm := closeness(callsA, callsB)

	return 0.5*j + 0.3*depthTerm + 0.2*callTerm
}

// closeness implements "1 − |d1−d2|/max(d1,d2)", with x/0 := 0 so
// "1 − 0/0" reduces to 1 when both sides are zero.
func closeness(a, b int) float64 {
	max := maxInt(a, b)
	if max == 0 {
		return 1
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(max)
}

func jaccardMultiset(a, b map[string]int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	keys := make(map[string]bool, len(a)+len(b))
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

// controlStats walks a statement list recording the control-keyword
// multiset, the maximum control-flow nesting depth, and the method-call
// count, the three ingredients of the structural score.
func controlStats(stmts []ast.Node) (map[string]int, int, int) {
	ctrl := map[string]int{}
	maxDepth := 0
	calls := 0
	var walk func(n ast.Node, depth int)
	walk = func(n ast.Node, depth int) {
		if n == nil {
			return
		}
		kind := n.Kind()
		if label, ok := normalize.ControlFlowLabel(kind); ok {
			ctrl[label]++
			d := depth + 1
			if d > maxDepth {
				maxDepth = d
			}
			for i := 0; i < n.ChildCount(); i++ {
				walk(n.Child(i), d)
			}
			return
		}
		if normalize.IsMethodCall(kind) {
			calls++
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), depth)
		}
	}
	for _, s := range stmts {
		walk(s, 0)
	}
	return ctrl, maxDepth, calls
}
