// Package refine implements the boundary refiner (C9): given a candidate
// pair whose full-length score cleared the threshold, find the largest
// prefix length at which both windows are safe to extract, shrinking the
// pair rather than dropping it outright when the full window is not.
package refine

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/dataflow"
	"github.com/e4c5/dupscan/internal/normalize"
	"github.com/e4c5/dupscan/internal/similarity"
	"github.com/e4c5/dupscan/internal/window"
)

// Result is the refiner's verdict for one pair.
type Result struct {
	WindowA            window.Window
	WindowB            window.Window
	Score              similarity.Result
	ValidStatementCount int // 0 means "unchanged, full window kept"
	Kept               bool
}

// Refine searches p in [minLines, min(|W1|,|W2|)] from largest to
// smallest for the first length at which both prefixes are safe to
// extract and the recomputed score still clears threshold. blockA/blockB
// are the full ordered statement lists of each window's enclosing
// callable, required by the data-flow analyzer's usedAfter computation.
func Refine(wa, wb window.Window, blockA, blockB []ast.Node, minLines int, weights similarity.Weights, threshold float64, fullScore similarity.Result) Result {
	n := wa.Len()
	if wb.Len() < n {
		n = wb.Len()
	}

	for p := n; p >= minLines; p-- {
		pa := wa.Prefix(p)
		pb := wb.Prefix(p)

		sa := dataflow.Analyze(pa, blockA)
		sb := dataflow.Analyze(pb, blockB)
		if !sa.IsSafeToExtract(returnTypeOf(sa)) || !sb.IsSafeToExtract(returnTypeOf(sb)) {
			continue
		}

		if p == wa.Len() && p == wb.Len() {
			return Result{WindowA: pa, WindowB: pb, Score: fullScore, ValidStatementCount: 0, Kept: true}
		}

		score := rescored(pa, pb, weights)
		if score.Overall >= threshold {
			return Result{WindowA: pa, WindowB: pb, Score: score, ValidStatementCount: p, Kept: true}
		}
	}
	return Result{Kept: false}
}

// returnTypeOf picks "void" when the set has no live-out name, matching
// §4.12's return-type derivation rule (a single live-out name becomes a
// typed return; none means void).
func returnTypeOf(s dataflow.Sets) string {
	if len(s.LiveOut) == 0 {
		return "void"
	}
	return ""
}

func rescored(a, b window.Window, weights similarity.Weights) similarity.Result {
	atomsA, errA := normalize.Atoms(a.Path(), a.Statements)
	atomsB, errB := normalize.Atoms(b.Path(), b.Statements)
	if errA != nil || errB != nil {
		return similarity.Result{}
	}
	return similarity.Score(atomsA, atomsB, a.Statements, b.Statements, weights)
}
