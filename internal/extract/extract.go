// Package extract implements the sequence extractor (C1): enumeration of
// candidate statement windows from callable bodies and initializers.
package extract

import (
	"sort"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/window"
)

// Options bounds window size beyond the minimum and controls whether only
// maximal windows are emitted.
type Options struct {
	MinLines    int  // K
	MaxGrowth   int  // G; 0 means unbounded beyond K up to the block size
	MaximalOnly bool
}

// Windows enumerates every candidate window across all of unit's
// callables, in deterministic DFS/source order: callables are visited in
// the order the facade produced them (itself a source-order DFS), and
// within a callable body, windows are emitted ordered by (startOffset,
// width).
func Windows(unit *ast.SourceUnit, opt Options) []window.Window {
	if unit == nil || opt.MinLines <= 0 {
		return nil
	}
	var out []window.Window
	for ci := range unit.Callables {
		c := &unit.Callables[ci]
		out = append(out, windowsInBlock(unit, c, c.Body, opt)...)
	}
	return out
}

func windowsInBlock(unit *ast.SourceUnit, c *ast.Callable, stmts []ast.Node, opt Options) []window.Window {
	n := len(stmts)
	k := opt.MinLines
	if n < k {
		return nil
	}
	var out []window.Window
	for i := 0; i <= n-k; i++ {
		upper := n - i
		if opt.MaxGrowth > 0 && k+opt.MaxGrowth < upper {
			upper = k + opt.MaxGrowth
		}
		if opt.MaximalOnly {
			w := upper
			out = append(out, makeWindow(unit, c, stmts, i, w))
			continue
		}
		for w := k; w <= upper; w++ {
			out = append(out, makeWindow(unit, c, stmts, i, w))
		}
	}

	// Deterministic ordering: by startOffset then width.
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].StartOffset != out[b].StartOffset {
			return out[a].StartOffset < out[b].StartOffset
		}
		return out[a].Len() < out[b].Len()
	})
	return out
}

func makeWindow(unit *ast.SourceUnit, c *ast.Callable, stmts []ast.Node, start, width int) window.Window {
	slice := stmts[start : start+width]
	return window.Window{
		Unit:        unit,
		Callable:    c,
		Container:   c.Container,
		Statements:  slice,
		Range:       window.HullOf(slice),
		StartOffset: start,
	}
}
