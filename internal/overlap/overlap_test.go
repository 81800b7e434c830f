package overlap

import (
	"testing"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
	"github.com/e4c5/dupscan/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rng(startLine, endLine int) types.Range {
	return types.Range{Start: types.Position{Line: startLine}, End: types.Position{Line: endLine}}
}

func win(path string, startLine, endLine int) window.Window {
	return window.Window{Unit: &ast.SourceUnit{Path: path}, Range: rng(startLine, endLine)}
}

func TestResolveKeepsNonOverlappingPairsInSeparateGroups(t *testing.T) {
	a1 := win("f.go", 1, 5)
	a2 := win("f.go", 10, 14)
	b1 := win("f.go", 100, 104)
	b2 := win("f.go", 200, 204)

	pairs := []Pair{
		{WindowA: a1, WindowB: b1, EscapeCount: 0, StatementCount: 5},
		{WindowA: a2, WindowB: b2, EscapeCount: 0, StatementCount: 5},
	}
	got := Resolve(pairs)
	assert.Len(t, got, 2)
}

func TestResolvePrefersFewerEscapesWhenOverlapping(t *testing.T) {
	// Same callable-pair identity (both sides' enclosing-callable keys
	// match) and overlapping ranges: only the higher-priority candidate
	// for this exact location survives.
	a := win("f.go", 1, 5)
	b := win("f.go", 100, 104)

	low := Pair{WindowA: a, WindowB: b, EscapeCount: 0, StatementCount: 5}
	high := Pair{WindowA: a, WindowB: b, EscapeCount: 3, StatementCount: 5}

	got := Resolve([]Pair{high, low})
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].EscapeCount)
}
