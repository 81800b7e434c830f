package cluster

import (
	"testing"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/overlap"
	"github.com/e4c5/dupscan/internal/types"
	"github.com/e4c5/dupscan/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func win(path string, startLine, endLine, startOffset int) window.Window {
	return window.Window{
		Unit:        &ast.SourceUnit{Path: path},
		Range:       types.Range{Start: types.Position{Line: startLine}, End: types.Position{Line: endLine}},
		StartOffset: startOffset,
	}
}

func TestBuildMergesTransitivelyLinkedWindows(t *testing.T) {
	a := win("f.go", 1, 5, 0)
	b := win("f.go", 10, 14, 0)
	c := win("f.go", 20, 24, 0)

	pairs := []overlap.Pair{
		{WindowA: a, WindowB: b},
		{WindowA: b, WindowB: c},
	}
	clusters := Build(pairs)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 3)
}

func TestBuildPicksLexicographicallySmallestPrimary(t *testing.T) {
	a := win("f.go", 10, 14, 0)
	b := win("f.go", 1, 5, 0)

	clusters := Build([]overlap.Pair{{WindowA: a, WindowB: b}})
	require.Len(t, clusters, 1)
	assert.Equal(t, 1, clusters[0].Primary.Range.Start.Line)
}

func TestBuildSeparatesDisjointComponents(t *testing.T) {
	a := win("f.go", 1, 5, 0)
	b := win("f.go", 10, 14, 0)
	c := win("g.go", 1, 5, 0)
	d := win("g.go", 10, 14, 0)

	clusters := Build([]overlap.Pair{
		{WindowA: a, WindowB: b},
		{WindowA: c, WindowB: d},
	})
	assert.Len(t, clusters, 2)
}

func TestLOCReductionEstimateMatchesFormula(t *testing.T) {
	a := win("f.go", 1, 5, 0) // 5 lines
	b := win("f.go", 10, 14, 0)
	c := win("f.go", 20, 24, 0)

	clusters := Build([]overlap.Pair{
		{WindowA: a, WindowB: b},
		{WindowA: b, WindowB: c},
	})
	require.Len(t, clusters, 1)
	assert.Equal(t, (3-1)*5, clusters[0].LOCReductionEstimate)
}
