package recommend

import (
	"context"
	"testing"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/atom"
	"github.com/e4c5/dupscan/internal/cluster"
	"github.com/e4c5/dupscan/internal/dataflow"
	"github.com/e4c5/dupscan/internal/types"
	"github.com/e4c5/dupscan/internal/variation"
	"github.com/e4c5/dupscan/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	kind, text string
}

func (f *fakeNode) Kind() string                 { return f.kind }
func (f *fakeNode) Text() string                 { return f.text }
func (f *fakeNode) Start() types.Position        { return types.Position{} }
func (f *fakeNode) End() types.Position          { return types.Position{} }
func (f *fakeNode) ChildCount() int              { return 0 }
func (f *fakeNode) Child(i int) ast.Node         { return nil }
func (f *fakeNode) ResolvedType() string         { return "" }
func (f *fakeNode) Name() string                 { return f.text }
func (f *fakeNode) Literal() ast.LiteralCategory { return ast.LiteralNone }
func (f *fakeNode) EnclosingCallable() ast.Node  { return nil }

func baseCluster() cluster.Cluster {
	return cluster.Cluster{
		Primary: window.Window{Range: types.Range{Start: types.Position{Line: 1}, End: types.Position{Line: 10}}},
	}
}

func TestSelectStrategyControlFlowDifferenceForcesManualReview(t *testing.T) {
	members := []MemberInfo{{HostClass: "A"}, {HostClass: "A"}}
	analyses := []variation.Analysis{{HasControlFlowDifference: true}}
	got := selectStrategy(members, analyses, nil)
	assert.Equal(t, ManualReviewRequired, got)
}

func TestSelectStrategyTestClassesWithLiteralVariationsParameterizes(t *testing.T) {
	members := []MemberInfo{{HostClass: "FooTest", IsTest: true}, {HostClass: "FooTest", IsTest: true}}
	analyses := []variation.Analysis{{Variations: []variation.Variation{{Category: atom.StringLiteral}}}}
	got := selectStrategy(members, analyses, nil)
	assert.Equal(t, ExtractParameterizedTest, got)
}

func TestSelectStrategyFallsBackToHelperMethod(t *testing.T) {
	members := []MemberInfo{{HostClass: "A"}, {HostClass: "A"}}
	analyses := []variation.Analysis{{Variations: []variation.Variation{{Category: atom.StringLiteral}}}}
	got := selectStrategy(members, analyses, nil)
	assert.Equal(t, ExtractHelperMethod, got)
}

func TestDeriveParametersOrdersPrimitivesAndAlphabetically(t *testing.T) {
	analyses := []variation.Analysis{{Variations: []variation.Variation{
		{Category: atom.StringLiteral, ExprA: &fakeNode{kind: "string_literal", text: `"zzz"`}, CommonType: "string"},
		{Category: atom.IntLiteral, ExprA: &fakeNode{kind: "int_literal", text: "5"}, CommonType: "int"},
	}}}
	params := deriveParameters(context.Background(), analyses, nil)
	require.Len(t, params, 2)
	assert.True(t, params[0].IsPrimitive, "primitive params sort first")
}

func TestDeriveParametersReturnsAllDerivedParamsRegardlessOfBudget(t *testing.T) {
	var vs []variation.Variation
	for i := 0; i < 6; i++ {
		vs = append(vs, variation.Variation{Category: atom.IntLiteral, CommonType: "int"})
	}
	analyses := []variation.Analysis{{Variations: vs}}
	params := deriveParameters(context.Background(), analyses, nil)
	assert.Len(t, params, 6, "the combined budget is enforced by Generate, not here")
}

func TestGenerateDowngradesToManualReviewWhenOverCombinedBudget(t *testing.T) {
	var vs []variation.Variation
	for i := 0; i < 6; i++ {
		vs = append(vs, variation.Variation{Category: atom.IntLiteral, CommonType: "int"})
	}
	analyses := []variation.Analysis{{Variations: vs}}
	members := []MemberInfo{{HostClass: "A"}, {HostClass: "A"}}

	rec := Generate(context.Background(), baseCluster(), members, analyses, nil, nil)
	assert.Equal(t, ManualReviewRequired, rec.Strategy)
}

func TestGenerateCountsArgumentsTowardCombinedBudget(t *testing.T) {
	analyses := []variation.Analysis{{
		Variations: []variation.Variation{
			{Category: atom.IntLiteral, CommonType: "int"},
			{Category: atom.IntLiteral, CommonType: "int"},
			{Category: atom.IntLiteral, CommonType: "int"},
		},
		ArgumentsA: []variation.Argument{{Name: "a"}, {Name: "b"}, {Name: "c"}},
	}}
	members := []MemberInfo{{HostClass: "A"}, {HostClass: "A"}}

	rec := Generate(context.Background(), baseCluster(), members, analyses, nil, nil)
	assert.Equal(t, ManualReviewRequired, rec.Strategy, "3 parameters + 3 pass-through arguments exceeds the combined budget of 5")
}

func TestConfidenceScorePenalizesControlFlowToZero(t *testing.T) {
	c := baseCluster()
	analyses := []variation.Analysis{{HasControlFlowDifference: true}}
	assert.Equal(t, 0.0, confidenceScore(c, analyses))
}

func TestConfidenceScoreFullWhenCompatibleAndLarge(t *testing.T) {
	c := cluster.Cluster{Primary: window.Window{Range: types.Range{Start: types.Position{Line: 1}, End: types.Position{Line: 20}}}}
	analyses := []variation.Analysis{{Variations: []variation.Variation{{CommonType: "int"}}}}
	assert.Equal(t, 1.0, confidenceScore(c, analyses))
}

func TestDeriveReturnTypeVoidWhenNoLiveOut(t *testing.T) {
	name, typ := deriveReturnType([]dataflow.Sets{{LiveOut: map[string]bool{}}})
	assert.Equal(t, "", name)
	assert.Equal(t, "void", typ)
}

func TestDeriveReturnTypeResolvesDeclaredTypeWhenSingleLiveOut(t *testing.T) {
	name, typ := deriveReturnType([]dataflow.Sets{{
		LiveOut:       map[string]bool{"total": true},
		DeclaredTypes: map[string]string{"total": "int"},
	}})
	assert.Equal(t, "total", name)
	assert.Equal(t, "int", typ)
}

func TestDeriveReturnTypeFallsBackToUnknownWithoutDeclaredType(t *testing.T) {
	name, typ := deriveReturnType([]dataflow.Sets{{LiveOut: map[string]bool{"total": true}}})
	assert.Equal(t, "total", name)
	assert.Equal(t, types.UnknownType, typ)
}

func TestDeriveReturnTypeVoidWhenMultipleLiveOutNames(t *testing.T) {
	name, typ := deriveReturnType([]dataflow.Sets{{LiveOut: map[string]bool{"a": true, "b": true}}})
	assert.Equal(t, "", name)
	assert.Equal(t, "void", typ)
}

func TestIsNearDuplicateRejectsCloseNames(t *testing.T) {
	existing := map[string]bool{"userName": true}
	assert.True(t, isNearDuplicate("userName", existing))
}

func TestIsNearDuplicateAcceptsDistinctNames(t *testing.T) {
	existing := map[string]bool{"total": true}
	assert.False(t, isNearDuplicate("completelyDifferent", existing))
}
