package variation

import (
	"testing"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/atom"
	"github.com/e4c5/dupscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode is a minimal hand-built tree, matching the shape used across the
// pipeline's other package tests.
type fakeNode struct {
	kind     string
	text     string
	name     string
	resolved string
	children []*fakeNode
}

func (f *fakeNode) Kind() string                 { return f.kind }
func (f *fakeNode) Text() string                 { return f.text }
func (f *fakeNode) Start() types.Position        { return types.Position{Line: 1} }
func (f *fakeNode) End() types.Position          { return types.Position{Line: 1} }
func (f *fakeNode) ChildCount() int              { return len(f.children) }
func (f *fakeNode) ResolvedType() string         { return f.resolved }
func (f *fakeNode) Name() string                 { return f.name }
func (f *fakeNode) Literal() ast.LiteralCategory { return ast.LiteralNone }
func (f *fakeNode) EnclosingCallable() ast.Node  { return nil }
func (f *fakeNode) Child(i int) ast.Node {
	if i < 0 || i >= len(f.children) {
		return nil
	}
	return f.children[i]
}

func ident(name string) *fakeNode {
	return &fakeNode{kind: "identifier", text: name, name: name}
}

// fakeResolver resolves any identifier whose text appears in params/locals,
// everything else stays unknown.
type fakeResolver struct {
	params map[string]string
	locals map[string]string
}

func (r *fakeResolver) Resolve(n ast.Node) ast.ResolvedName {
	name := n.Text()
	if t, ok := r.params[name]; ok {
		return ast.ResolvedName{Name: name, Type: t, Scope: types.ScopeParameter}
	}
	if t, ok := r.locals[name]; ok {
		return ast.ResolvedName{Name: name, Type: t, Scope: types.ScopeLocal}
	}
	return ast.ResolvedName{Name: name, Type: types.UnknownType, Scope: types.ScopeUnknown}
}

func (r *fakeResolver) CommonSupertype(t1, t2 string) string {
	if t1 == t2 {
		return t1
	}
	return types.UnknownType
}

func atoms(forms ...atom.Atom) []atom.Atom { return forms }

func TestAlignIdenticalSequenceProducesNoVariations(t *testing.T) {
	a := atoms(
		atom.Atom{Category: atom.MethodCall, Name: "setActive", Origin: ident("x")},
		atom.Atom{Category: atom.BoolLiteral, Origin: ident("true")},
	)
	b := atoms(
		atom.Atom{Category: atom.MethodCall, Name: "setActive", Origin: ident("x")},
		atom.Atom{Category: atom.BoolLiteral, Origin: ident("true")},
	)
	got := align(a, b)
	assert.Empty(t, got)
}

func TestAlignLiteralDivergenceProducesOneVariation(t *testing.T) {
	a := atoms(
		atom.Atom{Category: atom.MethodCall, Name: "setName", Origin: ident("x")},
		atom.Atom{Category: atom.StringLiteral, Origin: &fakeNode{kind: "string_literal", text: `"Alice"`, resolved: "string"}},
	)
	b := atoms(
		atom.Atom{Category: atom.MethodCall, Name: "setName", Origin: ident("x")},
		atom.Atom{Category: atom.StringLiteral, Origin: &fakeNode{kind: "string_literal", text: `"Bob"`, resolved: "string"}},
	)
	got := align(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, atom.StringLiteral, got[0].Category)
	assert.Equal(t, "string", got[0].CommonType)
}

func TestAlignMethodNameDivergenceProducesOneVariation(t *testing.T) {
	a := atoms(atom.Atom{Category: atom.MethodCall, Name: "setActive", Origin: ident("setActive")})
	b := atoms(atom.Atom{Category: atom.MethodCall, Name: "setDeleted", Origin: ident("setDeleted")})
	got := align(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, atom.MethodCall, got[0].Category)
}

func TestHasControlFlowDifferenceDetectsKeywordMismatch(t *testing.T) {
	a := atoms(atom.Atom{Category: atom.ControlFlow, Name: "if", Origin: ident("if")})
	b := atoms(atom.Atom{Category: atom.ControlFlow, Name: "while", Origin: ident("while")})
	assert.True(t, hasControlFlowDifference(a, b))
}

func TestHasControlFlowDifferenceFalseWhenKeywordsMatch(t *testing.T) {
	a := atoms(atom.Atom{Category: atom.ControlFlow, Name: "if", Origin: ident("if")})
	b := atoms(atom.Atom{Category: atom.ControlFlow, Name: "if", Origin: ident("if")})
	assert.False(t, hasControlFlowDifference(a, b))
}

func TestDeclaredInternalCollectsVariableDeclarator(t *testing.T) {
	decl := &fakeNode{kind: "local_variable_declaration", children: []*fakeNode{
		{kind: "variable_declarator", children: []*fakeNode{ident("total")}},
	}}
	internal := DeclaredInternal([]ast.Node{decl})
	assert.True(t, internal["total"])
}

func TestVariableReferencesExcludesDeclaredInternalAndUnresolved(t *testing.T) {
	stmt := &fakeNode{kind: "expression_statement", children: []*fakeNode{
		ident("amount"), ident("total"), ident("unresolvedGlobal"),
	}}
	internal := map[string]bool{"total": true}
	resolver := &fakeResolver{params: map[string]string{"amount": "int"}}

	got := variableReferences([]ast.Node{stmt}, internal, resolver)
	require.Len(t, got, 1)
	assert.Equal(t, "amount", got[0].Name)
	assert.Equal(t, "int", got[0].Type)
	assert.Equal(t, types.ScopeParameter, got[0].Scope)
}

func TestVariableReferencesNilResolverYieldsNoArguments(t *testing.T) {
	stmt := &fakeNode{kind: "expression_statement", children: []*fakeNode{ident("x")}}
	got := variableReferences([]ast.Node{stmt}, map[string]bool{}, nil)
	assert.Nil(t, got)
}
