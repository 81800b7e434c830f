package normalize

import (
	"testing"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/atom"
	"github.com/e4c5/dupscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode is a minimal hand-built tree for exercising the normalizer
// without a real tree-sitter parse.
type fakeNode struct {
	kind     string
	text     string
	name     string
	lit      ast.LiteralCategory
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
func (f *fakeNode) Literal() ast.LiteralCategory { return f.lit }
func (f *fakeNode) EnclosingCallable() ast.Node  { return nil }
func (f *fakeNode) Child(i int) ast.Node {
	if i < 0 || i >= len(f.children) {
		return nil
	}
	return f.children[i]
}

// methodCall builds user.setActive(true) style nodes: object identifier,
// '.' , name identifier, argument_list(args...).
func methodCall(obj, name string, args ...*fakeNode) *fakeNode {
	argList := &fakeNode{kind: "argument_list", children: args}
	return &fakeNode{
		kind: "method_invocation",
		text: obj + "." + name + "(...)",
		name: name,
		children: []*fakeNode{
			{kind: "identifier", text: obj, name: obj},
			{kind: "."},
			{kind: "identifier", text: name, name: name},
			argList,
		},
	}
}

func strLit(v string) *fakeNode {
	return &fakeNode{kind: "string_literal", text: `"` + v + `"`, lit: ast.LiteralString}
}

func boolLit(v string) *fakeNode {
	return &fakeNode{kind: v, text: v, lit: ast.LiteralBoolean}
}

func exprStmt(expr *fakeNode) *fakeNode {
	return &fakeNode{kind: "expression_statement", children: []*fakeNode{expr, {kind: ";"}}}
}

func toNodes(fs []*fakeNode) []ast.Node {
	out := make([]ast.Node, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func TestAtomsVariableRenameProducesIdenticalForm(t *testing.T) {
	a := toNodes([]*fakeNode{exprStmt(methodCall("user", "setActive", boolLit("true")))})
	b := toNodes([]*fakeNode{exprStmt(methodCall("customer", "setActive", boolLit("true")))})

	atomsA, err := Atoms("a.java", a)
	require.NoError(t, err)
	atomsB, err := Atoms("b.java", b)
	require.NoError(t, err)

	require.Equal(t, len(atomsA), len(atomsB))
	for i := range atomsA {
		assert.Equal(t, atomsA[i].Form(), atomsB[i].Form(), "position %d", i)
	}
}

func TestAtomsMethodNameDivergenceBreaksEquality(t *testing.T) {
	a := toNodes([]*fakeNode{exprStmt(methodCall("user", "setActive", boolLit("true")))})
	b := toNodes([]*fakeNode{exprStmt(methodCall("user", "setDeleted", boolLit("true")))})

	atomsA, err := Atoms("a.java", a)
	require.NoError(t, err)
	atomsB, err := Atoms("b.java", b)
	require.NoError(t, err)

	require.Equal(t, len(atomsA), len(atomsB))
	var diff int
	for i := range atomsA {
		if atomsA[i].Form() != atomsB[i].Form() {
			diff++
		}
	}
	assert.Equal(t, 1, diff)
}

func TestAtomsLiteralTagOnly(t *testing.T) {
	a := toNodes([]*fakeNode{exprStmt(methodCall("user", "setName", strLit("Alice")))})
	b := toNodes([]*fakeNode{exprStmt(methodCall("user", "setName", strLit("Bob")))})

	atomsA, err := Atoms("a.java", a)
	require.NoError(t, err)
	atomsB, err := Atoms("b.java", b)
	require.NoError(t, err)

	for i := range atomsA {
		assert.Equal(t, atomsA[i].Form(), atomsB[i].Form())
	}
	found := false
	for _, x := range atomsA {
		if x.Category == atom.StringLiteral {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAtomsControlFlowKeywordPreserved(t *testing.T) {
	ifStmt := &fakeNode{kind: "if_statement", children: []*fakeNode{
		{kind: "("}, boolLit("true"), {kind: ")"},
		{kind: "block", children: []*fakeNode{{kind: "{"}, {kind: "}"}}},
	}}
	atoms, err := Atoms("a.java", toNodes([]*fakeNode{ifStmt}))
	require.NoError(t, err)
	require.NotEmpty(t, atoms)
	assert.Equal(t, atom.ControlFlow, atoms[0].Category)
	assert.Equal(t, "if", atoms[0].Name)
}
