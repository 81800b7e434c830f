package dataflow

import (
	"testing"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
	"github.com/e4c5/dupscan/internal/window"
	"github.com/stretchr/testify/assert"
)

type fakeNode struct {
	kind     string
	text     string
	start    types.Position
	end      types.Position
	children []*fakeNode
}

func (f *fakeNode) Kind() string                 { return f.kind }
func (f *fakeNode) Text() string                 { return f.text }
func (f *fakeNode) Start() types.Position        { return f.start }
func (f *fakeNode) End() types.Position          { return f.end }
func (f *fakeNode) ChildCount() int              { return len(f.children) }
func (f *fakeNode) ResolvedType() string         { return "" }
func (f *fakeNode) Name() string                 { return f.text }
func (f *fakeNode) Literal() ast.LiteralCategory { return ast.LiteralNone }
func (f *fakeNode) EnclosingCallable() ast.Node  { return nil }
func (f *fakeNode) Child(i int) ast.Node {
	if i < 0 || i >= len(f.children) {
		return nil
	}
	return f.children[i]
}

func at(line int) types.Position { return types.Position{Line: line} }

func ident(name string, line int) *fakeNode {
	return &fakeNode{kind: "identifier", text: name, start: at(line), end: at(line)}
}

// decl builds `local_variable_declaration { variable_declarator { identifier } }`
func decl(name string, line int) *fakeNode {
	return &fakeNode{
		kind: "local_variable_declaration", start: at(line), end: at(line),
		children: []*fakeNode{{kind: "variable_declarator", start: at(line), end: at(line), children: []*fakeNode{ident(name, line)}}},
	}
}

func toNodes(fs []*fakeNode) []ast.Node {
	out := make([]ast.Node, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func TestDefinedNamesCollectsVariableDeclarators(t *testing.T) {
	stmts := toNodes([]*fakeNode{decl("total", 1)})
	d := definedNames(stmts)
	assert.True(t, d["total"])
}

func TestLiveOutEmptyWhenNoUseAfter(t *testing.T) {
	w := window.Window{
		Statements: toNodes([]*fakeNode{decl("total", 1)}),
		Range:      types.Range{Start: at(1), End: at(1)},
	}
	block := toNodes([]*fakeNode{decl("total", 1), {kind: "return_statement", start: at(2), end: at(2)}})
	s := Analyze(w, block)
	assert.Empty(t, s.LiveOut)
}

func TestLiveOutNonEmptyWhenUsedAfter(t *testing.T) {
	w := window.Window{
		Statements: toNodes([]*fakeNode{decl("total", 1)}),
		Range:      types.Range{Start: at(1), End: at(1)},
	}
	use := &fakeNode{kind: "return_statement", start: at(2), end: at(2), children: []*fakeNode{ident("total", 2)}}
	block := toNodes([]*fakeNode{decl("total", 1), use})
	s := Analyze(w, block)
	assert.True(t, s.LiveOut["total"])
	assert.True(t, s.IsSafeToExtract("int"))
	assert.False(t, s.IsSafeToExtract("void"))
}

func TestEscapingWriteDetected(t *testing.T) {
	assign := &fakeNode{kind: "assignment_expression", start: at(1), end: at(1), children: []*fakeNode{
		ident("outer", 1), {kind: "="}, ident("value", 1),
	}}
	w := window.Window{Statements: toNodes([]*fakeNode{assign}), Range: types.Range{Start: at(1), End: at(1)}}
	s := Analyze(w, w.Statements)
	assert.True(t, s.EscapingWrites["outer"])
	assert.False(t, s.IsSafeToExtract("void"))
}

func TestCapturedVariablesFromNestedLambda(t *testing.T) {
	lambda := &fakeNode{kind: "lambda_expression", start: at(1), end: at(1), children: []*fakeNode{ident("outerVar", 1)}}
	w := window.Window{Statements: toNodes([]*fakeNode{lambda}), Range: types.Range{Start: at(1), End: at(1)}}
	s := Analyze(w, w.Statements)
	assert.True(t, s.CapturedVariables["outerVar"])
}

func TestIsSafeToExtractNoEscapesNoLiveOut(t *testing.T) {
	s := Sets{LiveOut: map[string]bool{}, EscapingWrites: map[string]bool{}}
	assert.True(t, s.IsSafeToExtract("void"))
}

type fakeResolver struct{ types map[string]string }

func (r *fakeResolver) Resolve(identifier ast.Node) ast.ResolvedName {
	return ast.ResolvedName{Name: identifier.Text(), Type: r.types[identifier.Text()], Scope: types.ScopeLocal}
}
func (r *fakeResolver) CommonSupertype(t1, t2 string) string { return types.UnknownType }

func TestDeclaredTypesOfResolvesDeclaratorType(t *testing.T) {
	unit := &ast.SourceUnit{Resolver: &fakeResolver{types: map[string]string{"total": "int"}}}
	w := window.Window{
		Unit:       unit,
		Statements: toNodes([]*fakeNode{decl("total", 1)}),
	}
	s := Analyze(w, w.Statements)
	assert.Equal(t, "int", s.DeclaredTypes["total"])
}

func TestDeclaredTypesOfEmptyWithoutResolver(t *testing.T) {
	w := window.Window{Statements: toNodes([]*fakeNode{decl("total", 1)})}
	s := Analyze(w, w.Statements)
	assert.Empty(t, s.DeclaredTypes)
}
