// Package goast implements the ast facade over Go source, using
// go-tree-sitter and the tree-sitter-go grammar. It exists to dogfood the
// facade contract (internal/ast) against a second, structurally different
// language: Go has no classes, so "fields" become struct fields and
// "methods" become functions with or without a receiver.
package goast

import (
	"fmt"
	"strings"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// Parser parses Go source files into the ast facade's SourceUnit shape.
type Parser struct {
	language *tree_sitter.Language
}

// NewParser creates a Go parser backed by tree-sitter-go.
func NewParser() *Parser {
	return &Parser{language: tree_sitter.NewLanguage(tree_sitter_go.Language())}
}

func (p *Parser) Language() string { return "go" }

// ParseFile parses one Go source file into a SourceUnit: every top-level
// struct's fields, and every function/method/func-literal's statement
// block, discovered by a single DFS over the syntax tree.
func (p *Parser) ParseFile(path string, content []byte, fileID types.FileID) (*ast.SourceUnit, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("goast: parse produced no tree for %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("goast: empty tree for %s", path)
	}

	res := newResolver(content)
	w := &walker{content: content, resolver: res, isTestFile: strings.HasSuffix(path, "_test.go")}
	for i := uint(0); i < root.ChildCount(); i++ {
		w.walkTop(root.Child(i))
	}

	return &ast.SourceUnit{
		Path:      path,
		FileID:    fileID,
		Callables: w.callables,
		Classes:   w.classes,
		Resolver:  res,
	}, nil
}

type walker struct {
	content    []byte
	resolver   *resolver
	callables  []ast.Callable
	classes    []ast.ClassInfo
	isTestFile bool
}

func (w *walker) text(n *tree_sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

// walkTop visits top-level declarations: type declarations (structs become
// ClassInfo), function declarations, and method declarations. Func
// literals nested inside a body are discovered while walking that body.
func (w *walker) walkTop(n *tree_sitter.Node) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "type_declaration":
		for i := uint(0); i < n.ChildCount(); i++ {
			w.collectTypeSpec(n.Child(i))
		}
	case "function_declaration":
		w.addCallable(n, "", true)
	case "method_declaration":
		recv := w.receiverType(n)
		w.addCallable(n, recv, false)
	}
}

func (w *walker) collectTypeSpec(n *tree_sitter.Node) {
	if n == nil || n.Kind() != "type_spec" {
		return
	}
	name := ""
	if id := childOfKind(n, "type_identifier"); id != nil {
		name = w.text(id)
	}
	structType := childOfKind(n, "struct_type")
	if structType == nil {
		return
	}
	fields := w.collectFields(structType)
	w.resolver.fieldsOf[structType] = fields
	w.resolver.fieldsOfName[name] = fields
	w.classes = append(w.classes, ast.ClassInfo{FQN: name, Fields: toASTFields(fields)})
}

func (w *walker) collectFields(structType *tree_sitter.Node) []declSite {
	list := childOfKind(structType, "field_declaration_list")
	if list == nil {
		return nil
	}
	var out []declSite
	for i := uint(0); i < list.ChildCount(); i++ {
		fd := list.Child(i)
		if fd == nil || fd.Kind() != "field_declaration" {
			continue
		}
		var typ string
		var names []string
		for j := uint(0); j < fd.ChildCount(); j++ {
			c := fd.Child(j)
			if c == nil {
				continue
			}
			if isTypeKind(c.Kind()) {
				typ = w.text(c)
			}
			if c.Kind() == "field_identifier" {
				names = append(names, w.text(c))
			}
		}
		if len(names) == 0 {
			// embedded field: the type itself is the name
			if t := childOfKind(fd, "type_identifier"); t != nil {
				names = append(names, w.text(t))
			}
		}
		for _, nm := range names {
			out = append(out, declSite{name: nm, typ: typ, scope: types.ScopeField})
		}
	}
	return out
}

func (w *walker) receiverType(methodDecl *tree_sitter.Node) string {
	recv := childOfKind(methodDecl, "parameter_list")
	if recv == nil {
		return ""
	}
	for i := uint(0); i < recv.ChildCount(); i++ {
		pd := recv.Child(i)
		if pd == nil || pd.Kind() != "parameter_declaration" {
			continue
		}
		for j := uint(0); j < pd.ChildCount(); j++ {
			c := pd.Child(j)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "type_identifier":
				return w.text(c)
			case "pointer_type":
				if t := childOfKind(c, "type_identifier"); t != nil {
					return w.text(t)
				}
			}
		}
	}
	return ""
}

func (w *walker) addCallable(n *tree_sitter.Node, hostType string, isStatic bool) {
	body := childOfKind(n, "block")
	if body == nil {
		return // forward declaration / external linkage
	}
	name := ""
	if id := childOfKind(n, "identifier"); id != nil {
		name = w.text(id)
	}
	isTest := w.isTestFile && (strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") || strings.HasPrefix(name, "Fuzz"))
	self := wrap(n, w.content, nil)
	w.callables = append(w.callables, ast.Callable{
		Node: self, Container: types.ContainerMethod,
		Body: statementsOf(body, w.content, self), HostClass: hostType, IsStatic: isStatic, IsTest: isTest,
	})
	w.walkBody(body, self, hostType, isTest)
}

// walkBody recurses through a callable's body looking for nested func
// literals, which the facade treats as the lambda container kind.
func (w *walker) walkBody(n *tree_sitter.Node, enclosing *node, hostType string, isTest bool) {
	if n == nil {
		return
	}
	if n.Kind() == "func_literal" {
		if body := childOfKind(n, "block"); body != nil {
			self := wrap(n, w.content, nil)
			w.callables = append(w.callables, ast.Callable{
				Node: self, Container: types.ContainerLambda,
				Body: statementsOf(body, w.content, self), HostClass: hostType, IsStatic: false, IsTest: isTest,
			})
			w.walkBody(body, self, hostType, isTest)
			return
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		w.walkBody(n.Child(i), enclosing, hostType, isTest)
	}
}

func statementsOf(block *tree_sitter.Node, content []byte, enclosing *node) []ast.Node {
	var out []ast.Node
	for i := uint(0); i < block.ChildCount(); i++ {
		c := block.Child(i)
		if c == nil || c.Kind() == "{" || c.Kind() == "}" {
			continue
		}
		out = append(out, wrap(c, content, enclosing))
	}
	return out
}

func toASTFields(sites []declSite) []ast.Field {
	out := make([]ast.Field, 0, len(sites))
	for _, s := range sites {
		out = append(out, ast.Field{Name: s.name, Type: s.typ})
	}
	return out
}

func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func isTypeKind(kind string) bool {
	switch kind {
	case "type_identifier", "qualified_type", "pointer_type", "slice_type", "array_type",
		"map_type", "channel_type", "function_type", "interface_type", "struct_type":
		return true
	default:
		return false
	}
}
