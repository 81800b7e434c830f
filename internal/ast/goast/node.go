package goast

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// node adapts a *tree_sitter.Node plus its source buffer to the ast.Node
// facade, mirroring javaast's wrapper.
type node struct {
	tn        *tree_sitter.Node
	content   []byte
	enclosing *node
}

func wrap(tn *tree_sitter.Node, content []byte, enclosing *node) *node {
	if tn == nil {
		return nil
	}
	return &node{tn: tn, content: content, enclosing: enclosing}
}

func (n *node) Kind() string { return n.tn.Kind() }

func (n *node) Text() string {
	return string(n.content[n.tn.StartByte():n.tn.EndByte()])
}

func (n *node) Start() types.Position {
	p := n.tn.StartPosition()
	return types.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

func (n *node) End() types.Position {
	p := n.tn.EndPosition()
	return types.Position{Line: int(p.Row) + 1, Column: int(p.Column)}
}

func (n *node) ChildCount() int { return int(n.tn.ChildCount()) }

func (n *node) Child(i int) ast.Node {
	c := n.tn.Child(uint(i))
	if c == nil {
		return nil
	}
	return wrap(c, n.content, n.enclosing)
}

func (n *node) EnclosingCallable() ast.Node {
	if n.enclosing == nil {
		return nil
	}
	return n.enclosing
}

func (n *node) ResolvedType() string {
	switch n.Kind() {
	case "int_literal":
		return "int"
	case "float_literal":
		return "float64"
	case "imaginary_literal":
		return "complex128"
	case "rune_literal":
		return "rune"
	case "interpreted_string_literal", "raw_string_literal":
		return "string"
	case "true", "false":
		return "bool"
	case "nil":
		return "nil"
	default:
		return types.UnknownType
	}
}

func (n *node) Name() string {
	switch n.Kind() {
	case "identifier", "type_identifier", "field_identifier", "package_identifier":
		return n.Text()
	case "call_expression":
		if fn := n.tn.ChildByFieldName("function"); fn != nil {
			return string(n.content[fn.StartByte():fn.EndByte()])
		}
		return ""
	default:
		return ""
	}
}

func (n *node) Literal() ast.LiteralCategory {
	switch n.Kind() {
	case "interpreted_string_literal", "raw_string_literal", "rune_literal":
		return ast.LiteralString
	case "int_literal":
		return ast.LiteralInt
	case "float_literal", "imaginary_literal":
		return ast.LiteralDouble
	case "true", "false":
		return ast.LiteralBoolean
	case "nil":
		return ast.LiteralNull
	default:
		return ast.LiteralNone
	}
}
