package javaast

import (
	"strings"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// node adapts a *tree_sitter.Node plus its source buffer to the ast.Node
// facade. It is the Java counterpart of the teacher's walkNode traversal in
// duplicate_detector.go, generalized into a stable per-node wrapper instead
// of a one-shot recursive block scan.
type node struct {
	tn        *tree_sitter.Node
	content   []byte
	enclosing *node // method/constructor/initializer/lambda wrapper owning the statement list, may be nil
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

// ResolvedType answers a best-effort static type for the small set of
// expression kinds the normalizer and C7 care about; anything else falls
// back to types.UnknownType, matching the facade's documented degradation.
func (n *node) ResolvedType() string {
	switch n.Kind() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if strings.HasSuffix(n.Text(), "L") || strings.HasSuffix(n.Text(), "l") {
			return "long"
		}
		return "int"
	case "decimal_floating_point_literal":
		if strings.HasSuffix(n.Text(), "f") || strings.HasSuffix(n.Text(), "F") {
			return "float"
		}
		return "double"
	case "string_literal":
		return "String"
	case "true", "false":
		return "boolean"
	case "null_literal":
		return "null"
	default:
		return types.UnknownType
	}
}

func (n *node) Name() string {
	switch n.Kind() {
	case "identifier", "type_identifier", "scoped_identifier":
		return n.Text()
	case "method_invocation":
		for i := 0; i < n.ChildCount(); i++ {
			c := n.tn.Child(uint(i))
			if c != nil && c.Kind() == "identifier" {
				// the last plain identifier child before '(' is the method name
				if next := n.tn.Child(uint(i + 1)); next != nil && next.Kind() == "argument_list" {
					return string(n.content[c.StartByte():c.EndByte()])
				}
			}
		}
		return ""
	default:
		return ""
	}
}

func (n *node) Literal() ast.LiteralCategory {
	switch n.Kind() {
	case "string_literal", "character_literal":
		return ast.LiteralString
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if strings.HasSuffix(n.Text(), "L") || strings.HasSuffix(n.Text(), "l") {
			return ast.LiteralLong
		}
		return ast.LiteralInt
	case "decimal_floating_point_literal":
		return ast.LiteralDouble
	case "true", "false":
		return ast.LiteralBoolean
	case "null_literal":
		return ast.LiteralNull
	default:
		return ast.LiteralNone
	}
}
