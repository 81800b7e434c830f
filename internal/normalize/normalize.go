// Package normalize implements the AST normalizer (C3): flattening a
// statement subtree into an ordered sequence of tagged atoms, preserving
// method-call names, type names, control-flow keywords, and operators
// verbatim while replacing variable identifiers and literal values with
// category tags.
//
// The classification tables below are the "tagged variants over node
// kinds" design note (spec §9): one exhaustive switch per atom category,
// covering both the Java and Go adapters' node-kind vocabularies side by
// side, so adding a grammar means extending these sets rather than
// threading per-language branches through the walk itself.
package normalize

import (
	"fmt"

	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/atom"
	"github.com/e4c5/dupscan/internal/dderrors"
)

var methodCallKinds = map[string]bool{
	"method_invocation": true, // java
	"call_expression":   true, // go
}

var controlFlowLabels = map[string]string{
	"if_statement":            "if",
	"for_statement":           "for",
	"enhanced_for_statement":  "for",
	"while_statement":         "while",
	"do_statement":            "do",
	"switch_statement":        "switch",
	"switch_expression":       "switch",
	"expression_switch_statement": "switch",
	"type_switch_statement":   "switch",
	"select_statement":        "select",
	"try_statement":           "try",
	"catch_clause":            "catch",
	"return_statement":        "return",
	"break_statement":         "break",
	"continue_statement":      "continue",
	"throw_statement":         "throw",
	"yield_statement":         "yield",
	"goto_statement":          "goto",
	"defer_statement":         "defer",
	"go_statement":            "go",
	"labeled_statement":       "label",
}

var typeKinds = map[string]bool{
	"type_identifier":        true,
	"generic_type":           true,
	"array_type":             true,
	"scoped_type_identifier":  true,
	"integral_type":          true,
	"floating_point_type":    true,
	"boolean_type":           true,
	"void_type":              true,
	"qualified_type":         true,
	"pointer_type":           true,
	"slice_type":             true,
	"map_type":               true,
	"channel_type":           true,
	"function_type":          true,
	"interface_type":         true,
	"struct_type":            true,
}

var operatorExprKinds = map[string]bool{
	"binary_expression":     true,
	"unary_expression":      true,
	"assignment_expression": true,
	"update_expression":     true,
	"instanceof_expression":  true,
	"ternary_expression":    true,
	"assignment_statement":  true, // go (a, b = c, d)
	"inc_dec_statement":     true, // go i++/i--
}

var operatorTokens = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "!": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true, "&^": true,
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true, "instanceof": true, ":=": true,
}

var keywordKinds = map[string]bool{
	"this":  true,
	"super": true,
}

var punctuationSkip = map[string]bool{
	";": true, "{": true, "}": true, "(": true, ")": true,
	",": true, ".": true, "[": true, "]": true, ":": true,
}

var assertionPrefixes = []string{"assert"}
var mockNames = map[string]bool{
	"when": true, "verify": true, "mock": true, "spy": true,
	"thenReturn": true, "thenThrow": true, "doReturn": true, "doThrow": true, "doNothing": true,
}

// IsMethodCall reports whether kind is one of the call-expression node
// kinds this normalizer recognizes, for use by callers (e.g. the
// similarity engine's structural score) that need the same classification
// without re-walking through Atoms.
func IsMethodCall(kind string) bool { return methodCallKinds[kind] }

// ControlFlowLabel returns the preserved control-flow keyword for kind, if
// any.
func ControlFlowLabel(kind string) (string, bool) {
	label, ok := controlFlowLabels[kind]
	return label, ok
}

// Atoms normalizes a statement list into an ordered atom sequence. It
// returns a *dderrors.NormalizationError if a statement's subtree cannot
// be walked (e.g. a nil node reached where the facade should have
// produced a value); the caller skips the window and keeps the
// diagnostic.
func Atoms(path string, stmts []ast.Node) ([]atom.Atom, error) {
	var out []atom.Atom
	for _, s := range stmts {
		if s == nil {
			return nil, dderrors.NewNormalizationError(path, 0, "nil-statement", fmt.Errorf("nil statement in window"))
		}
		walk(s, &out)
	}
	return out, nil
}

func walk(n ast.Node, out *[]atom.Atom) {
	if n == nil {
		return
	}

	if lit := n.Literal(); lit != ast.LiteralNone {
		*out = append(*out, atom.Atom{Category: literalCategory(lit), Origin: n, Pos: n.Start()})
		return
	}

	kind := n.Kind()

	if methodCallKinds[kind] {
		name := n.Name()
		cat := atom.MethodCall
		if hasAssertionPrefix(name) {
			cat = atom.Assertion
		} else if mockNames[name] {
			cat = atom.Mock
		}
		*out = append(*out, atom.Atom{Category: cat, Name: name, Origin: n, Pos: n.Start()})
		for i := 0; i < n.ChildCount(); i++ {
			c := n.Child(i)
			if c == nil {
				continue
			}
			if (c.Kind() == "identifier" || c.Kind() == "field_identifier") && c.Text() == name {
				continue // the call's own name, already captured above
			}
			walk(c, out)
		}
		return
	}

	if label, ok := controlFlowLabels[kind]; ok {
		*out = append(*out, atom.Atom{Category: atom.ControlFlow, Name: label, Origin: n, Pos: n.Start()})
		recurseChildren(n, out)
		return
	}

	if typeKinds[kind] {
		name := n.Name()
		if name == "" {
			name = n.Text()
		}
		*out = append(*out, atom.Atom{Category: atom.Type, Name: name, Origin: n, Pos: n.Start()})
		return
	}

	if operatorExprKinds[kind] {
		sym := operatorSymbol(n)
		*out = append(*out, atom.Atom{Category: atom.Operator, Name: sym, Origin: n, Pos: n.Start()})
		recurseChildren(n, out)
		return
	}

	if keywordKinds[kind] {
		*out = append(*out, atom.Atom{Category: atom.Keyword, Name: kind, Origin: n, Pos: n.Start()})
		return
	}

	if kind == "identifier" || kind == "field_identifier" || kind == "package_identifier" {
		*out = append(*out, atom.Atom{Category: atom.Variable, Origin: n, Pos: n.Start()})
		return
	}

	if punctuationSkip[kind] {
		return
	}

	if n.ChildCount() == 0 {
		*out = append(*out, atom.Atom{Category: atom.Other, Origin: n, Pos: n.Start()})
		return
	}

	recurseChildren(n, out)
}

func recurseChildren(n ast.Node, out *[]atom.Atom) {
	for i := 0; i < n.ChildCount(); i++ {
		walk(n.Child(i), out)
	}
}

func literalCategory(l ast.LiteralCategory) atom.Category {
	switch l {
	case ast.LiteralString:
		return atom.StringLiteral
	case ast.LiteralInt:
		return atom.IntLiteral
	case ast.LiteralLong:
		return atom.LongLiteral
	case ast.LiteralDouble:
		return atom.DoubleLiteral
	case ast.LiteralBoolean:
		return atom.BoolLiteral
	case ast.LiteralNull:
		return atom.NullLiteral
	default:
		return atom.Other
	}
}

func hasAssertionPrefix(name string) bool {
	for _, p := range assertionPrefixes {
		if len(name) > len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}

// operatorSymbol finds the anonymous operator token among n's children;
// tree-sitter represents these leaves with their literal text as Kind().
// Falls back to the expression's own kind when no token is recognized
// (uncommon grammar shapes), which keeps atom equality deterministic even
// if less precise than the exact symbol.
func operatorSymbol(n ast.Node) string {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if operatorTokens[c.Kind()] {
			return c.Kind()
		}
	}
	return n.Kind()
}
