// Package atom defines the normalized-node value type produced by the AST
// normalizer (C3) and consumed by the similarity engine (C6) and variation
// analyzer (C7).
package atom

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
)

// Category is one of the normalized-atom categories from §3.
type Category string

const (
	Variable      Category = "variable"
	MethodCall    Category = "method-call"
	StringLiteral Category = "string-literal"
	IntLiteral    Category = "int-literal"
	LongLiteral   Category = "long-literal"
	DoubleLiteral Category = "double-literal"
	BoolLiteral   Category = "boolean-literal"
	NullLiteral   Category = "null-literal"
	Type          Category = "type"
	ControlFlow   Category = "control-flow"
	Operator      Category = "operator"
	Assertion     Category = "assertion"
	Mock          Category = "mock"
	Keyword       Category = "keyword"
	Other         Category = "other"
)

// namedCategories preserve the underlying identifier/keyword in their
// normalized form; all other categories reduce to the tag alone.
var namedCategories = map[Category]bool{
	MethodCall:  true,
	Type:        true,
	ControlFlow: true,
	Operator:    true,
	Assertion:   true,
	Mock:        true,
	Keyword:     true,
}

// Atom is a single normalized token: a category tag, optionally paired
// with the preserved name, plus the originating expression and position so
// C7 can reconstruct bindings.
type Atom struct {
	Category Category
	Name     string // preserved identifier/keyword; empty for tag-only categories
	Origin   ast.Node
	Pos      types.Position
}

// Form is the normalized-form value used for atom equality in LCS/edit
// distance (§4.6): category alone for tag-only categories, category+name
// for named ones.
func (a Atom) Form() string {
	if namedCategories[a.Category] {
		return string(a.Category) + ":" + a.Name
	}
	return string(a.Category)
}

// Equal implements the "full normalized-form equality" atom comparison
// C6/C7 require.
func Equal(a, b Atom) bool { return a.Form() == b.Form() }
