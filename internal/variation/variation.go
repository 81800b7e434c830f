// Package variation implements the variation & parameter analyzer (C7):
// alignment of two equal-length normalized atom sequences via LCS
// traceback, collection of variable references that become arguments, the
// declared-internal name set, and common-type inference per variation.
package variation

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/atom"
	"github.com/e4c5/dupscan/internal/types"
)

// Variation is an aligned position where two normalized sequences differ
// in a way that can become a parameter (§3).
type Variation struct {
	Category   atom.Category
	ExprA      ast.Node
	ExprB      ast.Node
	CommonType string
}

// Argument is a variable reference into names declared outside the
// window: a pass-through value, never a parameter.
type Argument struct {
	Name  string
	Type  string
	Scope types.Scope
}

// Analysis is C7's full output for one scored pair.
type Analysis struct {
	Variations               []Variation
	HasControlFlowDifference bool
	ArgumentsA               []Argument
	ArgumentsB               []Argument
	DeclaredInternalA        map[string]bool
	DeclaredInternalB        map[string]bool
}

// Analyze runs the full C7 pipeline for a scored pair. resolverA/resolverB
// resolve identifiers within each window's own source unit.
func Analyze(atomsA, atomsB []atom.Atom, stmtsA, stmtsB []ast.Node, resolverA, resolverB ast.NameResolver) Analysis {
	internalA := DeclaredInternal(stmtsA)
	internalB := DeclaredInternal(stmtsB)

	return Analysis{
		Variations:               align(atomsA, atomsB),
		HasControlFlowDifference: hasControlFlowDifference(atomsA, atomsB),
		ArgumentsA:               variableReferences(stmtsA, internalA, resolverA),
		ArgumentsB:               variableReferences(stmtsB, internalB, resolverB),
		DeclaredInternalA:        internalA,
		DeclaredInternalB:        internalB,
	}
}

// align produces the LCS-traceback alignment and emits a Variation for
// every mismatched pair of aligned positions, and for every matched pair of
// literal atoms whose source text differs (literal atoms compare by tag
// only); other identical aligned positions emit nothing.
func align(a, b []atom.Atom) []Variation {
	matches := lcsTraceback(a, b)

	var out []Variation
	prevA, prevB := 0, 0
	emitGap := func(endA, endB int) {
		gapA := a[prevA:endA]
		gapB := b[prevB:endB]
		n := len(gapA)
		if len(gapB) < n {
			n = len(gapB)
		}
		for i := 0; i < n; i++ {
			out = append(out, toVariation(gapA[i], gapB[i]))
		}
	}
	for _, m := range matches {
		emitGap(m.a, m.b)
		x, y := a[m.a], b[m.b]
		switch x.Category {
		case atom.StringLiteral, atom.IntLiteral, atom.LongLiteral, atom.DoubleLiteral, atom.BoolLiteral:
			if x.Origin != nil && y.Origin != nil && x.Origin.Text() != y.Origin.Text() {
				out = append(out, toVariation(x, y))
			}
		}
		prevA, prevB = m.a+1, m.b+1
	}
	emitGap(len(a), len(b))
	return out
}

func toVariation(x, y atom.Atom) Variation {
	return Variation{Category: x.Category, ExprA: x.Origin, ExprB: y.Origin, CommonType: commonType(x, y)}
}

// commonType implements §4.7's common-type inference: prefer the facade's
// resolved type when both sides agree, else fall back to "unknown".
func commonType(x, y atom.Atom) string {
	tx, ty := types.UnknownType, types.UnknownType
	if x.Origin != nil {
		tx = orUnknown(x.Origin.ResolvedType())
	}
	if y.Origin != nil {
		ty = orUnknown(y.Origin.ResolvedType())
	}
	if tx == ty {
		return tx
	}
	return types.UnknownType
}

func orUnknown(t string) string {
	if t == "" {
		return types.UnknownType
	}
	return t
}

func hasControlFlowDifference(a, b []atom.Atom) bool {
	matches := lcsTraceback(a, b)
	matched := map[int]int{}
	for _, m := range matches {
		matched[m.a] = m.b
	}
	for i, x := range a {
		if x.Category != atom.ControlFlow {
			continue
		}
		if j, ok := matched[i]; ok {
			if b[j].Name != x.Name {
				return true
			}
			continue
		}
		// unmatched control-flow atom: the other side has a different (or
		// absent) control structure at this position.
		return true
	}
	return false
}

type matchPair struct{ a, b int }

// lcsTraceback computes the full DP table and backtracks to the sequence
// of matched index pairs, in order. O(|a|*|b|) time/space; only invoked
// for pairs that already cleared the similarity threshold, so windows are
// small.
func lcsTraceback(a, b []atom.Atom) []matchPair {
	n, m := len(a), len(b)
	dp := make([][]int32, n+1)
	for i := range dp {
		dp[i] = make([]int32, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if atom.Equal(a[i-1], b[j-1]) {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}
	var out []matchPair
	i, j := n, m
	for i > 0 && j > 0 {
		switch {
		case atom.Equal(a[i-1], b[j-1]):
			out = append(out, matchPair{a: i - 1, b: j - 1})
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	// reverse into source order
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// DeclaredInternal collects every name declared inside the window:
// variable declarators, catch parameters, lambda parameters, and for-init
// declarations.
func DeclaredInternal(stmts []ast.Node) map[string]bool {
	out := map[string]bool{}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "variable_declarator", "catch_formal_parameter", "formal_parameter",
			"lambda_parameters", "identifier_list":
			if n.Kind() == "variable_declarator" || n.Kind() == "catch_formal_parameter" || n.Kind() == "formal_parameter" {
				if id := firstChildNamed(n); id != "" {
					out[id] = true
				}
			} else {
				for i := 0; i < n.ChildCount(); i++ {
					if c := n.Child(i); c != nil && (c.Kind() == "identifier") {
						out[c.Text()] = true
					}
				}
			}
		case "short_var_declaration":
			if left := leftOperand(n); left != nil {
				for i := 0; i < left.ChildCount(); i++ {
					if c := left.Child(i); c != nil && c.Kind() == "identifier" {
						out[c.Text()] = true
					}
				}
			}
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	for _, s := range stmts {
		walk(s)
	}
	return out
}

func firstChildNamed(n ast.Node) string {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && (c.Kind() == "identifier") {
			return c.Text()
		}
	}
	return ""
}

// leftOperand returns the identifier_list/identifier child of a
// short_var_declaration, i.e. the names to the left of ":=".
func leftOperand(n ast.Node) ast.Node {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == "expression_list" || c.Kind() == "identifier" {
			return c
		}
	}
	return nil
}

// variableReferences walks the window's statements collecting identifiers
// that are not in declaredInternal, resolving each via the facade. These
// become arguments (pass-through values), not parameters.
func variableReferences(stmts []ast.Node, declaredInternal map[string]bool, resolver ast.NameResolver) []Argument {
	if resolver == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []Argument
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "identifier" && !declaredInternal[n.Text()] {
			name := n.Text()
			if !seen[name] {
				rn := resolver.Resolve(n)
				if rn.Scope == types.ScopeParameter || rn.Scope == types.ScopeLocal || rn.Scope == types.ScopeField {
					seen[name] = true
					out = append(out, Argument{Name: name, Type: rn.Type, Scope: rn.Scope})
				}
			}
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	for _, s := range stmts {
		walk(s)
	}
	return out
}
