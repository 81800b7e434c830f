// Package dataflow implements the data-flow / escape analyzer (C8): the
// defined, used-after, live-out, escaping-write/read, and captured-variable
// sets for a window inside its enclosing block, plus the isSafeToExtract
// gate C9's boundary refiner drives off of.
package dataflow

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/window"
)

// Sets is the full C8 output for one window.
type Sets struct {
	Defined           map[string]bool
	UsedAfter         map[string]bool
	LiveOut           map[string]bool
	EscapingWrites    map[string]bool
	EscapingReads     map[string]bool
	CapturedVariables map[string]bool
	// DeclaredTypes maps every name in Defined to its facade-resolved
	// declared type, so C12 can type the single live-out return value
	// (§4.12). Empty when the window's source unit carries no resolver.
	DeclaredTypes map[string]string
}

// Analyze computes C8's sets for w, whose enclosing block is the full
// ordered statement list of w's callable (or initializer) body.
func Analyze(w window.Window, enclosingBlock []ast.Node) Sets {
	defined := definedNames(w.Statements)
	after := usedAfter(enclosingBlock, w)
	liveOut := intersect(defined, after)
	ewrites, ereads := escaping(w.Statements, defined)
	captured := capturedVariables(w.Statements, defined)
	declaredTypes := declaredTypesOf(w)

	return Sets{
		Defined:           defined,
		UsedAfter:         after,
		LiveOut:           liveOut,
		EscapingWrites:    ewrites,
		EscapingReads:     ereads,
		CapturedVariables: captured,
		DeclaredTypes:     declaredTypes,
	}
}

// declaredTypesOf resolves the declared type of every name definedNames
// would find, via the window's facade resolver (the same
// resolver.Resolve(identifier) call variation.variableReferences uses for
// arguments). Returns an empty map when the window has no resolver.
func declaredTypesOf(w window.Window) map[string]string {
	out := map[string]string{}
	if w.Unit == nil || w.Unit.Resolver == nil {
		return out
	}
	resolver := w.Unit.Resolver

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "variable_declarator", "catch_formal_parameter", "formal_parameter":
			if id := firstIdentifierChildNode(n); id != nil {
				out[id.Text()] = resolver.Resolve(id).Type
			}
		case "identifier_list":
			for i := 0; i < n.ChildCount(); i++ {
				if c := n.Child(i); c != nil && c.Kind() == "identifier" {
					out[c.Text()] = resolver.Resolve(c).Type
				}
			}
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	for _, s := range w.Statements {
		walk(s)
	}
	return out
}

func firstIdentifierChildNode(n ast.Node) ast.Node {
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == "identifier" {
			return c
		}
	}
	return nil
}

// IsSafeToExtract implements §4.8's extraction gate: at most one live-out
// name (zero when returnType is "void"), and no escaping writes.
func (s Sets) IsSafeToExtract(returnType string) bool {
	maxLiveOut := 1
	if returnType == "void" {
		maxLiveOut = 0
	}
	if len(s.LiveOut) > maxLiveOut {
		return false
	}
	return len(s.EscapingWrites) == 0
}

// definedNames collects every name bound by a declaration inside stmts,
// recursively: local variable declarators, catch parameters, lambda
// parameters, and for-init declarations.
func definedNames(stmts []ast.Node) map[string]bool {
	out := map[string]bool{}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "variable_declarator":
			if id := firstIdentifierChild(n); id != "" {
				out[id] = true
			}
		case "catch_formal_parameter", "formal_parameter":
			if id := firstIdentifierChild(n); id != "" {
				out[id] = true
			}
		case "identifier_list":
			for i := 0; i < n.ChildCount(); i++ {
				if c := n.Child(i); c != nil && c.Kind() == "identifier" {
					out[c.Text()] = true
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

func firstIdentifierChild(n ast.Node) string {
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.Kind() == "identifier" {
			return c.Text()
		}
	}
	return ""
}

// usedAfter collects names referenced by any statement in block following
// w's statements. block is w's enclosing statement list, so those are the
// statements past index w.StartOffset+w.Len().
func usedAfter(block []ast.Node, w window.Window) map[string]bool {
	out := map[string]bool{}
	for i := w.StartOffset + w.Len(); i < len(block); i++ {
		collectReads(block[i], out)
	}
	return out
}

func collectReads(n ast.Node, out map[string]bool) {
	if n == nil {
		return
	}
	if n.Kind() == "identifier" {
		out[n.Text()] = true
	}
	for i := 0; i < n.ChildCount(); i++ {
		collectReads(n.Child(i), out)
	}
}

// escaping walks stmts looking for assignment targets (escapingWrites) and
// plain reads (escapingReads) of names not in defined — i.e. names bound
// outside the window.
func escaping(stmts []ast.Node, defined map[string]bool) (writes, reads map[string]bool) {
	writes = map[string]bool{}
	reads = map[string]bool{}
	var walk func(n ast.Node, isWriteTarget bool)
	walk = func(n ast.Node, isWriteTarget bool) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "assignment_expression", "update_expression":
			if left := n.Child(0); left != nil {
				walk(left, true)
			}
			for i := 1; i < n.ChildCount(); i++ {
				walk(n.Child(i), false)
			}
			return
		case "identifier":
			if defined[n.Text()] {
				return
			}
			if isWriteTarget {
				writes[n.Text()] = true
			} else {
				reads[n.Text()] = true
			}
			return
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i), false)
		}
	}
	for _, s := range stmts {
		walk(s, false)
	}
	return writes, reads
}

// capturedVariables collects names referenced inside a nested
// lambda/anonymous-class body within stmts that are defined outside the
// window.
func capturedVariables(stmts []ast.Node, defined map[string]bool) map[string]bool {
	out := map[string]bool{}
	var walkOuter func(n ast.Node)
	var walkNested func(n ast.Node)
	walkNested = func(n ast.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "identifier" && !defined[n.Text()] {
			out[n.Text()] = true
		}
		for i := 0; i < n.ChildCount(); i++ {
			walkNested(n.Child(i))
		}
	}
	walkOuter = func(n ast.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "lambda_expression", "func_literal", "object_creation_expression":
			walkNested(n)
			return
		}
		for i := 0; i < n.ChildCount(); i++ {
			walkOuter(n.Child(i))
		}
	}
	for _, s := range stmts {
		walkOuter(s)
	}
	return out
}

func intersect(a, b map[string]bool) map[string]bool {
	out := map[string]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}
