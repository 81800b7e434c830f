// Package window defines the Window value type shared by every pipeline
// stage downstream of the sequence extractor (C1).
package window

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
)

// Window is an immutable, contiguous slice of statements inside a single
// block. It never copies the AST: Statements holds facade node handles
// whose lifetime is the owning SourceUnit.
type Window struct {
	Unit        *ast.SourceUnit
	Callable    *ast.Callable // set by the extractor for every window; nil only in hand-built windows
	Container   types.ContainerKind
	Statements  []ast.Node
	Range       types.Range
	StartOffset int // index of Statements[0] within the enclosing block
}

// Len is the statement count, the window's "size".
func (w Window) Len() int { return len(w.Statements) }

// Path is the owning source unit's storage path.
func (w Window) Path() string {
	if w.Unit == nil {
		return ""
	}
	return w.Unit.Path
}

// IdentityKey is the tuple that makes two windows identity-equal per §3:
// (path, range, start-offset).
type IdentityKey struct {
	Path        string
	Range       types.Range
	StartOffset int
}

func (w Window) Identity() IdentityKey {
	return IdentityKey{Path: w.Path(), Range: w.Range, StartOffset: w.StartOffset}
}

// Prefix returns the first n statements of w as a new window, recomputing
// its range as the convex hull of the retained statements. Used by the
// boundary refiner (C9) to shrink a pair to a safely-extractable prefix.
func (w Window) Prefix(n int) Window {
	if n >= len(w.Statements) {
		return w
	}
	stmts := w.Statements[:n]
	out := w
	out.Statements = stmts
	out.Range = HullOf(stmts)
	return out
}

// HullOf returns the convex hull range of a statement list, or the zero
// Range if the list is empty.
func HullOf(stmts []ast.Node) types.Range {
	if len(stmts) == 0 {
		return types.Range{}
	}
	r := types.Range{Start: stmts[0].Start(), End: stmts[0].End()}
	for _, s := range stmts[1:] {
		r = types.Hull(r, types.Range{Start: s.Start(), End: s.End()})
	}
	return r
}

// EnclosingCallableKey identifies a window's enclosing callable for
// overlap grouping (§4.10): the owning path plus the callable's own range,
// or the window's own range when it has no enclosing callable (a
// top-level initializer or lambda counts as its own group).
type EnclosingCallableKey struct {
	Path  string
	Range types.Range
}

func (w Window) EnclosingCallableKey() EnclosingCallableKey {
	if w.Callable != nil && w.Callable.Node != nil {
		return EnclosingCallableKey{Path: w.Path(), Range: types.Range{Start: w.Callable.Node.Start(), End: w.Callable.Node.End()}}
	}
	return EnclosingCallableKey{Path: w.Path(), Range: w.Range}
}
