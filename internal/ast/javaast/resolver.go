package javaast

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// declSite records where an identifier was bound, for scope lookup.
type declSite struct {
	name     string
	typ      string
	scope    types.Scope
	isStatic bool
}

// resolver answers NameResolver.Resolve by walking the declaration's
// ancestor chain, collecting declarators from enclosing blocks, formal
// parameter lists, and the host class's fields. It never re-parses: it
// reuses the same tree the parser already built.
type resolver struct {
	content   []byte
	fieldsOf  map[*tree_sitter.Node][]declSite // class_body -> field declSites
	classBody map[*tree_sitter.Node]*tree_sitter.Node
}

func newResolver(content []byte) *resolver {
	return &resolver{
		content:   content,
		fieldsOf:  make(map[*tree_sitter.Node][]declSite),
		classBody: make(map[*tree_sitter.Node]*tree_sitter.Node),
	}
}

func (r *resolver) text(n *tree_sitter.Node) string {
	return string(r.content[n.StartByte():n.EndByte()])
}

// Resolve implements ast.NameResolver.
func (r *resolver) Resolve(identifier ast.Node) ast.ResolvedName {
	jn, ok := identifier.(*node)
	if !ok || jn == nil {
		return ast.ResolvedName{Scope: types.ScopeUnknown, Type: types.UnknownType}
	}
	name := jn.Text()

	cur := jn.tn.Parent()
	for cur != nil {
		switch cur.Kind() {
		case "formal_parameters":
			if site, ok := r.findParam(cur, name); ok {
				return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeParameter}
			}
		case "block", "constructor_body":
			if site, ok := r.findLocalInBlock(cur, name, jn.tn); ok {
				return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeLocal}
			}
		case "for_statement", "enhanced_for_statement", "catch_clause":
			if site, ok := r.findInitBinding(cur, name); ok {
				return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeLocal}
			}
		case "method_declaration", "constructor_declaration":
			if params := childOfKind(cur, "formal_parameters"); params != nil {
				if site, ok := r.findParam(params, name); ok {
					return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeParameter}
				}
			}
		case "class_body":
			for _, f := range r.fieldsOf[cur] {
				if f.name == name {
					return ast.ResolvedName{Name: name, Type: f.typ, Scope: types.ScopeField}
				}
			}
		}
		cur = cur.Parent()
	}

	return ast.ResolvedName{Name: name, Scope: types.ScopeUnknown, Type: types.UnknownType}
}

// CommonSupertype implements ast.NameResolver. Without a real type checker
// the facade can only assert identity or degrade to unknown, per §4.7
// "Common type inference".
func (r *resolver) CommonSupertype(t1, t2 string) string {
	if t1 == "" || t2 == "" || t1 == types.UnknownType || t2 == types.UnknownType {
		return types.UnknownType
	}
	if t1 == t2 {
		return t1
	}
	// Boxed/primitive numeric widening is the one case the facade commits to.
	numeric := map[string]int{"int": 1, "long": 2, "float": 3, "double": 4}
	if r1, ok1 := numeric[t1]; ok1 {
		if r2, ok2 := numeric[t2]; ok2 {
			if r1 >= r2 {
				return t1
			}
			return t2
		}
	}
	return types.UnknownType
}

func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func (r *resolver) findParam(params *tree_sitter.Node, name string) (declSite, bool) {
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		if p == nil {
			continue
		}
		if p.Kind() != "formal_parameter" && p.Kind() != "spread_parameter" {
			continue
		}
		var pname, ptype string
		for j := uint(0); j < p.ChildCount(); j++ {
			pc := p.Child(j)
			if pc == nil {
				continue
			}
			if pc.Kind() == "identifier" {
				pname = r.text(pc)
			} else if isTypeKind(pc.Kind()) {
				ptype = r.text(pc)
			}
		}
		if pname == name {
			return declSite{name: name, typ: ptype}, true
		}
	}
	return declSite{}, false
}

// findLocalInBlock looks for a local_variable_declaration that both
// declares `name` and occurs before `before` in source order, so a
// reference cannot resolve to a declaration that follows it.
func (r *resolver) findLocalInBlock(block *tree_sitter.Node, name string, before *tree_sitter.Node) (declSite, bool) {
	var found declSite
	ok := false
	for i := uint(0); i < block.ChildCount(); i++ {
		stmt := block.Child(i)
		if stmt == nil || stmt.StartByte() >= before.StartByte() {
			break
		}
		if stmt.Kind() != "local_variable_declaration" {
			continue
		}
		var typ string
		for j := uint(0); j < stmt.ChildCount(); j++ {
			c := stmt.Child(j)
			if c == nil {
				continue
			}
			if isTypeKind(c.Kind()) {
				typ = r.text(c)
			}
			if c.Kind() == "variable_declarator" {
				id := childOfKind(c, "identifier")
				if id != nil && r.text(id) == name {
					found, ok = declSite{name: name, typ: typ}, true
				}
			}
		}
	}
	return found, ok
}

func (r *resolver) findInitBinding(stmt *tree_sitter.Node, name string) (declSite, bool) {
	for i := uint(0); i < stmt.ChildCount(); i++ {
		c := stmt.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "local_variable_declaration":
			var typ string
			for j := uint(0); j < c.ChildCount(); j++ {
				cc := c.Child(j)
				if cc == nil {
					continue
				}
				if isTypeKind(cc.Kind()) {
					typ = r.text(cc)
				}
				if cc.Kind() == "variable_declarator" {
					id := childOfKind(cc, "identifier")
					if id != nil && r.text(id) == name {
						return declSite{name: name, typ: typ}, true
					}
				}
			}
		case "catch_formal_parameter":
			id := childOfKind(c, "identifier")
			if id != nil && r.text(id) == name {
				return declSite{name: name}, true
			}
		}
	}
	return declSite{}, false
}

func isTypeKind(kind string) bool {
	switch kind {
	case "type_identifier", "integral_type", "floating_point_type", "boolean_type",
		"generic_type", "array_type", "scoped_type_identifier", "void_type":
		return true
	default:
		return false
	}
}
