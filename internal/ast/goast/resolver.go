package goast

import (
	"github.com/e4c5/dupscan/internal/ast"
	"github.com/e4c5/dupscan/internal/types"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// declSite records where an identifier was bound, for scope lookup.
type declSite struct {
	name  string
	typ   string
	scope types.Scope
}

// resolver answers NameResolver.Resolve by walking the identifier's
// ancestor chain, same strategy as javaast.resolver: no symbol table, just
// a lexical walk over the tree the parser already built.
type resolver struct {
	content      []byte
	fieldsOf     map[*tree_sitter.Node][]declSite // struct_type -> field declSites
	fieldsOfName map[string][]declSite            // struct type name -> field declSites
}

func newResolver(content []byte) *resolver {
	return &resolver{
		content:      content,
		fieldsOf:     make(map[*tree_sitter.Node][]declSite),
		fieldsOfName: make(map[string][]declSite),
	}
}

func (r *resolver) text(n *tree_sitter.Node) string {
	return string(r.content[n.StartByte():n.EndByte()])
}

// Resolve implements ast.NameResolver.
func (r *resolver) Resolve(identifier ast.Node) ast.ResolvedName {
	gn, ok := identifier.(*node)
	if !ok || gn == nil {
		return ast.ResolvedName{Scope: types.ScopeUnknown, Type: types.UnknownType}
	}
	name := gn.Text()

	cur := gn.tn.Parent()
	for cur != nil {
		switch cur.Kind() {
		case "parameter_list":
			if site, ok := r.findParam(cur, name); ok {
				return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeParameter}
			}
		case "block":
			if site, ok := r.findLocalInBlock(cur, name, gn.tn); ok {
				return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeLocal}
			}
		case "for_statement", "range_clause", "if_statement", "type_switch_statement", "expression_switch_statement":
			if site, ok := r.findInitBinding(cur, name); ok {
				return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeLocal}
			}
		case "function_declaration", "method_declaration", "func_literal":
			for i := uint(0); i < cur.ChildCount(); i++ {
				c := cur.Child(i)
				if c != nil && c.Kind() == "parameter_list" {
					if site, ok := r.findParam(c, name); ok {
						return ast.ResolvedName{Name: name, Type: site.typ, Scope: types.ScopeParameter}
					}
				}
			}
		}
		cur = cur.Parent()
	}

	for _, fields := range r.fieldsOfName {
		for _, f := range fields {
			if f.name == name {
				return ast.ResolvedName{Name: name, Type: f.typ, Scope: types.ScopeField}
			}
		}
	}

	return ast.ResolvedName{Name: name, Scope: types.ScopeUnknown, Type: types.UnknownType}
}

// CommonSupertype implements ast.NameResolver. Go has no class hierarchy to
// widen across, only numeric conversion, so the rule is narrower than
// javaast's: identity, or the untyped-constant widening the language itself
// performs for int/float64/complex128.
func (r *resolver) CommonSupertype(t1, t2 string) string {
	if t1 == "" || t2 == "" || t1 == types.UnknownType || t2 == types.UnknownType {
		return types.UnknownType
	}
	if t1 == t2 {
		return t1
	}
	numeric := map[string]int{"int": 1, "float64": 2, "complex128": 3}
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

func (r *resolver) findParam(params *tree_sitter.Node, name string) (declSite, bool) {
	for i := uint(0); i < params.ChildCount(); i++ {
		p := params.Child(i)
		if p == nil || (p.Kind() != "parameter_declaration" && p.Kind() != "variadic_parameter_declaration") {
			continue
		}
		var pnames []string
		var ptype string
		for j := uint(0); j < p.ChildCount(); j++ {
			pc := p.Child(j)
			if pc == nil {
				continue
			}
			if pc.Kind() == "identifier" {
				pnames = append(pnames, r.text(pc))
			} else if isTypeKind(pc.Kind()) {
				ptype = r.text(pc)
			}
		}
		for _, pn := range pnames {
			if pn == name {
				return declSite{name: name, typ: ptype}, true
			}
		}
	}
	return declSite{}, false
}

// findLocalInBlock looks for a short_var_declaration or var_declaration
// binding `name` that occurs before `before` in source order.
func (r *resolver) findLocalInBlock(block *tree_sitter.Node, name string, before *tree_sitter.Node) (declSite, bool) {
	var found declSite
	ok := false
	for i := uint(0); i < block.ChildCount(); i++ {
		stmt := block.Child(i)
		if stmt == nil || stmt.StartByte() >= before.StartByte() {
			break
		}
		if site, found2 := r.bindingIn(stmt, name); found2 {
			found, ok = site, true
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
		if site, ok := r.bindingIn(c, name); ok {
			return site, true
		}
	}
	return declSite{}, false
}

func (r *resolver) bindingIn(n *tree_sitter.Node, name string) (declSite, bool) {
	switch n.Kind() {
	case "short_var_declaration":
		left := n.ChildByFieldName("left")
		if left == nil {
			return declSite{}, false
		}
		for i := uint(0); i < left.ChildCount(); i++ {
			id := left.Child(i)
			if id != nil && id.Kind() == "identifier" && r.text(id) == name {
				return declSite{name: name, typ: types.UnknownType}, true
			}
		}
	case "var_declaration", "const_declaration":
		for i := uint(0); i < n.ChildCount(); i++ {
			spec := n.Child(i)
			if spec == nil || (spec.Kind() != "var_spec" && spec.Kind() != "const_spec") {
				continue
			}
			var typ string
			names := childOfKind(spec, "identifier_list")
			for j := uint(0); j < spec.ChildCount(); j++ {
				c := spec.Child(j)
				if c != nil && isTypeKind(c.Kind()) {
					typ = r.text(c)
				}
			}
			if names != nil {
				for k := uint(0); k < names.ChildCount(); k++ {
					id := names.Child(k)
					if id != nil && id.Kind() == "identifier" && r.text(id) == name {
						return declSite{name: name, typ: typ}, true
					}
				}
			} else if id := childOfKind(spec, "identifier"); id != nil && r.text(id) == name {
				return declSite{name: name, typ: typ}, true
			}
		}
	}
	return declSite{}, false
}
