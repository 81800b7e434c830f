// Package fields implements the field-duplication analyzer (C14): an
// independent scan across all parsed source units for classes that share
// field signatures, producing extract-parent-class candidates. Runs
// independently of C1-C13 and need not be ordered with them.
package fields

import (
	"sort"

	"github.com/e4c5/dupscan/internal/ast"
)

// Signature is one (name, declared type) pair for a non-static instance
// field.
type Signature struct {
	Name string
	Type string
}

// Group is a set of classes sharing at least two field signatures,
// transitively connected, together with the fields common to every
// member.
type Group struct {
	Classes          []string // FQNs, sorted
	DuplicatedFields []Signature
}

// minSharedFields is the §4.14 threshold: two classes are linked when
// they share at least this many field signatures.
const minSharedFields = 2

// Analyze scans every class across units for shared field signatures.
// Interface declarations naturally contribute no non-static instance
// fields (Java interface fields are implicitly static final), so no
// separate interface/class distinction is required here.
func Analyze(units []*ast.SourceUnit) []Group {
	var classNames []string
	sigSets := map[string]map[Signature]bool{}

	for _, u := range units {
		if u == nil {
			continue
		}
		for _, c := range u.Classes {
			sig := instanceFieldSignatures(c.Fields)
			if len(sig) == 0 {
				continue
			}
			classNames = append(classNames, c.FQN)
			sigSets[c.FQN] = sig
		}
	}
	sort.Strings(classNames)

	uf := newUnionFind(classNames)
	for i := 0; i < len(classNames); i++ {
		for j := i + 1; j < len(classNames); j++ {
			if sharedCount(sigSets[classNames[i]], sigSets[classNames[j]]) >= minSharedFields {
				uf.union(classNames[i], classNames[j])
			}
		}
	}

	members := map[string][]string{}
	for _, name := range classNames {
		root := uf.find(name)
		members[root] = append(members[root], name)
	}

	var groups []Group
	for _, names := range members {
		if len(names) < 2 {
			continue
		}
		sort.Strings(names)
		dup := intersectAll(names, sigSets)
		groups = append(groups, Group{Classes: names, DuplicatedFields: dup})
	}

	sort.Slice(groups, func(i, j int) bool { return lessGroup(groups[i], groups[j]) })
	return groups
}

// lessGroup implements the field-only priority ordering: fewer total
// duplicated fields first, then more classes in the group first, then
// alphabetical by the smallest class FQN.
func lessGroup(a, b Group) bool {
	if len(a.DuplicatedFields) != len(b.DuplicatedFields) {
		return len(a.DuplicatedFields) < len(b.DuplicatedFields)
	}
	if len(a.Classes) != len(b.Classes) {
		return len(a.Classes) > len(b.Classes)
	}
	return a.Classes[0] < b.Classes[0]
}

func instanceFieldSignatures(fs []ast.Field) map[Signature]bool {
	out := map[Signature]bool{}
	for _, f := range fs {
		if f.IsStatic {
			continue
		}
		out[Signature{Name: f.Name, Type: f.Type}] = true
	}
	return out
}

func sharedCount(a, b map[Signature]bool) int {
	n := 0
	for s := range a {
		if b[s] {
			n++
		}
	}
	return n
}

func intersectAll(names []string, sigSets map[string]map[Signature]bool) []Signature {
	if len(names) == 0 {
		return nil
	}
	counts := map[Signature]int{}
	for _, name := range names {
		for s := range sigSets[name] {
			counts[s]++
		}
	}
	var out []Signature
	for s, n := range counts {
		if n == len(names) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Type < out[j].Type
	})
	return out
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind(names []string) *unionFind {
	parent := make(map[string]string, len(names))
	for _, n := range names {
		parent[n] = n
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x string) string {
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
