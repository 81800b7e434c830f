// Package cluster implements the clusterer (C11): union-find connected
// components over surviving pairs, with a deterministic primary selection
// and LOC-reduction estimate per component.
package cluster

import (
	"sort"

	"github.com/e4c5/dupscan/internal/overlap"
	"github.com/e4c5/dupscan/internal/window"
)

// Cluster is one connected component of duplicate windows.
type Cluster struct {
	Primary              window.Window
	Members              []window.Window
	Pairs                []overlap.Pair
	LOCReductionEstimate int
}

// Build treats every surviving pair as an edge and unions its two
// windows, then groups pairs by their component's primary.
func Build(pairs []overlap.Pair) []Cluster {
	uf := newUnionFind()
	for _, p := range pairs {
		uf.union(p.WindowA.Identity(), p.WindowB.Identity())
		uf.remember(p.WindowA.Identity(), p.WindowA)
		uf.remember(p.WindowB.Identity(), p.WindowB)
	}

	components := map[window.IdentityKey][]window.IdentityKey{}
	for id := range uf.nodes {
		root := uf.find(id)
		components[root] = append(components[root], id)
	}

	pairsByRoot := map[window.IdentityKey][]overlap.Pair{}
	for _, p := range pairs {
		root := uf.find(p.WindowA.Identity())
		pairsByRoot[root] = append(pairsByRoot[root], p)
	}

	var out []Cluster
	for root, memberIDs := range components {
		members := make([]window.Window, 0, len(memberIDs))
		for _, id := range memberIDs {
			members = append(members, uf.windows[id])
		}
		sort.Slice(members, func(i, j int) bool { return lessWindow(members[i], members[j]) })

		primary := members[0]
		out = append(out, Cluster{
			Primary:              primary,
			Members:              members,
			Pairs:                pairsByRoot[root],
			LOCReductionEstimate: (len(members) - 1) * lineCount(primary),
		})
	}

	sort.Slice(out, func(i, j int) bool { return lessWindow(out[i].Primary, out[j].Primary) })
	return out
}

func lineCount(w window.Window) int {
	return w.Range.End.Line - w.Range.Start.Line + 1
}

// lessWindow implements the primary-selection tuple order: (path,
// startLine, startColumn, startOffset).
func lessWindow(a, b window.Window) bool {
	if a.Path() != b.Path() {
		return a.Path() < b.Path()
	}
	if a.Range.Start.Line != b.Range.Start.Line {
		return a.Range.Start.Line < b.Range.Start.Line
	}
	if a.Range.Start.Column != b.Range.Start.Column {
		return a.Range.Start.Column < b.Range.Start.Column
	}
	return a.StartOffset < b.StartOffset
}

// unionFind is a standard path-compressed, union-by-rank structure keyed
// by window identity.
type unionFind struct {
	parent  map[window.IdentityKey]window.IdentityKey
	rank    map[window.IdentityKey]int
	nodes   map[window.IdentityKey]bool
	windows map[window.IdentityKey]window.Window
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent:  map[window.IdentityKey]window.IdentityKey{},
		rank:    map[window.IdentityKey]int{},
		nodes:   map[window.IdentityKey]bool{},
		windows: map[window.IdentityKey]window.Window{},
	}
}

func (u *unionFind) remember(id window.IdentityKey, w window.Window) {
	u.windows[id] = w
}

func (u *unionFind) add(id window.IdentityKey) {
	if !u.nodes[id] {
		u.nodes[id] = true
		u.parent[id] = id
		u.rank[id] = 0
	}
}

func (u *unionFind) find(id window.IdentityKey) window.IdentityKey {
	u.add(id)
	if u.parent[id] != id {
		u.parent[id] = u.find(u.parent[id])
	}
	return u.parent[id]
}

func (u *unionFind) union(a, b window.IdentityKey) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
