// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

// unionFind is a disjoint-set forest over the dense index space of the
// filtered record slice. It is owned exclusively by one deduplication run
// and is never shared between goroutines. An out-of-range index is a
// programming error and panics on the slice access.
// Per prd001-dedup R2.5.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

// find returns the root of i, compressing the path as it goes.
func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union merges the sets containing a and b by rank. Merging a set with
// itself is a no-op.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// sameSet reports whether a and b share a root.
func (u *unionFind) sameSet(a, b int) bool {
	return u.find(a) == u.find(b)
}
