package dedup

// unionFind is a disjoint-set structure over a dense index arena, with
// path-compression find and union-by-attach. Local to one clustering
// invocation; never shared.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union attaches x's root under y's root and returns the surviving root.
func (u *unionFind) union(x, y int) int {
	px, py := u.find(x), u.find(y)
	if px != py {
		u.parent[px] = py
	}
	return py
}
