package community

import (
	"math"

	"flocks/internal/graph"
)

// undirected is the symmetric projection the modularity method works on.
// Directed weights between the same pair are combined.
type undirected struct {
	n        int
	adj      []map[int]float64
	selfLoop []float64
	degree   []float64 // weighted degree, self-loops counted twice
	m2       float64   // 2m: total degree
}

func project(g *graph.Graph) *undirected {
	u := newUndirected(g.Len())
	for _, e := range g.Edges {
		u.addEdge(e.Source, e.Target, e.Weight)
	}
	return u
}

func newUndirected(n int) *undirected {
	u := &undirected{
		n:        n,
		adj:      make([]map[int]float64, n),
		selfLoop: make([]float64, n),
		degree:   make([]float64, n),
	}
	for i := range u.adj {
		u.adj[i] = make(map[int]float64)
	}
	return u
}

func (u *undirected) addEdge(a, b int, w float64) {
	if a == b {
		u.selfLoop[a] += w
		u.degree[a] += 2 * w
		u.m2 += 2 * w
		return
	}
	u.adj[a][b] += w
	u.adj[b][a] += w
	u.degree[a] += w
	u.degree[b] += w
	u.m2 += 2 * w
}

// louvain runs greedy modularity optimization: local moving in ascending
// node order, then aggregation, repeated until no move improves modularity.
// The fixed ordering makes repeated runs on identical input identical.
// ok is false when the graph carries no weight, in which case the result is
// meaningless and the caller falls back to another method.
func louvain(g *graph.Graph, resolution float64) (membership []int, ok bool) {
	u := project(g)
	if u.m2 == 0 {
		return nil, false
	}
	if resolution <= 0 {
		resolution = 1.0
	}

	// membership composes each level's assignment down to original nodes.
	membership = make([]int, u.n)
	for i := range membership {
		membership[i] = i
	}

	for {
		level, moved := localMove(u, resolution)
		if !moved {
			break
		}
		for orig := range membership {
			membership[orig] = level[membership[orig]]
		}
		u = aggregate(u, level)
		if u.n <= 1 {
			break
		}
	}
	return compact(membership), true
}

// localMove repeatedly sweeps nodes in ascending order, moving each to the
// neighboring community with the best modularity gain. Ties break toward the
// smallest community id.
func localMove(u *undirected, resolution float64) (comm []int, moved bool) {
	comm = make([]int, u.n)
	commTot := make([]float64, u.n)
	for i := range comm {
		comm[i] = i
		commTot[i] = u.degree[i]
	}

	improved := true
	for improved {
		improved = false
		for i := 0; i < u.n; i++ {
			cur := comm[i]

			// weight from i to each adjacent community
			wTo := make(map[int]float64)
			for nb, w := range u.adj[i] {
				wTo[comm[nb]] += w
			}

			commTot[cur] -= u.degree[i]
			best := cur
			bestGain := gain(wTo[cur], commTot[cur], u.degree[i], u.m2, resolution)
			for c, w := range wTo {
				if c == cur {
					continue
				}
				g := gain(w, commTot[c], u.degree[i], u.m2, resolution)
				if g > bestGain || (g == bestGain && c < best) {
					best = c
					bestGain = g
				}
			}
			commTot[best] += u.degree[i]
			if best != cur {
				comm[i] = best
				improved = true
				moved = true
			}
		}
	}
	return compact(comm), moved
}

// gain is the modularity delta (up to a constant factor) of placing a node
// with degree k into a community with total degree tot, given weight w from
// the node into that community.
func gain(w, tot, k, m2, resolution float64) float64 {
	return w - resolution*tot*k/m2
}

// aggregate collapses each community into a single node.
func aggregate(u *undirected, comm []int) *undirected {
	nc := 0
	for _, c := range comm {
		if c+1 > nc {
			nc = c + 1
		}
	}
	out := newUndirected(nc)
	for i := 0; i < u.n; i++ {
		out.addEdge(comm[i], comm[i], u.selfLoop[i])
		for nb, w := range u.adj[i] {
			if nb < i {
				continue
			}
			out.addEdge(comm[i], comm[nb], w)
		}
	}
	return out
}

// compact renumbers community labels to 0..k-1 in order of first appearance,
// which for our fixed sweeps means ascending smallest-member order.
func compact(comm []int) []int {
	next := 0
	remap := make(map[int]int)
	out := make([]int, len(comm))
	for i, c := range comm {
		r, ok := remap[c]
		if !ok {
			r = next
			remap[c] = r
			next++
		}
		out[i] = r
	}
	return out
}

// Modularity computes the weighted modularity of a membership over the
// undirected projection of g. Near-zero values mean the graph has no real
// community structure; that is a diagnostic, not an error.
func Modularity(g *graph.Graph, membership []int, resolution float64) float64 {
	u := project(g)
	if u.m2 == 0 {
		return 0
	}
	if resolution <= 0 {
		resolution = 1.0
	}

	nc := 0
	for _, c := range membership {
		if c+1 > nc {
			nc = c + 1
		}
	}
	in := make([]float64, nc)  // twice the internal weight
	tot := make([]float64, nc) // total degree
	for i := 0; i < u.n; i++ {
		c := membership[i]
		tot[c] += u.degree[i]
		in[c] += 2 * u.selfLoop[i]
		for nb, w := range u.adj[i] {
			if membership[nb] == c {
				in[c] += w
			}
		}
	}
	q := 0.0
	for c := 0; c < nc; c++ {
		q += in[c]/u.m2 - resolution*math.Pow(tot[c]/u.m2, 2)
	}
	return q
}
