package community

import "flocks/internal/graph"

// labelPropagation is the faster fallback: every node repeatedly adopts the
// label with the largest incident weight among its neighbors. Sweeps run in
// ascending node order and ties break toward the smallest label, so the
// outcome is deterministic.
func labelPropagation(g *graph.Graph, maxSweeps int) []int {
	u := project(g)
	labels := make([]int, u.n)
	for i := range labels {
		labels[i] = i
	}
	if maxSweeps <= 0 {
		maxSweeps = 100
	}

	for sweep := 0; sweep < maxSweeps; sweep++ {
		changed := false
		for i := 0; i < u.n; i++ {
			if len(u.adj[i]) == 0 {
				continue
			}
			weight := make(map[int]float64)
			for nb, w := range u.adj[i] {
				weight[labels[nb]] += w
			}
			best := labels[i]
			bestW := weight[best]
			for l, w := range weight {
				if w > bestW || (w == bestW && l < best) {
					best = l
					bestW = w
				}
			}
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return compact(labels)
}

// weakComponents is the last-resort partition: weakly connected components
// of the directed graph.
func weakComponents(g *graph.Graph) []int {
	n := g.Len()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	adj := make([][]int, n)
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	next := 0
	var stack []int
	for i := 0; i < n; i++ {
		if labels[i] != -1 {
			continue
		}
		labels[i] = next
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range adj[v] {
				if labels[nb] == -1 {
					labels[nb] = next
					stack = append(stack, nb)
				}
			}
		}
		next++
	}
	return labels
}
