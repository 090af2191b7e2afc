package graph

import (
	"flocks/internal/logging"
	"flocks/internal/model"
)

// NodeMetrics are the per-node structural measures.
type NodeMetrics struct {
	AccountID        string                 `json:"account_id"`
	InDegree         int                    `json:"in_degree"`
	OutDegree        int                    `json:"out_degree"`
	WeightedInDegree float64                `json:"weighted_in_degree"`
	PageRank         float64                `json:"pagerank"`
	TierFractions    map[model.Tier]float64 `json:"tier_fractions"`
}

// MetricsResult carries the metrics in node order plus the PageRank
// convergence outcome.
type MetricsResult struct {
	Nodes      []NodeMetrics `json:"nodes"`
	Converged  bool          `json:"converged"`
	Iterations int           `json:"iterations"`
}

// Options bound the PageRank iteration.
type Options struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
}

func DefaultOptions() Options {
	return Options{Damping: 0.85, Tolerance: 1e-6, MaxIterations: 100}
}

// Metrics computes degree, weighted in-degree, PageRank and cross-tier
// incoming fractions for every node.
func (g *Graph) Metrics(opts Options) MetricsResult {
	n := g.Len()
	out := make([]NodeMetrics, n)
	for i := range out {
		out[i] = NodeMetrics{AccountID: g.IDs[i], TierFractions: make(map[model.Tier]float64)}
	}

	for _, e := range g.Edges {
		out[e.Target].InDegree++
		out[e.Source].OutDegree++
		out[e.Target].WeightedInDegree += e.Weight
	}

	for i := range out {
		total := 0
		for _, c := range g.tierIn[i] {
			total += c
		}
		if total == 0 {
			continue
		}
		for _, t := range []model.Tier{model.Tier1, model.Tier2, model.Tier3} {
			if c := g.tierIn[i][t]; c > 0 {
				out[i].TierFractions[t] = float64(c) / float64(total)
			}
		}
	}

	scores, converged, iters := g.pageRank(opts)
	if !converged {
		logging.Warn("pagerank_not_converged", map[string]any{"iterations": iters, "nodes": n})
	}
	for i := range out {
		out[i].PageRank = scores[i]
	}
	return MetricsResult{Nodes: out, Converged: converged, Iterations: iters}
}
