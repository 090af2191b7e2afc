// Package community partitions the weighted following graph, characterizes
// every community, and surfaces accounts bridging between them.
package community

import (
	"math"

	"flocks/internal/config"
	"flocks/internal/graph"
	"flocks/internal/logging"
	"flocks/internal/model"
)

// Method names recorded in the result.
const (
	MethodModularity = "modularity"
	MethodLabelProp  = "label_propagation"
	MethodComponents = "components"
)

type Options struct {
	Resolution      float64
	MaxCommunities  int
	Representatives int
	Topics          map[string][]string
}

func OptionsFrom(cfg config.CommunityConfig) Options {
	return Options{
		Resolution:      cfg.Resolution,
		MaxCommunities:  cfg.MaxCommunities,
		Representatives: cfg.Representatives,
		Topics:          cfg.Topics,
	}
}

// Result is the complete detection output: the partition, per-community
// characterization, bridge accounts, the partition's modularity, and which
// method actually produced it.
type Result struct {
	Method      string                `json:"method"`
	Modularity  float64               `json:"modularity"`
	Communities []model.Community     `json:"communities"`
	Assignments map[string]int        `json:"assignments"`
	Bridges     []model.BridgeAccount `json:"bridges"`
}

// degenerate reports whether a partition of a connected-enough graph left
// every node in its own community.
func degenerate(g *graph.Graph, membership []int) bool {
	if g.Len() <= 1 {
		return false
	}
	nc := 0
	for _, c := range membership {
		if c+1 > nc {
			nc = c + 1
		}
	}
	return nc == g.Len()
}

// Detect partitions g. The primary method is greedy weighted-modularity
// optimization; if it degenerates the detector falls back to label
// propagation and finally to weakly connected components.
func Detect(g *graph.Graph, seeds []model.SeedAccount, opts Options) Result {
	if opts.Resolution <= 0 {
		opts.Resolution = 1.0
	}
	if opts.MaxCommunities <= 0 {
		opts.MaxCommunities = 10
	}
	if opts.Representatives <= 0 {
		opts.Representatives = 5
	}

	method := MethodModularity
	membership, ok := louvain(g, opts.Resolution)
	if ok && degenerate(g, membership) {
		// All-singleton output means no move ever improved modularity;
		// that partition carries no information.
		ok = false
	}
	if !ok {
		method = MethodLabelProp
		membership = labelPropagation(g, 100)
		if degenerate(g, membership) {
			method = MethodComponents
			membership = weakComponents(g)
		}
	}

	q := Modularity(g, membership, opts.Resolution)
	if math.IsNaN(q) {
		q = 0
	}
	if q < 0.05 {
		logging.Warn("community_weak_structure", map[string]any{"modularity": q, "method": method})
	}

	res := Result{
		Method:      method,
		Modularity:  q,
		Assignments: make(map[string]int, g.Len()),
	}
	for i, c := range membership {
		res.Assignments[g.IDs[i]] = c
	}
	res.Communities = characterize(g, membership, seeds, opts)
	res.Bridges = detectBridges(g, membership, opts.MaxCommunities)
	return res
}
