// Package graph assembles filtered following edges into a weighted directed
// graph and computes per-node structural metrics.
package graph

import (
	"sort"

	"github.com/pkg/errors"

	"flocks/internal/model"
)

// ErrEmptyGraph means the relationship set was empty; nothing downstream can
// run without a graph, so this is fatal for the pipeline.
var ErrEmptyGraph = errors.New("graph: no relationships to build from")

// Edge is one aggregated directed edge between interned node indices.
type Edge struct {
	Source int
	Target int
	Weight float64
}

// Graph is an arena of nodes indexed by dense ints with a flat edge list.
// Node order is the sorted account-id order, so identical input always
// produces an identical structure.
type Graph struct {
	IDs      []string
	Profiles []model.Profile
	Stub     []bool
	Edges    []Edge

	index map[string]int
	// tierIn counts raw (pre-aggregation) incoming edges per source tier.
	tierIn []map[model.Tier]int
}

// Build interns every account appearing as source or target, aggregates
// duplicate (source, target) observations by summing their weights (a pair
// endorsed by two seeds carries both tiers' mass), and creates stub nodes for
// accounts that were never profiled.
func Build(edges []model.FollowingEdge, profiles map[string]model.Profile) (*Graph, error) {
	if len(edges) == 0 {
		return nil, ErrEmptyGraph
	}

	idSet := make(map[string]struct{})
	for _, e := range edges {
		idSet[e.SourceID] = struct{}{}
		idSet[e.TargetID] = struct{}{}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	g := &Graph{
		IDs:      ids,
		Profiles: make([]model.Profile, len(ids)),
		Stub:     make([]bool, len(ids)),
		index:    make(map[string]int, len(ids)),
		tierIn:   make([]map[model.Tier]int, len(ids)),
	}
	for i, id := range ids {
		g.index[id] = i
		if p, ok := profiles[id]; ok {
			g.Profiles[i] = p
		} else {
			g.Profiles[i] = model.Profile{ID: id, Handle: id}
			g.Stub[i] = true
		}
		g.tierIn[i] = make(map[model.Tier]int)
	}

	type pair struct{ s, t int }
	agg := make(map[pair]float64)
	for _, e := range edges {
		s, t := g.index[e.SourceID], g.index[e.TargetID]
		if s == t {
			continue
		}
		agg[pair{s, t}] += e.Weight
		if tier, ok := tierFromWeight(e.Weight); ok {
			g.tierIn[t][tier]++
		}
	}

	pairs := make([]pair, 0, len(agg))
	for p := range agg {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].s != pairs[j].s {
			return pairs[i].s < pairs[j].s
		}
		return pairs[i].t < pairs[j].t
	})
	g.Edges = make([]Edge, 0, len(pairs))
	for _, p := range pairs {
		g.Edges = append(g.Edges, Edge{Source: p.s, Target: p.t, Weight: agg[p]})
	}
	return g, nil
}

// Index returns the dense index for an account id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.IDs) }

func tierFromWeight(w float64) (model.Tier, bool) {
	switch w {
	case 3.0:
		return model.Tier1, true
	case 2.0:
		return model.Tier2, true
	case 1.0:
		return model.Tier3, true
	}
	return 0, false
}
