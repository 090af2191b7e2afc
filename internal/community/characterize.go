package community

import (
	"sort"

	"flocks/internal/graph"
	"flocks/internal/model"
	"flocks/internal/util"
)

func sizeBucket(n int) model.CommunitySizeBucket {
	switch {
	case n <= 3:
		return model.SizeSmall
	case n <= 10:
		return model.SizeMedium
	}
	return model.SizeLarge
}

// characterize builds the per-community record set: membership, size bucket,
// verification rate, average followers, seed/tier makeup, internal and
// external edge counts, inferred topics, and representative accounts ranked
// by weighted in-degree.
func characterize(g *graph.Graph, membership []int, seeds []model.SeedAccount, opts Options) []model.Community {
	nc := 0
	for _, c := range membership {
		if c+1 > nc {
			nc = c + 1
		}
	}

	seedTier := make(map[string]model.Tier, len(seeds))
	for _, s := range seeds {
		seedTier[s.ID] = s.Tier
	}

	weightedIn := make([]float64, g.Len())
	internal := make([]int, nc)
	external := make([]int, nc)
	for _, e := range g.Edges {
		weightedIn[e.Target] += e.Weight
		cs, ct := membership[e.Source], membership[e.Target]
		if cs == ct {
			internal[cs]++
		} else {
			external[cs]++
			external[ct]++
		}
	}

	members := make([][]int, nc)
	for i, c := range membership {
		members[c] = append(members[c], i)
	}

	out := make([]model.Community, 0, nc)
	for c := 0; c < nc; c++ {
		comm := model.Community{
			ID:               c,
			Size:             len(members[c]),
			SizeBucket:       sizeBucket(len(members[c])),
			TierDistribution: make(map[model.Tier]int),
			InternalEdges:    internal[c],
			ExternalEdges:    external[c],
		}

		verified := 0
		followers := 0.0
		for _, i := range members[c] {
			comm.Accounts = append(comm.Accounts, g.IDs[i])
			p := g.Profiles[i]
			if p.Verified {
				verified++
			}
			followers += float64(p.FollowersCount)
			if tier, ok := seedTier[g.IDs[i]]; ok {
				comm.SeedCount++
				comm.TierDistribution[tier]++
			}
		}
		sort.Strings(comm.Accounts)
		if comm.Size > 0 {
			comm.VerificationRate = float64(verified) / float64(comm.Size)
			comm.AvgFollowers = followers / float64(comm.Size)
		}

		comm.Topics = inferTopics(g, members[c], opts.Topics)
		comm.Representatives = representatives(g, members[c], weightedIn, opts.Representatives)
		out = append(out, comm)
	}
	return out
}

// inferTopics matches each member's handle and display text against the
// configured topic keyword sets; topics are ordered by how many members
// matched, capped at three labels.
func inferTopics(g *graph.Graph, members []int, topics map[string][]string) []string {
	if len(topics) == 0 {
		return nil
	}
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)

	type hit struct {
		name  string
		count int
	}
	var hits []hit
	for _, name := range names {
		kws := topics[name]
		count := 0
		for _, i := range members {
			p := g.Profiles[i]
			text := p.Handle + " " + p.Name + " " + p.Description
			if util.ContainsAnyCaseInsensitive(text, kws) {
				count++
			}
		}
		if count > 0 {
			hits = append(hits, hit{name: name, count: count})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })
	if len(hits) > 3 {
		hits = hits[:3]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.name)
	}
	return out
}

// representatives ranks members by weighted in-degree, ties by account id.
func representatives(g *graph.Graph, members []int, weightedIn []float64, n int) []string {
	ranked := append([]int(nil), members...)
	sort.Slice(ranked, func(a, b int) bool {
		wa, wb := weightedIn[ranked[a]], weightedIn[ranked[b]]
		if wa != wb {
			return wa > wb
		}
		return g.IDs[ranked[a]] < g.IDs[ranked[b]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, 0, len(ranked))
	for _, i := range ranked {
		out = append(out, g.IDs[i])
	}
	return out
}
