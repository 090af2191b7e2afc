package community

import (
	"sort"

	"flocks/internal/graph"
	"flocks/internal/model"
)

// detectBridges builds, for every node, a histogram of the communities its
// neighbors (in either direction) belong to. A node connecting to three or
// more distinct communities is a global bridge; exactly two, a local bridge.
// The bridge score is distinct-communities divided by the configured ceiling,
// capped at 1, so it never decreases as a node spans more communities.
func detectBridges(g *graph.Graph, membership []int, maxCommunities int) []model.BridgeAccount {
	n := g.Len()
	hist := make([]map[int]int, n)
	for i := range hist {
		hist[i] = make(map[int]int)
	}
	for _, e := range g.Edges {
		hist[e.Source][membership[e.Target]]++
		hist[e.Target][membership[e.Source]]++
	}

	var out []model.BridgeAccount
	for i := 0; i < n; i++ {
		distinct := len(hist[i])
		if distinct < 2 {
			continue
		}
		score := float64(distinct) / float64(maxCommunities)
		if score > 1 {
			score = 1
		}
		out = append(out, model.BridgeAccount{
			AccountID:    g.IDs[i],
			Connections:  hist[i],
			BridgeScore:  score,
			GlobalBridge: distinct >= 3,
			LocalBridge:  distinct == 2,
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].BridgeScore != out[b].BridgeScore {
			return out[a].BridgeScore > out[b].BridgeScore
		}
		return out[a].AccountID < out[b].AccountID
	})
	return out
}
