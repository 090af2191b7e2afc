package graph

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"flocks/internal/model"
)

func edge(s, t string, w float64) model.FollowingEdge {
	return model.FollowingEdge{SourceID: s, TargetID: t, Weight: w, DiscoveredAt: time.Unix(0, 0)}
}

func TestBuildEmptyIsFatal(t *testing.T) {
	_, err := Build(nil, nil)
	require.ErrorIs(t, err, ErrEmptyGraph)
}

func TestBuildAggregatesDuplicatePairsBySummingWeights(t *testing.T) {
	g, err := Build([]model.FollowingEdge{
		edge("s1", "x", 3.0),
		edge("s2", "x", 1.0),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, g.Len())

	// Two raw observations of distinct pairs stay distinct...
	require.Len(t, g.Edges, 2)

	g2, err := Build([]model.FollowingEdge{
		edge("s1", "x", 3.0),
		edge("s1", "x", 3.0),
	}, nil)
	require.NoError(t, err)
	// ...but the same pair collapses to one edge with summed weight.
	require.Len(t, g2.Edges, 1)
	require.Equal(t, 6.0, g2.Edges[0].Weight)
}

func TestBuildCreatesStubsForUnprofiledAccounts(t *testing.T) {
	profiles := map[string]model.Profile{
		"x": {ID: "x", Handle: "xh", FollowersCount: 10},
	}
	g, err := Build([]model.FollowingEdge{edge("s1", "x", 2.0)}, profiles)
	require.NoError(t, err)

	si, ok := g.Index("s1")
	require.True(t, ok)
	require.True(t, g.Stub[si])

	xi, _ := g.Index("x")
	require.False(t, g.Stub[xi])
	require.Equal(t, "xh", g.Profiles[xi].Handle)
}

func TestBuildDropsSelfLoops(t *testing.T) {
	g, err := Build([]model.FollowingEdge{
		edge("a", "a", 3.0),
		edge("a", "b", 3.0),
	}, nil)
	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
}

func TestMetricsDegreesAndTierFractions(t *testing.T) {
	g, err := Build([]model.FollowingEdge{
		edge("t1", "x", 3.0),
		edge("t2", "x", 2.0),
		edge("t3", "x", 1.0),
		edge("t3", "y", 1.0),
	}, nil)
	require.NoError(t, err)
	res := g.Metrics(DefaultOptions())

	byID := map[string]NodeMetrics{}
	for _, m := range res.Nodes {
		byID[m.AccountID] = m
	}
	x := byID["x"]
	require.Equal(t, 3, x.InDegree)
	require.Equal(t, 0, x.OutDegree)
	require.Equal(t, 6.0, x.WeightedInDegree)
	require.InDelta(t, 1.0/3.0, x.TierFractions[model.Tier1], 1e-9)
	require.InDelta(t, 1.0/3.0, x.TierFractions[model.Tier2], 1e-9)
	require.InDelta(t, 1.0/3.0, x.TierFractions[model.Tier3], 1e-9)
	require.Equal(t, 2, byID["t3"].OutDegree)
}

func TestPageRankSumsToOne(t *testing.T) {
	// Ring with an extra chord, no dangling nodes.
	g, err := Build([]model.FollowingEdge{
		edge("a", "b", 3.0),
		edge("b", "c", 2.0),
		edge("c", "a", 1.0),
		edge("a", "c", 3.0),
	}, nil)
	require.NoError(t, err)
	res := g.Metrics(DefaultOptions())
	require.True(t, res.Converged)

	sum := 0.0
	for _, m := range res.Nodes {
		sum += m.PageRank
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestPageRankHandlesDanglingNodes(t *testing.T) {
	g, err := Build([]model.FollowingEdge{
		edge("a", "b", 3.0),
		edge("a", "c", 3.0),
	}, nil)
	require.NoError(t, err)
	res := g.Metrics(DefaultOptions())
	require.True(t, res.Converged)
	sum := 0.0
	for _, m := range res.Nodes {
		sum += m.PageRank
	}
	require.InDelta(t, 1.0, sum, 1e-4)
}

func TestPageRankFavorsHeavierIncomingMass(t *testing.T) {
	// b receives the heavy edge from a, c the light one.
	g, err := Build([]model.FollowingEdge{
		edge("a", "b", 3.0),
		edge("a", "c", 1.0),
		edge("b", "a", 1.0),
		edge("c", "a", 1.0),
	}, nil)
	require.NoError(t, err)
	res := g.Metrics(DefaultOptions())

	byID := map[string]float64{}
	for _, m := range res.Nodes {
		byID[m.AccountID] = m.PageRank
	}
	require.Greater(t, byID["b"], byID["c"])
}

// Three seeds, one per tier, all following the same five accounts.
func TestScenarioThreeTiersFiveTargets(t *testing.T) {
	var edges []model.FollowingEdge
	seeds := map[string]float64{"t1": 3.0, "t2": 2.0, "t3": 1.0}
	for s, w := range seeds {
		for i := 0; i < 5; i++ {
			edges = append(edges, edge(s, fmt.Sprintf("acct%d", i), w))
		}
	}
	g, err := Build(edges, nil)
	require.NoError(t, err)
	res := g.Metrics(DefaultOptions())

	for _, m := range res.Nodes {
		if _, isSeed := seeds[m.AccountID]; isSeed {
			continue
		}
		require.Equal(t, 6.0, m.WeightedInDegree, m.AccountID)
		require.Equal(t, 3, m.InDegree)
	}
}

func TestMetricsDeterministic(t *testing.T) {
	edges := []model.FollowingEdge{
		edge("a", "b", 3.0), edge("b", "c", 2.0), edge("c", "a", 1.0),
	}
	g1, _ := Build(edges, nil)
	g2, _ := Build(edges, nil)
	r1 := g1.Metrics(DefaultOptions())
	r2 := g2.Metrics(DefaultOptions())
	for i := range r1.Nodes {
		require.Equal(t, r1.Nodes[i].AccountID, r2.Nodes[i].AccountID)
		require.True(t, math.Abs(r1.Nodes[i].PageRank-r2.Nodes[i].PageRank) == 0)
	}
}
