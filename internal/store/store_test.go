package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"flocks/internal/model"
)

func TestEdgeSnapshotRoundTrip(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.StartRun(ctx, "run1", now))
	require.NoError(t, db.PutEdges(ctx, "run1", []model.FollowingEdge{
		{SourceID: "s1", TargetID: "x", Weight: 3.0, DiscoveredAt: now},
		{SourceID: "s2", TargetID: "x", Weight: 1.0, DiscoveredAt: now},
	}))

	edges, err := db.LoadEdges(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, edges, 2)
	require.Equal(t, "s1", edges[0].SourceID)
	require.Equal(t, now, edges[0].DiscoveredAt)
}

func TestPutEdgesSumsDuplicatePairs(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.PutEdges(ctx, "run1", []model.FollowingEdge{
		{SourceID: "s1", TargetID: "x", Weight: 3.0, DiscoveredAt: now},
		{SourceID: "s1", TargetID: "x", Weight: 2.0, DiscoveredAt: now},
	}))

	edges, err := db.LoadEdges(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, 5.0, edges[0].Weight)
}

func TestSeedsAndMetrics(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	require.NoError(t, db.PutSeeds(ctx, "run1", []model.SeedAccount{
		{Handle: "alice", Tier: model.Tier1, Reasoning: "institution match"},
	}))
	require.NoError(t, db.PutNodeMetrics(ctx, "run1", []NodeMetric{
		{Account: "x", InDegree: 3, WeightedIn: 6.0, PageRank: 0.4},
	}))

	ms, err := db.LoadNodeMetrics(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, ms, 1)
	require.Equal(t, 6.0, ms[0].WeightedIn)

	require.NoError(t, db.FinishRun(ctx, "run1", time.Now(), map[string]int{"kept": 1}))
}
