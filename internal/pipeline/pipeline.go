// Package pipeline runs the discovery batch end to end: classify seeds,
// extract relationships, build the graph, detect communities, fuse scores.
// Stages run strictly sequentially; each consumes the complete output of the
// previous one and leaves a self-contained artifact behind.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"flocks/internal/artifact"
	"flocks/internal/community"
	"flocks/internal/config"
	"flocks/internal/extract"
	"flocks/internal/graph"
	"flocks/internal/logging"
	"flocks/internal/metrics"
	"flocks/internal/model"
	"flocks/internal/provider"
	"flocks/internal/scorer"
	"flocks/internal/store"
	"flocks/internal/tier"
)

// ErrNoSeeds means no seed carried a tier signal; there is nothing to extract.
var ErrNoSeeds = errors.New("pipeline: no seed matched any tier rule")

// Inputs bundles everything a run consumes: seed profiles plus the two
// externally produced strategy documents (either may be empty).
type Inputs struct {
	SeedProfiles     map[string]string
	ContentScores    map[string]float64
	EngagementScores map[string]float64
}

// Outcome is the full run result with every stage's artifact content.
type Outcome struct {
	RunID       string
	Seeds       []model.SeedAccount
	Edges       []model.FollowingEdge
	Profiles    map[string]model.Profile
	ExtractSum  extract.Summary
	Graph       *graph.Graph
	Metrics     graph.MetricsResult
	Communities community.Result
	Ranked      []model.CandidateScore
}

type Pipeline struct {
	cfg    config.Config
	lister provider.RelationshipLister
	db     *store.DB // optional snapshot database
	now    func() time.Time
}

func New(cfg config.Config, lister provider.RelationshipLister, db *store.DB) *Pipeline {
	return &Pipeline{cfg: cfg, lister: lister, db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Extract runs the classify and extract stages only, leaving the seed and
// edge snapshots behind; graph, communities and score can be re-run from
// those artifacts without re-fetching.
func (p *Pipeline) Extract(ctx context.Context, in Inputs) (*Outcome, error) {
	runID := uuid.NewString()
	started := p.now()
	if p.db != nil {
		if err := p.db.StartRun(ctx, runID, started); err != nil {
			return nil, errors.Wrap(err, "start run")
		}
	}
	out := &Outcome{RunID: runID}
	outDir := p.cfg.Storage.OutDir

	// classify
	stageStart := p.now()
	classifier := tier.New(p.cfg.Tiers)
	seeds, skipped := classifier.ClassifyAll(in.SeedProfiles)
	metrics.ObserveStageDuration("classify", stageStart)
	logging.Info("stage_classify", map[string]any{
		"run_id": runID, "attempted": len(in.SeedProfiles), "tiered": len(seeds), "no_signal": skipped,
	})
	if len(seeds) == 0 {
		metrics.StageErrors.WithLabelValues("classify").Inc()
		return out, ErrNoSeeds
	}
	out.Seeds = seeds
	if err := artifact.Write(outDir, artifact.FileSeeds, artifact.SeedsDoc{RunID: runID, Seeds: seeds, Skipped: skipped}); err != nil {
		return out, err
	}
	if p.db != nil {
		if err := p.db.PutSeeds(ctx, runID, seeds); err != nil {
			return out, errors.Wrap(err, "store seeds")
		}
	}

	// extract
	stageStart = p.now()
	extractor := extract.New(p.lister, p.cfg)
	edges, profiles, esum := extractor.Run(ctx, seeds)
	metrics.ObserveStageDuration("extract", stageStart)
	logging.Info("stage_extract", map[string]any{
		"run_id": runID, "seeds": esum.SeedsAttempted, "succeeded": esum.SeedsSucceeded,
		"failed": esum.SeedsFailed, "discovered": esum.Discovered, "kept": esum.Kept,
		"filtered": esum.Filtered, "budget_exhausted": esum.BudgetExhausted,
	})
	out.Edges = edges
	out.Profiles = profiles
	out.ExtractSum = esum
	if err := artifact.Write(outDir, artifact.FileEdges, artifact.EdgesDoc{RunID: runID, Edges: edges, Profiles: profiles, Summary: esum}); err != nil {
		return out, err
	}
	if p.db != nil {
		if err := p.db.PutEdges(ctx, runID, edges); err != nil {
			return out, errors.Wrap(err, "store edges")
		}
	}
	return out, nil
}

// Run executes the whole batch. Per-record and per-seed failures are
// contained inside their stages; only structural failures (no seeds, no
// graph, no candidates) abort the run.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Outcome, error) {
	metrics.PipelineRuns.Inc()
	out, err := p.Extract(ctx, in)
	if err != nil {
		return out, err
	}
	runID := out.RunID
	outDir := p.cfg.Storage.OutDir

	// graph
	stageStart := p.now()
	g, err := graph.Build(out.Edges, out.Profiles)
	if err != nil {
		metrics.StageErrors.WithLabelValues("graph").Inc()
		return out, err
	}
	gm := g.Metrics(graph.Options{
		Damping:       p.cfg.Graph.Damping,
		Tolerance:     p.cfg.Graph.Tolerance,
		MaxIterations: p.cfg.Graph.MaxIterations,
	})
	metrics.ObserveStageDuration("graph", stageStart)
	logging.Info("stage_graph", map[string]any{
		"run_id": runID, "nodes": g.Len(), "edges": len(g.Edges),
		"pagerank_converged": gm.Converged, "iterations": gm.Iterations,
	})
	out.Graph = g
	out.Metrics = gm
	if err := artifact.Write(outDir, artifact.FileGraphMetrics, artifact.GraphMetricsDoc{
		RunID: runID, Nodes: gm.Nodes, Converged: gm.Converged, Iterations: gm.Iterations,
	}); err != nil {
		return out, err
	}
	if p.db != nil {
		rows := make([]store.NodeMetric, 0, len(gm.Nodes))
		for _, m := range gm.Nodes {
			rows = append(rows, store.NodeMetric{
				Account: m.AccountID, InDegree: m.InDegree, OutDegree: m.OutDegree,
				WeightedIn: m.WeightedInDegree, PageRank: m.PageRank,
			})
		}
		if err := p.db.PutNodeMetrics(ctx, runID, rows); err != nil {
			return out, errors.Wrap(err, "store node metrics")
		}
	}

	// communities
	stageStart = p.now()
	cres := community.Detect(g, out.Seeds, community.OptionsFrom(p.cfg.Community))
	metrics.ObserveStageDuration("communities", stageStart)
	logging.Info("stage_communities", map[string]any{
		"run_id": runID, "method": cres.Method, "communities": len(cres.Communities),
		"modularity": cres.Modularity, "bridges": len(cres.Bridges),
	})
	out.Communities = cres
	if err := artifact.Write(outDir, artifact.FileCommunities, artifact.CommunitiesDoc{
		RunID: runID, Method: cres.Method, Modularity: cres.Modularity, Assignments: cres.Assignments,
	}); err != nil {
		return out, err
	}
	if err := artifact.Write(outDir, artifact.FileCommunityDetails, artifact.CommunityDetailsDoc{
		RunID: runID, Communities: cres.Communities,
	}); err != nil {
		return out, err
	}
	if err := artifact.Write(outDir, artifact.FileBridges, artifact.BridgesDoc{RunID: runID, Bridges: cres.Bridges}); err != nil {
		return out, err
	}

	// score
	stageStart = p.now()
	graphScores := make(map[string]float64, g.Len())
	names := make(map[string]string, g.Len())
	for i, m := range gm.Nodes {
		handle := g.Profiles[i].Handle
		if handle == "" {
			handle = m.AccountID
		}
		graphScores[handle] = m.PageRank
		names[handle] = g.Profiles[i].Name
	}
	sc := scorer.New(p.cfg.Scoring)
	ranked, err := sc.Score(scorer.Inputs{
		Graph:      graphScores,
		Content:    in.ContentScores,
		Engagement: in.EngagementScores,
		Names:      names,
	})
	if err != nil {
		metrics.StageErrors.WithLabelValues("score").Inc()
		return out, err
	}
	metrics.ObserveStageDuration("score", stageStart)
	logging.Info("stage_score", map[string]any{"run_id": runID, "candidates": len(ranked)})
	out.Ranked = ranked
	if err := artifact.Write(outDir, artifact.FileRanked, artifact.RankedDoc{
		RunID: runID, GeneratedAt: p.now(), Candidates: ranked,
	}); err != nil {
		return out, err
	}

	if p.db != nil {
		summary := map[string]any{
			"extract":     out.ExtractSum,
			"graph":       map[string]any{"nodes": g.Len(), "edges": len(g.Edges), "converged": gm.Converged},
			"communities": map[string]any{"method": cres.Method, "count": len(cres.Communities), "modularity": cres.Modularity},
			"ranked":      len(ranked),
		}
		if err := p.db.FinishRun(ctx, runID, p.now(), summary); err != nil {
			return out, errors.Wrap(err, "finish run")
		}
	}
	return out, nil
}
