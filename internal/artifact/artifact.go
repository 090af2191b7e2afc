// Package artifact reads and writes the JSON snapshots exchanged at stage
// boundaries. Every stage output is a complete, self-contained document a
// human auditor can inspect on its own.
package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"flocks/internal/extract"
	"flocks/internal/graph"
	"flocks/internal/model"
)

// Standard artifact file names inside a run's output directory.
const (
	FileSeeds            = "seeds.json"
	FileEdges            = "edges.json"
	FileGraphMetrics     = "graph_metrics.json"
	FileCommunities      = "communities.json"
	FileCommunityDetails = "community_details.json"
	FileBridges          = "bridges.json"
	FileRanked           = "ranked.json"
)

// SeedsDoc is the classification stage artifact.
type SeedsDoc struct {
	RunID   string              `json:"run_id"`
	Seeds   []model.SeedAccount `json:"seeds"`
	Skipped int                 `json:"skipped_no_signal"`
}

// EdgesDoc is the relationship snapshot; the graph stage is re-runnable from
// this document alone.
type EdgesDoc struct {
	RunID    string                   `json:"run_id"`
	Edges    []model.FollowingEdge    `json:"edges"`
	Profiles map[string]model.Profile `json:"profiles"`
	Summary  extract.Summary          `json:"summary"`
}

// GraphMetricsDoc carries per-node structural metrics.
type GraphMetricsDoc struct {
	RunID      string              `json:"run_id"`
	Nodes      []graph.NodeMetrics `json:"nodes"`
	Converged  bool                `json:"pagerank_converged"`
	Iterations int                 `json:"pagerank_iterations"`
}

// CommunitiesDoc maps every account to its community id.
type CommunitiesDoc struct {
	RunID       string         `json:"run_id"`
	Method      string         `json:"method"`
	Modularity  float64        `json:"modularity"`
	Assignments map[string]int `json:"assignments"`
}

// CommunityDetailsDoc holds one record per community.
type CommunityDetailsDoc struct {
	RunID       string            `json:"run_id"`
	Communities []model.Community `json:"communities"`
}

// BridgesDoc lists the detected bridge accounts.
type BridgesDoc struct {
	RunID   string                `json:"run_id"`
	Bridges []model.BridgeAccount `json:"bridges"`
}

// RankedDoc is the final output: the fused, ranked candidate list with the
// full scoring trace per candidate.
type RankedDoc struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Candidates  []model.CandidateScore `json:"candidates"`
}

// Write marshals v as indented JSON to dir/name, creating dir as needed.
func Write(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal artifact")
	}
	return os.WriteFile(filepath.Join(dir, name), append(b, '\n'), 0o644)
}

// Read unmarshals dir/name into v.
func Read(dir, name string, v any) error {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(b, v), "parse %s", name)
}
