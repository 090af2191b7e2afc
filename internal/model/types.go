package model

import "time"

// Tier is a seed account's authority rank; 1 is the highest.
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// Weight returns the edge weight contributed by a seed of this tier.
func (t Tier) Weight() float64 {
	switch t {
	case Tier1:
		return 3.0
	case Tier2:
		return 2.0
	case Tier3:
		return 1.0
	}
	return 0
}

// SeedAccount is a classified seed; created once per run and never mutated.
type SeedAccount struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	Tier      Tier   `json:"tier"`
	Reasoning string `json:"reasoning"`
}

// Profile is the subset of account fields the provider reports per target.
type Profile struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	FollowersCount int       `json:"followers_count"`
	Verified       bool      `json:"verified"`
	Protected      bool      `json:"protected"`
	Suspended      bool      `json:"suspended"`
	Language       string    `json:"language"`
}

// FollowingEdge is one observed following relationship. Weight is a pure
// function of the source seed's tier.
type FollowingEdge struct {
	SourceID     string    `json:"source_id"`
	TargetID     string    `json:"target_id"`
	Weight       float64   `json:"weight"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// CommunitySizeBucket labels a community as small (1-3), medium (4-10) or
// large (11+).
type CommunitySizeBucket string

const (
	SizeSmall  CommunitySizeBucket = "small"
	SizeMedium CommunitySizeBucket = "medium"
	SizeLarge  CommunitySizeBucket = "large"
)

// Community is one detected partition cell with its characterization.
type Community struct {
	ID               int                 `json:"id"`
	Accounts         []string            `json:"accounts"`
	Size             int                 `json:"size"`
	SizeBucket       CommunitySizeBucket `json:"size_bucket"`
	VerificationRate float64             `json:"verification_rate"`
	AvgFollowers     float64             `json:"avg_followers"`
	SeedCount        int                 `json:"seed_count"`
	TierDistribution map[Tier]int        `json:"tier_distribution"`
	InternalEdges    int                 `json:"internal_edges"`
	ExternalEdges    int                 `json:"external_edges"`
	Topics           []string            `json:"topics"`
	Representatives  []string            `json:"representatives"`
}

// BridgeAccount marks a node whose neighbors span multiple communities.
// GlobalBridge and LocalBridge are mutually exclusive.
type BridgeAccount struct {
	AccountID    string      `json:"account_id"`
	Connections  map[int]int `json:"connections"`
	BridgeScore  float64     `json:"bridge_score"`
	GlobalBridge bool        `json:"global_bridge"`
	LocalBridge  bool        `json:"local_bridge"`
}

// Strategy enumerates the independent candidate producers the scorer fuses.
type Strategy string

const (
	StrategyGraph      Strategy = "graph"
	StrategyContent    Strategy = "content"
	StrategyEngagement Strategy = "engagement"
)

// Strategies lists all strategies in their canonical order.
var Strategies = []Strategy{StrategyGraph, StrategyContent, StrategyEngagement}

// CandidateScore carries the full scoring trace for one candidate: raw and
// normalized per-strategy values, the pre-bonus weighted sum, and the final
// bonus-adjusted score.
type CandidateScore struct {
	Handle      string               `json:"handle"`
	Name        string               `json:"name,omitempty"`
	Raw         map[Strategy]float64 `json:"raw_scores"`
	Normalized  map[Strategy]float64 `json:"normalized_scores"`
	NumSources  int                  `json:"num_sources"`
	WeightedSum float64              `json:"weighted_sum"`
	FinalScore  float64              `json:"final_score"`
}
