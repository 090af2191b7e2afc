// Package scorer fuses the graph, content and engagement candidate lists
// into one ranked output with a full per-candidate trace.
package scorer

import (
	"sort"

	"github.com/pkg/errors"

	"flocks/internal/config"
	"flocks/internal/model"
)

// ErrNoCandidates means every strategy reported an empty list; there is
// nothing to rank, which is fatal for this stage.
var ErrNoCandidates = errors.New("scorer: no candidates from any strategy")

// Inputs are the three independently produced candidate lists, keyed by
// handle. A nil or empty map means that strategy found nothing, which is
// fine as long as at least one strategy reported.
type Inputs struct {
	Graph      map[string]float64
	Content    map[string]float64
	Engagement map[string]float64
	// Names maps handle to display name for the final report. A candidate
	// without an entry reports under its handle.
	Names map[string]string
}

func (in Inputs) forStrategy(s model.Strategy) map[string]float64 {
	switch s {
	case model.StrategyGraph:
		return in.Graph
	case model.StrategyContent:
		return in.Content
	case model.StrategyEngagement:
		return in.Engagement
	}
	return nil
}

type Scorer struct {
	weights  map[model.Strategy]float64
	bonus    map[int]float64
	adaptive bool
}

func New(cfg config.ScoringConfig) *Scorer {
	weights := cfg.Weights
	if len(weights) == 0 {
		weights = map[model.Strategy]float64{
			model.StrategyGraph:      0.33,
			model.StrategyContent:    0.34,
			model.StrategyEngagement: 0.33,
		}
	}
	bonus := cfg.Bonus
	if len(bonus) == 0 {
		bonus = map[int]float64{1: 1.0, 2: 1.2, 3: 1.5}
	}
	return &Scorer{weights: weights, bonus: bonus, adaptive: cfg.AdaptiveWeights}
}

// Score normalizes each strategy's raw scores over the candidates that
// strategy actually reported, fuses them with the configured weights, applies
// the multi-source bonus, and returns the candidates ranked by final score
// descending with ties broken by handle.
//
// Default policy is fixed weighting: a strategy that did not report a
// candidate contributes zero and its weight is not redistributed. The
// adaptive variant renormalizes weights among only the strategies that
// reported the candidate.
func (s *Scorer) Score(in Inputs) ([]model.CandidateScore, error) {
	if len(in.Graph) == 0 && len(in.Content) == 0 && len(in.Engagement) == 0 {
		return nil, ErrNoCandidates
	}

	normalized := make(map[model.Strategy]map[string]float64, len(model.Strategies))
	handles := make(map[string]struct{})
	for _, strat := range model.Strategies {
		raw := in.forStrategy(strat)
		normalized[strat] = minMax(raw)
		for h := range raw {
			handles[h] = struct{}{}
		}
	}

	out := make([]model.CandidateScore, 0, len(handles))
	for h := range handles {
		cs := model.CandidateScore{
			Handle:     h,
			Name:       in.Names[h],
			Raw:        make(map[model.Strategy]float64),
			Normalized: make(map[model.Strategy]float64),
		}
		if cs.Name == "" {
			cs.Name = h
		}
		weightSum := 0.0
		for _, strat := range model.Strategies {
			raw, ok := in.forStrategy(strat)[h]
			if !ok {
				continue
			}
			cs.Raw[strat] = raw
			cs.Normalized[strat] = normalized[strat][h]
			cs.NumSources++
			cs.WeightedSum += s.weights[strat] * normalized[strat][h]
			weightSum += s.weights[strat]
		}
		if s.adaptive && weightSum > 0 {
			cs.WeightedSum /= weightSum
		}
		cs.FinalScore = cs.WeightedSum * s.bonusFor(cs.NumSources)
		out = append(out, cs)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return out[i].Handle < out[j].Handle
	})
	return out, nil
}

func (s *Scorer) bonusFor(numSources int) float64 {
	if b, ok := s.bonus[numSources]; ok {
		return b
	}
	return 1.0
}

// minMax rescales raw scores so the strategy's minimum maps to 0 and maximum
// to 1. With a single candidate, or all-equal raw scores, every candidate
// normalizes to 1.0.
func minMax(raw map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(raw))
	if len(raw) == 0 {
		return out
	}
	first := true
	var lo, hi float64
	for _, v := range raw {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	for h, v := range raw {
		if span == 0 {
			out[h] = 1.0
			continue
		}
		out[h] = (v - lo) / span
	}
	return out
}
