package scorer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flocks/internal/config"
	"flocks/internal/model"
)

func newDefault() *Scorer {
	return New(config.Default().Scoring)
}

func TestScoreAllEmptyIsFatal(t *testing.T) {
	_, err := newDefault().Score(Inputs{})
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestMinMaxEndpoints(t *testing.T) {
	ranked, err := newDefault().Score(Inputs{
		Graph: map[string]float64{"a": 10, "b": 30, "c": 20},
	})
	require.NoError(t, err)

	norm := map[string]float64{}
	for _, c := range ranked {
		norm[c.Handle] = c.Normalized[model.StrategyGraph]
	}
	require.Equal(t, 0.0, norm["a"])
	require.Equal(t, 1.0, norm["b"])
	require.Equal(t, 0.5, norm["c"])
}

// X tops every strategy: pre-bonus 1.0 and final exactly 1.5.
func TestTopCandidateInAllThreeStrategies(t *testing.T) {
	ranked, err := newDefault().Score(Inputs{
		Graph:      map[string]float64{"x": 9, "other": 1},
		Content:    map[string]float64{"x": 0.8, "other": 0.2},
		Engagement: map[string]float64{"x": 100, "other": 10},
	})
	require.NoError(t, err)

	x := ranked[0]
	require.Equal(t, "x", x.Handle)
	require.Equal(t, 3, x.NumSources)
	require.InDelta(t, 1.0, x.WeightedSum, 1e-9)
	require.InDelta(t, 1.5, x.FinalScore, 1e-9)
}

// Y appears only in engagement: single-candidate normalization is 1.0, the
// others contribute nothing, and the engagement weight is not redistributed.
func TestSingleStrategyCandidate(t *testing.T) {
	ranked, err := newDefault().Score(Inputs{
		Engagement: map[string]float64{"y": 42},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	y := ranked[0]
	require.Equal(t, 1, y.NumSources)
	require.Equal(t, 1.0, y.Normalized[model.StrategyEngagement])
	require.InDelta(t, 0.33, y.WeightedSum, 1e-9)
	require.InDelta(t, 0.33, y.FinalScore, 1e-9)
	require.Equal(t, 42.0, y.Raw[model.StrategyEngagement])
}

func TestBonusLaw(t *testing.T) {
	ranked, err := newDefault().Score(Inputs{
		Graph:      map[string]float64{"one": 5, "two": 3, "three": 1},
		Content:    map[string]float64{"two": 7, "three": 2},
		Engagement: map[string]float64{"three": 9},
	})
	require.NoError(t, err)

	bonus := map[int]float64{1: 1.0, 2: 1.2, 3: 1.5}
	for _, c := range ranked {
		require.InDelta(t, c.WeightedSum*bonus[c.NumSources], c.FinalScore, 1e-12, c.Handle)
	}
}

func TestOrderingAndIdempotence(t *testing.T) {
	in := Inputs{
		Graph:   map[string]float64{"a": 1, "b": 1, "c": 5},
		Content: map[string]float64{"a": 2, "b": 2},
	}
	s := newDefault()
	r1, err := s.Score(in)
	require.NoError(t, err)
	r2, err := s.Score(in)
	require.NoError(t, err)
	require.Equal(t, r1, r2)

	for i := 1; i < len(r1); i++ {
		require.GreaterOrEqual(t, r1[i-1].FinalScore, r1[i].FinalScore)
		if r1[i-1].FinalScore == r1[i].FinalScore {
			require.Less(t, r1[i-1].Handle, r1[i].Handle)
		}
	}
}

func TestAdaptiveWeightsRenormalize(t *testing.T) {
	cfg := config.Default().Scoring
	cfg.AdaptiveWeights = true
	s := New(cfg)

	ranked, err := s.Score(Inputs{Engagement: map[string]float64{"y": 42}})
	require.NoError(t, err)
	// With only engagement reporting, its weight renormalizes to 1.
	require.InDelta(t, 1.0, ranked[0].WeightedSum, 1e-9)
	require.InDelta(t, 1.0, ranked[0].FinalScore, 1e-9)
}

func TestScoreCarriesDisplayNames(t *testing.T) {
	ranked, err := newDefault().Score(Inputs{
		Graph:   map[string]float64{"x": 2, "y": 1},
		Content: map[string]float64{"x": 0.9},
		Names:   map[string]string{"x": "Xavier Display"},
	})
	require.NoError(t, err)

	byHandle := map[string]model.CandidateScore{}
	for _, c := range ranked {
		byHandle[c.Handle] = c
	}
	require.Equal(t, "Xavier Display", byHandle["x"].Name)
	// Without a known display name the handle stands in.
	require.Equal(t, "y", byHandle["y"].Name)
}

func TestTwoEmptyStrategiesIsNotAnError(t *testing.T) {
	ranked, err := newDefault().Score(Inputs{
		Graph: map[string]float64{"a": 1, "b": 2},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	require.Equal(t, "b", ranked[0].Handle)
}
