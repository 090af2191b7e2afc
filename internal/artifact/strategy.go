package artifact

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"flocks/internal/logging"
)

// ReadStrategyScores loads an externally produced candidate/score document:
// a JSON object mapping handle to a record with a numeric overall score,
// under "overall_score" or "score". Records without a usable score are
// skipped and counted, never fatal; an unreadable or non-object document is.
func ReadStrategyScores(path string) (map[string]float64, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, 0, errors.Wrapf(err, "parse strategy document %s", path)
	}

	out := make(map[string]float64, len(raw))
	skipped := 0
	for handle, rec := range raw {
		score, ok := overallScore(rec)
		if !ok {
			skipped++
			logging.Warn("strategy_record_skipped", map[string]any{"path": path, "handle": handle})
			continue
		}
		out[handle] = score
	}
	return out, skipped, nil
}

func overallScore(rec json.RawMessage) (float64, bool) {
	// Bare number is accepted as the score itself.
	var n float64
	if err := json.Unmarshal(rec, &n); err == nil {
		return n, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(rec, &obj); err != nil {
		return 0, false
	}
	for _, key := range []string{"overall_score", "score"} {
		if v, ok := obj[key]; ok {
			if err := json.Unmarshal(v, &n); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
