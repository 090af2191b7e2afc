package tier

import (
	"fmt"
	"sort"
	"strings"

	"flocks/internal/config"
	"flocks/internal/model"
	"flocks/internal/util"
)

// Classifier assigns priority tiers to seed accounts from profile text.
// The curated lists and keyword sets are immutable for the lifetime of a run.
type Classifier struct {
	cfg config.TiersConfig
}

func New(cfg config.TiersConfig) *Classifier {
	if cfg.MinKeywordHits <= 0 {
		cfg.MinKeywordHits = 2
	}
	return &Classifier{cfg: cfg}
}

// Classify evaluates the tier rules in priority order: elite institutions
// (Tier 1), major companies (Tier 2), then domain keyword density (Tier 3).
// The second return is false when no rule matches; that seed carries no
// signal and is excluded, which is not an error.
func (c *Classifier) Classify(handle, profileText string) (model.SeedAccount, bool) {
	// The handle participates in matching so a config-listed seed with no
	// profile text can still classify.
	text := util.NormalizeWhitespace(handle + " " + profileText)

	if ok, hit := matchCurated(text, c.cfg.Institutions); ok {
		return model.SeedAccount{
			ID:        handle,
			Handle:    handle,
			Tier:      model.Tier1,
			Reasoning: fmt.Sprintf("institution match: %q", hit),
		}, true
	}
	if ok, hit := matchCurated(text, c.cfg.Companies); ok {
		return model.SeedAccount{
			ID:        handle,
			Handle:    handle,
			Tier:      model.Tier2,
			Reasoning: fmt.Sprintf("company match: %q", hit),
		}, true
	}
	if n, matched := util.CountMatchesCaseInsensitive(text, c.cfg.Keywords); n >= c.cfg.MinKeywordHits {
		return model.SeedAccount{
			ID:        handle,
			Handle:    handle,
			Tier:      model.Tier3,
			Reasoning: fmt.Sprintf("%d keyword hits: %s", n, strings.Join(matched, ", ")),
		}, true
	}
	return model.SeedAccount{}, false
}

// ClassifyAll classifies a handle -> profile text map, returning the tiered
// seeds in handle order plus the count of seeds that carried no signal.
func (c *Classifier) ClassifyAll(profiles map[string]string) ([]model.SeedAccount, int) {
	handles := make([]string, 0, len(profiles))
	for h := range profiles {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	var seeds []model.SeedAccount
	skipped := 0
	for _, h := range handles {
		s, ok := c.Classify(h, profiles[h])
		if !ok {
			skipped++
			continue
		}
		seeds = append(seeds, s)
	}
	return seeds, skipped
}

func matchCurated(text string, names []string) (bool, string) {
	lt := strings.ToLower(text)
	for _, n := range names {
		if n == "" {
			continue
		}
		if strings.Contains(lt, strings.ToLower(n)) {
			return true, n
		}
	}
	return false, ""
}
