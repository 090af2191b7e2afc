// Package extract turns tiered seeds into quality-filtered following edges.
// Fetches run concurrently up to the rate window's capacity; all workers
// share one rate window and one API-call budget.
package extract

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"flocks/internal/config"
	"flocks/internal/logging"
	"flocks/internal/metrics"
	"flocks/internal/model"
	"flocks/internal/provider"
	"flocks/internal/util"
)

// Filter rejection reasons, reported per account in the stage summary.
const (
	ReasonMinFollowers = "min_followers"
	ReasonSpam         = "spam"
	ReasonAccountAge   = "account_age"
	ReasonProtected    = "protected"
	ReasonLanguage     = "language"
)

// Summary is the extraction stage report.
type Summary struct {
	SeedsAttempted   int            `json:"seeds_attempted"`
	SeedsSucceeded   int            `json:"seeds_succeeded"`
	SeedsFailed      int            `json:"seeds_failed"`
	Discovered       int            `json:"discovered"`
	Kept             int            `json:"kept"`
	Filtered         int            `json:"filtered"`
	FilteredByReason map[string]int `json:"filtered_by_reason"`
	PermissionDenied int            `json:"permission_denied"`
	BudgetExhausted  bool           `json:"budget_exhausted"`
}

type Extractor struct {
	lister  provider.RelationshipLister
	filters config.FiltersConfig
	workers int
	budget  *Budget
	now     func() time.Time
}

func New(lister provider.RelationshipLister, cfg config.Config) *Extractor {
	workers := cfg.Rate.RequestsPerWindow
	if workers <= 0 {
		workers = 1
	}
	return &Extractor{
		lister:  lister,
		filters: cfg.Filters,
		workers: workers,
		budget:  NewBudget(cfg.Rate.MaxAPICalls),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run fetches and filters the following lists of every seed. Partial results
// survive budget exhaustion and per-seed failures; only ctx cancellation from
// outside aborts with an error, and even then collected edges are returned.
func (e *Extractor) Run(ctx context.Context, seeds []model.SeedAccount) ([]model.FollowingEdge, map[string]model.Profile, Summary) {
	var mu sync.Mutex
	var edges []model.FollowingEdge
	profiles := make(map[string]model.Profile)
	sum := Summary{SeedsAttempted: len(seeds), FilteredByReason: make(map[string]int)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, seed := range seeds {
		seed := seed
		g.Go(func() error {
			res := e.fetchSeed(gctx, seed)
			mu.Lock()
			defer mu.Unlock()
			sum.Discovered += res.discovered
			sum.Kept += len(res.edges)
			for reason, n := range res.filtered {
				sum.Filtered += n
				sum.FilteredByReason[reason] += n
			}
			if res.permissionDenied {
				sum.PermissionDenied++
			}
			if res.budgetExhausted {
				sum.BudgetExhausted = true
			}
			if res.failed {
				sum.SeedsFailed++
			} else {
				sum.SeedsSucceeded++
			}
			edges = append(edges, res.edges...)
			for id, p := range res.profiles {
				profiles[id] = p
			}
			return nil
		})
	}
	_ = g.Wait()
	return edges, profiles, sum
}

type seedResult struct {
	edges            []model.FollowingEdge
	profiles         map[string]model.Profile
	discovered       int
	filtered         map[string]int
	failed           bool
	permissionDenied bool
	budgetExhausted  bool
}

func (e *Extractor) fetchSeed(ctx context.Context, seed model.SeedAccount) seedResult {
	res := seedResult{
		profiles: make(map[string]model.Profile),
		filtered: make(map[string]int),
	}
	weight := seed.Tier.Weight()
	cursor := ""
	for {
		if !e.budget.Take() {
			res.budgetExhausted = true
			logging.Warn("extract_budget_exhausted", map[string]any{"seed": seed.Handle})
			return res
		}
		page, err := e.lister.ListFollowing(ctx, seed.ID, cursor)
		if err != nil {
			if wait, ok := provider.IsRateLimited(err); ok {
				metrics.RateLimitWaits.Inc()
				logging.Info("extract_rate_limited", map[string]any{"seed": seed.Handle, "wait": wait.String()})
				select {
				case <-time.After(wait):
					continue
				case <-ctx.Done():
					res.failed = true
					return res
				}
			}
			if provider.IsPermissionDenied(err) {
				// Permanent for this capability: report once, keep what we have.
				res.permissionDenied = true
				logging.Error("extract_permission_denied", map[string]any{"seed": seed.Handle})
				return res
			}
			if provider.IsNotFound(err) {
				logging.Warn("extract_seed_not_found", map[string]any{"seed": seed.Handle})
				return res
			}
			// Transport retries already happened inside the provider; skip the
			// page and keep what this seed yielded so far.
			res.failed = true
			logging.Error("extract_page_failed", map[string]any{"seed": seed.Handle, "error": err.Error()})
			return res
		}
		for _, raw := range page.Items {
			res.discovered++
			if reason, ok := e.reject(raw.Target); ok {
				res.filtered[reason]++
				metrics.IncFiltered(reason)
				continue
			}
			res.edges = append(res.edges, model.FollowingEdge{
				SourceID:     seed.ID,
				TargetID:     raw.Target.ID,
				Weight:       weight,
				DiscoveredAt: e.now(),
			})
			res.profiles[raw.Target.ID] = raw.Target
		}
		if page.NextCursor == "" {
			return res
		}
		cursor = page.NextCursor
	}
}

// reject applies the quality filters; the first tripped filter wins.
func (e *Extractor) reject(p model.Profile) (string, bool) {
	if p.FollowersCount < e.filters.MinFollowers {
		return ReasonMinFollowers, true
	}
	if util.ContainsAnyCaseInsensitive(p.Description, e.filters.SpamKeywords) {
		return ReasonSpam, true
	}
	if e.filters.MinAccountAgeDays > 0 && !p.CreatedAt.IsZero() {
		age := e.now().Sub(p.CreatedAt)
		if age < time.Duration(e.filters.MinAccountAgeDays)*24*time.Hour {
			return ReasonAccountAge, true
		}
	}
	if p.Protected || p.Suspended {
		return ReasonProtected, true
	}
	// Unknown language passes; only a known language outside the allow-list trips.
	if len(e.filters.Languages) > 0 && p.Language != "" {
		allowed := false
		for _, l := range e.filters.Languages {
			if l == p.Language {
				allowed = true
				break
			}
		}
		if !allowed {
			return ReasonLanguage, true
		}
	}
	return "", false
}
