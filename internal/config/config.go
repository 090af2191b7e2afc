package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"flocks/internal/model"
)

// Config is the application's configuration model.
// It captures credentials, seeds, tier keyword sets, quality filters,
// rate limits, graph and scoring parameters.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Seeds       []string          `yaml:"seeds"`
	Tiers       TiersConfig       `yaml:"tiers"`
	Filters     FiltersConfig     `yaml:"filters"`
	Rate        RateConfig        `yaml:"rate"`
	Graph       GraphConfig       `yaml:"graph"`
	Community   CommunityConfig   `yaml:"community"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Storage     StorageConfig     `yaml:"storage"`
}

type CredentialsConfig struct {
	// X/Twitter API bearer token. If empty, read from env X_BEARER_TOKEN
	BearerToken string `yaml:"bearerToken"`
}

// TiersConfig holds the curated lists and keyword sets the classifier
// evaluates in priority order.
type TiersConfig struct {
	// Elite academic/research institutions -> Tier 1
	Institutions []string `yaml:"institutions"`
	// Major technology companies -> Tier 2
	Companies []string `yaml:"companies"`
	// Domain keywords; MinKeywordHits or more in the bio -> Tier 3
	Keywords       []string `yaml:"keywords"`
	MinKeywordHits int      `yaml:"minKeywordHits"`
}

type FiltersConfig struct {
	MinFollowers      int      `yaml:"minFollowers"`
	MinAccountAgeDays int      `yaml:"minAccountAgeDays"`
	SpamKeywords      []string `yaml:"spamKeywords"`
	// Language allow-list, e.g., ["en"]
	Languages []string `yaml:"languages"`
}

// RateConfig describes the provider's rate window and the run's global
// API-call budget.
type RateConfig struct {
	RequestsPerWindow int `yaml:"requestsPerWindow"`
	WindowSeconds     int `yaml:"windowSeconds"`
	MaxAttempts       int `yaml:"maxAttempts"`
	BaseBackoffMs     int `yaml:"baseBackoffMs"`
	// MaxAPICalls caps total provider requests per run; 0 means unlimited.
	MaxAPICalls int `yaml:"maxApiCalls"`
}

type GraphConfig struct {
	Damping       float64 `yaml:"damping"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"maxIterations"`
}

type CommunityConfig struct {
	Resolution float64 `yaml:"resolution"`
	// MaxCommunities is the ceiling used to normalize bridge scores.
	MaxCommunities  int                 `yaml:"maxCommunities"`
	Representatives int                 `yaml:"representatives"`
	Topics          map[string][]string `yaml:"topics"`
}

type ScoringConfig struct {
	Weights map[model.Strategy]float64 `yaml:"weights"`
	// Bonus multipliers indexed by num_sources (1-based).
	Bonus map[int]float64 `yaml:"bonus"`
	// AdaptiveWeights renormalizes weights among only the strategies that
	// reported a candidate. Off by default: missing strategies contribute 0.
	AdaptiveWeights bool `yaml:"adaptiveWeights"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
	OutDir string `yaml:"outDir"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Seeds: []string{},
		Tiers: TiersConfig{
			Institutions: []string{
				"mit", "stanford", "berkeley", "oxford", "cambridge", "cmu",
				"deepmind", "openai", "anthropic", "allen institute",
			},
			Companies: []string{
				"google", "meta", "microsoft", "apple", "amazon", "nvidia",
			},
			Keywords: []string{
				"machine learning", "ai research", "deep learning", "nlp",
				"robotics", "ai safety", "llm", "neural",
			},
			MinKeywordHits: 2,
		},
		Filters: FiltersConfig{
			MinFollowers:      100,
			MinAccountAgeDays: 90,
			SpamKeywords: []string{
				"giveaway", "airdrop", "follow back", "follow4follow",
				"promo", "crypto signals", "ref code",
			},
			Languages: []string{"en"},
		},
		Rate: RateConfig{
			RequestsPerWindow: 15,
			WindowSeconds:     900,
			MaxAttempts:       5,
			BaseBackoffMs:     500,
			MaxAPICalls:       0,
		},
		Graph: GraphConfig{Damping: 0.85, Tolerance: 1e-6, MaxIterations: 100},
		Community: CommunityConfig{
			Resolution:      1.0,
			MaxCommunities:  10,
			Representatives: 5,
			Topics: map[string][]string{
				"research":     {"research", "professor", "phd", "lab", "paper"},
				"industry":     {"engineer", "founder", "product", "startup"},
				"safety":       {"safety", "alignment", "policy", "governance"},
				"technical":    {"systems", "infra", "compiler", "gpu", "training"},
				"applications": {"health", "finance", "education", "climate"},
			},
		},
		Scoring: ScoringConfig{
			Weights: map[model.Strategy]float64{
				model.StrategyGraph:      0.33,
				model.StrategyContent:    0.34,
				model.StrategyEngagement: 0.33,
			},
			Bonus:           map[int]float64{1: 1.0, 2: 1.2, 3: 1.5},
			AdaptiveWeights: false,
		},
		Storage: StorageConfig{DBPath: "./flocks.db", OutDir: "./out"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.BearerToken == "" {
		c.Credentials.BearerToken = os.Getenv("X_BEARER_TOKEN")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
