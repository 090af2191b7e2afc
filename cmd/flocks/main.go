package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"flocks/internal/artifact"
	"flocks/internal/cmdlog"
	"flocks/internal/community"
	"flocks/internal/config"
	"flocks/internal/graph"
	"flocks/internal/metrics"
	"flocks/internal/pipeline"
	"flocks/internal/provider/xapi"
	"flocks/internal/scorer"
	"flocks/internal/store"
	"flocks/internal/theme"
	"flocks/internal/tier"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	metrics.StartServer("")
	switch cmd {
	case "init":
		cmdInit()
	case "classify":
		cmdClassify()
	case "extract":
		cmdExtract()
	case "graph":
		cmdGraph()
	case "communities":
		cmdCommunities()
	case "score":
		cmdScore()
	case "run":
		cmdRun()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: flocks <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init         Create a config file at ./flocks.yaml")
	fmt.Println("  classify     Assign tiers to seed accounts")
	fmt.Println("  extract      Fetch and filter following relationships")
	fmt.Println("  graph        Build the weighted graph and compute metrics")
	fmt.Println("  communities  Detect communities and bridge accounts")
	fmt.Println("  score        Fuse strategy scores into the ranked list")
	fmt.Println("  run          Full pipeline: classify through score")
}

func fatal(err error) {
	fmt.Println("error:", err)
	os.Exit(1)
}

func loadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	return cfg
}

func mustLoadClient(cfg config.Config) *xapi.Client {
	if cfg.Credentials.BearerToken == "" {
		fmt.Println("warning: missing X_BEARER_TOKEN; API calls will fail")
	}
	return xapi.NewClient(cfg.Credentials.BearerToken, cfg.Rate)
}

// loadSeedProfiles reads a JSON object mapping seed handle to profile text,
// merged with any handles listed under seeds in the config. A handle the
// file does not mention gets empty text and will classify on its handle
// alone. The file is optional when the config carries seeds.
func loadSeedProfiles(path string, cfg config.Config) (map[string]string, error) {
	out := make(map[string]string)
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
	case os.IsNotExist(err) && len(cfg.Seeds) > 0:
	default:
		return nil, err
	}
	for _, h := range cfg.Seeds {
		if _, ok := out[h]; !ok {
			out[h] = ""
		}
	}
	return out, nil
}

func loadStrategy(path string) map[string]float64 {
	if path == "" {
		return nil
	}
	scores, skipped, err := artifact.ReadStrategyScores(path)
	if err != nil {
		fatal(err)
	}
	if skipped > 0 {
		fmt.Printf("warning: %d records skipped in %s\n", skipped, path)
	}
	return scores
}

func cmdInit() {
	out := flag.NewFlagSet("init", flag.ExitOnError)
	path := out.String("path", "./flocks.yaml", "path to write config")
	_ = out.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fatal(err)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

// classifyDoc runs the classifier over the seed profiles and stamps the
// resulting artifact with its own run id, so a standalone classify stays
// auditable alongside full pipeline runs.
func classifyDoc(cfg config.Config, profiles map[string]string) artifact.SeedsDoc {
	seeds, skipped := tier.New(cfg.Tiers).ClassifyAll(profiles)
	return artifact.SeedsDoc{RunID: uuid.NewString(), Seeds: seeds, Skipped: skipped}
}

func cmdClassify() {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocks.yaml", "config path")
	seedsPath := fs.String("seeds", "./seed_profiles.json", "seed handle -> profile text JSON")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("classify", func() error {
		cfg := loadConfig(*cfgPath)
		profiles, err := loadSeedProfiles(*seedsPath, cfg)
		if err != nil {
			return err
		}
		doc := classifyDoc(cfg, profiles)
		for _, s := range doc.Seeds {
			fmt.Printf("@%s tier=%d  %s\n", s.Handle, s.Tier, s.Reasoning)
		}
		fmt.Printf("run %s: tiered=%d no_signal=%d\n", doc.RunID, len(doc.Seeds), doc.Skipped)
		return artifact.Write(cfg.Storage.OutDir, artifact.FileSeeds, doc)
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocks.yaml", "config path")
	seedsPath := fs.String("seeds", "./seed_profiles.json", "seed handle -> profile text JSON")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("extract", func() error {
		cfg := loadConfig(*cfgPath)
		profiles, err := loadSeedProfiles(*seedsPath, cfg)
		if err != nil {
			return err
		}
		client := mustLoadClient(cfg)
		db, err := store.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		p := pipeline.New(cfg, client, db)
		out, err := p.Extract(context.Background(), pipeline.Inputs{SeedProfiles: profiles})
		if err != nil {
			return err
		}
		s := out.ExtractSum
		fmt.Printf("run %s: %d seeds, %d edges kept (%d discovered, %d filtered)\n",
			out.RunID, len(out.Seeds), s.Kept, s.Discovered, s.Filtered)
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocks.yaml", "config path")
	seedsPath := fs.String("seeds", "./seed_profiles.json", "seed handle -> profile text JSON")
	contentPath := fs.String("content", "", "content-strategy scores JSON")
	engagementPath := fs.String("engagement", "", "engagement-strategy scores JSON")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("run", func() error {
		cfg := loadConfig(*cfgPath)
		profiles, err := loadSeedProfiles(*seedsPath, cfg)
		if err != nil {
			return err
		}
		client := mustLoadClient(cfg)
		db, err := store.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		p := pipeline.New(cfg, client, db)
		out, err := p.Run(context.Background(), pipeline.Inputs{
			SeedProfiles:     profiles,
			ContentScores:    loadStrategy(*contentPath),
			EngagementScores: loadStrategy(*engagementPath),
		})
		if err != nil {
			return err
		}
		fmt.Printf("run %s: %d seeds, %d edges, %d communities, %d candidates\n",
			out.RunID, len(out.Seeds), len(out.Edges), len(out.Communities.Communities), len(out.Ranked))
		for i := 0; i < len(out.Ranked) && i < 20; i++ {
			c := out.Ranked[i]
			fmt.Printf("@%s score=%.3f sources=%d\n", c.Handle, c.FinalScore, c.NumSources)
		}
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdGraph() {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocks.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("graph", func() error {
		cfg := loadConfig(*cfgPath)
		var edoc artifact.EdgesDoc
		if err := artifact.Read(cfg.Storage.OutDir, artifact.FileEdges, &edoc); err != nil {
			return err
		}
		g, err := graph.Build(edoc.Edges, edoc.Profiles)
		if err != nil {
			return err
		}
		res := g.Metrics(graph.Options{
			Damping:       cfg.Graph.Damping,
			Tolerance:     cfg.Graph.Tolerance,
			MaxIterations: cfg.Graph.MaxIterations,
		})
		fmt.Printf("nodes=%d edges=%d converged=%v iterations=%d\n",
			g.Len(), len(g.Edges), res.Converged, res.Iterations)
		return artifact.Write(cfg.Storage.OutDir, artifact.FileGraphMetrics, artifact.GraphMetricsDoc{
			RunID: edoc.RunID, Nodes: res.Nodes, Converged: res.Converged, Iterations: res.Iterations,
		})
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdCommunities() {
	fs := flag.NewFlagSet("communities", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocks.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("communities", func() error {
		cfg := loadConfig(*cfgPath)
		var edoc artifact.EdgesDoc
		if err := artifact.Read(cfg.Storage.OutDir, artifact.FileEdges, &edoc); err != nil {
			return err
		}
		var sdoc artifact.SeedsDoc
		if err := artifact.Read(cfg.Storage.OutDir, artifact.FileSeeds, &sdoc); err != nil {
			return err
		}
		g, err := graph.Build(edoc.Edges, edoc.Profiles)
		if err != nil {
			return err
		}
		res := community.Detect(g, sdoc.Seeds, community.OptionsFrom(cfg.Community))
		fmt.Printf("method=%s communities=%d modularity=%.3f bridges=%d\n",
			res.Method, len(res.Communities), res.Modularity, len(res.Bridges))
		if err := artifact.Write(cfg.Storage.OutDir, artifact.FileCommunities, artifact.CommunitiesDoc{
			RunID: edoc.RunID, Method: res.Method, Modularity: res.Modularity, Assignments: res.Assignments,
		}); err != nil {
			return err
		}
		if err := artifact.Write(cfg.Storage.OutDir, artifact.FileCommunityDetails, artifact.CommunityDetailsDoc{
			RunID: edoc.RunID, Communities: res.Communities,
		}); err != nil {
			return err
		}
		return artifact.Write(cfg.Storage.OutDir, artifact.FileBridges, artifact.BridgesDoc{
			RunID: edoc.RunID, Bridges: res.Bridges,
		})
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdScore() {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "./flocks.yaml", "config path")
	contentPath := fs.String("content", "", "content-strategy scores JSON")
	engagementPath := fs.String("engagement", "", "engagement-strategy scores JSON")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("score", func() error {
		cfg := loadConfig(*cfgPath)
		var gdoc artifact.GraphMetricsDoc
		if err := artifact.Read(cfg.Storage.OutDir, artifact.FileGraphMetrics, &gdoc); err != nil {
			return err
		}
		var edoc artifact.EdgesDoc
		if err := artifact.Read(cfg.Storage.OutDir, artifact.FileEdges, &edoc); err != nil {
			return err
		}
		graphScores := make(map[string]float64, len(gdoc.Nodes))
		names := make(map[string]string, len(gdoc.Nodes))
		for _, n := range gdoc.Nodes {
			handle := n.AccountID
			if p, ok := edoc.Profiles[n.AccountID]; ok {
				if p.Handle != "" {
					handle = p.Handle
				}
				names[handle] = p.Name
			}
			graphScores[handle] = n.PageRank
		}
		sc := scorer.New(cfg.Scoring)
		ranked, err := sc.Score(scorer.Inputs{
			Graph:      graphScores,
			Content:    loadStrategy(*contentPath),
			Engagement: loadStrategy(*engagementPath),
			Names:      names,
		})
		if err != nil {
			return err
		}
		for i := 0; i < len(ranked) && i < 20; i++ {
			c := ranked[i]
			fmt.Printf("@%s score=%.3f sources=%d sum=%.3f\n", c.Handle, c.FinalScore, c.NumSources, c.WeightedSum)
		}
		return artifact.Write(cfg.Storage.OutDir, artifact.FileRanked, artifact.RankedDoc{
			RunID: gdoc.RunID, Candidates: ranked,
		})
	})
	if err != nil {
		os.Exit(1)
	}
}
