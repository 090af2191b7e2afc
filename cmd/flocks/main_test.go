package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"flocks/internal/config"
	"flocks/internal/model"
)

func TestLoadSeedProfilesMergesConfigSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed_profiles.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"alice":"Professor at MIT"}`), 0o644))

	cfg := config.Default()
	cfg.Seeds = []string{"alice", "bob"}
	profiles, err := loadSeedProfiles(path, cfg)
	require.NoError(t, err)
	require.Equal(t, "Professor at MIT", profiles["alice"])
	require.Contains(t, profiles, "bob")
	require.Equal(t, "", profiles["bob"])
}

func TestLoadSeedProfilesMissingFileUsesConfigSeeds(t *testing.T) {
	cfg := config.Default()
	cfg.Seeds = []string{"alice"}
	profiles, err := loadSeedProfiles(filepath.Join(t.TempDir(), "absent.json"), cfg)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
}

func TestClassifyDocStampsRunID(t *testing.T) {
	doc := classifyDoc(config.Default(), map[string]string{"alice": "Professor at MIT"})
	require.NotEmpty(t, doc.RunID)
	require.Len(t, doc.Seeds, 1)
	require.Equal(t, model.Tier1, doc.Seeds[0].Tier)
}
