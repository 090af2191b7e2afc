package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadStrategyScores(t *testing.T) {
	path := writeTemp(t, `{
		"alice": {"overall_score": 0.9, "posts": 12},
		"bob":   {"score": 0.4},
		"carol": 7.5,
		"mallory": {"posts": 3}
	}`)
	scores, skipped, err := ReadStrategyScores(path)
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Equal(t, 0.9, scores["alice"])
	require.Equal(t, 0.4, scores["bob"])
	require.Equal(t, 7.5, scores["carol"])
	require.NotContains(t, scores, "mallory")
}

func TestReadStrategyScoresBadDocument(t *testing.T) {
	path := writeTemp(t, `["not", "an", "object"]`)
	_, _, err := ReadStrategyScores(path)
	require.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := CommunitiesDoc{
		RunID:       "run1",
		Method:      "modularity",
		Modularity:  0.41,
		Assignments: map[string]int{"a": 0, "b": 1},
	}
	require.NoError(t, Write(dir, FileCommunities, doc))

	var got CommunitiesDoc
	require.NoError(t, Read(dir, FileCommunities, &got))
	require.Equal(t, doc, got)
}
