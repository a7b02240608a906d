package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 33, cfg.Corpus.HeaderSkipRows)
	assert.Equal(t, "title_e", cfg.Search.Column)
	assert.Equal(t, "journal", cfg.Rank.GroupColumn)
	assert.Equal(t, 10, cfg.Rank.DefaultTopN)
	assert.Positive(t, cfg.Server.MaxLimit)
	assert.LessOrEqual(t, cfg.Server.DefaultLimit, cfg.Server.MaxLimit)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Corpus.Path = "other.tsv"
	cfg.Corpus.HeaderSkipRows = 5
	cfg.Rank.DefaultTopN = 25
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "other.tsv", loaded.Corpus.Path)
	assert.Equal(t, 5, loaded.Corpus.HeaderSkipRows)
	assert.Equal(t, 25, loaded.Rank.DefaultTopN)
	// Untouched sections keep defaults
	assert.Equal(t, "title_e", loaded.Search.Column)
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	// Second init reads the created file rather than rewriting it
	again, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	// Valid [corpus] section followed by garbage: the valid part should
	// survive, everything else falls back to defaults.
	broken := "[corpus]\npath = \"recovered.tsv\"\nheader_skip_rows = 7\n\n[search]\ncolumn = 42\n"
	require.NoError(t, os.WriteFile(path, []byte(broken), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "recovered.tsv", cfg.Corpus.Path)
	assert.Equal(t, 7, cfg.Corpus.HeaderSkipRows)
	assert.Equal(t, "title_e", cfg.Search.Column, "broken section falls back to default")
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	require.NoError(t, SaveConfig(cfg, path))

	limit := 32
	topN := 15
	require.NoError(t, cfg.Update(path, &limit, nil, &topN))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, loaded.Server.DefaultLimit)
	assert.Equal(t, 15, loaded.Rank.DefaultTopN)
	assert.Equal(t, DefaultConfig().Server.MaxLimit, loaded.Server.MaxLimit)
}
