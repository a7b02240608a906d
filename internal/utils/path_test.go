package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetConfigPathUsesConfigDir(t *testing.T) {
	base := t.TempDir()
	pr := &PathResolver{
		executableDir: base,
		homeDir:       base,
		configDir:     filepath.Join(base, "conf"),
	}

	path, err := pr.GetConfigPath("config.toml")
	if err != nil {
		t.Fatal(err)
	}
	if expected := filepath.Join(base, "conf", "config.toml"); path != expected {
		t.Errorf("expected %q, got %q", expected, path)
	}
	if stat, err := os.Stat(filepath.Dir(path)); err != nil || !stat.IsDir() {
		t.Errorf("config dir was not created: %v", err)
	}
}

func TestGetConfigPathFallsBack(t *testing.T) {
	base := t.TempDir()
	// A regular file where the config dir should go makes MkdirAll fail.
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	pr := &PathResolver{
		executableDir: base,
		homeDir:       base,
		configDir:     filepath.Join(blocker, "conf"),
	}

	path, err := pr.GetConfigPath("config.toml")
	if err != nil {
		t.Fatal(err)
	}
	if expected := filepath.Join(base, ".tabserve", "config.toml"); path != expected {
		t.Errorf("expected fallback %q, got %q", expected, path)
	}
}

func TestGetCorpusPathResolvesRelative(t *testing.T) {
	base := t.TempDir()
	corpus := filepath.Join(base, "corpus.tsv")
	if err := os.WriteFile(corpus, []byte("title_e\tjournal\n"), 0644); err != nil {
		t.Fatal(err)
	}

	pr := &PathResolver{
		executableDir: base,
		homeDir:       base,
		configDir:     base,
	}

	path, err := pr.GetCorpusPath("corpus.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if path != corpus {
		t.Errorf("expected %q, got %q", corpus, path)
	}

	if _, err := pr.GetCorpusPath("missing.tsv"); err == nil {
		t.Error("expected an error for a corpus that exists nowhere")
	}
}
