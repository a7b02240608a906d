package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeCorpus drops TSV content into a temp file and returns its path.
func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.tsv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTable(t *testing.T) {
	// Two preamble lines before the header, one short row.
	content := "# export v2\n# generated nightly\n" +
		"pmid\ttitle_e\tjournal\n" +
		"101\tCovid vaccine trial\tNature\n" +
		"102\tCovid testing\tScience\n" +
		"103\tFlu vaccine\n"

	table, err := ReadTable(writeCorpus(t, content), 2)
	if err != nil {
		t.Fatal(err)
	}

	if table.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", table.Len())
	}
	want := []string{"pmid", "title_e", "journal"}
	got := table.Columns()
	for i, c := range want {
		if got[i] != c {
			t.Errorf("Column %d: expected %q, got %q", i, c, got[i])
		}
	}

	v, err := table.Value(0, "title_e")
	if err != nil {
		t.Fatal(err)
	}
	if v != "Covid vaccine trial" {
		t.Errorf("Row 0 title_e: expected %q, got %q", "Covid vaccine trial", v)
	}

	// Short row padded, never omitted
	v, err = table.Value(2, "journal")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Errorf("Row 2 journal: expected empty string, got %q", v)
	}
}

func TestReadTableSkipRows(t *testing.T) {
	// Without the skip offset the preamble would become the header.
	content := "junk that must not become the header\n" +
		"title_e\tjournal\n" +
		"Covid testing\tScience\n"

	table, err := ReadTable(writeCorpus(t, content), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !table.HasColumn("title_e") || !table.HasColumn("journal") {
		t.Fatalf("Header misparsed, columns: %v", table.Columns())
	}
	if table.Len() != 1 {
		t.Fatalf("Expected 1 row, got %d", table.Len())
	}
}

func TestReadTableCRLFAndBlankLines(t *testing.T) {
	content := "title_e\tjournal\r\n" +
		"Covid testing\tScience\r\n" +
		"\r\n" +
		"Flu vaccine\tNature\r\n"

	table, err := ReadTable(writeCorpus(t, content), 0)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("Expected 2 rows (blank line skipped), got %d", table.Len())
	}
	v, _ := table.Value(0, "journal")
	if v != "Science" {
		t.Errorf("CRLF not trimmed: got %q", v)
	}
}

func TestReadTableMalformed(t *testing.T) {
	// A row wider than the header is a shape error, not padding material.
	content := "title_e\tjournal\n" +
		"Covid testing\tScience\textra field\n"

	_, err := ReadTable(writeCorpus(t, content), 0)
	if !errors.Is(err, ErrMalformedSource) {
		t.Fatalf("Expected ErrMalformedSource, got %v", err)
	}
}

func TestReadTableMissingHeader(t *testing.T) {
	_, err := ReadTable(writeCorpus(t, "only line\n"), 5)
	if !errors.Is(err, ErrMalformedSource) {
		t.Fatalf("Expected ErrMalformedSource, got %v", err)
	}
}

func TestReadTableSourceNotFound(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.tsv"), 0)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("Expected ErrSourceNotFound, got %v", err)
	}
}

func TestCacheReturnsSameTable(t *testing.T) {
	path := writeCorpus(t, "title_e\tjournal\nCovid testing\tScience\n")
	cache := NewCache()

	first, err := cache.Load(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cache.Load(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("Repeated loads must return the cached Table instance")
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 cached table, got %d", cache.Len())
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.tsv")
	cache := NewCache()

	if _, err := cache.Load(path, 0); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("Expected ErrSourceNotFound, got %v", err)
	}

	// File shows up after the failed load; the retry must parse it.
	if err := os.WriteFile(path, []byte("title_e\tjournal\nCovid testing\tScience\n"), 0644); err != nil {
		t.Fatal(err)
	}
	table, err := cache.Load(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 {
		t.Fatalf("Expected 1 row after retry, got %d", table.Len())
	}
}

func TestCacheConcurrentFirstLoad(t *testing.T) {
	path := writeCorpus(t, "title_e\tjournal\nCovid testing\tScience\n")
	cache := NewCache()

	const callers = 16
	tables := make([]*Table, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := cache.Load(path, 0)
			if err != nil {
				t.Errorf("Concurrent load failed: %v", err)
				return
			}
			tables[i] = table
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if tables[i] != tables[0] {
			t.Fatal("Concurrent first loads produced divergent Table instances")
		}
	}
	if cache.Len() != 1 {
		t.Errorf("Expected exactly one cache entry, got %d", cache.Len())
	}
}
