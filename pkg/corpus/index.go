package corpus

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/tabserve/tabserve/internal/utils"
)

// ColumnIndex is the derived, case-folded view of one column. It carries
// the folded value for every row (what substring scans compare against) and
// a patricia trie of distinct folded values to their row postings, which
// serves prefix lookups without touching non-matching values.
//
// Indexes are built lazily on first use and are immutable once published,
// so they can be shared by concurrent searches. Search correctness never
// depends on the trie; it only avoids re-folding raw text per query.
type ColumnIndex struct {
	column string
	folded []string
	trie   *patricia.Trie
}

// Index returns the published index for column, building it on first use.
// The build runs under the table lock so concurrent first callers observe
// exactly one instance.
func (t *Table) Index(column string) (*ColumnIndex, error) {
	pos, ok := t.colPos[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if ix, ok := t.indexes[column]; ok {
		return ix, nil
	}
	ix := buildColumnIndex(column, pos, t.cells)
	t.indexes[column] = ix
	log.Debugf("Built index for column %q: %d rows, %d distinct values",
		column, len(ix.folded), ix.Distinct())
	return ix, nil
}

func buildColumnIndex(column string, pos int, cells [][]string) *ColumnIndex {
	folded := make([]string, len(cells))
	postings := make(map[string][]int)
	for i, row := range cells {
		v := utils.Fold(row[pos])
		folded[i] = v
		postings[v] = append(postings[v], i)
	}

	trie := patricia.NewTrie()
	for v, rows := range postings {
		if v == "" {
			// patricia prefixes cannot be empty; empty cells are still
			// searchable through the folded slice.
			continue
		}
		trie.Insert(patricia.Prefix(v), rows)
	}

	return &ColumnIndex{column: column, folded: folded, trie: trie}
}

// Column returns the indexed column name.
func (ix *ColumnIndex) Column() string { return ix.column }

// Folded returns the case-folded cell value at row i.
func (ix *ColumnIndex) Folded(i int) string { return ix.folded[i] }

// Rows returns the number of indexed rows.
func (ix *ColumnIndex) Rows() int { return len(ix.folded) }

// Distinct returns the number of distinct non-empty folded values.
func (ix *ColumnIndex) Distinct() int {
	n := 0
	ix.trie.Visit(func(patricia.Prefix, patricia.Item) error {
		n++
		return nil
	})
	return n
}

// VisitPrefix walks every distinct folded value that begins with the folded
// prefix, handing the visitor the value and its row postings in ascending
// row order. Visiting order across values follows the trie, not the table.
func (ix *ColumnIndex) VisitPrefix(prefix string, visit func(value string, rows []int) error) error {
	return ix.trie.VisitSubtree(patricia.Prefix(utils.Fold(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		rows, ok := item.([]int)
		if !ok {
			log.Errorf("Unexpected posting type %T for value %q", item, p)
			return nil
		}
		return visit(string(p), rows)
	})
}
