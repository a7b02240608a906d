// Package query is the core engine surface: case-insensitive substring and
// prefix searches over one column of a corpus table, and ranked top-N
// frequency aggregation over the filtered rows.
//
// Every operation here is a pure function of its inputs. Tables are
// read-only once loaded, so searches and aggregations are safe to run
// concurrently from any number of callers.
package query

import (
	"sort"
	"strings"

	"github.com/tabserve/tabserve/internal/utils"
	"github.com/tabserve/tabserve/pkg/corpus"
)

// Search returns the rows of t whose value in column contains searchStr,
// compared case-insensitively, in table order. The empty search string is a
// substring of every value (including empty cells) and therefore matches
// all rows; that is the documented contract, not an accident.
//
// Fails with corpus.ErrUnknownColumn when column is not in the schema.
func Search(t *corpus.Table, column, searchStr string) (*corpus.ResultSet, error) {
	ix, err := t.Index(column)
	if err != nil {
		return nil, err
	}

	needle := utils.Fold(searchStr)
	var rows []int
	for i := 0; i < ix.Rows(); i++ {
		if strings.Contains(ix.Folded(i), needle) {
			rows = append(rows, i)
		}
	}
	return corpus.NewResultSet(t, rows), nil
}

// MatchPrefix returns the rows of t whose value in column begins with
// prefix, compared case-insensitively, in table order. Lookups are served
// off the column index trie, so only distinct values under the prefix are
// visited. An empty prefix matches every row.
//
// Fails with corpus.ErrUnknownColumn when column is not in the schema.
func MatchPrefix(t *corpus.Table, column, prefix string) (*corpus.ResultSet, error) {
	ix, err := t.Index(column)
	if err != nil {
		return nil, err
	}

	if utils.Fold(prefix) == "" {
		return t.All(), nil
	}

	var rows []int
	if err := ix.VisitPrefix(prefix, func(_ string, postings []int) error {
		rows = append(rows, postings...)
		return nil
	}); err != nil {
		return nil, err
	}

	// Postings arrive grouped by distinct value; restore table order.
	sort.Ints(rows)
	return corpus.NewResultSet(t, rows), nil
}
