package query

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tabserve/tabserve/pkg/corpus"
)

// ErrInvalidCutoff means a top-N request asked for a non-positive cutoff.
var ErrInvalidCutoff = errors.New("invalid top-n cutoff")

// RankedEntry is one grouped value with its occurrence count and dense
// 1-based rank within a top-N aggregation.
type RankedEntry struct {
	Group string `json:"group"`
	Count int    `json:"count"`
	Rank  int    `json:"rank"`
}

// TopN counts the occurrences of each distinct value of groupColumn within
// rs and returns the n most frequent, most frequent first. The normalized
// empty string counts as a real group, never as an omission.
//
// Groups with equal counts are ordered by first occurrence in rs, so
// rankings are reproducible across runs. Ranks are assigned after sorting
// and truncation: 1, 2, 3, ... with no gaps and no shared ranks.
//
// Fewer than n distinct groups is not an error; all of them come back.
// Fails with ErrInvalidCutoff when n <= 0 and corpus.ErrUnknownColumn when
// groupColumn is absent.
func TopN(rs *corpus.ResultSet, groupColumn string, n int) ([]RankedEntry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: top-n cutoff must be positive, got %d", ErrInvalidCutoff, n)
	}
	if !rs.Table().HasColumn(groupColumn) {
		return nil, fmt.Errorf("%w: %q", corpus.ErrUnknownColumn, groupColumn)
	}

	counts := make(map[string]int)
	groups := make([]string, 0, 64) // first-occurrence order
	for i := 0; i < rs.Len(); i++ {
		v, err := rs.Value(i, groupColumn)
		if err != nil {
			return nil, err
		}
		if _, seen := counts[v]; !seen {
			groups = append(groups, v)
		}
		counts[v]++
	}

	// Stable sort over the first-occurrence ordering: equal counts keep
	// their relative positions, which is exactly the tie-break contract.
	sort.SliceStable(groups, func(i, j int) bool {
		return counts[groups[i]] > counts[groups[j]]
	})

	if len(groups) > n {
		groups = groups[:n]
	}

	entries := make([]RankedEntry, len(groups))
	for i, g := range groups {
		entries[i] = RankedEntry{Group: g, Count: counts[g], Rank: i + 1}
	}
	return entries, nil
}
