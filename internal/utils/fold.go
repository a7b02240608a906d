package utils

import (
	"strconv"
	"strings"
)

// Fold normalizes a string for case-insensitive comparison. Every match in
// the engine compares folded values against folded values, so folding must
// stay in one place.
func Fold(s string) string {
	return strings.ToLower(s)
}

// ContainsFold reports whether substr is a substring of s, ignoring case.
// The empty substring matches everything, including the empty string.
// Queries run against pre-folded index values instead of calling this per
// row; it is the reference predicate the search tests check results against.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// HasPrefixFold reports whether s begins with prefix, ignoring case. Like
// ContainsFold, this is the reference predicate for prefix match tests; the
// engine itself matches against the column index trie.
func HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(Fold(s), Fold(prefix))
}

// FormatWithCommas renders n with thousands separators for CLI output,
// e.g. 1234567 -> "1,234,567".
func FormatWithCommas(n int) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
