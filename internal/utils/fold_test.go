package utils

import "testing"

func TestContainsFold(t *testing.T) {
	testCases := []struct {
		s, substr   string
		expected    bool
		description string
	}{
		{"Covid vaccine trial", "covid", true, "Case-insensitive hit"},
		{"Covid vaccine trial", "COVID", true, "Uppercase needle"},
		{"Covid vaccine trial", "", true, "Empty needle matches anything"},
		{"", "", true, "Empty needle matches empty string"},
		{"", "x", false, "Nonempty needle misses empty string"},
		{"Flu vaccine", "covid", false, "Plain miss"},
	}

	for _, tc := range testCases {
		if got := ContainsFold(tc.s, tc.substr); got != tc.expected {
			t.Errorf("%s: ContainsFold(%q, %q) = %v", tc.description, tc.s, tc.substr, got)
		}
	}
}

func TestHasPrefixFold(t *testing.T) {
	if !HasPrefixFold("Covid testing", "COVID") {
		t.Error("Expected case-insensitive prefix hit")
	}
	if HasPrefixFold("Covid testing", "testing") {
		t.Error("Substring is not a prefix")
	}
	if !HasPrefixFold("anything", "") {
		t.Error("Empty prefix matches everything")
	}
}

func TestFormatWithCommas(t *testing.T) {
	testCases := []struct {
		n        int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-98765, "-98,765"},
	}

	for _, tc := range testCases {
		if got := FormatWithCommas(tc.n); got != tc.expected {
			t.Errorf("FormatWithCommas(%d) = %q, expected %q", tc.n, got, tc.expected)
		}
	}
}
