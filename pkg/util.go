package pkg

import (
	"sort"
	"strings"
)

// JoinList joins a list of values with commas, for the comma-separated
// text columns (exercise categories, workout tags, additional muscles).
func JoinList(values []string) string {
	return strings.Join(values, ",")
}

// SplitListUnique splits comma-separated values, trims whitespace,
// drops blanks and duplicates, and returns the result sorted.
func SplitListUnique(values ...string) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			seen[part] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for v := range seen {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
