// Package similarity provides the normalized string-similarity measure used
// by field reconciliation.
package similarity

import (
	"math"
	"strings"

	"github.com/agext/levenshtein"
)

// Score computes a case-insensitive similarity between two strings on a
// 0-100 scale. It is a normalized Levenshtein ratio: symmetric and
// deterministic. Both inputs are whitespace-trimmed before comparison.
// Two empty strings score 100; an empty string against a non-empty one
// scores 0.
func Score(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	return int(math.Round(levenshtein.Similarity(a, b, nil) * 100))
}
