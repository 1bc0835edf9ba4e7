// Package oracle computes the trusted word-count result the worker output
// is judged against. It deliberately shares no code with any worker-side
// counting path so the verification stays independent.
package oracle

import "strings"

// Count tallies word occurrences across lines. Each line is split on runs
// of whitespace; empty tokens are discarded; counting is case-sensitive.
func Count(lines []string) map[string]int64 {
	counts := make(map[string]int64)
	for _, line := range lines {
		for _, word := range strings.Fields(line) {
			counts[word]++
		}
	}
	return counts
}
