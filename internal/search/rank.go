// Package search holds the query/results state machine shared by every
// fuzzy-searchable input: page search, block search and generic
// autocomplete fields.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// MaxResults caps the number of ranked results kept for a query.
const MaxResults = 9

// Rank returns the candidates that fuzzy-match query, best match first,
// truncated to MaxResults. Matching is case-insensitive; candidates with
// equal scores keep their input order. An empty query matches nothing.
func Rank(query string, candidates []string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(candidates) == 0 {
		return nil
	}
	targets := make([]string, len(candidates))
	for i, candidate := range candidates {
		targets[i] = strings.ToLower(candidate)
	}
	matches := fuzzy.Find(query, targets)
	if len(matches) == 0 {
		return nil
	}
	n := len(matches)
	if n > MaxResults {
		n = MaxResults
	}
	ranked := make([]string, 0, n)
	for _, match := range matches[:n] {
		ranked = append(ranked, candidates[match.Index])
	}
	return ranked
}

// Candidates joins a name source listing with caller supplied extras,
// preserving order. Duplicates are kept.
func Candidates(names []string, extra ...string) []string {
	out := make([]string, 0, len(names)+len(extra))
	out = append(out, names...)
	return append(out, extra...)
}
