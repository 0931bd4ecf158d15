package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/Alb-O/frz/internal/data"
)

// Scored is one matched row: its absolute index in the dataset and its
// score. Scores are 1-based; 0 means no match and is never emitted.
type Scored struct {
	Index int
	Score uint16
}

// Matcher scores a half-open slice [from, to) of a dataset against a
// query. Implementations must be safe for repeated calls on the same
// dataset.
type Matcher interface {
	Match(query string, d data.Dataset, from, to int) []Scored
}

// FuzzyMatcher ranks rows with subsequence fuzzy matching.
type FuzzyMatcher struct{}

// NewFuzzyMatcher returns the default matcher.
func NewFuzzyMatcher() FuzzyMatcher { return FuzzyMatcher{} }

// chunkSource adapts a dataset window to the matcher library's source
// interface.
type chunkSource struct {
	d    data.Dataset
	from int
	to   int
}

func (s chunkSource) String(i int) string { return s.d.KeyFor(s.from + i) }
func (s chunkSource) Len() int            { return s.to - s.from }

// Match scores the window. Raw scores are shifted up by one so every
// real match is nonzero, and clamped into uint16 range.
func (m FuzzyMatcher) Match(query string, d data.Dataset, from, to int) []Scored {
	if from < 0 {
		from = 0
	}
	if to > d.Len() {
		to = d.Len()
	}
	if from >= to || query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, chunkSource{d: d, from: from, to: to})
	scored := make([]Scored, 0, len(matches))
	for _, match := range matches {
		scored = append(scored, Scored{
			Index: from + match.Index,
			Score: clampScore(match.Score),
		})
	}
	return scored
}

// clampScore maps the library's unbounded int score into [1, 65535].
// Negative scores still represent matches and floor at 1.
func clampScore(raw int) uint16 {
	if raw < 0 {
		raw = 0
	}
	raw++
	if raw > 65535 {
		raw = 65535
	}
	return uint16(raw)
}
