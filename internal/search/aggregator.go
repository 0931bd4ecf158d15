package search

import (
	"container/heap"
	"sort"

	"github.com/Alb-O/frz/internal/data"
)

// rankedMatch is an entry in a bounded aggregation heap.
type rankedMatch struct {
	index int
	score uint16
	id    uint64
}

// worseThan orders matches for eviction: lower score is worse, ties
// broken by higher index so earlier rows win.
func (m rankedMatch) worseThan(other rankedMatch) bool {
	if m.score != other.score {
		return m.score < other.score
	}
	return m.index > other.index
}

// matchHeap is a min-heap keyed on worseThan; the root is the weakest
// retained match.
type matchHeap []rankedMatch

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return h[i].worseThan(h[j]) }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x any)        { *h = append(*h, x.(rankedMatch)) }
func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ScoreAggregator retains the top-K matches seen so far and emits them
// ordered by descending score, ties by ascending index. Partial flushes
// are cheap no-ops when nothing changed since the last one.
type ScoreAggregator struct {
	heap  matchHeap
	limit int
	dirty bool
}

// NewScoreAggregator builds an aggregator bounded to limit results.
func NewScoreAggregator(limit int) *ScoreAggregator {
	if limit <= 0 {
		limit = MaxRenderedResults
	}
	return &ScoreAggregator{
		heap:  make(matchHeap, 0, limit),
		limit: limit,
	}
}

// Add offers a match. Matches weaker than the current worst retained
// entry are dropped once the aggregator is full.
func (a *ScoreAggregator) Add(index int, score uint16, id uint64) {
	match := rankedMatch{index: index, score: score, id: id}
	if len(a.heap) < a.limit {
		heap.Push(&a.heap, match)
		a.dirty = true
		return
	}
	if a.heap[0].worseThan(match) {
		a.heap[0] = match
		heap.Fix(&a.heap, 0)
		a.dirty = true
	}
}

// FlushPartial emits the current ranking if it changed since the last
// flush. The heap is retained for further additions.
func (a *ScoreAggregator) FlushPartial() (MatchBatch, bool) {
	if !a.dirty {
		return MatchBatch{}, false
	}
	a.dirty = false
	return a.snapshot(), true
}

// Finish emits the final ranking unconditionally.
func (a *ScoreAggregator) Finish() MatchBatch {
	a.dirty = false
	return a.snapshot()
}

func (a *ScoreAggregator) snapshot() MatchBatch {
	ranked := make([]rankedMatch, len(a.heap))
	copy(ranked, a.heap)
	sort.Slice(ranked, func(i, j int) bool { return ranked[j].worseThan(ranked[i]) })

	batch := MatchBatch{
		Indices: make([]int, len(ranked)),
		IDs:     make([]uint64, len(ranked)),
		Scores:  make([]uint16, len(ranked)),
	}
	for i, m := range ranked {
		batch.Indices[i] = m.index
		batch.IDs[i] = m.id
		batch.Scores[i] = m.score
	}
	return batch
}

// AlphabeticalCollector retains the limit smallest keys in dataset
// order for the empty-query listing. Datasets are kept sorted, so the
// smallest keys are simply the lowest indices; the collector tracks a
// window and flushes on batch boundaries.
type AlphabeticalCollector struct {
	d       data.Dataset
	limit   int
	next    int
	pending int
}

// NewAlphabeticalCollector builds a collector over the dataset.
func NewAlphabeticalCollector(d data.Dataset, limit int) *AlphabeticalCollector {
	if limit <= 0 {
		limit = MaxRenderedResults
	}
	return &AlphabeticalCollector{d: d, limit: limit}
}

// Advance accounts for one more row. It reports true when a partial
// flush is due.
func (c *AlphabeticalCollector) Advance() bool {
	if c.next >= c.limit {
		return false
	}
	c.next++
	c.pending++
	return c.pending >= emptyQueryBatch
}

// Full reports whether the collector has reached its bound; further
// rows cannot change the result.
func (c *AlphabeticalCollector) Full() bool { return c.next >= c.limit }

// Flush emits all rows collected so far.
func (c *AlphabeticalCollector) Flush() MatchBatch {
	c.pending = 0
	n := c.next
	batch := MatchBatch{
		Indices: make([]int, n),
		IDs:     make([]uint64, n),
		Scores:  make([]uint16, n),
	}
	for i := 0; i < n; i++ {
		batch.Indices[i] = i
		batch.IDs[i] = c.d.IDFor(i)
		batch.Scores[i] = 1
	}
	return batch
}
