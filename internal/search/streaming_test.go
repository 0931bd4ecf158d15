package search

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/stream"
)

// fakeView records the calls a streamed query makes on the consumer.
type fakeView struct {
	batches     map[string]MatchBatch
	clears      int
	completions []bool
}

func newFakeView() *fakeView {
	return &fakeView{batches: make(map[string]MatchBatch)}
}

func (v *fakeView) ReplaceMatches(mode string, batch MatchBatch) { v.batches[mode] = batch }
func (v *fakeView) ClearMatches(mode string) {
	delete(v.batches, mode)
	v.clears++
}
func (v *fakeView) RecordCompletion(_ string, complete bool) {
	v.completions = append(v.completions, complete)
}

// runQuery drives StreamDataset and applies every produced envelope.
func runQuery(t *testing.T, query string, d data.Dataset, id uint64, latest *atomic.Uint64) (*fakeView, bool) {
	t.Helper()

	sender, receiver := stream.Open[View](64)
	s := NewStream(sender, id, "files")
	ctx := NewQueryContext(data.New(), latest)

	alive := StreamDataset(query, d, s, ctx, NewFuzzyMatcher())
	sender.Close()

	view := newFakeView()
	for {
		env, ok := receiver.Recv()
		if !ok {
			break
		}
		env.Dispatch(view)
	}
	return view, alive
}

func TestStreamDataset_EmptyQueryListsInDatasetOrder(t *testing.T) {
	// Given: a sorted dataset and a current query id
	d := fileDataset("a.go", "b.go", "c.go")
	latest := &atomic.Uint64{}
	latest.Store(1)

	// When: the empty query streams
	view, alive := runQuery(t, "", d, 1, latest)

	// Then: all rows arrive in order with a final completion
	require.True(t, alive)
	batch := view.batches["files"]
	assert.Equal(t, []int{0, 1, 2}, batch.Indices)
	require.NotEmpty(t, view.completions)
	assert.True(t, view.completions[len(view.completions)-1])
}

func TestStreamDataset_RanksMatchesAndSkipsNonMatches(t *testing.T) {
	d := fileDataset("frozen.txt", "frz", "forest")
	latest := &atomic.Uint64{}
	latest.Store(1)

	view, alive := runQuery(t, "frz", d, 1, latest)

	require.True(t, alive)
	batch := view.batches["files"]
	require.Len(t, batch.Indices, 2)
	// The exact row outranks the gapped subsequence match.
	assert.Equal(t, []int{1, 0}, batch.Indices)
	assert.GreaterOrEqual(t, batch.Scores[0], batch.Scores[1])
	for _, score := range batch.Scores {
		assert.Positive(t, score)
	}
	require.NotEmpty(t, view.completions)
	assert.True(t, view.completions[len(view.completions)-1])
}

func TestStreamDataset_BatchCarriesStableIDs(t *testing.T) {
	d := fileDataset("frz")
	latest := &atomic.Uint64{}
	latest.Store(1)

	view, _ := runQuery(t, "frz", d, 1, latest)

	batch := view.batches["files"]
	require.Len(t, batch.IDs, 1)
	assert.Equal(t, data.StableID("frz"), batch.IDs[0])
}

func TestStreamDataset_SupersededQueryEmitsNothing(t *testing.T) {
	// Given: a query whose id is already stale
	d := fileDataset("frozen.txt", "frz")
	latest := &atomic.Uint64{}
	latest.Store(2)

	// When: the stale query streams
	view, alive := runQuery(t, "frz", d, 1, latest)

	// Then: it stops silently with no envelopes applied
	assert.True(t, alive)
	assert.Empty(t, view.batches)
	assert.Empty(t, view.completions)
}

func TestStreamDataset_NoMatchesClearsTheView(t *testing.T) {
	d := fileDataset("alpha.go")
	latest := &atomic.Uint64{}
	latest.Store(1)

	view, alive := runQuery(t, "zzz", d, 1, latest)

	require.True(t, alive)
	assert.Empty(t, view.batches)
	assert.Equal(t, 1, view.clears)
	assert.Equal(t, []bool{true}, view.completions)
}

func TestStreamDataset_ReceiverGoneStopsTheQuery(t *testing.T) {
	// Given: a stream whose receiver detached
	d := fileDataset("frozen.txt", "frz")
	latest := &atomic.Uint64{}
	latest.Store(1)

	sender, receiver := stream.Open[View](1)
	receiver.Close()
	s := NewStream(sender, 1, "files")
	ctx := NewQueryContext(data.New(), latest)

	// When: the query streams
	alive := StreamDataset("frz", d, s, ctx, NewFuzzyMatcher())

	// Then: it reports shutdown
	assert.False(t, alive)
}
