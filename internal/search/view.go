// Package search contains the matching side of the pipeline: the view
// contract results are applied to, the pluggable matcher, and the
// aggregation strategies that batch ranked rows before they reach the
// consumer.
package search

import (
	"sync/atomic"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/stream"
)

const (
	// MaxRenderedResults bounds how many rows a query ever delivers.
	MaxRenderedResults = 2000

	// matchChunkSize is the number of rows scored per supersession
	// check.
	matchChunkSize = 512

	// emptyQueryBatch is the number of rows collected between partial
	// flushes when no query is active.
	emptyQueryBatch = 128
)

// MatchBatch is one ranked result set. Indices address the dataset
// snapshot the worker matched against; IDs are the rows' stable
// identifiers and survive merges that shift positions.
type MatchBatch struct {
	Indices []int
	IDs     []uint64
	Scores  []uint16
}

// Empty reports whether the batch carries no matches.
func (b MatchBatch) Empty() bool {
	return len(b.Indices) == 0 && len(b.Scores) == 0 && len(b.IDs) == 0
}

// View is the consumer surface ranked results are applied to.
type View interface {
	// ReplaceMatches swaps the rendered result set for the mode.
	ReplaceMatches(mode string, batch MatchBatch)

	// ClearMatches empties the rendered result set for the mode.
	ClearMatches(mode string)

	// RecordCompletion observes the stream's completion flag. Each
	// match pass ends with exactly one true; partial flushes pass
	// false. A dataset merge re-runs the active query, so one id can
	// complete more than once.
	RecordCompletion(mode string, complete bool)
}

// Envelope is a ranked-results message.
type Envelope = stream.Envelope[View]

// Stream is the handle a streaming strategy uses to deliver batches for
// one query.
type Stream struct {
	inner stream.Handle[View]
}

// NewStream binds a sender to a query id and mode.
func NewStream(sender *stream.Sender[View], id uint64, mode string) Stream {
	return Stream{inner: stream.NewHandle(sender, id, mode)}
}

// ID returns the query identifier this stream serves.
func (s Stream) ID() uint64 { return s.inner.ID() }

// Mode returns the mode this stream serves.
func (s Stream) Mode() string { return s.inner.Mode() }

// Send delivers a batch. An empty batch clears the consumer's matches.
// The return value is false only once the receiver is gone.
func (s Stream) Send(batch MatchBatch, complete bool) bool {
	mode := s.Mode()
	return s.inner.Send(func(view View) {
		if batch.Empty() {
			view.ClearMatches(mode)
		} else {
			view.ReplaceMatches(mode, batch)
		}
		view.RecordCompletion(mode, complete)
	}, complete)
}

// QueryContext gives a streaming strategy read access to the worker's
// dataset copy and the supersession flag.
type QueryContext struct {
	data   *data.SearchData
	latest *atomic.Uint64
}

// NewQueryContext builds a context over the worker's copy.
func NewQueryContext(d *data.SearchData, latest *atomic.Uint64) QueryContext {
	return QueryContext{data: d, latest: latest}
}

// Data returns the worker-owned dataset snapshot.
func (c QueryContext) Data() *data.SearchData { return c.data }

// Superseded reports whether a newer query has been issued since id. A
// superseded computation stops emitting batches; its partial state is
// dropped without error.
func (c QueryContext) Superseded(id uint64) bool {
	return c.latest != nil && c.latest.Load() != id
}
