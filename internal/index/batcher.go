package index

import (
	"time"

	"github.com/Alb-O/frz/internal/data"
)

const (
	minBatchSize     = 32
	maxBatchSize     = 1024
	dispatchInterval = 120 * time.Millisecond
)

// batcher groups discovered rows into updates sized to bound per-envelope
// latency: small batches early so the UI fills quickly, larger ones as the
// walk fans out.
type batcher struct {
	pending      []data.FileRow
	indexedFiles int
	attributes   map[string]struct{}
	lastDispatch time.Time
}

func newBatcher() *batcher {
	return &batcher{
		attributes:   make(map[string]struct{}),
		lastDispatch: time.Now(),
	}
}

func (b *batcher) record(row data.FileRow) {
	for _, tag := range row.Tags {
		b.attributes[tag] = struct{}{}
	}
	b.indexedFiles++
	b.pending = append(b.pending, row)
}

func (b *batcher) shouldFlush() bool {
	if len(b.pending) >= b.batchSize() {
		return true
	}
	if len(b.pending) == 0 {
		return false
	}
	return time.Since(b.lastDispatch) >= dispatchInterval
}

// take returns the pending update, or an empty update when there is
// nothing to send and complete is false.
func (b *batcher) take(complete bool) (data.IndexUpdate, bool) {
	if len(b.pending) == 0 && !complete {
		return data.IndexUpdate{}, false
	}
	update := data.IndexUpdate{
		Files:    b.pending,
		Complete: complete,
	}
	b.pending = nil
	b.lastDispatch = time.Now()
	return update, true
}

func (b *batcher) progress(complete bool) data.Progress {
	return data.Progress{
		IndexedFiles:      b.indexedFiles,
		IndexedAttributes: len(b.attributes),
		Complete:          complete,
	}
}

func (b *batcher) batchSize() int {
	switch {
	case b.indexedFiles < 1024:
		return minBatchSize
	case b.indexedFiles < 16384:
		return 256
	default:
		return maxBatchSize
	}
}
