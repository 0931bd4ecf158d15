// Package index discovers filesystem rows in the background and streams
// them to the consumer as incremental update envelopes. The walk is best
// effort: unreadable entries are skipped, never fatal, and the dataset is
// eventually consistent with the tree.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/stream"
)

// ModeID is the mode identifier carried on index envelopes.
const ModeID = "files"

// streamCapacity bounds in-flight index envelopes per stream.
const streamCapacity = 64

// View is the consumer-side surface index envelopes are applied to. The
// consumer applies the update to its own SearchData copy and forwards the
// identical message to the worker's copy; convergence relies on both
// seeing the same ordered sequence.
type View interface {
	// ForwardUpdate relays the update to the search worker's copy.
	ForwardUpdate(update data.IndexUpdate)

	// ApplyUpdate merges the update into the consumer's own copy and
	// reports whether anything changed.
	ApplyUpdate(update data.IndexUpdate) bool

	// RecordProgress updates indexing progress indicators.
	RecordProgress(progress data.Progress)

	// ScheduleRefresh lets the consumer queue follow-up work after a
	// merge (re-rendering, selection revalidation).
	ScheduleRefresh(changed bool)
}

// Envelope is an index update message.
type Envelope = stream.Envelope[View]

// Spawn validates the root, then starts the background walk. It returns
// the initial SearchData (root and context label populated) and the
// receiver the consumer drains. A final envelope with Complete set is
// emitted when the walk ends.
func Spawn(ctx context.Context, root string, opts Options) (*data.SearchData, *stream.Receiver[View], error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	label := opts.ContextLabel
	if label == "" {
		label = absRoot
	}

	initial := data.New()
	initial.Root = absRoot
	initial.ContextLabel = label

	sender, receiver := stream.Open[View](streamCapacity)
	w, err := newWalker(absRoot, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("create walker: %w", err)
	}

	go run(ctx, w, sender)

	return initial, receiver, nil
}

// run drives the parallel walk and the batching loop, then closes the
// stream.
func run(ctx context.Context, w *walker, sender *stream.Sender[View]) {
	defer sender.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan data.FileRow, w.opts.workerCount()*16)

	go func() {
		defer close(rows)
		walkParallel(ctx, w, rows)
	}()

	started := time.Now()
	handle := stream.NewHandle(sender, 0, ModeID)
	b := newBatcher()
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case row, ok := <-rows:
			if !ok {
				update, _ := b.take(true)
				sendUpdate(handle, update, b.progress(true))
				slog.Debug("filesystem walk finished",
					slog.Int("files", b.indexedFiles),
					slog.Duration("elapsed", time.Since(started)))
				return
			}
			b.record(row)
			if b.shouldFlush() {
				if !flush(handle, b, cancel) {
					return
				}
			}
		case <-ticker.C:
			if !flush(handle, b, cancel) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func flush(handle stream.Handle[View], b *batcher, cancel context.CancelFunc) bool {
	update, ok := b.take(false)
	if !ok {
		return true
	}
	if !sendUpdate(handle, update, b.progress(false)) {
		// Receiver is gone; stop the walk. Normal shutdown, not an
		// error.
		cancel()
		return false
	}
	return true
}

func sendUpdate(handle stream.Handle[View], update data.IndexUpdate, progress data.Progress) bool {
	return handle.Send(func(view View) {
		view.ForwardUpdate(update)
		changed := view.ApplyUpdate(update)
		view.RecordProgress(progress)
		view.ScheduleRefresh(changed)
	}, update.Complete)
}

// walkParallel fans subtree walks out over an errgroup: one task per
// top-level directory plus one pass over root-level files.
func walkParallel(ctx context.Context, w *walker, rows chan<- data.FileRow) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		slog.Debug("unreadable root", slog.String("root", w.root), slog.String("error", err.Error()))
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.workerCount())

	for _, entry := range entries {
		if !entry.IsDir() {
			emitRootFile(ctx, w, entry, rows)
			continue
		}
		if w.shouldPruneDir(entry.Name(), entry.Name()) {
			continue
		}
		start := filepath.Join(w.root, entry.Name())
		g.Go(func() error {
			w.walkSubtree(ctx, start, rows)
			return nil
		})
	}

	_ = g.Wait()
}

func emitRootFile(ctx context.Context, w *walker, entry fs.DirEntry, rows chan<- data.FileRow) {
	if entry.Type()&fs.ModeSymlink != 0 && !w.opts.FollowSymlinks {
		return
	}
	name := entry.Name()
	if !w.accepts(name, name) {
		return
	}
	row := data.NewFileRow(name, data.TagsForPath(name))
	select {
	case rows <- row:
	case <-ctx.Done():
	}
}
