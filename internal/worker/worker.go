// Package worker owns the search side's SearchData copy and runs
// queries against it on a single goroutine. Commands are processed in
// order; a long-running query yields between chunks and aborts as soon
// as a newer query id exists, so a burst of keystrokes costs one full
// pass at most. The command queue is unbounded: enqueuing never blocks
// the caller, which keeps the consumer's envelope dispatch free of the
// worker's pace even while the results stream is full.
package worker

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/extension"
	"github.com/Alb-O/frz/internal/search"
	"github.com/Alb-O/frz/internal/stream"
)

const resultCapacity = 64

// Command is a message to the worker goroutine.
type Command interface{ isCommand() }

// QueryCommand starts a new query. ID must come from SubmitQuery so the
// supersession counter stays consistent.
type QueryCommand struct {
	ID    uint64
	Query string
	Mode  extension.Mode
}

// UpdateCommand merges an index update into the worker's copy. The
// active query is re-run afterwards so results track the dataset.
type UpdateCommand struct {
	Update data.IndexUpdate
}

// ShutdownCommand stops the worker after in-flight commands drain.
type ShutdownCommand struct{}

func (QueryCommand) isCommand()    {}
func (UpdateCommand) isCommand()   {}
func (ShutdownCommand) isCommand() {}

// Worker is the handle held by the consumer.
type Worker struct {
	mu    sync.Mutex
	queue []Command
	wake  chan struct{}

	results *stream.Receiver[search.View]
	latest  atomic.Uint64
}

// Spawn starts the worker over its own clone of the initial dataset.
func Spawn(initial *data.SearchData, catalog *extension.Catalog) *Worker {
	sender, receiver := stream.Open[search.View](resultCapacity)
	w := &Worker{
		wake:    make(chan struct{}, 1),
		results: receiver,
	}
	go w.run(initial.Clone(), catalog, sender)
	return w
}

// Results is the stream the consumer drains for ranked batches.
func (w *Worker) Results() *stream.Receiver[search.View] { return w.results }

// Latest exposes the supersession counter for query contexts.
func (w *Worker) Latest() *atomic.Uint64 { return &w.latest }

// SubmitQuery issues a new query, superseding any in-flight one, and
// returns its id.
func (w *Worker) SubmitQuery(query string, mode extension.Mode) uint64 {
	id := w.latest.Add(1)
	w.enqueue(QueryCommand{ID: id, Query: query, Mode: mode})
	return id
}

// ForwardUpdate relays an index update to the worker's copy. It never
// blocks; the consumer forwards updates from inside envelope dispatch,
// and a stalled forward there would wedge the thread that drains the
// results stream.
func (w *Worker) ForwardUpdate(update data.IndexUpdate) {
	w.enqueue(UpdateCommand{Update: update})
}

// Shutdown stops the worker. The results stream closes once the worker
// exits.
func (w *Worker) Shutdown() {
	w.enqueue(ShutdownCommand{})
}

// enqueue appends a command and nudges the worker loop. The queue has
// no capacity bound, so enqueuing never suspends the caller.
func (w *Worker) enqueue(cmd Command) {
	w.mu.Lock()
	w.queue = append(w.queue, cmd)
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest queued command, blocking until one arrives.
func (w *Worker) next() Command {
	for {
		w.mu.Lock()
		if len(w.queue) > 0 {
			cmd := w.queue[0]
			w.queue = w.queue[1:]
			w.mu.Unlock()
			return cmd
		}
		w.mu.Unlock()
		<-w.wake
	}
}

// pendingUpdate pops the next command only when it is another update,
// so a burst of index batches merges once before the query re-runs.
func (w *Worker) pendingUpdate() (UpdateCommand, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return UpdateCommand{}, false
	}
	cmd, ok := w.queue[0].(UpdateCommand)
	if !ok {
		return UpdateCommand{}, false
	}
	w.queue = w.queue[1:]
	return cmd, true
}

// active is the query the worker re-runs after dataset merges.
type active struct {
	id    uint64
	query string
	mode  extension.Mode
}

func (w *Worker) run(d *data.SearchData, catalog *extension.Catalog, sender *stream.Sender[search.View]) {
	defer sender.Close()

	ctx := search.NewQueryContext(d, &w.latest)
	var current active

	for {
		switch cmd := w.next().(type) {
		case QueryCommand:
			if ctx.Superseded(cmd.ID) {
				// A newer query is already queued; skip this one.
				continue
			}
			current = active{id: cmd.ID, query: cmd.Query, mode: cmd.Mode}
			if !w.runQuery(current, catalog, sender, ctx) {
				return
			}
		case UpdateCommand:
			changed := d.ApplyUpdate(cmd.Update)
			for {
				more, ok := w.pendingUpdate()
				if !ok {
					break
				}
				if d.ApplyUpdate(more.Update) {
					changed = true
				}
			}
			if !changed || current.id == 0 || ctx.Superseded(current.id) {
				continue
			}
			if !w.runQuery(current, catalog, sender, ctx) {
				return
			}
		case ShutdownCommand:
			return
		}
	}
}

// runQuery dispatches to the mode's module. It returns false when the
// results receiver is gone and the worker should stop.
func (w *Worker) runQuery(a active, catalog *extension.Catalog, sender *stream.Sender[search.View], ctx search.QueryContext) bool {
	module, ok := catalog.ModuleFor(a.mode)
	if !ok {
		slog.Warn("query for unknown mode", slog.String("mode", a.mode.ID()))
		return true
	}
	s := search.NewStream(sender, a.id, a.mode.ID())
	return module.Stream(a.query, s, ctx)
}
