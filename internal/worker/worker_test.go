package worker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/extension"
	"github.com/Alb-O/frz/internal/extension/builtin"
	"github.com/Alb-O/frz/internal/search"
)

// resultView collects the batches a query delivers.
type resultView struct {
	batches     map[string]search.MatchBatch
	completions int
}

func newResultView() *resultView {
	return &resultView{batches: make(map[string]search.MatchBatch)}
}

func (v *resultView) ReplaceMatches(mode string, batch search.MatchBatch) { v.batches[mode] = batch }
func (v *resultView) ClearMatches(mode string)                           { delete(v.batches, mode) }
func (v *resultView) RecordCompletion(_ string, complete bool) {
	if complete {
		v.completions++
	}
}

func seededData(paths ...string) *data.SearchData {
	d := data.New()
	u := data.IndexUpdate{}
	for _, p := range paths {
		u.Files = append(u.Files, data.NewFileRow(p, data.TagsForPath(p)))
	}
	d.ApplyUpdate(u)
	return d
}

func testCatalog() *extension.Catalog {
	c := extension.NewCatalog()
	builtin.RegisterDefaults(c)
	return c
}

// drainUntilComplete applies envelopes until one with the given id
// carries the completion flag.
func drainUntilComplete(t *testing.T, w *Worker, view *resultView, id uint64) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case env, ok := <-w.Results().Chan():
			require.True(t, ok, "results stream closed before completion")
			env.Dispatch(view)
			if env.Complete && env.ID == id {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for query completion")
		}
	}
}

func matchedPaths(d *data.SearchData, batch search.MatchBatch) []string {
	var out []string
	for _, id := range batch.IDs {
		if i, ok := d.LookupFileByID(id); ok {
			out = append(out, d.Files[i].Path)
		}
	}
	return out
}

func TestWorker_RunsQueryOverItsOwnCopy(t *testing.T) {
	// Given: a worker over a seeded dataset
	initial := seededData("frozen.txt", "frz", "forest")
	w := Spawn(initial, testCatalog())
	defer w.Shutdown()

	// When: a query runs
	id := w.SubmitQuery("frz", extension.ModeFor(builtin.FilesModuleID))
	view := newResultView()
	drainUntilComplete(t, w, view, id)

	// Then: matches arrive ranked, the exact row first
	batch := view.batches[builtin.FilesModuleID]
	got := matchedPaths(initial, batch)
	assert.Equal(t, []string{"frz", "frozen.txt"}, got)
}

func TestWorker_EmptyQueryListsEverything(t *testing.T) {
	initial := seededData("b.go", "a.go")
	w := Spawn(initial, testCatalog())
	defer w.Shutdown()

	id := w.SubmitQuery("", extension.ModeFor(builtin.FilesModuleID))
	view := newResultView()
	drainUntilComplete(t, w, view, id)

	batch := view.batches[builtin.FilesModuleID]
	assert.Equal(t, []string{"a.go", "b.go"}, matchedPaths(initial, batch))
}

func TestWorker_AttributeModeSearchesAttributes(t *testing.T) {
	initial := seededData("src/a.go", "src/b.go", "docs/c.md")
	w := Spawn(initial, testCatalog())
	defer w.Shutdown()

	id := w.SubmitQuery("src", extension.ModeFor(builtin.AttributesModuleID))
	view := newResultView()
	drainUntilComplete(t, w, view, id)

	batch := view.batches[builtin.AttributesModuleID]
	require.Len(t, batch.IDs, 1)
	i, ok := initial.LookupAttribute("src")
	require.True(t, ok)
	assert.Equal(t, initial.Attributes[i].ID, batch.IDs[0])
}

func TestWorker_RerunsActiveQueryAfterUpdate(t *testing.T) {
	// Given: a completed query
	initial := seededData("frz")
	w := Spawn(initial, testCatalog())
	defer w.Shutdown()

	id := w.SubmitQuery("frz", extension.ModeFor(builtin.FilesModuleID))
	view := newResultView()
	drainUntilComplete(t, w, view, id)
	require.Len(t, view.batches[builtin.FilesModuleID].IDs, 1)

	// When: the dataset grows with another matching row
	update := data.IndexUpdate{
		Files:    []data.FileRow{data.NewFileRow("a/freeze.txt", data.TagsForPath("a/freeze.txt"))},
		Complete: true,
	}
	w.ForwardUpdate(update)
	drainUntilComplete(t, w, view, id)

	// Then: the active query is re-run against the merged copy
	batch := view.batches[builtin.FilesModuleID]
	assert.Len(t, batch.IDs, 2)
}

func TestWorker_UnchangedUpdateDoesNotRerun(t *testing.T) {
	initial := seededData("frz")
	w := Spawn(initial, testCatalog())
	defer w.Shutdown()

	id := w.SubmitQuery("frz", extension.ModeFor(builtin.FilesModuleID))
	view := newResultView()
	drainUntilComplete(t, w, view, id)
	completions := view.completions

	// A no-op update must not produce another result pass.
	w.ForwardUpdate(data.IndexUpdate{Complete: true})

	select {
	case env, ok := <-w.Results().Chan():
		if ok {
			env.Dispatch(view)
		}
		t.Fatalf("unexpected envelope after no-op update")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, completions, view.completions)
}

func TestWorker_ForwardUpdateDoesNotBlockOnFullResults(t *testing.T) {
	// Given: a large dataset, an active empty query, and a consumer
	// that has stopped draining the results stream
	paths := make([]string, 3000)
	for i := range paths {
		paths[i] = fmt.Sprintf("dir/file%04d.go", i)
	}
	w := Spawn(seededData(paths...), testCatalog())
	t.Cleanup(func() {
		w.Results().Close()
		w.Shutdown()
	})
	w.SubmitQuery("", extension.ModeFor(builtin.FilesModuleID))

	// When: a burst of index updates is forwarded
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			row := data.NewFileRow(fmt.Sprintf("new/file%03d.go", i), nil)
			w.ForwardUpdate(data.IndexUpdate{Files: []data.FileRow{row}})
		}
	}()

	// Then: every forward returns even though nothing drains results
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ForwardUpdate blocked behind a busy worker")
	}
}

func TestWorker_CoalescesQueuedUpdates(t *testing.T) {
	// Given: a queue holding three updates and then a query
	w := &Worker{wake: make(chan struct{}, 1)}
	for i := 0; i < 3; i++ {
		w.enqueue(UpdateCommand{})
	}
	w.enqueue(QueryCommand{ID: 1})

	// When: the loop pops the head and drains trailing updates
	_, ok := w.next().(UpdateCommand)
	require.True(t, ok)
	var drained int
	for {
		if _, ok := w.pendingUpdate(); !ok {
			break
		}
		drained++
	}

	// Then: only the updates coalesce; the query stays queued
	assert.Equal(t, 2, drained)
	_, ok = w.next().(QueryCommand)
	assert.True(t, ok)
}

func TestWorker_ShutdownClosesResults(t *testing.T) {
	w := Spawn(seededData("a.go"), testCatalog())

	w.Shutdown()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-w.Results().Chan():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("results stream did not close after shutdown")
		}
	}
}

func TestWorker_SubmitQueryMonotonicallyIncreasesIDs(t *testing.T) {
	w := Spawn(seededData("a.go"), testCatalog())
	defer w.Shutdown()

	first := w.SubmitQuery("a", extension.ModeFor(builtin.FilesModuleID))
	second := w.SubmitQuery("ab", extension.ModeFor(builtin.FilesModuleID))

	assert.Greater(t, second, first)
	assert.Equal(t, second, w.Latest().Load())
}
