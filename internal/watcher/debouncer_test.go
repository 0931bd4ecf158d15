package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with a short window
	d := newDebouncer(30 * time.Millisecond)
	defer d.Stop()

	// When: a single event is added
	d.add(FileEvent{Path: "a/x.go", Operation: OpCreate, Timestamp: time.Now()})

	// Then: it comes out after the window
	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "a/x.go", events[0].Path)
		assert.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_CreateThenModify_StaysCreate(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "a/x.go", Operation: OpCreate, Timestamp: time.Now()})
	d.add(FileEvent{Path: "a/x.go", Operation: OpModify, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_CreateThenDelete_EmitsNothing(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "tmp.go", Operation: OpCreate, Timestamp: time.Now()})
	d.add(FileEvent{Path: "tmp.go", Operation: OpDelete, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		t.Fatalf("expected no events, got %v", events)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncer_ModifyThenDelete_BecomesDelete(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "a/x.go", Operation: OpModify, Timestamp: time.Now()})
	d.add(FileEvent{Path: "a/x.go", Operation: OpDelete, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpDelete, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_DeleteThenCreate_BecomesModify(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "a/x.go", Operation: OpDelete, Timestamp: time.Now()})
	d.add(FileEvent{Path: "a/x.go", Operation: OpCreate, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_DistinctPathsStaySeparate(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.Stop()

	d.add(FileEvent{Path: "a/x.go", Operation: OpCreate, Timestamp: time.Now()})
	d.add(FileEvent{Path: "b/y.go", Operation: OpDelete, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 2)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for debounced events")
	}
}

func TestDebouncer_AddAfterStop_IsIgnored(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	d.Stop()

	assert.NotPanics(t, func() {
		d.add(FileEvent{Path: "a/x.go", Operation: OpCreate, Timestamp: time.Now()})
	})
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "MODIFY", OpModify.String())
	assert.Equal(t, "DELETE", OpDelete.String())
	assert.Equal(t, "UNKNOWN", Operation(99).String())
}
