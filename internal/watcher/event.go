// Package watcher keeps the index caught up after the initial walk. It
// translates filesystem notifications into the same incremental update
// envelopes the indexer emits, after coalescing bursts through a
// debounce window.
package watcher

import "time"

// Operation is a filesystem change kind.
type Operation int

const (
	// OpCreate indicates a new file appeared.
	OpCreate Operation = iota
	// OpModify indicates an existing file changed.
	OpModify
	// OpDelete indicates a file is gone.
	OpDelete
)

func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one observed change, keyed by root-relative slash path.
type FileEvent struct {
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}
