package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/index"
	"github.com/Alb-O/frz/internal/stream"
)

const (
	// defaultDebounceWindow is how long a path's events coalesce before
	// an update is emitted.
	defaultDebounceWindow = 200 * time.Millisecond

	streamCapacity = 64
)

// Spawn watches root recursively and streams coalesced changes as index
// update envelopes. Every update carries the complete flag; the dataset
// stays caught up between batches. The watcher stops when ctx is
// cancelled or the receiver is closed.
func Spawn(ctx context.Context, root string, opts index.Options) (*stream.Receiver[index.View], error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	filter, err := index.NewFilter(absRoot, opts)
	if err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &watcher{
		root:      absRoot,
		filter:    filter,
		fsw:       fsw,
		debouncer: newDebouncer(defaultDebounceWindow),
	}

	if err := w.addRecursive(absRoot); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch tree: %w", err)
	}

	sender, receiver := stream.Open[index.View](streamCapacity)
	go w.run(ctx, sender)

	return receiver, nil
}

type watcher struct {
	root      string
	filter    *index.Filter
	fsw       *fsnotify.Watcher
	debouncer *debouncer
}

func (w *watcher) run(ctx context.Context, sender *stream.Sender[index.View]) {
	defer sender.Close()
	defer w.debouncer.Stop()
	defer func() { _ = w.fsw.Close() }()

	handle := stream.NewHandle(sender, 0, index.ModeID)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Debug("watch error", slog.String("error", err.Error()))
		case events, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			update := w.buildUpdate(events)
			if update.Empty() {
				continue
			}
			if !sendUpdate(handle, update) {
				return
			}
		}
	}
}

// handleEvent filters one raw notification and feeds the debouncer. New
// directories are added to the watch set immediately so files created
// inside them are not missed.
func (w *watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = filepath.ToSlash(rel)
	name := filepath.Base(event.Name)

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if w.filter.SkipDir(rel, name) {
				return
			}
			if err := w.addRecursive(event.Name); err != nil {
				slog.Debug("watch new directory", slog.String("path", rel), slog.String("error", err.Error()))
			}
			return
		}
	}

	op, ok := translateOp(event.Op)
	if !ok {
		return
	}

	// Deletions cannot be filtered by file checks that need the entry on
	// disk; removing an unknown key is a no-op downstream.
	if op != OpDelete && !w.filter.AcceptFile(rel, name) {
		return
	}

	w.debouncer.add(FileEvent{
		Path:      rel,
		Operation: op,
		Timestamp: time.Now(),
	})
}

func translateOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return OpCreate, true
	case op&fsnotify.Write != 0:
		return OpModify, true
	case op&fsnotify.Remove != 0, op&fsnotify.Rename != 0:
		return OpDelete, true
	default:
		return 0, false
	}
}

// buildUpdate converts a coalesced batch into one dataset update.
func (w *watcher) buildUpdate(events []FileEvent) data.IndexUpdate {
	update := data.IndexUpdate{Complete: true}
	for _, event := range events {
		switch event.Operation {
		case OpCreate, OpModify:
			abs := filepath.Join(w.root, filepath.FromSlash(event.Path))
			info, err := os.Lstat(abs)
			if err != nil || info.IsDir() {
				continue
			}
			update.Files = append(update.Files, data.NewFileRow(event.Path, data.TagsForPath(event.Path)))
		case OpDelete:
			update.Removed = append(update.Removed, event.Path)
		}
	}
	return update
}

func sendUpdate(handle stream.Handle[index.View], update data.IndexUpdate) bool {
	return handle.Send(func(view index.View) {
		view.ForwardUpdate(update)
		changed := view.ApplyUpdate(update)
		view.ScheduleRefresh(changed)
	}, false)
}

// addRecursive registers dir and every unpruned subdirectory with the
// fsnotify watcher.
func (w *watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping unreadable entry", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if rel != "." {
			if w.filter.SkipDir(filepath.ToSlash(rel), d.Name()) {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Debug("watch directory", slog.String("path", path), slog.String("error", err.Error()))
		}
		return nil
	})
}
