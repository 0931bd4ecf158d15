package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/gitignore"
)

// ignoreCacheSize bounds the number of parsed ignore matchers kept per
// walk.
const ignoreCacheSize = 1000

// walker performs the ignore-aware traversal and emits rows on a channel.
// It is shared by the concurrent subtree tasks; the matcher cache is the
// only guarded state.
type walker struct {
	root          string
	opts          Options
	extFilter     map[string]struct{}
	globalIgnores map[string]struct{}

	ignoreCache *lru.Cache[string, *gitignore.Matcher]
	cacheMu     sync.RWMutex
}

func newWalker(root string, opts Options) (*walker, error) {
	cache, err := lru.New[string, *gitignore.Matcher](ignoreCacheSize)
	if err != nil {
		return nil, err
	}
	return &walker{
		root:          root,
		opts:          opts,
		extFilter:     opts.extensionFilter(),
		globalIgnores: opts.globalIgnoreSet(),
		ignoreCache:   cache,
	}, nil
}

// walkSubtree walks one subtree, sending a row for every file that passes
// the filters. Per-entry errors are skipped; discovery is best effort.
func (w *walker) walkSubtree(ctx context.Context, start string, rows chan<- data.FileRow) {
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			slog.Debug("skipping unreadable entry", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if relPath == "." {
			return nil
		}
		rel := filepath.ToSlash(relPath)

		if d.IsDir() {
			if w.shouldPruneDir(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !w.opts.FollowSymlinks {
			return nil
		}
		if !w.accepts(rel, d.Name()) {
			return nil
		}

		row := data.NewFileRow(rel, data.TagsForPath(rel))
		select {
		case rows <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && err != context.Canceled {
		slog.Debug("subtree walk ended early", slog.String("start", start), slog.String("error", err.Error()))
	}
}

// shouldPruneDir decides whether a whole directory is skipped.
func (w *walker) shouldPruneDir(rel, name string) bool {
	if _, ok := w.globalIgnores[name]; ok {
		return true
	}
	if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if w.opts.MaxDepth > 0 && strings.Count(rel, "/")+1 >= w.opts.MaxDepth {
		return true
	}
	if w.opts.RespectIgnoreFiles && w.isIgnored(rel, true) {
		return true
	}
	return false
}

// accepts decides whether a file row is emitted.
func (w *walker) accepts(rel, name string) bool {
	if !w.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return false
	}
	if w.extFilter != nil {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if _, ok := w.extFilter[ext]; !ok {
			return false
		}
	}
	if w.opts.RespectIgnoreFiles && w.isIgnored(rel, false) {
		return false
	}
	return true
}

// isIgnored consults the ignore files along the path from the root to the
// entry, nearest last.
func (w *walker) isIgnored(rel string, isDir bool) bool {
	if matcher := w.matcherFor(w.root, ""); matcher != nil && matcher.Match(rel, isDir) {
		return true
	}

	dir := path.Dir(rel)
	if dir == "." {
		return false
	}
	currentDir := w.root
	currentBase := ""
	for _, part := range strings.Split(dir, "/") {
		currentDir = filepath.Join(currentDir, part)
		if currentBase == "" {
			currentBase = part
		} else {
			currentBase = currentBase + "/" + part
		}
		if matcher := w.matcherFor(currentDir, currentBase); matcher != nil && matcher.Match(rel, isDir) {
			return true
		}
	}
	return false
}

// matcherFor returns the cached matcher for the ignore files in dir, or
// nil when none exist.
func (w *walker) matcherFor(dir, base string) *gitignore.Matcher {
	w.cacheMu.RLock()
	matcher, ok := w.ignoreCache.Get(dir)
	w.cacheMu.RUnlock()
	if ok {
		return matcher
	}

	matcher = gitignore.New()
	for _, name := range []string{".gitignore", ".ignore"} {
		ignorePath := filepath.Join(dir, name)
		if _, err := os.Stat(ignorePath); err != nil {
			continue
		}
		if err := matcher.AddFromFile(ignorePath, base); err != nil {
			slog.Debug("unreadable ignore file", slog.String("path", ignorePath), slog.String("error", err.Error()))
		}
	}
	if matcher.Len() == 0 {
		matcher = nil
	}

	w.cacheMu.Lock()
	w.ignoreCache.Add(dir, matcher)
	w.cacheMu.Unlock()
	return matcher
}
