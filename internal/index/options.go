package index

import (
	"runtime"
	"strings"
)

// Options configures the filesystem walk.
type Options struct {
	// IncludeHidden walks dot-files and dot-directories.
	IncludeHidden bool

	// FollowSymlinks resolves symlinked directories instead of skipping
	// them.
	FollowSymlinks bool

	// RespectIgnoreFiles honors .gitignore and .ignore files found in the
	// tree.
	RespectIgnoreFiles bool

	// GlobalIgnores are directory names pruned everywhere regardless of
	// ignore files.
	GlobalIgnores []string

	// AllowedExtensions restricts results to the given extensions
	// (without the leading dot). Empty means all files.
	AllowedExtensions []string

	// MaxDepth bounds directory nesting below the root. 0 means
	// unlimited.
	MaxDepth int

	// Workers is the number of concurrent subtree walkers (0 = NumCPU).
	Workers int

	// ContextLabel is shown by the UI; defaults to the root path.
	ContextLabel string
}

// DefaultOptions returns the walk configuration used when nothing is set.
func DefaultOptions() Options {
	return Options{
		IncludeHidden:      false,
		RespectIgnoreFiles: true,
		GlobalIgnores: []string{
			".git",
			"node_modules",
			"target",
			"vendor",
			"__pycache__",
			".venv",
			".cache",
		},
	}
}

func (o Options) workerCount() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) extensionFilter() map[string]struct{} {
	if len(o.AllowedExtensions) == 0 {
		return nil
	}
	filter := make(map[string]struct{}, len(o.AllowedExtensions))
	for _, ext := range o.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			filter[ext] = struct{}{}
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

func (o Options) globalIgnoreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.GlobalIgnores))
	for _, name := range o.GlobalIgnores {
		set[name] = struct{}{}
	}
	return set
}
