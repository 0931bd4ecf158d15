package index

// Filter exposes the walk's acceptance rules so other producers (the
// change watcher) stay consistent with the initial index.
type Filter struct {
	w *walker
}

// NewFilter builds a filter over the same rules a walk of root would
// use.
func NewFilter(root string, opts Options) (*Filter, error) {
	w, err := newWalker(root, opts)
	if err != nil {
		return nil, err
	}
	return &Filter{w: w}, nil
}

// SkipDir reports whether a directory (relative slash path, base name)
// is pruned.
func (f *Filter) SkipDir(rel, name string) bool {
	return f.w.shouldPruneDir(rel, name)
}

// AcceptFile reports whether a file passes the hidden, extension and
// ignore checks.
func (f *Filter) AcceptFile(rel, name string) bool {
	return f.w.accepts(rel, name)
}
