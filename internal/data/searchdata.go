// Package data holds the canonical in-memory dataset shared between the
// consumer and the search worker. The two sides own independent copies and
// keep them convergent by replaying identical update messages; nothing in
// this package locks.
package data

import (
	"sort"
)

// Progress aggregates per-dataset counters and the completion flag.
type Progress struct {
	IndexedFiles      int
	IndexedAttributes int
	Complete          bool
}

// IndexUpdate is one incremental batch produced by the filesystem indexer
// or the watcher. Applying the same ordered sequence of updates to two
// SearchData copies leaves them element-wise equal.
type IndexUpdate struct {
	// Files are discovered or changed rows; a row whose key is already
	// present replaces the prior entry.
	Files []FileRow

	// Removed lists merge keys of rows deleted from the tree.
	Removed []string

	// Reset clears existing rows before the batch is applied.
	Reset bool

	// Complete reports whether the index is caught up with the tree
	// after this batch.
	Complete bool
}

// Empty reports whether applying the update would be a no-op apart from
// the flags.
func (u IndexUpdate) Empty() bool {
	return len(u.Files) == 0 && len(u.Removed) == 0 && !u.Reset
}

// SearchData is the canonical dataset for all built-in modes. Files are
// kept sorted by path and attributes sorted by name, so merges are
// order-independent for disjoint keys and both copies settle on identical
// layouts.
type SearchData struct {
	Root         string
	ContextLabel string
	InitialQuery string

	Files      []FileRow
	Attributes []AttributeRow
	Progress   Progress

	attrCounts map[string]int
}

// New creates an empty SearchData.
func New() *SearchData {
	return &SearchData{attrCounts: make(map[string]int)}
}

// Clone returns an independently mutable copy.
func (d *SearchData) Clone() *SearchData {
	out := &SearchData{
		Root:         d.Root,
		ContextLabel: d.ContextLabel,
		InitialQuery: d.InitialQuery,
		Files:        append([]FileRow(nil), d.Files...),
		Attributes:   append([]AttributeRow(nil), d.Attributes...),
		Progress:     d.Progress,
		attrCounts:   make(map[string]int, len(d.attrCounts)),
	}
	for tag, count := range d.attrCounts {
		out.attrCounts[tag] = count
	}
	return out
}

// LookupFile returns the current position of the row with the given path.
func (d *SearchData) LookupFile(path string) (int, bool) {
	i := sort.Search(len(d.Files), func(i int) bool { return d.Files[i].Path >= path })
	if i < len(d.Files) && d.Files[i].Path == path {
		return i, true
	}
	return i, false
}

// LookupFileByID returns the current position of the row with the given
// stable id, scanning when the id's key is unknown to the caller.
func (d *SearchData) LookupFileByID(id uint64) (int, bool) {
	for i := range d.Files {
		if d.Files[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// LookupAttribute returns the current position of the named attribute row.
func (d *SearchData) LookupAttribute(name string) (int, bool) {
	i := sort.Search(len(d.Attributes), func(i int) bool { return d.Attributes[i].Name >= name })
	if i < len(d.Attributes) && d.Attributes[i].Name == name {
		return i, true
	}
	return i, false
}

// ApplyUpdate merges one batch into this copy. The merge is idempotent:
// applying the same batch twice yields the same dataset as applying it
// once, so the consumer and worker converge from identical inputs.
// Attribute counts are derived from file tags during the merge rather than
// carried in the message, which keeps them a pure function of the replayed
// sequence.
func (d *SearchData) ApplyUpdate(u IndexUpdate) bool {
	if d.attrCounts == nil {
		d.attrCounts = make(map[string]int)
	}

	changed := false

	if u.Reset && (len(d.Files) > 0 || len(d.Attributes) > 0) {
		d.Files = d.Files[:0]
		d.Attributes = d.Attributes[:0]
		clear(d.attrCounts)
		changed = true
	}

	for _, key := range u.Removed {
		i, ok := d.LookupFile(key)
		if !ok {
			continue
		}
		d.dropTags(d.Files[i].Tags)
		d.Files = append(d.Files[:i], d.Files[i+1:]...)
		changed = true
	}

	for _, row := range u.Files {
		i, ok := d.LookupFile(row.Path)
		if ok {
			prior := d.Files[i]
			d.Files[i] = row
			if !sameTags(prior.Tags, row.Tags) {
				d.dropTags(prior.Tags)
				d.addTags(row.Tags)
				changed = true
			}
			continue
		}
		d.Files = append(d.Files, FileRow{})
		copy(d.Files[i+1:], d.Files[i:])
		d.Files[i] = row
		d.addTags(row.Tags)
		changed = true
	}

	if changed {
		d.rebuildAttributes()
	}

	d.Progress = Progress{
		IndexedFiles:      len(d.Files),
		IndexedAttributes: len(d.Attributes),
		Complete:          u.Complete,
	}

	return changed
}

func (d *SearchData) addTags(tags []string) {
	for _, tag := range tags {
		d.attrCounts[tag]++
	}
}

func (d *SearchData) dropTags(tags []string) {
	for _, tag := range tags {
		if d.attrCounts[tag] <= 1 {
			delete(d.attrCounts, tag)
		} else {
			d.attrCounts[tag]--
		}
	}
}

func (d *SearchData) rebuildAttributes() {
	d.Attributes = d.Attributes[:0]
	for name, count := range d.attrCounts {
		d.Attributes = append(d.Attributes, NewAttributeRow(name, count))
	}
	sort.Slice(d.Attributes, func(i, j int) bool { return d.Attributes[i].Name < d.Attributes[j].Name })
}

func sameTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
