package data

import (
	"sort"
	"strings"
)

// FileRow is one entry in the files dataset.
type FileRow struct {
	// Path is the file path relative to the indexed root, with forward
	// slashes. It is the row's merge key.
	Path string

	// Tags are the attribute labels derived for this file (parent
	// directory names plus a "*.ext" extension tag), sorted.
	Tags []string

	// DisplayTags is the comma-joined rendering of Tags.
	DisplayTags string

	// ID is a stable identifier derived from Path. It survives merges
	// that shift row positions.
	ID uint64

	searchText string
}

// NewFileRow builds a row for the given relative path and tags.
func NewFileRow(path string, tags []string) FileRow {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)

	display := strings.Join(sorted, ", ")
	searchText := path
	if display != "" {
		searchText = path + " " + display
	}

	return FileRow{
		Path:        path,
		Tags:        sorted,
		DisplayTags: display,
		ID:          StableID(path),
		searchText:  searchText,
	}
}

// Key returns the row's merge key.
func (r FileRow) Key() string { return r.Path }

// SearchText returns the text matched against queries: the path followed by
// the display tags.
func (r FileRow) SearchText() string { return r.searchText }

// AttributeRow is one entry in the attributes dataset: a tag and the number
// of files carrying it.
type AttributeRow struct {
	ID    uint64
	Name  string
	Count int
}

// NewAttributeRow builds an attribute row with a stable id derived from the
// name.
func NewAttributeRow(name string, count int) AttributeRow {
	return AttributeRow{ID: StableID(name), Name: name, Count: count}
}

// Key returns the row's merge key.
func (r AttributeRow) Key() string { return r.Name }

// StableID computes a stable 64-bit FNV-1a hash of the given key. Written
// out rather than going through hash/fnv to avoid a hasher allocation per
// row on the indexing hot path.
func StableID(key string) uint64 {
	const (
		fnvOffset = 0xcbf29ce484222325
		fnvPrime  = 0x00000100000001b3
	)
	hash := uint64(fnvOffset)
	for i := 0; i < len(key); i++ {
		hash ^= uint64(key[i])
		hash *= fnvPrime
	}
	return hash
}

// TagsForPath derives attribute tags for a root-relative path: every parent
// directory component plus a "*.ext" tag when the file has an extension.
func TagsForPath(relative string) []string {
	seen := make(map[string]struct{})
	var tags []string

	parts := strings.Split(relative, "/")
	for _, part := range parts[:len(parts)-1] {
		if part == "" || part == "." {
			continue
		}
		if _, ok := seen[part]; !ok {
			seen[part] = struct{}{}
			tags = append(tags, part)
		}
	}

	base := parts[len(parts)-1]
	if dot := strings.LastIndexByte(base, '.'); dot > 0 && dot < len(base)-1 {
		tag := "*." + base[dot+1:]
		if _, ok := seen[tag]; !ok {
			tags = append(tags, tag)
		}
	}

	sort.Strings(tags)
	return tags
}
