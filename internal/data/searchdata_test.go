package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowFor(path string) FileRow {
	return NewFileRow(path, TagsForPath(path))
}

func updateOf(paths ...string) IndexUpdate {
	u := IndexUpdate{}
	for _, p := range paths {
		u.Files = append(u.Files, rowFor(p))
	}
	return u
}

func paths(d *SearchData) []string {
	out := make([]string, len(d.Files))
	for i, row := range d.Files {
		out[i] = row.Path
	}
	return out
}

func TestApplyUpdate_KeepsFilesSortedByPath(t *testing.T) {
	d := New()
	d.ApplyUpdate(updateOf("b/z.go", "a/x.go", "c/y.go"))

	assert.Equal(t, []string{"a/x.go", "b/z.go", "c/y.go"}, paths(d))
}

func TestApplyUpdate_IsIdempotent(t *testing.T) {
	// Given: a dataset with one batch applied
	d := New()
	u := updateOf("a/x.go", "b/y.txt")
	require.True(t, d.ApplyUpdate(u))

	// When: the identical batch is applied again
	changed := d.ApplyUpdate(u)

	// Then: nothing changes
	assert.False(t, changed)
	assert.Equal(t, []string{"a/x.go", "b/y.txt"}, paths(d))
	assert.Equal(t, 2, d.Progress.IndexedFiles)
}

func TestApplyUpdate_DisjointBatchesCommute(t *testing.T) {
	// Given: two batches touching disjoint keys
	u1 := updateOf("a/x.go", "a/y.go")
	u2 := updateOf("b/z.txt")

	// When: they are applied in both orders
	first := New()
	first.ApplyUpdate(u1)
	first.ApplyUpdate(u2)

	second := New()
	second.ApplyUpdate(u2)
	second.ApplyUpdate(u1)

	// Then: both copies are element-wise equal
	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Attributes, second.Attributes)
}

func TestApplyUpdate_TwoCopiesReplayingSameSequenceConverge(t *testing.T) {
	// Given: a consumer copy and a worker clone
	consumer := New()
	worker := consumer.Clone()

	sequence := []IndexUpdate{
		updateOf("src/a.go", "src/b.go"),
		updateOf("docs/readme.md"),
		{Removed: []string{"src/a.go"}},
		updateOf("src/a.go"),
	}

	// When: both replay the identical ordered sequence
	for _, u := range sequence {
		consumer.ApplyUpdate(u)
		worker.ApplyUpdate(u)
	}

	// Then: the copies are indistinguishable
	assert.Equal(t, consumer.Files, worker.Files)
	assert.Equal(t, consumer.Attributes, worker.Attributes)
}

func TestApplyUpdate_RemovalDropsAttributeCounts(t *testing.T) {
	// Given: two files sharing a directory tag
	d := New()
	d.ApplyUpdate(updateOf("src/a.go", "src/b.go"))

	i, ok := d.LookupAttribute("src")
	require.True(t, ok)
	require.Equal(t, 2, d.Attributes[i].Count)

	// When: one file is removed
	require.True(t, d.ApplyUpdate(IndexUpdate{Removed: []string{"src/a.go"}}))

	// Then: the shared tag count decrements
	i, ok = d.LookupAttribute("src")
	require.True(t, ok)
	assert.Equal(t, 1, d.Attributes[i].Count)

	// And: removing the last file deletes the attribute entirely
	require.True(t, d.ApplyUpdate(IndexUpdate{Removed: []string{"src/b.go"}}))
	_, ok = d.LookupAttribute("src")
	assert.False(t, ok)
	_, ok = d.LookupAttribute("*.go")
	assert.False(t, ok)
}

func TestApplyUpdate_RemovingUnknownKeyIsNoOp(t *testing.T) {
	d := New()
	d.ApplyUpdate(updateOf("a/x.go"))

	changed := d.ApplyUpdate(IndexUpdate{Removed: []string{"nope.go"}})

	assert.False(t, changed)
	assert.Equal(t, []string{"a/x.go"}, paths(d))
}

func TestApplyUpdate_ReplacementDoesNotDuplicate(t *testing.T) {
	d := New()
	d.ApplyUpdate(updateOf("a/x.go"))

	d.ApplyUpdate(updateOf("a/x.go"))

	assert.Len(t, d.Files, 1)
	i, ok := d.LookupAttribute("a")
	require.True(t, ok)
	assert.Equal(t, 1, d.Attributes[i].Count)
}

func TestApplyUpdate_ResetClearsBeforeMerging(t *testing.T) {
	// Given: a populated dataset
	d := New()
	d.ApplyUpdate(updateOf("old/a.go", "old/b.go"))

	// When: a reset batch arrives
	u := updateOf("new/c.go")
	u.Reset = true
	require.True(t, d.ApplyUpdate(u))

	// Then: only the new rows remain
	assert.Equal(t, []string{"new/c.go"}, paths(d))
	_, ok := d.LookupAttribute("old")
	assert.False(t, ok)
}

func TestApplyUpdate_ProgressTracksCountsAndCompletion(t *testing.T) {
	d := New()

	d.ApplyUpdate(updateOf("a/x.go"))
	assert.False(t, d.Progress.Complete)
	assert.Equal(t, 1, d.Progress.IndexedFiles)

	final := IndexUpdate{Complete: true}
	d.ApplyUpdate(final)
	assert.True(t, d.Progress.Complete)
	assert.Equal(t, 1, d.Progress.IndexedFiles)
	assert.Equal(t, len(d.Attributes), d.Progress.IndexedAttributes)
}

func TestLookupFile_BinarySearchFindsExactKeys(t *testing.T) {
	d := New()
	d.ApplyUpdate(updateOf("a/x.go", "b/y.go", "c/z.go"))

	i, ok := d.LookupFile("b/y.go")
	require.True(t, ok)
	assert.Equal(t, "b/y.go", d.Files[i].Path)

	_, ok = d.LookupFile("b/missing.go")
	assert.False(t, ok)
}

func TestLookupFileByID_FindsRowAfterPositionsShift(t *testing.T) {
	// Given: a row whose position will shift
	d := New()
	d.ApplyUpdate(updateOf("m/target.go"))
	id := d.Files[0].ID

	// When: rows sorting earlier are merged in
	d.ApplyUpdate(updateOf("a/first.go", "b/second.go"))

	// Then: the stable id still resolves the row
	i, ok := d.LookupFileByID(id)
	require.True(t, ok)
	assert.Equal(t, "m/target.go", d.Files[i].Path)
	assert.Equal(t, 2, i)
}

func TestClone_IsIndependentOfTheOriginal(t *testing.T) {
	d := New()
	d.ApplyUpdate(updateOf("a/x.go"))

	clone := d.Clone()
	clone.ApplyUpdate(updateOf("b/y.go"))

	assert.Len(t, d.Files, 1)
	assert.Len(t, clone.Files, 2)
}
