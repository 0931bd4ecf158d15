package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagsForPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{
			name: "nested path with extension",
			path: "src/parser/lexer.go",
			want: []string{"*.go", "parser", "src"},
		},
		{
			name: "root level file",
			path: "main.go",
			want: []string{"*.go"},
		},
		{
			name: "no extension",
			path: "docs/Makefile",
			want: []string{"docs"},
		},
		{
			name: "dotfile has no extension tag",
			path: "conf/.env",
			want: []string{"conf"},
		},
		{
			name: "repeated directory component deduplicated",
			path: "a/b/a/x.txt",
			want: []string{"*.txt", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TagsForPath(tt.path))
		})
	}
}

func TestNewFileRow_SortsTagsAndBuildsSearchText(t *testing.T) {
	row := NewFileRow("src/main.go", []string{"src", "*.go"})

	assert.Equal(t, []string{"*.go", "src"}, row.Tags)
	assert.Equal(t, "*.go, src", row.DisplayTags)
	assert.Equal(t, "src/main.go *.go, src", row.SearchText())
	assert.Equal(t, "src/main.go", row.Key())
}

func TestStableID_IsStableAndCollisionFreeForDistinctKeys(t *testing.T) {
	a := StableID("src/main.go")
	b := StableID("src/main.go")
	c := StableID("src/main2.go")

	require.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotZero(t, a)
}

func TestStableID_MatchesRowIdentity(t *testing.T) {
	row := NewFileRow("pkg/util.go", TagsForPath("pkg/util.go"))
	assert.Equal(t, StableID("pkg/util.go"), row.ID)

	attr := NewAttributeRow("*.go", 3)
	assert.Equal(t, StableID("*.go"), attr.ID)
}
