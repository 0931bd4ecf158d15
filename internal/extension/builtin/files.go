// Package builtin provides the two modules every session starts with:
// the file listing and the attribute listing.
package builtin

import (
	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/extension"
	"github.com/Alb-O/frz/internal/search"
)

// FilesModuleID is the identifier of the file-search module.
const FilesModuleID = "files"

// FilesModule searches indexed file rows by path and tags.
type FilesModule struct {
	matcher search.Matcher
}

// NewFilesModule returns the file-search module with the default fuzzy
// matcher.
func NewFilesModule() *FilesModule {
	return &FilesModule{matcher: search.NewFuzzyMatcher()}
}

func (m *FilesModule) Descriptor() *extension.Descriptor {
	return &extension.Descriptor{
		ID: FilesModuleID,
		UI: extension.UIDefinition{
			TabLabel:   "Files",
			ModeTitle:  "File search",
			Hint:       "type to fuzzy-match paths and tags",
			TableTitle: "Files",
			CountLabel: "files",
		},
		Columns: []extension.Column{
			{Title: "Path", Weight: 3},
			{Title: "Tags", Weight: 1},
		},
		Kind: extension.KindFile,
	}
}

func (m *FilesModule) Stream(query string, s search.Stream, ctx search.QueryContext) bool {
	return search.StreamDataset(query, data.FileDataset(ctx.Data().Files), s, ctx, m.matcher)
}

func (m *FilesModule) Selection(ctx extension.SelectionContext, index int) (extension.Selection, bool) {
	if ctx.Data == nil || index < 0 || index >= len(ctx.Data.Files) {
		return extension.Selection{}, false
	}
	row := ctx.Data.Files[index]
	return extension.Selection{
		Mode:  extension.ModeFor(FilesModuleID),
		File:  &row,
		Index: index,
	}, true
}
