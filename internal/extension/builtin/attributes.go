package builtin

import (
	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/extension"
	"github.com/Alb-O/frz/internal/search"
)

// AttributesModuleID is the identifier of the attribute-search module.
const AttributesModuleID = "attributes"

// AttributesModule searches the derived attribute rows (directory
// components and extension tags) with their file counts.
type AttributesModule struct {
	matcher search.Matcher
}

// NewAttributesModule returns the attribute-search module.
func NewAttributesModule() *AttributesModule {
	return &AttributesModule{matcher: search.NewFuzzyMatcher()}
}

func (m *AttributesModule) Descriptor() *extension.Descriptor {
	return &extension.Descriptor{
		ID: AttributesModuleID,
		UI: extension.UIDefinition{
			TabLabel:   "Attributes",
			ModeTitle:  "Attribute search",
			Hint:       "type to fuzzy-match attributes",
			TableTitle: "Attributes",
			CountLabel: "attributes",
		},
		Columns: []extension.Column{
			{Title: "Attribute", Weight: 3},
			{Title: "Count", Weight: 1},
		},
		Kind: extension.KindAttribute,
	}
}

func (m *AttributesModule) Stream(query string, s search.Stream, ctx search.QueryContext) bool {
	return search.StreamDataset(query, data.AttributeDataset(ctx.Data().Attributes), s, ctx, m.matcher)
}

func (m *AttributesModule) Selection(ctx extension.SelectionContext, index int) (extension.Selection, bool) {
	if ctx.Data == nil || index < 0 || index >= len(ctx.Data.Attributes) {
		return extension.Selection{}, false
	}
	row := ctx.Data.Attributes[index]
	return extension.Selection{
		Mode:      extension.ModeFor(AttributesModuleID),
		Attribute: &row,
		Index:     index,
	}, true
}

// RegisterDefaults installs the built-in modules into a fresh catalog.
func RegisterDefaults(catalog *extension.Catalog) {
	catalog.MustRegister(NewFilesModule())
	catalog.MustRegister(NewAttributesModule())
}
