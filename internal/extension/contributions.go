package extension

// PreviewRenderer produces a preview pane body for a selection.
type PreviewRenderer interface {
	RenderPreview(ctx SelectionContext, sel Selection, width, height int) string
}

// IconProvider maps a row to a leading glyph.
type IconProvider interface {
	Icon(sel Selection) string
}

// SelectionResolver overrides a module's default selection handling.
type SelectionResolver interface {
	Resolve(ctx SelectionContext, index int) (Selection, bool)
}

// Contributions bundles the per-module stores the consumer consults.
// All stores cascade on deregistration.
type Contributions struct {
	Previews   *Store[PreviewRenderer]
	Icons      *Store[IconProvider]
	Selections *Store[SelectionResolver]
}

// NewContributions builds the standard contribution stores against a
// catalog.
func NewContributions(catalog *Catalog) *Contributions {
	return &Contributions{
		Previews:   NewStore[PreviewRenderer](catalog),
		Icons:      NewStore[IconProvider](catalog),
		Selections: NewStore[SelectionResolver](catalog),
	}
}
