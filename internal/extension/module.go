package extension

import (
	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/search"
)

// SelectionContext is the state a module resolves selections against.
type SelectionContext struct {
	Data  *data.SearchData
	Query string
}

// Selection is a resolved pick from a mode's result list. Exactly one
// of File and Attribute is set, matching the mode's row kind.
type Selection struct {
	Mode      Mode
	File      *data.FileRow
	Attribute *data.AttributeRow
	Index     int
}

// Module is one searchable surface. Implementations are stateless with
// respect to queries; all per-query state lives in the stream and
// context passed to Stream.
type Module interface {
	// Descriptor returns the module's static registration record.
	Descriptor() *Descriptor

	// Stream runs one query over the module's dataset, delivering
	// ranked batches on the stream. It returns false only when the
	// stream's receiver is gone.
	Stream(query string, s search.Stream, ctx search.QueryContext) bool

	// Selection resolves the row at index into a selection, or false
	// when the index is out of range.
	Selection(ctx SelectionContext, index int) (Selection, bool)
}
