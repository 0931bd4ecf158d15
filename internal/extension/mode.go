// Package extension holds the pluggable search surface: modules that
// contribute a searchable mode each, the catalog they register in, and
// typed stores for auxiliary contributions that are cleaned up when a
// module leaves.
package extension

// Mode identifies a registered search surface. The zero value is no
// mode.
type Mode struct {
	id string
}

// ModeFor wraps a module identifier.
func ModeFor(id string) Mode { return Mode{id: id} }

// ID returns the module identifier, or "" for the zero mode.
func (m Mode) ID() string { return m.id }

// IsZero reports whether the mode is unset.
func (m Mode) IsZero() bool { return m.id == "" }

// UIDefinition carries the strings a consumer renders for a mode.
type UIDefinition struct {
	TabLabel   string
	ModeTitle  string
	Hint       string
	TableTitle string
	CountLabel string
}

// Column describes one result column a mode renders.
type Column struct {
	Title string
	// Weight apportions horizontal space relative to sibling columns.
	Weight int
}

// RowKind declares which dataset a mode's result indices address.
type RowKind int

const (
	// KindFile modes index into SearchData.Files.
	KindFile RowKind = iota
	// KindAttribute modes index into SearchData.Attributes.
	KindAttribute
)

// Descriptor is a module's static registration record.
type Descriptor struct {
	ID      string
	UI      UIDefinition
	Columns []Column
	Kind    RowKind
}
