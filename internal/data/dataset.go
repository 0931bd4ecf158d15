package data

// Dataset is the capability contract any row collection satisfies so that
// generic matching and aggregation code never depends on concrete row
// types. Rows are addressed by their position in the current snapshot;
// positions are only stable between merges.
type Dataset interface {
	// Len returns the number of rows.
	Len() int

	// KeyFor returns the search key for the row at index i.
	KeyFor(i int) string

	// IDFor returns the stable identifier for the row at index i.
	IDFor(i int) uint64
}

// FileDataset adapts a FileRow slice to the Dataset contract. Matching runs
// against each row's search text (path plus tags).
type FileDataset []FileRow

func (d FileDataset) Len() int            { return len(d) }
func (d FileDataset) KeyFor(i int) string { return d[i].SearchText() }
func (d FileDataset) IDFor(i int) uint64  { return d[i].ID }

// AttributeDataset adapts an AttributeRow slice to the Dataset contract.
type AttributeDataset []AttributeRow

func (d AttributeDataset) Len() int            { return len(d) }
func (d AttributeDataset) KeyFor(i int) string { return d[i].Name }
func (d AttributeDataset) IDFor(i int) uint64  { return d[i].ID }
