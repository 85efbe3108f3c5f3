package domain

// RawDocument is the fetched response body, consumed once by the parser.
type RawDocument struct {
	Body        []byte
	ContentType string
	Source      string
}

// Frame is an in-memory table. Every row holds exactly len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Field is one named cell of an original row.
type Field struct {
	Name  string
	Value string
}

// ProductRecord is one output unit. Volume is nil when it could not be
// computed because a dimension column was not resolved. Width, Height and
// Depth are nil when the cell was empty or not numeric.
type ProductRecord struct {
	Name   string
	Volume *float64
	Width  *float64
	Height *float64
	Depth  *float64
	Fields []Field
}
