package export

// Field is a labelled scalar shown at the top of a report.
type Field struct {
	Label string
	Value string
}

// Table is a titled grid of rows.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Report is the renderer-neutral content of an export.
type Report struct {
	Title  string
	Fields []Field
	Tables []Table
}
