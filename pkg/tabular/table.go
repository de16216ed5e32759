package tabular

// Table is an ordered sequence of records sharing a common (but not strictly
// enforced) field set. Row order is preserved through every transformation;
// downstream auditing depends on it.
type Table struct {
	header []string
	rows   []*Record
}

// NewTable creates an empty table with the given header order.
func NewTable(header []string) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{header: h}
}

// Header returns the column names in table order.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Append adds a row to the end of the table.
func (t *Table) Append(row *Record) {
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the row at index i.
func (t *Table) Row(i int) *Record {
	return t.rows[i]
}

// Rows returns the backing row slice. Callers must treat it as read-only.
func (t *Table) Rows() []*Record {
	return t.rows
}
