// Package table defines the raw tabular representation shared by the decoders.
package table

// RawTable is an ordered set of named columns with string cells, as decoded
// from an uploaded file. Rows are padded to the header width so every column
// has one cell per row.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// New builds a RawTable, padding or truncating each row to the header width.
func New(headers []string, rows [][]string) *RawTable {
	width := len(headers)
	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		switch {
		case len(row) == width:
			normalized = append(normalized, row)
		case len(row) > width:
			normalized = append(normalized, row[:width])
		default:
			padded := make([]string, width)
			copy(padded, row)
			normalized = append(normalized, padded)
		}
	}
	return &RawTable{Headers: headers, Rows: normalized}
}

// Empty reports whether the table has no data rows.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// ColumnIndex returns the position of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns all cells of the named column in row order.
// It returns nil when the column does not exist.
func (t *RawTable) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells
}
