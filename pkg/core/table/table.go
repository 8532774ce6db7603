// Package table models the in-memory worksheet that prompt jobs read from
// and write back into: ordered named columns, rows addressed by a stable
// integer index, and string-valued cells.
package table

import "strings"

// Table is an ordered-column grid of string cells. Row indices are stable:
// they are assigned at append time and never reshuffled by the core, which
// only reads and overwrites cell values.
type Table struct {
	columns []string
	rows    []map[string]string
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	t := &Table{columns: make([]string, len(columns))}
	copy(t.columns, columns)
	return t
}

// Columns returns the column names in display order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a new column; existing rows get empty cells. Adding an
// existing column is a no-op.
func (t *Table) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.columns = append(t.columns, name)
}

// AppendRow adds a row from a column->value mapping and returns its index.
// Values for unknown columns are ignored.
func (t *Table) AppendRow(values map[string]string) int {
	row := make(map[string]string, len(t.columns))
	for _, c := range t.columns {
		row[c] = values[c]
	}
	t.rows = append(t.rows, row)
	return len(t.rows) - 1
}

// Value returns the cell at (row, column), or "" when out of range or the
// column does not exist.
func (t *Table) Value(row int, column string) string {
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][column]
}

// SetValue overwrites the cell at (row, column). Out-of-range rows are
// ignored; unknown columns are created on the fly so job results can land
// in freshly configured target columns.
func (t *Table) SetValue(row int, column string, value string) {
	if row < 0 || row >= len(t.rows) {
		return
	}
	t.AddColumn(column)
	t.rows[row][column] = value
}

// IsEmptyCell reports whether the cell is absent or whitespace-only.
func (t *Table) IsEmptyCell(row int, column string) bool {
	return strings.TrimSpace(t.Value(row, column)) == ""
}

// RowValues returns a copy of the row as a column->value mapping, the shape
// the template renderer substitutes from.
func (t *Table) RowValues(row int) map[string]string {
	out := make(map[string]string, len(t.columns))
	if row < 0 || row >= len(t.rows) {
		return out
	}
	for _, c := range t.columns {
		out[c] = t.rows[row][c]
	}
	return out
}

// Clone returns a deep copy with the same shape and contents.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	for i := range t.rows {
		out.AppendRow(t.RowValues(i))
	}
	return out
}

// FromGrid builds a table from a header row plus data rows, the shape the
// worksheet stores hand back. Short rows are padded with empty cells.
func FromGrid(grid [][]string) *Table {
	if len(grid) == 0 {
		return New()
	}
	t := New(grid[0]...)
	for _, raw := range grid[1:] {
		row := make(map[string]string, len(t.columns))
		for i, c := range t.columns {
			if i < len(raw) {
				row[c] = raw[i]
			}
		}
		t.AppendRow(row)
	}
	return t
}

// ToGrid renders the table as a header row plus data rows.
func (t *Table) ToGrid() [][]string {
	grid := make([][]string, 0, len(t.rows)+1)
	grid = append(grid, t.Columns())
	for _, row := range t.rows {
		cells := make([]string, len(t.columns))
		for i, c := range t.columns {
			cells[i] = row[c]
		}
		grid = append(grid, cells)
	}
	return grid
}
