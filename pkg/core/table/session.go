package table

// Session holds the two live versions of the main data table: the last copy
// loaded from the spreadsheet service and the copy carrying in-process edits.
// Keeping them as two named slots (instead of ad hoc presence checks) makes
// the reconciliation rule explicit.
type Session struct {
	SheetsVersion *Table
	EditorVersion *Table
}

// Reconcile merges the two versions into the working table: the editor's
// cell wins whenever it is non-empty, otherwise the sheets cell is kept.
// The editor's shape (columns and row count) drives the result; when no
// editor version exists the sheets version is returned as-is.
func (s *Session) Reconcile() *Table {
	if s.EditorVersion == nil {
		if s.SheetsVersion == nil {
			return New()
		}
		return s.SheetsVersion.Clone()
	}
	merged := s.EditorVersion.Clone()
	if s.SheetsVersion == nil {
		return merged
	}
	for _, col := range merged.Columns() {
		for row := 0; row < merged.RowCount(); row++ {
			if merged.IsEmptyCell(row, col) && !s.SheetsVersion.IsEmptyCell(row, col) {
				merged.SetValue(row, col, s.SheetsVersion.Value(row, col))
			}
		}
	}
	return merged
}
