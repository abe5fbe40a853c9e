package snapshot

import (
	"fmt"
	"strings"
)

// Table is a raw tabular snapshot as returned by a data provider.
// Column order is significant; column labels are free text and may be
// localized, so nothing here assumes a particular schema.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the table carries no usable rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Columns) == 0 || len(t.Rows) == 0
}

// Cell returns the value at (row, col), or nil when the row is ragged.
func (t *Table) Cell(row, col int) any {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// cellString renders a cell the way the provider printed it, trimmed.
func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
