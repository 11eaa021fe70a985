// Package types contains common types used across the application
package types

import (
	"fmt"
	"strconv"
)

// Table is a tabular query result. Tables returned by the store may be
// shared between callers through the query memo and must not be mutated.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row/column, or nil when either is out of range.
func (t *Table) Value(row int, column string) any {
	i := t.Index(column)
	if i < 0 || row < 0 || row >= t.Len() || i >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][i]
}

// String returns the cell formatted as text; NULL becomes "".
func (t *Table) String(row int, column string) string {
	return FormatCell(t.Value(row, column))
}

// Int returns the cell as an integer; non-numeric cells become 0.
func (t *Table) Int(row int, column string) int64 {
	switch v := t.Value(row, column).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// Float returns the cell as a float; non-numeric cells become 0.
func (t *Table) Float(row int, column string) float64 {
	switch v := t.Value(row, column).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// FormatCell renders a scanned SQLite value for display.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Result is a table prepared for rendering. Empty results carry an
// informational Message instead of being shown as a bare table.
type Result struct {
	View    string `json:"view"`
	Count   int    `json:"count"`
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
	Table   *Table `json:"table"`
}

// NewResult wraps t, attaching emptyMessage when t has no rows.
func NewResult(view string, t *Table, emptyMessage string) *Result {
	r := &Result{View: view, Count: t.Len(), Table: t}
	if t.Empty() {
		r.Empty = true
		r.Message = emptyMessage
	}
	return r
}
