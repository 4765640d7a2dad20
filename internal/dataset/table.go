package dataset

import (
	"sort"
	"strings"
)

// Row maps column names to cells. Absent columns read as Null.
type Row map[string]Value

// Get returns the cell for col, Null when absent.
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Null()
}

// Clone returns a shallow copy; Values are immutable so this is a full copy.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ContainsText reports whether any cell's text contains sub.
func (r Row) ContainsText(sub string) bool {
	for _, v := range r {
		if strings.Contains(v.String(), sub) {
			return true
		}
	}
	return false
}

// Table is an ordered list of rows sharing one ordered column list.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether col is in the column list.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn appends col to the column list if missing.
func (t *Table) AddColumn(col string) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
	}
}

// Append adds r. Keys not yet in Columns are registered in name order, so callers
// that care about column order should AddColumn first.
func (t *Table) Append(r Row) {
	var unknown []string
	for k := range r {
		if !t.HasColumn(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	t.Columns = append(t.Columns, unknown...)
	t.Rows = append(t.Rows, r)
}

// DropColumns removes every column for which drop returns true, from the header and from rows.
func (t *Table) DropColumns(drop func(col string) bool) []string {
	var kept, dropped []string
	for _, c := range t.Columns {
		if drop(c) {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	if len(dropped) == 0 {
		return nil
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for _, c := range dropped {
			delete(r, c)
		}
	}
	return dropped
}

// Column returns the cells of col in row order.
func (t *Table) Column(col string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Get(col)
	}
	return out
}

// Records renders the table as string records in column order, header first.
func (t *Table) Records(format func(col string, v Value) string) [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			if format != nil {
				rec[i] = format(c, r.Get(c))
			} else {
				rec[i] = r.Get(c).String()
			}
		}
		out = append(out, rec)
	}
	return out
}
