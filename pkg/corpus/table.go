// Package corpus loads tab-separated corpora into immutable in-memory
// tables and maintains the per-column indexes the query layer searches.
//
// A Table is published once by the loader and is read-only afterwards, so
// any number of searches and aggregations may run against it concurrently.
// The only mutable pieces of state are the path cache (see Cache) and the
// lazily built column indexes, both of which follow a compute-once,
// publish-once discipline.
package corpus

import (
	"fmt"
	"sync"
)

// Table is an in-memory columnar dataset. The column set is fixed at load
// time, every row has a value for every column (missing fields are
// normalized to ""), and row order matches source file order.
//
// Tables must not be mutated after Load returns one. The loader cache hands
// the same instance to every caller.
type Table struct {
	source string
	cols   []string
	colPos map[string]int
	cells  [][]string

	mu      sync.Mutex
	indexes map[string]*ColumnIndex
}

func newTable(source string, cols []string, cells [][]string) *Table {
	pos := make(map[string]int, len(cols))
	for i, c := range cols {
		pos[c] = i
	}
	return &Table{
		source:  source,
		cols:    cols,
		colPos:  pos,
		cells:   cells,
		indexes: make(map[string]*ColumnIndex),
	}
}

// Source returns the path the table was loaded from.
func (t *Table) Source() string { return t.source }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.cells) }

// Columns returns the column names in header order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// HasColumn reports whether the table schema contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colPos[name]
	return ok
}

// Value returns the cell at row i for the named column.
func (t *Table) Value(i int, column string) (string, error) {
	pos, ok := t.colPos[column]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return t.cells[i][pos], nil
}

// All returns a ResultSet covering every row in table order.
func (t *Table) All() *ResultSet {
	rows := make([]int, len(t.cells))
	for i := range rows {
		rows[i] = i
	}
	return &ResultSet{table: t, rows: rows}
}

// NewResultSet builds a ResultSet over the given row indices. The indices
// are expected to be ascending so the view preserves table order.
func NewResultSet(t *Table, rows []int) *ResultSet {
	return &ResultSet{table: t, rows: rows}
}

// ResultSet is an ordered view over a subset of a Table's rows. It shares
// the table's column set and preserves source row order. A ResultSet is
// created fresh per query and owned by the caller; it never outlives its
// table.
type ResultSet struct {
	table *Table
	rows  []int
}

// Len returns the number of rows in the view.
func (rs *ResultSet) Len() int { return len(rs.rows) }

// Table returns the backing table.
func (rs *ResultSet) Table() *Table { return rs.table }

// Columns returns the column names in header order.
func (rs *ResultSet) Columns() []string { return rs.table.Columns() }

// Value returns the cell at view position i for the named column.
func (rs *ResultSet) Value(i int, column string) (string, error) {
	return rs.table.Value(rs.rows[i], column)
}

// Row materializes view position i as a column name to value map.
func (rs *ResultSet) Row(i int) map[string]string {
	row := make(map[string]string, len(rs.table.cols))
	cells := rs.table.cells[rs.rows[i]]
	for j, c := range rs.table.cols {
		row[c] = cells[j]
	}
	return row
}

// Head materializes up to limit leading rows, in view order. A limit at or
// below zero returns all rows.
func (rs *ResultSet) Head(limit int) []map[string]string {
	n := len(rs.rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		out[i] = rs.Row(i)
	}
	return out
}
