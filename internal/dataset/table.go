// Package dataset holds immutable in-memory survey tables and the generic
// table-diffing primitives the audit checks are built from.
package dataset

import (
	"fmt"
	"strings"
)

// Table is an immutable, column-major snapshot of a survey table. Rows are
// addressed by position only.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	cells   [][]Value // cells[col][row]
	rows    int
}

// NewTable builds a Table from a header and row-major data. It copies its
// input and fails with a *MalformedInputError for empty or duplicate column
// names and for rows whose width differs from the header.
func NewTable(name string, columns []string, rows [][]Value) (*Table, error) {
	t := &Table{
		name:    name,
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		cells:   make([][]Value, len(columns)),
		rows:    len(rows),
	}
	copy(t.columns, columns)

	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return nil, &MalformedInputError{Table: name, Reason: fmt.Sprintf("column %d has an empty name", i+1)}
		}
		if prev, dup := t.index[c]; dup {
			return nil, &MalformedInputError{Table: name, Reason: fmt.Sprintf("duplicate column name %q (positions %d and %d)", c, prev+1, i+1)}
		}
		t.index[c] = i
		t.cells[i] = make([]Value, len(rows))
	}

	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, &MalformedInputError{Table: name, Reason: fmt.Sprintf("row %d has %d cells, header has %d", r+1, len(row), len(columns))}
		}
		for c, v := range row {
			t.cells[c][r] = v
		}
	}

	return t, nil
}

// MustTable is NewTable that panics on error. Intended for tests and fixtures.
func MustTable(name string, columns []string, rows ...[]Value) *Table {
	t, err := NewTable(name, columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table's name as given by its loader.
func (t *Table) Name() string { return t.name }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return t.rows }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// Columns returns a copy of the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]Value, error) {
	col, err := t.col(name)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(col))
	copy(out, col)
	return out, nil
}

// Cell returns the cell at row r of the named column.
func (t *Table) Cell(r int, name string) (Value, error) {
	col, err := t.col(name)
	if err != nil {
		return Value{}, err
	}
	if r < 0 || r >= t.rows {
		return Value{}, fmt.Errorf("row %d out of range [0,%d) in %s", r, t.rows, t.name)
	}
	return col[r], nil
}

// Row returns a copy of row r across the given columns.
func (t *Table) Row(r int, columns []string) ([]Value, error) {
	out := make([]Value, len(columns))
	for i, c := range columns {
		v, err := t.Cell(r, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// col returns the backing slice. Callers inside the package must not write to it.
func (t *Table) col(name string) ([]Value, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Table: t.name, Column: name}
	}
	return t.cells[i], nil
}

// Scan calls fn for every cell of the named column without copying it.
func (t *Table) Scan(name string, fn func(row int, v Value)) error {
	col, err := t.col(name)
	if err != nil {
		return err
	}
	for r, v := range col {
		fn(r, v)
	}
	return nil
}
