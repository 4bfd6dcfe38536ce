package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	tbl, err := NewTable("raw", []string{"id", "name"}, [][]Value{
		Values(1, "a"),
		Values(2, nil),
	})
	require.NoError(t, err)

	assert.Equal(t, "raw", tbl.Name())
	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, 2, tbl.ColumnCount())
	assert.Equal(t, []string{"id", "name"}, tbl.Columns())
	assert.True(t, tbl.HasColumn("name"))
	assert.False(t, tbl.HasColumn("missing"))

	v, err := tbl.Cell(1, "name")
	require.NoError(t, err)
	assert.True(t, v.IsMissing())

	row, err := tbl.Row(0, []string{"name", "id"})
	require.NoError(t, err)
	assert.Equal(t, "a", row[0].String())
	assert.Equal(t, "1", row[1].String())
}

func TestNewTableMalformed(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    [][]Value
		reason  string
	}{
		{"duplicate column", []string{"a", "b", "a"}, nil, "duplicate column name"},
		{"empty column", []string{"a", " "}, nil, "empty name"},
		{"ragged short row", []string{"a", "b"}, [][]Value{Values(1)}, "row 1 has 1 cells"},
		{"ragged long row", []string{"a"}, [][]Value{Values(1), Values(1, 2)}, "row 2 has 2 cells"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("cleaned", tt.columns, tt.rows)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))

			var mie *MalformedInputError
			require.True(t, errors.As(err, &mie))
			assert.Equal(t, "cleaned", mie.Table)
			assert.Contains(t, mie.Reason, tt.reason)
		})
	}
}

func TestTableIsImmutable(t *testing.T) {
	columns := []string{"x"}
	rows := [][]Value{Values(1)}
	tbl := MustTable("t", columns, rows...)

	columns[0] = "changed"
	rows[0][0] = Number(99)

	assert.Equal(t, []string{"x"}, tbl.Columns(), "header is copied")
	v, _ := tbl.Cell(0, "x")
	assert.Equal(t, "1", v.String(), "cells are copied")

	col, err := tbl.Column("x")
	require.NoError(t, err)
	col[0] = Number(7)
	v, _ = tbl.Cell(0, "x")
	assert.Equal(t, "1", v.String(), "Column returns a copy")

	cols := tbl.Columns()
	cols[0] = "y"
	assert.True(t, tbl.HasColumn("x"))
}

func TestColumnNotFound(t *testing.T) {
	tbl := MustTable("cleaned", []string{"x"}, Values(1))

	_, err := tbl.Column("age")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), `"age"`)
	assert.Contains(t, err.Error(), "cleaned")

	_, err = tbl.Cell(5, "x")
	assert.Error(t, err)

	err = tbl.Scan("nope", func(int, Value) {})
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestScan(t *testing.T) {
	tbl := MustTable("t", []string{"x"}, Values(1), Values(nil), Values(3))

	sum := 0.0
	require.NoError(t, tbl.Scan("x", func(_ int, v Value) {
		if f, ok := v.Float(); ok {
			sum += f
		}
	}))
	assert.Equal(t, 4.0, sum)
}

func TestMustTablePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustTable("t", []string{"a", "a"})
	})
}

func TestSchemaMismatchf(t *testing.T) {
	err := SchemaMismatchf("no common columns between %s and %s", "raw", "dropped")
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "no common columns between raw and dropped")
}
