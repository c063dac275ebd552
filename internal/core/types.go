package core

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrDuplicateColumn is returned by NewTable when two columns share a name.
var ErrDuplicateColumn = errors.New("duplicate column name")

// ErrMisalignedColumns is returned by NewTable when columns differ in length.
var ErrMisalignedColumns = errors.New("misaligned columns")

// CellKind tags the value held by a Cell.
type CellKind uint8

const (
	KindMissing CellKind = iota
	KindNumeric
	KindText
)

// unrenderable is the textual form of a cell whose kind is unknown.
const unrenderable = "?"

// Cell is a single table value: missing, a number, or text.
// Statistics and search switch on Kind rather than inspecting Go types.
type Cell struct {
	Kind CellKind
	Num  float64
	Str  string
}

// Missing returns a missing cell.
func Missing() Cell { return Cell{Kind: KindMissing} }

// Numeric returns a numeric cell.
func Numeric(v float64) Cell { return Cell{Kind: KindNumeric, Num: v} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: KindText, Str: s} }

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return c.Kind == KindMissing }

// String returns the canonical textual form of the cell. The same form is used
// for display, search and export, so searching "42" matches a cell holding 42.
func (c Cell) String() string {
	switch c.Kind {
	case KindMissing:
		return ""
	case KindNumeric:
		return formatNumber(c.Num)
	case KindText:
		return c.Str
	default:
		return unrenderable
	}
}

// formatNumber renders a float without exponent or trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ColumnType is the inferred storage type of a column.
type ColumnType uint8

const (
	TypeText ColumnType = iota
	TypeNumeric
)

// String returns the label reported in statistics.
func (t ColumnType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	default:
		return "text"
	}
}

// MarshalText lets ColumnType appear as its label in JSON.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the labels written by MarshalText.
func (t *ColumnType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*t = TypeText
	case "numeric":
		*t = TypeNumeric
	default:
		return fmt.Errorf("unknown column type %q", b)
	}
	return nil
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Type  ColumnType
	Cells []Cell
}

// Table is an immutable, column-oriented dataset.
//
// Besides its columns a table carries a row index: the position each row had in
// the table it was originally loaded as. Derived tables (search results, sorted
// views) keep the index so a row can always be traced back to its source row.
// The index is never exported.
type Table struct {
	columns []Column
	byName  map[string]int
	index   []int
}

// NewTable builds a table from columns. Column names must be unique and every
// column must hold the same number of cells.
func NewTable(cols []Column) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0].Cells)
	}

	byName := make(map[string]int, len(cols))
	for i, col := range cols {
		if _, dup := byName[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		byName[col.Name] = i

		if len(col.Cells) != rows {
			return nil, fmt.Errorf("%w: column %q has %d cells, want %d",
				ErrMisalignedColumns, col.Name, len(col.Cells), rows)
		}
	}

	index := make([]int, rows)
	for i := range index {
		index[i] = i
	}

	return &Table{columns: cols, byName: byName, index: index}, nil
}

// MustTable is like NewTable but panics on error. Intended for tests and
// literals known to be well formed.
func MustTable(cols ...Column) *Table {
	t, err := NewTable(cols)
	if err != nil {
		panic(err)
	}
	return t
}

// derive builds a table sharing this table's column layout from already
// aligned columns and a matching row index.
func (t *Table) derive(cols []Column, index []int) *Table {
	byName := make(map[string]int, len(cols))
	for i, col := range cols {
		byName[col.Name] = i
	}
	return &Table{columns: cols, byName: byName, index: index}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.index) }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// Columns returns the table's columns. Callers must not modify them.
func (t *Table) Columns() []Column { return t.columns }

// ColumnNames returns column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.columns))
	for c, col := range t.columns {
		row[c] = col.Cells[i]
	}
	return row
}

// RowIndex returns the source position of row i.
func (t *Table) RowIndex(i int) int { return t.index[i] }

// FindRow returns the position of the row whose source position is orig.
func (t *Table) FindRow(orig int) (int, bool) {
	for i, idx := range t.index {
		if idx == orig {
			return i, true
		}
	}
	return 0, false
}

// mustBeAligned panics if any column length disagrees with the row index.
// A misaligned table can only come from a bug in this package.
func (t *Table) mustBeAligned() {
	for _, col := range t.columns {
		if len(col.Cells) != len(t.index) {
			panic(fmt.Sprintf("core: column %q has %d cells but table has %d rows",
				col.Name, len(col.Cells), len(t.index)))
		}
	}
}
