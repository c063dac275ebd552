package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidColumn is returned when a request names a column the table lacks.
var ErrInvalidColumn = errors.New("column not found")

// ViewRequest carries the display state chosen by the user. It is passed in on
// every call; nothing about it is remembered between calls.
type ViewRequest struct {
	Query      string   // Raw search input
	Columns    []string // Columns to keep, in order (empty keeps all)
	SortColumn string   // Column to sort by (empty keeps source order)
	Descending bool
}

// ApplyView sorts t, keeps the requested columns, then searches them. Sorting
// may use any column of t, including one that is not displayed. The search only
// looks at displayed columns.
func ApplyView(t *Table, req ViewRequest) (*Table, error) {
	view := t
	if req.SortColumn != "" {
		sorted, err := SortBy(t, req.SortColumn, req.Descending)
		if err != nil {
			return nil, err
		}
		view = sorted
	}

	projected, err := Project(view, req.Columns)
	if err != nil {
		return nil, err
	}

	return Search(projected, req.Query), nil
}

// Project returns a table with only the named columns, in the given order.
// No names keeps every column.
func Project(t *Table, names []string) (*Table, error) {
	if len(names) == 0 {
		return t, nil
	}

	cols := make([]Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	var unknown []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		col, ok := t.Column(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		cols = append(cols, col)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidColumn, strings.Join(unknown, ", "))
	}

	return t.derive(cols, t.index), nil
}

// SortBy returns t stably sorted by the named column. Numeric columns compare
// by value and text columns lexicographically. Missing values sort last in
// both directions.
func SortBy(t *Table, column string, descending bool) (*Table, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidColumn, column)
	}
	t.mustBeAligned()

	order := make([]int, t.NumRows())
	for i := range order {
		order[i] = i
	}

	cells := col.Cells
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := cells[order[a]], cells[order[b]]
		if ca.IsMissing() || cb.IsMissing() {
			return !ca.IsMissing() && cb.IsMissing()
		}
		cmp := compareCells(ca, cb)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})

	return t.take(order), nil
}

// compareCells orders two non-missing cells. Numbers sort before text when a
// column mixes kinds.
func compareCells(a, b Cell) int {
	switch {
	case a.Kind == KindNumeric && b.Kind == KindNumeric:
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	case a.Kind == KindNumeric:
		return -1
	case b.Kind == KindNumeric:
		return 1
	}
	return strings.Compare(a.Str, b.Str)
}
