package core

import "strings"

// Query is a parsed search: lowercase, non-empty terms that must all match.
type Query struct {
	Terms []string
}

// ParseQuery splits raw input on whitespace and lowercases each term.
func ParseQuery(raw string) Query {
	fields := strings.Fields(raw)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if term := strings.ToLower(strings.TrimSpace(f)); term != "" {
			terms = append(terms, term)
		}
	}
	return Query{Terms: terms}
}

// IsEmpty reports whether the query has no terms.
func (q Query) IsEmpty() bool { return len(q.Terms) == 0 }

// Search returns the rows of t that contain every query term in at least one
// cell, as a case-insensitive substring. Row order and all columns are kept.
// An empty query returns t itself. Missing cells never match.
func Search(t *Table, raw string) *Table {
	q := ParseQuery(raw)
	if q.IsEmpty() {
		return t
	}
	return t.filter(q.matcher(t))
}

// matcher returns a predicate over row positions of t.
func (q Query) matcher(t *Table) func(row int) bool {
	cols := t.Columns()
	lowered := make([]string, len(cols))
	missing := make([]bool, len(cols))

	return func(row int) bool {
		for c, col := range cols {
			cell := col.Cells[row]
			missing[c] = cell.IsMissing()
			if !missing[c] {
				lowered[c] = strings.ToLower(cell.String())
			}
		}

		for _, term := range q.Terms {
			found := false
			for c := range cols {
				if !missing[c] && strings.Contains(lowered[c], term) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
}

// filter returns a new table holding the rows for which keep is true.
func (t *Table) filter(keep func(row int) bool) *Table {
	t.mustBeAligned()

	var selected []int
	for i := 0; i < t.NumRows(); i++ {
		if keep(i) {
			selected = append(selected, i)
		}
	}
	return t.take(selected)
}

// take returns a new table holding the given rows in the given order.
func (t *Table) take(rows []int) *Table {
	cols := make([]Column, len(t.columns))
	for c, col := range t.columns {
		cells := make([]Cell, len(rows))
		for i, r := range rows {
			cells[i] = col.Cells[r]
		}
		cols[c] = Column{Name: col.Name, Type: col.Type, Cells: cells}
	}

	index := make([]int, len(rows))
	for i, r := range rows {
		index[i] = t.index[r]
	}
	return t.derive(cols, index)
}
