package core

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ExportFileName is the default name for a downloaded view.
const ExportFileName = "filtered_data.csv"

// exportFlushInterval is how many records are buffered between flushes.
const exportFlushInterval = 1000

// WriteCSV writes the table's header and rows as comma-separated text.
// The row index is internal and never written.
func WriteCSV(w io.Writer, t *Table) error {
	t.mustBeAligned()

	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := t.Columns()
	record := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for c, col := range cols {
			record[c] = col.Cells[i].String()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		if (i+1)%exportFlushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
