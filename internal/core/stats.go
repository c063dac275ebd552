package core

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"
)

// StatisticsRow summarizes one column.
type StatisticsRow struct {
	Column        string          `json:"column"`
	Type          ColumnType      `json:"type"`
	DistinctCount int             `json:"distinct_count"`
	MissingCount  int             `json:"missing_count"`
	Numeric       *NumericSummary `json:"numeric,omitempty"`
}

// NumericSummary holds the descriptive statistics of a numeric column,
// computed over its non-missing values. StdDev is the sample standard
// deviation and is NaN when fewer than two values are present.
type NumericSummary struct {
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// MarshalJSON encodes NaN fields as null.
func (s NumericSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean   *float64 `json:"mean"`
		Median *float64 `json:"median"`
		StdDev *float64 `json:"stddev"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
	}{
		Mean:   finite(s.Mean),
		Median: finite(s.Median),
		StdDev: finite(s.StdDev),
		Min:    finite(s.Min),
		Max:    finite(s.Max),
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ComputeStatistics returns one StatisticsRow per column, in column order.
// A table without columns yields an empty, non-nil slice.
func ComputeStatistics(t *Table) []StatisticsRow {
	t.mustBeAligned()

	rows := make([]StatisticsRow, 0, t.NumColumns())
	for _, col := range t.Columns() {
		rows = append(rows, columnStatistics(col))
	}
	return rows
}

func columnStatistics(col Column) StatisticsRow {
	row := StatisticsRow{Column: col.Name, Type: col.Type}

	var values []float64
	distinctNum := make(map[float64]struct{})
	distinctText := make(map[string]struct{})

	for _, c := range col.Cells {
		switch c.Kind {
		case KindMissing:
			row.MissingCount++
		case KindNumeric:
			distinctNum[c.Num] = struct{}{}
			values = append(values, c.Num)
		case KindText:
			distinctText[c.Str] = struct{}{}
		}
	}
	row.DistinctCount = len(distinctNum) + len(distinctText)

	if col.Type == TypeNumeric && len(values) > 0 {
		row.Numeric = summarize(values)
	}
	return row
}

// summarize computes the numeric summary of a non-empty sample.
func summarize(values []float64) *NumericSummary {
	// Errors only signal empty input, which callers rule out.
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)

	sd := math.NaN()
	if len(values) >= 2 {
		sd, _ = stats.StandardDeviationSample(values)
	}

	return &NumericSummary{
		Mean:   mean,
		Median: median,
		StdDev: sd,
		Min:    minVal,
		Max:    maxVal,
	}
}
