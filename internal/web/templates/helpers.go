// Package templates renders the server's HTML pages as templ components.
//
// The *_templ.go files are generated from the .templ sources with templ
// generate; edit the sources and regenerate.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvlens/internal/core"
)

// DatasetView is everything the dataset page shows.
type DatasetView struct {
	ID        string
	FileName  string
	Columns   []string // every column of the dataset, in order
	TotalRows int
	Stats     []core.StatisticsRow
	Request   core.ViewRequest
	Result    *core.Table
	MaxRows   int    // result rows rendered at most; 0 renders all
	ExportURL string // download link for the current view
}

func (v DatasetView) matchedRows() int { return v.Result.NumRows() }

func (v DatasetView) shownRows() int {
	if v.MaxRows > 0 {
		return min(v.matchedRows(), v.MaxRows)
	}
	return v.matchedRows()
}

func (v DatasetView) truncated() bool { return v.shownRows() < v.matchedRows() }

// showsColumn reports whether c is part of the projection. An empty
// projection shows every column.
func (v DatasetView) showsColumn(c string) bool {
	if len(v.Request.Columns) == 0 {
		return true
	}
	for _, sel := range v.Request.Columns {
		if sel == c {
			return true
		}
	}
	return false
}

func datasetURL(id string) string { return "/datasets/" + url.PathEscape(id) }

func rowURL(id string, row int) string {
	return datasetURL(id) + "/rows/" + strconv.Itoa(row)
}

func summaryValues(n *core.NumericSummary) []float64 {
	return []float64{n.Mean, n.Median, n.StdDev, n.Min, n.Max}
}

func fieldValue(f core.RowField) string {
	if f.Cell.IsMissing() {
		return "(missing)"
	}
	return f.Value
}

// formatStat renders a statistic with at most four decimals.
func formatStat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

func formatBytes(n int64) string {
	const unit = 1 << 10
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return formatStat(float64(n)/float64(div)) + " " + "KMGT"[exp:exp+1] + "B"
}
