// Package core is the data engine for the CSV analyzer: it loads tabular files
// into typed in-memory tables, summarizes their columns, and filters their rows.
//
// Nothing here knows about HTTP or terminals. The web server and the csvlens
// CLI both drive it through [Service] or the package functions directly.
//
// # Tables
//
// A [Table] is an immutable set of equally long [Column] values. Each cell is a
// [Cell]: missing, numeric, or text. Every derived table (sorted, projected,
// searched) carries the source row position of each of its rows, see
// [Table.RowIndex].
//
// Column types are inferred at load time. A column is numeric when every
// non-missing value is a numeric literal; otherwise all of its values are text.
// Blank cells and common NA tokens ("NA", "NaN", "NULL", "#N/A", ...) are missing.
//
// # Statistics
//
// [ComputeStatistics] returns one [StatisticsRow] per column, in column order:
//
//	rows := core.ComputeStatistics(t)
//	for _, r := range rows {
//	    fmt.Println(r.Column, r.DistinctCount, r.MissingCount)
//	}
//
// Numeric columns also get a [NumericSummary] with mean, median, sample
// standard deviation, min and max over their non-missing values.
//
// # Search
//
// [Search] keeps the rows where every whitespace-separated term of the query
// occurs, case-insensitively, in at least one cell of the row:
//
//	hits := core.Search(t, "bob 25")
//
// An empty query returns t itself. [ApplyView] combines sorting, column
// selection and search in one call driven by a [ViewRequest].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError]:
//
//   - FILE001-FILE008: Upload and parse errors (size, format, row limits)
//   - VAL005: Unknown column in a view request
//   - DS001-DS002: Dataset store errors
//   - UPL002-UPL005: Load concurrency and cancellation
//   - RATE001: Rate limiting
package core
