package core

// convert.go turns raw cell text from uploaded files into typed cells.
//
// A loaded column is numeric iff every non-missing value is a numeric literal.
// Missing values are blank cells and the usual spreadsheet NA tokens. In lenient
// mode, currency symbols, thousands separators and accounting negatives are
// accepted as numbers too.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a plain numeric literal.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// naTokens are read as missing values, matching common CSV tooling defaults.
var naTokens = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "<NA>": true,
	"NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"NULL": true, "null": true, "None": true,
	"#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "1.#IND": true, "1.#QNAN": true,
}

// IsMissingToken reports whether raw cell text denotes a missing value.
func IsMissingToken(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || naTokens[s]
}

// ParseNumber parses a strict numeric literal.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseLenientNumber parses a number that may carry currency symbols,
// thousands separators, or the accounting negative form "(123.45)".
func ParseLenientNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "\u20ac", "") // Euro
	s = strings.ReplaceAll(s, "\u00a3", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	// pgtype.Numeric does not scan exponents.
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return ParseNumber(s)
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// inferColumn types a column of raw values. Values are trimmed; missing tokens
// become missing cells. A column with no values at all is numeric.
func inferColumn(name string, raw []string, lenient bool) Column {
	parse := ParseNumber
	if lenient {
		parse = ParseLenientNumber
	}

	cells := make([]Cell, len(raw))
	numeric := true
	for i, v := range raw {
		if IsMissingToken(v) {
			cells[i] = Missing()
			continue
		}
		if numeric {
			if f, ok := parse(v); ok {
				cells[i] = Numeric(f)
				continue
			}
			numeric = false
		}
		cells[i] = Text(strings.TrimSpace(v))
	}

	if numeric {
		return Column{Name: name, Type: TypeNumeric, Cells: cells}
	}

	// A text column keeps numeric-looking values as the text they were loaded as.
	for i, v := range raw {
		if cells[i].Kind == KindNumeric {
			cells[i] = Text(strings.TrimSpace(v))
		}
	}
	return Column{Name: name, Type: TypeText, Cells: cells}
}

// CleanHeader removes common CSV artifacts from a header cell:
// surrounding whitespace, an Excel formula prefix (="...") and quotes.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
