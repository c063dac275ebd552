package core

// load.go reads uploaded files into Tables.
//
// The first record is the header. Header cells are cleaned; blank headers are
// named "Unnamed: <i>" and repeated headers get ".1", ".2" suffixes so column
// names stay unique. Short rows are padded with missing values. A row with more
// non-blank cells than the header is a load error.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile           = errors.New("empty file")
	ErrInvalidCSV          = errors.New("invalid csv")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrTooManyRows         = errors.New("row limit exceeded")
	ErrInvalidSpreadsheet  = errors.New("invalid spreadsheet")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions controls how a file becomes a Table.
type LoadOptions struct {
	Delimiter rune   // Field separator for delimited text (default ',')
	Lenient   bool   // Accept currency and accounting-formatted numbers
	Sheet     string // Worksheet to read from a workbook (default: first sheet)
	MaxRows   int    // Maximum data rows (0 = unlimited)
}

// LoadError describes why a file could not be loaded.
type LoadError struct {
	File string
	Line int // 1-based line of the offending record, 0 if not line specific
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a file, choosing the format from its extension.
func Load(name string, r io.Reader, opts LoadOptions) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var (
		t   *Table
		err error
	)
	switch ext {
	case ".csv", ".txt":
		t, err = LoadCSV(r, opts)
	case ".tsv", ".tab":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		t, err = LoadCSV(r, opts)
	case ".xlsx", ".xlsm":
		t, err = LoadXLSX(r, opts)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = name
			return nil, le
		}
		return nil, &LoadError{File: name, Err: err}
	}
	return t, nil
}

// LoadCSV reads delimited text. A UTF-8 byte order mark is dropped and invalid
// UTF-8 sequences are replaced so a stray byte cannot fail the whole file.
func LoadCSV(r io.Reader, opts LoadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read: %w", err)}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("\uFFFD"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	var records [][]string
	var lines []int
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &LoadError{Line: line, Err: fmt.Errorf("%w: %v", ErrInvalidCSV, err)}
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	return buildTable(records, lines, opts)
}

// LoadXLSX reads a workbook sheet.
func LoadXLSX(r io.Reader, opts LoadOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)}
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &LoadError{Err: ErrEmptyFile}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("%w: sheet %q: %v", ErrInvalidSpreadsheet, sheet, err)}
	}

	var records [][]string
	var lines []int
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		records = append(records, row)
		lines = append(lines, i+1)
	}

	return buildTable(records, lines, opts)
}

// buildTable turns a header record and data records into typed columns.
// lines holds the source line number of each record.
func buildTable(records [][]string, lines []int, opts LoadOptions) (*Table, error) {
	if len(records) == 0 {
		return nil, &LoadError{Err: ErrEmptyFile}
	}

	header := uniqueHeaders(records[0])
	data := records[1:]
	if opts.MaxRows > 0 && len(data) > opts.MaxRows {
		return nil, &LoadError{Err: fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(data), opts.MaxRows)}
	}

	raw := make([][]string, len(header))
	for c := range raw {
		raw[c] = make([]string, len(data))
	}

	for i, rec := range data {
		if extra := rec[min(len(rec), len(header)):]; !allBlank(extra) {
			return nil, &LoadError{
				Line: lines[i+1],
				Err:  fmt.Errorf("%w: expected %d fields, saw %d", ErrInvalidCSV, len(header), len(rec)),
			}
		}
		for c := range header {
			if c < len(rec) {
				raw[c][i] = rec[c]
			}
		}
	}

	cols := make([]Column, len(header))
	for c, name := range header {
		cols[c] = inferColumn(name, raw[c], opts.Lenient)
	}
	return NewTable(cols)
}

// uniqueHeaders cleans header cells and makes every name unique.
func uniqueHeaders(raw []string) []string {
	names := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := CleanHeader(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for n := 1; taken[name]; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
