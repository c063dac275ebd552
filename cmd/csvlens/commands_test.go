package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvlens/internal/core"
	"github.com/xuri/excelize/v2"
)

const peopleCSV = "name,age,city\nalice,30,Oslo\nbob,25,Bergen\ncara,,Oslo\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestStatsText(t *testing.T) {
	path := writeFile(t, "people.csv", peopleCSV)

	out, _, err := run(t, "stats", path)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "COLUMN") {
		t.Errorf("header = %q", lines[0])
	}
	age := strings.Fields(lines[2])
	want := []string{"age", "numeric", "2", "1", "27.5", "27.5", "3.53553", "25", "30"}
	if strings.Join(age, " ") != strings.Join(want, " ") {
		t.Errorf("age row = %v, want %v", age, want)
	}
}

func TestStatsJSON(t *testing.T) {
	path := writeFile(t, "one.csv", "x\n4\n")

	out, _, err := run(t, "stats", "--json", path)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	var stats []map[string]any
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	numeric := stats[0]["numeric"].(map[string]any)
	if numeric["stddev"] != nil {
		t.Errorf("stddev = %v, want null for a single value", numeric["stddev"])
	}
}

func TestSearch(t *testing.T) {
	path := writeFile(t, "people.csv", peopleCSV)

	out, errOut, err := run(t, "search", path, "OSLO", "30")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || strings.Fields(lines[1])[0] != "1" || !strings.Contains(lines[1], "alice") {
		t.Errorf("output =\n%s", out)
	}
	if !strings.Contains(errOut, "1 of 3 rows match") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestSearchLimitAndSort(t *testing.T) {
	path := writeFile(t, "people.csv", peopleCSV)

	out, _, err := run(t, "search", path, "--sort", "age", "--desc", "--columns", "name,age", "--limit", "2")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	if got := strings.Fields(lines[1]); got[1] != "alice" {
		t.Errorf("first row = %v, want alice", got)
	}
	if strings.Contains(out, "city") {
		t.Error("projected column printed")
	}
}

func TestExport(t *testing.T) {
	path := writeFile(t, "people.csv", peopleCSV)

	out, _, err := run(t, "export", path, "-q", "oslo", "--sort", "name", "--desc")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if want := "name,age,city\ncara,,Oslo\nalice,30,Oslo\n"; out != want {
		t.Errorf("export = %q, want %q", out, want)
	}
}

func TestExportToFile(t *testing.T) {
	path := writeFile(t, "people.tsv", "name\tage\nalice\t30\n")
	dest := filepath.Join(t.TempDir(), core.ExportFileName)

	if _, _, err := run(t, "export", path, "--columns", "age", "--out", dest); err != nil {
		t.Fatalf("export error = %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "age\n30\n" {
		t.Errorf("file = %q", got)
	}
}

func TestLenientFlag(t *testing.T) {
	path := writeFile(t, "money.csv", "amount\n\"$1,200\"\n(35)\n")

	out, _, err := run(t, "stats", "--lenient", path)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if !strings.Contains(out, "numeric") {
		t.Errorf("lenient column not numeric:\n%s", out)
	}

	out, _, err = run(t, "stats", path)
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	if strings.Contains(out, "numeric") {
		t.Errorf("strict column read as numeric:\n%s", out)
	}
}

// writeWorkbook saves a workbook whose first sheet is a decoy and whose
// "Regions" sheet holds the data.
func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range [][]any{{"decoy"}, {"x"}} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.NewSheet("Regions"); err != nil {
		t.Fatal(err)
	}
	for i, row := range [][]any{{"region", "sales"}, {"north", 10}, {"south", 20}} {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Regions", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSheetFlag(t *testing.T) {
	path := writeWorkbook(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr error
	}{
		{"first sheet by default", []string{"export", path}, []string{"decoy", "x"}, nil},
		{"named sheet", []string{"export", "--sheet", "Regions", path}, []string{"region,sales", "north,10", "south,20"}, nil},
		{"unknown sheet", []string{"export", "--sheet", "Missing", path}, nil, core.ErrInvalidSpreadsheet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("export error = %v", err)
			}
			if got := strings.Split(strings.TrimSpace(out), "\n"); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want error
	}{
		{
			name: "ragged csv",
			args: func(t *testing.T) []string { return []string{"stats", writeFile(t, "bad.csv", "a\n1,2\n")} },
			want: core.ErrInvalidCSV,
		},
		{
			name: "row limit",
			args: func(t *testing.T) []string {
				return []string{"stats", "--max-rows", "2", writeFile(t, "p.csv", peopleCSV)}
			},
			want: core.ErrTooManyRows,
		},
		{
			name: "size limit",
			args: func(t *testing.T) []string {
				return []string{"stats", "--max-size", "8", writeFile(t, "p.csv", peopleCSV)}
			},
			want: core.ErrFileTooLarge,
		},
		{
			name: "unknown column",
			args: func(t *testing.T) []string {
				return []string{"export", writeFile(t, "p.csv", peopleCSV), "--columns", "salary"}
			},
			want: core.ErrInvalidColumn,
		},
		{
			name: "missing file",
			args: func(t *testing.T) []string { return []string{"stats", filepath.Join(t.TempDir(), "nope.csv")} },
			want: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args(t)...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
