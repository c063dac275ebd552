package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	tbl := MustTable(
		Column{Name: "name", Type: TypeText, Cells: []Cell{Text("Alice"), Text("O'Neil, Jr."), Missing()}},
		Column{Name: "score", Type: TypeNumeric, Cells: []Cell{Numeric(30), Missing(), Numeric(2.5)}},
	)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	want := "name,score\nAlice,30\n\"O'Neil, Jr.\",\n,2.5\n"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	src := "id,city,amount\n1,Oslo,10.5\n2,\"Rome, IT\",\n3,Bergen,-4\n"

	tbl, err := LoadCSV(strings.NewReader(src), LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	view, err := ApplyView(tbl, ViewRequest{Query: "o", Columns: []string{"city", "amount"}})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, view); err != nil {
		t.Fatal(err)
	}

	back, err := LoadCSV(&buf, LoadOptions{})
	if err != nil {
		t.Fatalf("reloading export: %v", err)
	}
	if back.NumRows() != view.NumRows() || back.NumColumns() != 2 {
		t.Fatalf("reloaded %dx%d, want %dx2", back.NumRows(), back.NumColumns(), view.NumRows())
	}
	for i := 0; i < view.NumRows(); i++ {
		for c := range view.Columns() {
			if got, want := back.Row(i)[c].String(), view.Row(i)[c].String(); got != want {
				t.Errorf("row %d col %d = %q, want %q", i, c, got, want)
			}
		}
	}
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	tbl := Search(nameAge(), "zzz")

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "name,age\n" {
		t.Errorf("output = %q", buf.String())
	}
}
