package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

// nameAge is the two-column table used throughout the tests.
func nameAge() *Table {
	return MustTable(
		Column{Name: "name", Type: TypeText, Cells: []Cell{Text("Alice"), Text("bob"), Text("Cara")}},
		Column{Name: "age", Type: TypeNumeric, Cells: []Cell{Numeric(30), Numeric(25), Numeric(30)}},
	)
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"missing", Missing(), ""},
		{"integer", Numeric(30), "30"},
		{"negative decimal", Numeric(-12.5), "-12.5"},
		{"large value has no exponent", Numeric(1e21), "1000000000000000000000"},
		{"text", Text("Alice"), "Alice"},
		{"empty text is not missing", Text(""), ""},
		{"unknown kind", Cell{Kind: CellKind(99)}, "?"},
		{"NaN", Numeric(math.NaN()), "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColumnTypeMarshalText(t *testing.T) {
	for typ, want := range map[ColumnType]string{TypeNumeric: "numeric", TypeText: "text"} {
		got, err := typ.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error: %v", err)
		}
		if string(got) != want {
			t.Errorf("MarshalText() = %q, want %q", got, want)
		}
	}
}

func TestColumnTypeJSON(t *testing.T) {
	type column struct {
		Name string     `json:"name"`
		Type ColumnType `json:"type"`
	}

	tests := []struct {
		name    string
		in      string
		want    ColumnType
		wantErr bool
	}{
		{"numeric", `{"name":"age","type":"numeric"}`, TypeNumeric, false},
		{"text", `{"name":"city","type":"text"}`, TypeText, false},
		{"unknown label", `{"name":"x","type":"date"}`, TypeText, true},
		{"case sensitive", `{"name":"x","type":"Numeric"}`, TypeText, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got column
			err := json.Unmarshal([]byte(tt.in), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got.Type != tt.want {
				t.Errorf("Type = %v, want %v", got.Type, tt.want)
			}
		})
	}

	t.Run("round trip", func(t *testing.T) {
		in := column{Name: "age", Type: TypeNumeric}
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		var out column
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", b, err)
		}
		if out != in {
			t.Errorf("round trip = %+v, want %+v", out, in)
		}
	})
}

func TestNewTable(t *testing.T) {
	t.Run("rejects duplicate names", func(t *testing.T) {
		_, err := NewTable([]Column{
			{Name: "a", Cells: []Cell{Missing()}},
			{Name: "a", Cells: []Cell{Missing()}},
		})
		if !errors.Is(err, ErrDuplicateColumn) {
			t.Errorf("err = %v, want ErrDuplicateColumn", err)
		}
	})

	t.Run("rejects misaligned columns", func(t *testing.T) {
		_, err := NewTable([]Column{
			{Name: "a", Cells: []Cell{Missing(), Missing()}},
			{Name: "b", Cells: []Cell{Missing()}},
		})
		if !errors.Is(err, ErrMisalignedColumns) {
			t.Errorf("err = %v, want ErrMisalignedColumns", err)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		tbl, err := NewTable(nil)
		if err != nil {
			t.Fatalf("NewTable(nil) error: %v", err)
		}
		if tbl.NumRows() != 0 || tbl.NumColumns() != 0 {
			t.Errorf("got %dx%d, want 0x0", tbl.NumRows(), tbl.NumColumns())
		}
	})

	t.Run("identity row index", func(t *testing.T) {
		tbl := nameAge()
		for i := 0; i < tbl.NumRows(); i++ {
			if got := tbl.RowIndex(i); got != i {
				t.Errorf("RowIndex(%d) = %d", i, got)
			}
		}
	})
}

func TestTableAccessors(t *testing.T) {
	tbl := nameAge()

	if got := tbl.ColumnNames(); len(got) != 2 || got[0] != "name" || got[1] != "age" {
		t.Errorf("ColumnNames() = %v", got)
	}

	col, ok := tbl.Column("age")
	if !ok || col.Type != TypeNumeric {
		t.Errorf("Column(age) = %+v, %v", col, ok)
	}
	if _, ok := tbl.Column("salary"); ok {
		t.Error("Column(salary) should not exist")
	}

	row := tbl.Row(1)
	if row[0].String() != "bob" || row[1].Num != 25 {
		t.Errorf("Row(1) = %v", row)
	}
}

func TestFindRow(t *testing.T) {
	tbl := Search(nameAge(), "30")

	i, ok := tbl.FindRow(2)
	if !ok || i != 1 {
		t.Errorf("FindRow(2) = %d, %v; want 1, true", i, ok)
	}
	if _, ok := tbl.FindRow(1); ok {
		t.Error("FindRow(1) should be absent from the search result")
	}
}

func TestMustBeAlignedPanics(t *testing.T) {
	tbl := nameAge()
	broken := tbl.derive([]Column{{Name: "x", Cells: []Cell{Missing()}}}, tbl.index)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for misaligned table")
		}
	}()
	ComputeStatistics(broken)
}
