package core

import (
	"errors"
	"reflect"
	"testing"
)

func people() *Table {
	return MustTable(
		Column{Name: "name", Type: TypeText, Cells: []Cell{Text("Cara"), Text("alice"), Text("Bob"), Text("Dan")}},
		Column{Name: "age", Type: TypeNumeric, Cells: []Cell{Numeric(30), Missing(), Numeric(25), Numeric(41)}},
		Column{Name: "city", Type: TypeText, Cells: []Cell{Text("Oslo"), Text("Rome"), Missing(), Text("Oslo")}},
	)
}

func TestProject(t *testing.T) {
	tbl := people()

	got, err := Project(tbl, []string{"city", "name", "city"})
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if !reflect.DeepEqual(got.ColumnNames(), []string{"city", "name"}) {
		t.Errorf("ColumnNames() = %v", got.ColumnNames())
	}
	if got.NumRows() != tbl.NumRows() {
		t.Errorf("NumRows() = %d", got.NumRows())
	}

	if same, _ := Project(tbl, nil); same != tbl {
		t.Error("Project(nil) should return the table itself")
	}

	_, err = Project(tbl, []string{"name", "salary"})
	if !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("err = %v, want ErrInvalidColumn", err)
	}
}

func TestSortBy(t *testing.T) {
	tests := []struct {
		name   string
		column string
		desc   bool
		want   []string
	}{
		{"numeric ascending, missing last", "age", false, []string{"Bob", "Cara", "Dan", "alice"}},
		{"numeric descending, missing last", "age", true, []string{"Dan", "Cara", "Bob", "alice"}},
		{"text ascending is byte order", "name", false, []string{"Bob", "Cara", "Dan", "alice"}},
		{"stable for ties", "city", false, []string{"Cara", "Dan", "alice", "Bob"}},
		{"stable for ties descending", "city", true, []string{"alice", "Cara", "Dan", "Bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortBy(people(), tt.column, tt.desc)
			if err != nil {
				t.Fatalf("SortBy() error: %v", err)
			}
			if !reflect.DeepEqual(names(got), tt.want) {
				t.Errorf("order = %v, want %v", names(got), tt.want)
			}
		})
	}

	if _, err := SortBy(people(), "nope", false); !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("err = %v, want ErrInvalidColumn", err)
	}
}

func TestSortByKeepsSourceIndex(t *testing.T) {
	got, err := SortBy(people(), "age", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 0, 3, 1}
	for i, w := range want {
		if got.RowIndex(i) != w {
			t.Errorf("RowIndex(%d) = %d, want %d", i, got.RowIndex(i), w)
		}
	}
}

func TestApplyView(t *testing.T) {
	tbl := people()

	t.Run("zero request is identity", func(t *testing.T) {
		got, err := ApplyView(tbl, ViewRequest{})
		if err != nil || got != tbl {
			t.Errorf("ApplyView(zero) = %p, %v; want %p", got, err, tbl)
		}
	})

	t.Run("sort by a hidden column", func(t *testing.T) {
		got, err := ApplyView(tbl, ViewRequest{Columns: []string{"name"}, SortColumn: "age", Descending: true})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(names(got), []string{"Dan", "Cara", "Bob", "alice"}) {
			t.Errorf("order = %v", names(got))
		}
		if got.NumColumns() != 1 {
			t.Errorf("NumColumns() = %d, want 1", got.NumColumns())
		}
	})

	t.Run("search only sees displayed columns", func(t *testing.T) {
		got, err := ApplyView(tbl, ViewRequest{Query: "oslo", Columns: []string{"name", "age"}})
		if err != nil {
			t.Fatal(err)
		}
		if got.NumRows() != 0 {
			t.Errorf("hidden city column matched: %v", names(got))
		}
	})

	t.Run("combined", func(t *testing.T) {
		got, err := ApplyView(tbl, ViewRequest{Query: "oslo", SortColumn: "age", Descending: true})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(names(got), []string{"Dan", "Cara"}) {
			t.Errorf("rows = %v", names(got))
		}
	})

	t.Run("unknown column fails without partial result", func(t *testing.T) {
		got, err := ApplyView(tbl, ViewRequest{Columns: []string{"ghost"}})
		if !errors.Is(err, ErrInvalidColumn) || got != nil {
			t.Errorf("ApplyView = %v, %v", got, err)
		}
	})

	t.Run("does not modify the source table", func(t *testing.T) {
		before := names(tbl)
		if _, err := ApplyView(tbl, ViewRequest{SortColumn: "name"}); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(names(tbl), before) {
			t.Errorf("source reordered: %v", names(tbl))
		}
	})
}
