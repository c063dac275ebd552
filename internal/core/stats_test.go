package core

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeStatistics_OneToFive(t *testing.T) {
	tbl := MustTable(Column{
		Name:  "n",
		Type:  TypeNumeric,
		Cells: []Cell{Numeric(1), Numeric(2), Numeric(3), Numeric(4), Numeric(5)},
	})

	rows := ComputeStatistics(tbl)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.DistinctCount != 5 || r.MissingCount != 0 {
		t.Errorf("distinct=%d missing=%d, want 5 and 0", r.DistinctCount, r.MissingCount)
	}
	if r.Numeric == nil {
		t.Fatal("numeric summary is nil")
	}
	got := *r.Numeric
	if got.Mean != 3 || got.Median != 3 || got.Min != 1 || got.Max != 5 {
		t.Errorf("summary = %+v", got)
	}
	if !approx(got.StdDev, math.Sqrt(2.5)) {
		t.Errorf("StdDev = %v, want sample stddev %v", got.StdDev, math.Sqrt(2.5))
	}
}

func TestComputeStatistics_AgeColumn(t *testing.T) {
	rows := ComputeStatistics(nameAge())

	name, age := rows[0], rows[1]
	if name.Column != "name" || name.Type != TypeText || name.DistinctCount != 3 || name.Numeric != nil {
		t.Errorf("name row = %+v", name)
	}

	if age.DistinctCount != 2 || age.MissingCount != 0 {
		t.Errorf("age distinct=%d missing=%d, want 2 and 0", age.DistinctCount, age.MissingCount)
	}
	if age.Numeric == nil {
		t.Fatal("age numeric summary is nil")
	}
	if !approx(age.Numeric.Mean, 85.0/3) {
		t.Errorf("mean = %v, want 28.33..", age.Numeric.Mean)
	}
	if age.Numeric.Min != 25 || age.Numeric.Max != 30 || age.Numeric.Median != 30 {
		t.Errorf("age summary = %+v", *age.Numeric)
	}
}

func TestComputeStatistics_AllMissing(t *testing.T) {
	tbl := MustTable(Column{
		Name:  "empty",
		Type:  TypeNumeric,
		Cells: []Cell{Missing(), Missing(), Missing()},
	})

	r := ComputeStatistics(tbl)[0]
	if r.MissingCount != 3 || r.DistinctCount != 0 {
		t.Errorf("missing=%d distinct=%d, want 3 and 0", r.MissingCount, r.DistinctCount)
	}
	if r.Numeric != nil {
		t.Errorf("all-missing column has numeric summary %+v", *r.Numeric)
	}
}

func TestComputeStatistics_MissingExcluded(t *testing.T) {
	tbl := MustTable(Column{
		Name:  "x",
		Type:  TypeNumeric,
		Cells: []Cell{Numeric(10), Missing(), Numeric(20), Missing()},
	})

	r := ComputeStatistics(tbl)[0]
	if r.MissingCount != 2 || r.DistinctCount != 2 {
		t.Errorf("missing=%d distinct=%d", r.MissingCount, r.DistinctCount)
	}
	if r.Numeric.Mean != 15 || r.Numeric.Median != 15 {
		t.Errorf("summary = %+v", *r.Numeric)
	}
}

func TestComputeStatistics_SingleValue(t *testing.T) {
	tbl := MustTable(Column{Name: "x", Type: TypeNumeric, Cells: []Cell{Numeric(7)}})

	s := ComputeStatistics(tbl)[0].Numeric
	if s.Mean != 7 || s.Min != 7 || s.Max != 7 {
		t.Errorf("summary = %+v", *s)
	}
	if !math.IsNaN(s.StdDev) {
		t.Errorf("StdDev = %v, want NaN for a single value", s.StdDev)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	rows := ComputeStatistics(MustTable())
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %#v, want empty non-nil slice", rows)
	}

	noRows := MustTable(Column{Name: "a", Type: TypeNumeric, Cells: []Cell{}})
	r := ComputeStatistics(noRows)[0]
	if r.MissingCount != 0 || r.DistinctCount != 0 || r.Numeric != nil {
		t.Errorf("zero-row column = %+v", r)
	}
}

func TestComputeStatistics_ColumnOrder(t *testing.T) {
	tbl := MustTable(
		Column{Name: "z", Cells: []Cell{Text("a")}},
		Column{Name: "a", Cells: []Cell{Text("b")}},
		Column{Name: "m", Cells: []Cell{Text("c")}},
	)

	var got []string
	for _, r := range ComputeStatistics(tbl) {
		got = append(got, r.Column)
	}
	if strings.Join(got, ",") != "z,a,m" {
		t.Errorf("order = %v, want z,a,m", got)
	}
}

func TestStatisticsRowJSON(t *testing.T) {
	tbl := MustTable(Column{Name: "x", Type: TypeNumeric, Cells: []Cell{Numeric(4)}})

	b, err := json.Marshal(ComputeStatistics(tbl)[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"column":"x","type":"numeric","distinct_count":1,"missing_count":0,` +
		`"numeric":{"mean":4,"median":4,"stddev":null,"min":4,"max":4}}`
	if string(b) != want {
		t.Errorf("json =\n%s\nwant\n%s", b, want)
	}

	text := MustTable(Column{Name: "s", Type: TypeText, Cells: []Cell{Text("a")}})
	b, _ = json.Marshal(ComputeStatistics(text)[0])
	if strings.Contains(string(b), "numeric\":{") {
		t.Errorf("text column json has numeric summary: %s", b)
	}
}
