package templates

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/csvlens/internal/core"
	"github.com/a-h/templ"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestFormatStat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{27.5, "27.5"},
		{1.0 / 3, "0.3333"},
		{-2.25, "-2.25"},
		{math.NaN(), "n/a"},
		{math.Inf(1), "n/a"},
	}
	for _, tt := range tests {
		if got := formatStat(tt.in); got != tt.want {
			t.Errorf("formatStat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1 << 10, "1 KB"},
		{1536, "1.5 KB"},
		{100 << 20, "100 MB"},
		{2 << 30, "2 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestErrorAlertEscapes(t *testing.T) {
	got := renderString(t, ErrorAlert("<b>bad</b>", "retry", "ERR000"))
	if strings.Contains(got, "<b>") {
		t.Errorf("message not escaped: %s", got)
	}
	for _, want := range []string{"&lt;b&gt;bad&lt;/b&gt;", "retry", "Error code: ERR000"} {
		if !strings.Contains(got, want) {
			t.Errorf("alert missing %q", want)
		}
	}
}

func TestUploadPage(t *testing.T) {
	got := renderString(t, UploadPage(10<<20, nil))
	if strings.Contains(got, `class="alert"`) {
		t.Error("alert rendered without error")
	}
	if !strings.Contains(got, "10 MB") {
		t.Error("size limit missing")
	}

	msg := core.MapError(core.ErrEmptyFile)
	got = renderString(t, UploadPage(10<<20, &msg))
	if !strings.Contains(got, "FILE005") || !strings.Contains(got, `enctype="multipart/form-data"`) {
		t.Error("upload page with alert missing error or form")
	}
}

func testView(t *testing.T, maxRows int) DatasetView {
	t.Helper()
	table := core.MustTable(
		core.Column{Name: "name", Type: core.TypeText, Cells: []core.Cell{core.Text("a"), core.Text("b"), core.Text("c")}},
		core.Column{Name: "n", Type: core.TypeNumeric, Cells: []core.Cell{core.Numeric(1), core.Missing(), core.Numeric(3)}},
	)
	return DatasetView{
		ID:        "abc",
		FileName:  "t.csv",
		Columns:   table.ColumnNames(),
		TotalRows: table.NumRows(),
		Stats:     core.ComputeStatistics(table),
		Request:   core.ViewRequest{Columns: []string{"n"}, SortColumn: "n", Descending: true},
		Result:    table,
		MaxRows:   maxRows,
		ExportURL: "/datasets/abc/export?sort=n&dir=desc",
	}
}

func TestDatasetPage(t *testing.T) {
	got := renderString(t, DatasetPage(testView(t, 100)))

	for _, want := range []string{
		"<h1>t.csv</h1>",
		"3 rows, 2 columns",
		`<td class="num">2</td>`, // mean of n
		`value="n" checked`,
		`value="n" selected`,
		`value="desc" selected`,
		`href="/datasets/abc/rows/2">3</a>`,
		`<td class="missing"></td>`,
		`href="/datasets/abc/rows/0">1</a></td><td>a</td><td class="num">1</td></tr>`,
		`href="/datasets/abc/export?sort=n&amp;dir=desc"`,
		"3 rows of 3 match.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(got, `value="name" checked`) {
		t.Error("unselected column rendered checked")
	}
	if strings.Contains(got, "&#34;") {
		t.Error("markup quotes were escaped")
	}
}

func TestErrorPage(t *testing.T) {
	got := renderString(t, ErrorPage(404, "Dataset not found.", "Upload it again.", "DS001"))
	for _, want := range []string{
		"<title>Error | CSV Analyzer</title>",
		"<h1>Error 404</h1>",
		`<div class="alert" role="alert"><strong>Dataset not found.</strong>`,
		"<p>Upload it again.</p>",
		"Error code: DS001",
		`<a href="/">Back to upload</a>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("error page missing %q", want)
		}
	}
}

func TestDatasetPageTruncates(t *testing.T) {
	got := renderString(t, DatasetPage(testView(t, 2)))
	if !strings.Contains(got, "Showing the first 2 of 3 matching rows (3 total).") {
		t.Error("truncation notice missing")
	}
	if strings.Contains(got, "/rows/2") {
		t.Error("row past the display limit rendered")
	}
}

func TestDatasetPageNoMatches(t *testing.T) {
	v := testView(t, 100)
	v.Result = core.Search(v.Result, "zzz")
	got := renderString(t, DatasetPage(v))
	if !strings.Contains(got, "No rows match") {
		t.Error("empty notice missing")
	}
}

func TestRowDetailPage(t *testing.T) {
	d := core.RowDetail{Row: 4, Fields: []core.RowField{
		{Column: "name", Type: core.TypeText, Value: "x<y", Cell: core.Text("x<y")},
		{Column: "n", Type: core.TypeNumeric, Value: "", Cell: core.Missing()},
	}}
	got := renderString(t, RowDetailPage("abc", "t.csv", d))
	for _, want := range []string{"t.csv, row 5", "x&lt;y", "(missing)", `href="/datasets/abc"`} {
		if !strings.Contains(got, want) {
			t.Errorf("row page missing %q", want)
		}
	}
}
