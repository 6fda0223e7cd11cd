package grid

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, cells map[string]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	path := filepath.Join(t.TempDir(), "grid.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestLoadFile_TypedCells(t *testing.T) {
	t.Parallel()

	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	path := writeWorkbook(t, map[string]any{
		"A1": "CLAVE",
		"B1": "Fecha",
		"B2": monday,
		"A3": 1234,
		"C3": 12.5,
		"D3": "0",
		"E3": true,
	})

	g, err := LoadFile(path, Sheet{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := g.Cell(1, 1); !got.Equal(Text("CLAVE")) {
		t.Fatalf("A1 want text CLAVE got %v (%s)", got, got.Kind)
	}
	d := g.Cell(2, 2)
	if d.Kind != KindDate || !d.Time.Equal(monday) {
		t.Fatalf("B2 want date %v got %v (%s)", monday, d, d.Kind)
	}
	if got := g.Cell(3, 1); !got.Equal(Number(1234)) {
		t.Fatalf("A3 want number 1234 got %v (%s)", got, got.Kind)
	}
	if got := g.Cell(3, 3); !got.Equal(Number(12.5)) {
		t.Fatalf("C3 want number 12.5 got %v (%s)", got, got.Kind)
	}
	if got := g.Cell(3, 4); got.Kind != KindText || got.Str != "0" {
		t.Fatalf("D3 want text 0 got %v (%s)", got, got.Kind)
	}
	if got := g.Cell(3, 5); !got.Equal(Bool(true)) {
		t.Fatalf("E3 want bool true got %v (%s)", got, got.Kind)
	}
	if g.SheetName() != "Sheet1" {
		t.Fatalf("unexpected sheet name %q", g.SheetName())
	}
}

func TestCell_OutOfRangeIsEmpty(t *testing.T) {
	t.Parallel()

	g := New("s", [][]Value{{Text("a")}})
	for _, c := range []Coord{{0, 1}, {1, 0}, {2, 1}, {1, 2}, {-1, -1}, {1000, 1000}} {
		if v := g.At(c); !v.IsEmpty() {
			t.Fatalf("%v want empty got %v", c, v)
		}
	}
}

func TestLoadFile_SheetSelector(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, map[string]any{"A1": "x"})

	if _, err := LoadFile(path, Sheet{Index: 3}); err == nil {
		t.Fatalf("expected error for missing sheet index")
	}
	if _, err := LoadFile(path, Sheet{Name: "nope"}); err == nil {
		t.Fatalf("expected error for missing sheet name")
	}
	g, err := LoadFile(path, Sheet{Name: "Sheet1"})
	if err != nil {
		t.Fatalf("load by name: %v", err)
	}
	if g.MaxRow() != 1 || g.MaxCol() != 1 {
		t.Fatalf("unexpected dims %dx%d", g.MaxRow(), g.MaxCol())
	}
}

func TestFindAll_TypedEquality(t *testing.T) {
	t.Parallel()

	g := New("s", [][]Value{
		{Text("0"), Number(0), Text("CLAVE")},
		{Empty(), Text("CLAVE"), Number(0)},
	})

	got := g.FindAll(Number(0))
	if len(got) != 2 || got[0] != (Coord{1, 2}) || got[1] != (Coord{2, 3}) {
		t.Fatalf("numeric 0 matches: %v", got)
	}
	got = g.FindAll(Text("0"))
	if len(got) != 1 || got[0] != (Coord{1, 1}) {
		t.Fatalf("text 0 matches: %v", got)
	}
	got = g.FindAll(Text("CLAVE"))
	if len(got) != 2 || got[0] != (Coord{1, 3}) || got[1] != (Coord{2, 2}) {
		t.Fatalf("row-major order broken: %v", got)
	}
	if got := g.FindAll(Text("Clave")); len(got) != 0 {
		t.Fatalf("match must be case sensitive: %v", got)
	}
	if got := g.FindAllInRow(2, Text("CLAVE")); len(got) != 1 || got[0].Col != 2 {
		t.Fatalf("row search: %v", got)
	}
}

func TestIsDateFormat(t *testing.T) {
	t.Parallel()

	yes := "dd/mm/yyyy"
	no := "#,##0.00"
	quoted := `0.00" days"`
	cases := []struct {
		id     int
		custom *string
		want   bool
	}{
		{14, nil, true},
		{22, nil, true},
		{0, nil, false},
		{4, nil, false},
		{164, &yes, true},
		{164, &no, false},
		{164, &quoted, false},
	}
	for _, tc := range cases {
		if got := IsDateFormat(tc.id, tc.custom); got != tc.want {
			t.Fatalf("IsDateFormat(%d) want=%v got=%v", tc.id, tc.want, got)
		}
	}
}
