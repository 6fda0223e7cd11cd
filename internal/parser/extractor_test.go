package parser

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"produccion/internal/grid"
	"produccion/internal/model"
)

func liquidoGrid() *grid.Grid {
	e := grid.Empty()
	return grid.New("s", [][]grid.Value{
		{grid.Text("PROGRAMA SEMANAL"), e, e, e},
		{grid.Text("CLAVE"), grid.Text("DESCRIPCION"), grid.Text("Programa"), grid.Text("Fabricado")},
		{grid.Text("ANSA100.1"), grid.Text("Jabón"), grid.Number(10), grid.Number(10)},
		{grid.Number(0), grid.Text("total"), grid.Number(99), grid.Number(99)},
		{grid.Text("0"), e, grid.Number(1), grid.Number(1)},
		{e, e, grid.Number(5), grid.Number(5)},
		{grid.Text("200"), e, e, e},
		{grid.Text("300"), e, grid.Text("abc"), e},
		{grid.Number(400), e, grid.Number(10), grid.Number(5)},
	})
}

func TestExtract_DropsMissingIndexAndEmptyValues(t *testing.T) {
	t.Parallel()

	p, err := ProfileFor(model.TipoLiquido)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}

	rows, err := Extract(liquidoGrid(), p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows got %d: %+v", len(rows), rows)
	}

	if rows[0].Sku != "100" || rows[0].Row != 3 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if !rows[0].Fabricado.Equal(grid.Number(10)) || !rows[0].Programado.Equal(grid.Number(10)) {
		t.Fatalf("unexpected values: %+v", rows[0])
	}
	// 部分为空的行保留给校验阶段
	if rows[1].Sku != "300" || !rows[1].Programado.Equal(grid.Text("abc")) || !rows[1].Fabricado.IsEmpty() {
		t.Fatalf("unexpected partial row: %+v", rows[1])
	}
	if rows[2].Sku != "400" || !rows[2].Fabricado.Equal(grid.Number(5)) || !rows[2].Programado.Equal(grid.Number(10)) {
		t.Fatalf("value columns mapped by label, got %+v", rows[2])
	}
}

func TestExtract_ScanLimit(t *testing.T) {
	t.Parallel()

	p, _ := ProfileFor(model.TipoLiquido)
	p = p.WithScan(1, "")

	rows, err := Extract(liquidoGrid(), p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 1 || rows[0].Sku != "100" {
		t.Fatalf("scan limit not honoured: %+v", rows)
	}
}

func TestExtract_HeaderNotFound(t *testing.T) {
	t.Parallel()

	p, _ := ProfileFor(model.TipoLerma)
	_, err := Extract(liquidoGrid(), p)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("want ErrHeaderNotFound got %v", err)
	}
}

func TestExtract_ColumnSearchPolicy(t *testing.T) {
	t.Parallel()

	e := grid.Empty()
	g := grid.New("s", [][]grid.Value{
		{e, e, grid.Text("Fabricado"), e},
		{grid.Text("CLAVE"), grid.Text("Programa"), e, grid.Text("Fabricado")},
		{grid.Text("A1"), grid.Number(10), grid.Number(1), grid.Number(7)},
	})

	p, _ := ProfileFor(model.TipoLiquido)
	rows, err := Extract(g, p)
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if !rows[0].Fabricado.Equal(grid.Number(1)) {
		t.Fatalf("global search takes the first match anywhere, got %+v", rows[0])
	}

	rows, err = Extract(g, p.WithScan(0, SearchHeaderRow))
	if err != nil {
		t.Fatalf("header_row: %v", err)
	}
	if !rows[0].Fabricado.Equal(grid.Number(7)) {
		t.Fatalf("header_row search stays on the header row, got %+v", rows[0])
	}

	g2 := grid.New("s", [][]grid.Value{
		{e, grid.Text("Programa")},
		{grid.Text("CLAVE"), grid.Text("Fabricado")},
	})
	if _, err := Extract(g2, p.WithScan(0, SearchHeaderRow)); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("want ErrColumnNotFound got %v", err)
	}
}

func TestExtract_ShiftBetweenValues(t *testing.T) {
	t.Parallel()

	g := grid.New("s", [][]grid.Value{
		{grid.Text("CLAVE"), grid.Text("Programa"), grid.Text("Fabricado")},
		{grid.Text("A1")},
		{grid.Empty(), grid.Number(8), grid.Number(4)},
	})
	p, _ := ProfileFor(model.TipoLiquido)
	p.ShiftBetweenValues = 1

	rows, err := Extract(g, p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 1 || !rows[0].Programado.Equal(grid.Number(8)) {
		t.Fatalf("values must be read one row below the index: %+v", rows)
	}
}

func TestExtract_PolvoWorkbook(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]any{
		"A1": "Fecha Inicio",
		"A2": time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		"A4": "CLAVE",
		"B4": "KG PROGRAMADOS",
		"C4": "KG FABRICADOS",
		"A5": "P-100",
		"B5": 1000,
		"C5": 950.5,
		"A6": 2001,
		"B6": "1,200",
		"C6": 1200,
	}
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	path := filepath.Join(t.TempDir(), "polvo.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	p, _ := ProfileFor(model.TipoPolvo)
	g, err := grid.LoadFile(path, p.Sheet)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	fecha, err := FindWeekStart(g, p.DateLabels)
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	if fecha.Weekday() != time.Monday || fecha.Day() != 11 {
		t.Fatalf("unexpected date %v", fecha)
	}

	rows, err := Extract(g, p)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows got %+v", rows)
	}
	if rows[0].Sku != "P" || !rows[0].Fabricado.Equal(grid.Number(950.5)) {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[1].Sku != "2001" || !rows[1].Programado.Equal(grid.Text("1,200")) {
		t.Fatalf("unexpected row: %+v", rows[1])
	}
}

func TestProfiles_Valid(t *testing.T) {
	t.Parallel()

	for _, tipo := range model.Tipos {
		p, err := ProfileFor(tipo)
		if err != nil {
			t.Fatalf("%s: %v", tipo, err)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("%s: %v", tipo, err)
		}
	}

	p, _ := ProfileFor(model.TipoLiquido)
	p.OutputNames = []string{"sku", "fabricado"}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected mismatch error")
	}

	// 修改副本不影响内置模板
	p.DateLabels[0] = "changed"
	again, _ := ProfileFor(model.TipoLiquido)
	if again.DateLabels[0] != "DEL:" {
		t.Fatalf("builtin profile mutated")
	}
}
