package importer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"produccion/internal/catalog"
	"produccion/internal/dataset"
	"produccion/internal/model"
	"produccion/internal/parser"
	"produccion/internal/store"
)

func writeLiquido(t *testing.T, dir, name string, fecha time.Time, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	set := func(cell string, v any) {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	set("B1", "DEL:")
	set("B2", fecha)
	set("A4", "CLAVE")
	set("B4", "Fabricado")
	set("C4", "Programa")
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+5)
			set(cell, v)
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

type fixture struct {
	dir  string
	ds   *dataset.Store
	cat  *catalog.Store
	logs *store.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	cat, err := catalog.NewStore(filepath.Join(dir, "catalogo.xlsx"), filepath.Join(dir, "historico"), catalog.Options{DefaultMarca: "BAYER"})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := cat.Save([]model.CatalogEntry{
		{Sku: "100", Descripcion: "Tornillo", Familia: "F1", Marca: "M1"},
		{Sku: "200", Descripcion: "Tuerca", Familia: "F2", Marca: "M2"},
	}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	ds, err := dataset.Open(filepath.Join(dir, "datos.csv"), dataset.Options{DefaultMarca: "BAYER"})
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	logs, err := store.New(filepath.Join(dir, "imports.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = logs.Close() })
	return fixture{dir: dir, ds: ds, cat: cat, logs: logs}
}

func TestImport_BatchWithFailingFile(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	good := writeLiquido(t, fx.dir, "liquidos.xlsx", monday, [][]any{
		{100, 10, 10},
		{"200-1", 5, 10},
		{999, 1, 1},
		{200, "n/a", 3},
	})
	bad := filepath.Join(fx.dir, "vacio.xlsx")
	{
		f := excelize.NewFile()
		if err := f.SaveAs(bad); err != nil {
			t.Fatalf("save: %v", err)
		}
		f.Close()
	}

	profile, _ := parser.ProfileFor(model.TipoLiquido)
	coordinator := NewCoordinator(fx.ds, fx.cat, fx.logs)
	ch := coordinator.Import(context.Background(), []Upload{
		{Filename: "vacio.xlsx", Path: bad},
		{Filename: "liquidos.xlsx", Path: good},
	}, profile)

	var report *model.BatchReport
	var start map[string]interface{}
	var types []string
	for evt := range ch {
		types = append(types, evt.Type)
		switch evt.Type {
		case EventStart:
			start, _ = evt.Data.(map[string]interface{})
		case EventDone:
			report, _ = evt.Data.(*model.BatchReport)
		}
	}
	if start["total_files"] != 2 || start["tipo"] != model.TipoLiquido || start["batch_id"] == "" {
		t.Fatalf("unexpected start event data %v", start)
	}
	if report == nil {
		t.Fatalf("missing done report, events=%v", types)
	}
	if types[0] != EventStart || types[len(types)-1] != EventDone {
		t.Fatalf("unexpected event order %v", types)
	}

	if report.TotalFiles != 2 || report.ImportedFiles != 1 || report.FailedFiles != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Files[0].Status != model.FileStatusError || report.Files[0].Error == "" {
		t.Fatalf("first file must fail: %+v", report.Files[0])
	}
	lf := report.Files[1]
	if lf.ExtractedRows != 4 || lf.ImportedRows != 2 || lf.RejectedRows != 2 || lf.Fecha == nil || !lf.Fecha.Equal(monday) {
		t.Fatalf("unexpected file report %+v", lf)
	}
	if len(report.Validation.Rejected) != 2 {
		t.Fatalf("unexpected rejected rows %+v", report.Validation.Rejected)
	}

	records, err := fx.ds.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records got %+v", records)
	}
	for _, r := range records {
		if r.Semana != 11 || r.Anio != 2024 || r.Tipo != model.TipoLiquido {
			t.Fatalf("unexpected record %+v", r)
		}
		if r.Sku == "200" && (r.Descripcion != "Tuerca" || r.Fabricado != 5) {
			t.Fatalf("unexpected record %+v", r)
		}
	}

	logs, err := fx.logs.ListImports(10)
	if err != nil {
		t.Fatalf("list imports: %v", err)
	}
	if len(logs) != 2 || logs[0].Filename != "liquidos.xlsx" || logs[0].Status != model.FileStatusImported ||
		logs[1].Status != model.FileStatusError || logs[0].BatchID != report.BatchID {
		t.Fatalf("unexpected import logs %+v", logs)
	}
	rejected, err := fx.logs.ListRejectedRows(logs[0].ID)
	if err != nil || len(rejected) != 2 {
		t.Fatalf("unexpected rejected rows %+v %v", rejected, err)
	}
}

func TestRun_ReimportReplacesWeek(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	profile, _ := parser.ProfileFor(model.TipoLiquido)
	coordinator := NewCoordinator(fx.ds, fx.cat, nil)

	first := writeLiquido(t, fx.dir, "v1.xlsx", monday, [][]any{{100, 1, 10}})
	if _, err := coordinator.Run(context.Background(), []Upload{{Filename: "v1.xlsx", Path: first}}, profile); err != nil {
		t.Fatalf("run: %v", err)
	}
	second := writeLiquido(t, fx.dir, "v2.xlsx", monday, [][]any{{100, 8, 10}})
	report, err := coordinator.Run(context.Background(), []Upload{{Filename: "v2.xlsx", Path: second}}, profile)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.ImportedRows != 1 {
		t.Fatalf("unexpected report %+v", report)
	}

	records, err := fx.ds.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 || records[0].Fabricado != 8 {
		t.Fatalf("re-import must replace the week: %+v", records)
	}
}

func TestImport_InvalidProfile(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	coordinator := NewCoordinator(fx.ds, fx.cat, nil)
	if _, err := coordinator.Run(context.Background(), nil, parser.Profile{}); err == nil {
		t.Fatalf("expected error for invalid profile")
	}
}
