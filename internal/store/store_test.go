package store

import (
	"path/filepath"
	"testing"
	"time"

	"produccion/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "db", "imports.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestImportLog_Lifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	id, err := s.CreateImportLog("batch-1", "liquidos.xlsx", "abc", model.TipoLiquido)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	logs, err := s.ListImports(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != ImportStatusProcessing || logs[0].CompletedAt != nil {
		t.Fatalf("unexpected logs %+v", logs)
	}

	fecha := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if err := s.UpdateImportLog(id, model.FileReport{
		Fecha:         &fecha,
		Status:        model.FileStatusImported,
		ExtractedRows: 5,
		ImportedRows:  4,
		RejectedRows:  1,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	logs, err = s.ListImports(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	l := logs[0]
	if l.BatchID != "batch-1" || l.Tipo != "liquido" || l.Fecha != "2024-03-11" ||
		l.ImportedRows != 4 || l.RejectedRows != 1 || l.Status != model.FileStatusImported || l.CompletedAt == nil {
		t.Fatalf("unexpected log %+v", l)
	}
}

func TestListImports_NewestFirstWithLimit(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	for _, name := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
		if _, err := s.CreateImportLog("batch", name, "", model.TipoPolvo); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	logs, err := s.ListImports(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 2 || logs[0].Filename != "c.xlsx" || logs[1].Filename != "b.xlsx" {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestRejectedRows(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	id, err := s.CreateImportLog("batch", "lerma.xlsx", "", model.TipoLerma)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.InsertRejectedRows(id, []model.RejectedRow{
		{Row: 9, Sku: "Z", Reason: model.ReasonSkuInvalido},
		{Row: 4, Sku: "A", Reason: model.ReasonCantidades},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := s.ListRejectedRows(id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Row != 4 || got[0].File != "lerma.xlsx" || got[1].Reason != model.ReasonSkuInvalido {
		t.Fatalf("unexpected rows %+v", got)
	}
}
