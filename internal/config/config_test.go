package config

import (
	"os"
	"path/filepath"
	"testing"

	"produccion/internal/grid"
	"produccion/internal/model"
	"produccion/internal/parser"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.PortSpecified {
		t.Fatalf("port must not be marked as specified")
	}
	if cfg.Data.DatasetFormat != "xlsx" || cfg.Catalog.DefaultMarca != "BAYER" || cfg.Catalog.DefaultFamilia != model.FamiliaExterno {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFrom_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[server]
port = 9000

[data]
dataset_format = "csv"

[extraction]
max_rows_to_scan = 40
column_search = "header_row"

[extraction.sheets.lerma]
name = "Semana"

[extraction.profiles.polvo]
shift_between_values = 1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PRODUCCION_DATASET_FORMAT", "parquet")
	t.Setenv("PRODUCCION_DATA_DIR", dir)

	cfg, info, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.PortSpecified || cfg.Server.Port != 9000 {
		t.Fatalf("unexpected server %+v %+v", cfg.Server, info)
	}
	if cfg.Data.DatasetFormat != "parquet" {
		t.Fatalf("env must override file, got %s", cfg.Data.DatasetFormat)
	}
	if cfg.DatasetPath() != filepath.Join(dir, "datos_historicos.parquet") {
		t.Fatalf("unexpected dataset path %s", cfg.DatasetPath())
	}

	lerma, err := cfg.Profile(model.TipoLerma)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if lerma.Sheet.Name != "Semana" || lerma.MaxRowsToScan != 40 || lerma.ColumnSearch != parser.SearchHeaderRow {
		t.Fatalf("unexpected lerma profile %+v", lerma)
	}
	polvo, _ := cfg.Profile(model.TipoPolvo)
	if polvo.ShiftBetweenValues != 1 || polvo.Sheet.Name != "" {
		t.Fatalf("unexpected polvo profile %+v", polvo)
	}
}

func TestLoadFrom_InvalidFormat(t *testing.T) {
	t.Setenv("PRODUCCION_DATASET_FORMAT", "json")
	if _, _, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml")); err == nil {
		t.Fatalf("expected error for unsupported dataset format")
	}
}

func TestEnsureDataDir(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "datos")
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, sub := range []string{"uploads", "exports", cfg.Data.CatalogHistoryDir} {
		if st, err := os.Stat(filepath.Join(dir, sub)); err != nil || !st.IsDir() {
			t.Fatalf("missing subdir %s: %v", sub, err)
		}
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Data.DataDir = dir
	cfg.Data.DatasetFormat = "csv"
	cfg.Extraction.Sheets = map[string]grid.Sheet{"lerma": {Name: "Semana"}}
	cfg.Extraction.Overrides = map[string]ProfileOverride{"polvo": {ShiftBetweenValues: 1}}
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file must not remain")
	}

	got, info, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.PortSpecified || got.Server.Port != 9100 || got.Data.DatasetFormat != "csv" || got.Data.DataDir != dir {
		t.Fatalf("unexpected reloaded config %+v", got)
	}
	lerma, err := got.Profile(model.TipoLerma)
	if err != nil || lerma.Sheet.Name != "Semana" {
		t.Fatalf("sheet override lost: %+v %v", lerma, err)
	}
	polvo, err := got.Profile(model.TipoPolvo)
	if err != nil || polvo.ShiftBetweenValues != 1 {
		t.Fatalf("profile override lost: %+v %v", polvo, err)
	}

	cfg.Data.DatasetFormat = "json"
	if err := SaveConfig(cfg, path); err == nil {
		t.Fatalf("invalid config must not be saved")
	}
	if again, _, err := LoadFrom(path); err != nil || again.Data.DatasetFormat != "csv" {
		t.Fatalf("previous config must stay in place: %+v %v", again, err)
	}
}
