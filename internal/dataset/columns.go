package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"produccion/internal/model"
	"produccion/internal/tabular"
)

// Columns 数据集文件的列；porcentaje / terminado / estatus 为派生列，读取时重新计算
var Columns = []tabular.Column{
	{Name: "sku", Kind: tabular.KindString},
	{Name: "descripcion", Kind: tabular.KindString},
	{Name: "familia", Kind: tabular.KindString},
	{Name: "marca", Kind: tabular.KindString},
	{Name: "tipo", Kind: tabular.KindString},
	{Name: "fecha", Kind: tabular.KindDate},
	{Name: "semana", Kind: tabular.KindNumber},
	{Name: "anio", Kind: tabular.KindNumber},
	{Name: "fabricado", Kind: tabular.KindNumber},
	{Name: "programado", Kind: tabular.KindNumber},
	{Name: "porcentaje", Kind: tabular.KindNumber},
	{Name: "terminado", Kind: tabular.KindNumber},
	{Name: "estatus", Kind: tabular.KindString},
}

// ColumnNames 列名
func ColumnNames() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = c.Name
	}
	return out
}

func toTable(records []model.ProductionRecord) *tabular.Table {
	t := &tabular.Table{Columns: Columns, Rows: make([][]string, 0, len(records))}
	for _, r := range records {
		terminado := "0"
		if r.Terminado() {
			terminado = "1"
		}
		t.Rows = append(t.Rows, []string{
			r.Sku,
			r.Descripcion,
			r.Familia,
			r.Marca,
			string(r.Tipo),
			r.Fecha.Format(tabular.DateLayout),
			strconv.Itoa(r.Semana),
			strconv.Itoa(r.Anio),
			formatFloat(r.Fabricado),
			formatFloat(r.Programado),
			formatFloat(r.Porcentaje()),
			terminado,
			string(r.Estatus()),
		})
	}
	return t
}

func fromTable(path string, t *tabular.Table) ([]model.ProductionRecord, error) {
	if err := tabular.CheckColumns(path, ColumnNames(), t.Names()); err != nil {
		return nil, err
	}
	idx := t.Index()

	out := make([]model.ProductionRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		get := func(name string) string { return strings.TrimSpace(row[idx[name]]) }

		fecha, err := parseDate(get("fecha"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid fecha: %w", path, i+2, err)
		}
		fabricado, err := strconv.ParseFloat(get("fabricado"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid fabricado: %w", path, i+2, err)
		}
		programado, err := strconv.ParseFloat(get("programado"), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid programado: %w", path, i+2, err)
		}

		r := model.NewRecord(get("sku"), fabricado, programado, fecha, model.Tipo(get("tipo")))
		r.Descripcion = get("descripcion")
		r.Familia = get("familia")
		r.Marca = get("marca")
		out = append(out, r)
	}
	return out, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{tabular.DateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
