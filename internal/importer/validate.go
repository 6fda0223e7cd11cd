package importer

import (
	"time"

	"produccion/internal/model"
	"produccion/internal/parser"
)

// Validate 将原始行划分为有效记录与拒绝行，每行恰好落入其一。
// 先检查数量，再检查目录
func Validate(file string, rows []model.RawRow, fecha time.Time, tipo model.Tipo, catalog model.Catalog) ([]model.ProductionRecord, []model.RejectedRow) {
	valid := make([]model.ProductionRecord, 0, len(rows))
	rejected := []model.RejectedRow{}

	for _, row := range rows {
		fabricado, okFab := parser.ParseQuantity(row.Fabricado)
		programado, okProg := parser.ParseQuantity(row.Programado)
		if !okFab || !okProg {
			rejected = append(rejected, model.RejectedRow{File: file, Row: row.Row, Sku: row.Sku, Reason: model.ReasonCantidades})
			continue
		}

		entry, ok := catalog.Lookup(row.Sku)
		if !ok {
			rejected = append(rejected, model.RejectedRow{File: file, Row: row.Row, Sku: row.Sku, Reason: model.ReasonSkuInvalido})
			continue
		}

		rec := model.NewRecord(row.Sku, fabricado, programado, fecha, tipo)
		rec.Descripcion = entry.Descripcion
		rec.Familia = entry.Familia
		rec.Marca = entry.Marca
		valid = append(valid, rec)
	}

	return valid, rejected
}
