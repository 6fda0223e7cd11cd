package parser

import (
	"produccion/internal/grid"
	"produccion/internal/model"
)

// Extract 按模板从工作表中抽取原始行
func Extract(g *grid.Grid, p Profile) ([]model.RawRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	header, ok := g.FindFirst(grid.Text(p.IndexLabel))
	if !ok {
		return nil, &HeaderNotFoundError{Label: p.IndexLabel}
	}

	cols := make([]int, len(p.ValueColumns))
	for i, label := range p.ValueColumns {
		col, ok := locateColumn(g, header.Row, label, p.ColumnSearch)
		if !ok {
			return nil, &ColumnNotFoundError{Label: label}
		}
		cols[i] = col
	}

	rows := []model.RawRow{}
	last := header.Row + p.maxRows()
	if last > g.MaxRow() {
		last = g.MaxRow()
	}
	for r := header.Row + 1; r <= last; r++ {
		idx := g.Cell(r, header.Col)
		if isMissingIndex(idx) {
			continue
		}

		values := make([]grid.Value, len(cols))
		allEmpty := true
		for i, col := range cols {
			values[i] = g.Cell(r+p.ShiftBetweenValues, col)
			if !values[i].IsEmpty() {
				allEmpty = false
			}
		}
		if allEmpty {
			continue
		}

		sku := NormalizeSKU(idx)
		if sku == "" {
			continue
		}

		row := model.RawRow{Row: r, Sku: sku}
		for i, name := range p.OutputNames[1:] {
			switch name {
			case OutputFabricado:
				row.Fabricado = values[i]
			case OutputProgramado:
				row.Programado = values[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func locateColumn(g *grid.Grid, headerRow int, label string, search ColumnSearch) (int, bool) {
	target := grid.Text(label)
	if search == SearchHeaderRow {
		found := g.FindAllInRow(headerRow, target)
		if len(found) == 0 {
			return 0, false
		}
		return found[0].Col, true
	}
	c, ok := g.FindFirst(target)
	return c.Col, ok
}

// isMissingIndex 索引为空或恰好为数字 0
func isMissingIndex(v grid.Value) bool {
	switch v.Kind {
	case grid.KindEmpty:
		return true
	case grid.KindNumber:
		return v.Num == 0
	case grid.KindText:
		return v.Str == "0" || v.Str == ""
	}
	return false
}
