package tabular

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"produccion/internal/grid"
)

const xlsxSheet = "Sheet1"

func readXLSX(path string) (*Table, error) {
	g, err := grid.LoadFile(path, grid.Sheet{})
	if err != nil {
		return nil, err
	}
	if g.MaxRow() == 0 {
		return &Table{}, nil
	}

	width := 0
	for c := 1; c <= g.MaxCol(); c++ {
		if !g.Cell(1, c).IsEmpty() {
			width = c
		}
	}

	t := &Table{Columns: make([]Column, width)}
	for c := 1; c <= width; c++ {
		t.Columns[c-1] = Column{Name: g.Cell(1, c).String()}
	}
	for r := 2; r <= g.MaxRow(); r++ {
		row := make([]string, width)
		empty := true
		for c := 1; c <= width; c++ {
			v := g.Cell(r, c)
			if !v.IsEmpty() {
				empty = false
			}
			row[c-1] = v.String()
		}
		if !empty {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

func writeXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			if j >= len(row) || row[j] == "" {
				values[j] = nil
				continue
			}
			values[j] = typedCell(col.Kind, row[j], dateStyle)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func typedCell(kind Kind, s string, dateStyle int) interface{} {
	switch kind {
	case KindNumber:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case KindDate:
		if d, err := time.Parse(DateLayout, s); err == nil {
			return excelize.Cell{StyleID: dateStyle, Value: d}
		}
	}
	return s
}
