package exporter

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"produccion/internal/calculator"
	"produccion/internal/model"
)

// 报表样式
const (
	HeaderFill  = "#023E8A"
	HeaderColor = "#EDF2F4"
	maxColWidth = 80
)

// Exporter 报表导出器，通过临时文件生成 xlsx 字节
type Exporter struct {
	tempDir string
}

// NewExporter 创建导出器；tempDir 为空时使用系统临时目录
func NewExporter(tempDir string) *Exporter {
	return &Exporter{tempDir: tempDir}
}

// Export 生成单表报表：表头着色加粗居中，前 boldCols 列加粗并在最后一列加右边框，列宽按内容自适应
func (e *Exporter) Export(sheetName string, headers []string, rows [][]any, boldCols int) ([]byte, error) {
	f, err := Build(sheetName, headers, rows, boldCols)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tmp, err := os.CreateTemp(e.tempDir, "reporte-*.xlsx")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp report: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(name)

	if err := f.SaveAs(name); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return data, nil
}

// Build 构建报表工作簿
func Build(sheetName string, headers []string, rows [][]any, boldCols int) (*excelize.File, error) {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeRows(f, sheetName, headers, rows); err != nil {
		f.Close()
		return nil, err
	}
	if err := applyStyles(f, sheetName, len(headers), len(rows), boldCols); err != nil {
		f.Close()
		return nil, err
	}
	if err := fitColumns(f, sheetName, headers, rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

func applyStyles(f *excelize.File, sheet string, nCols, nRows, boldCols int) error {
	if nCols == 0 {
		return nil
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: HeaderColor},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{HeaderFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(nCols, 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if boldCols <= 0 || boldCols > nCols || nRows == 0 {
		return nil
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create bold style: %w", err)
	}
	edgeStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    []excelize.Border{{Type: "right", Color: "#000000", Style: 1}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create border style: %w", err)
	}

	if boldCols > 1 {
		to, _ := excelize.CoordinatesToCellName(boldCols-1, nRows+1)
		if err := f.SetCellStyle(sheet, "A2", to, boldStyle); err != nil {
			return fmt.Errorf("failed to style bold columns: %w", err)
		}
	}
	from, _ := excelize.CoordinatesToCellName(boldCols, 2)
	to, _ := excelize.CoordinatesToCellName(boldCols, nRows+1)
	if err := f.SetCellStyle(sheet, from, to, edgeStyle); err != nil {
		return fmt.Errorf("failed to style border column: %w", err)
	}
	return nil
}

// 列宽 = 最长内容 + 2
func fitColumns(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for c, h := range headers {
		width := utf8.RuneCountInString(h)
		for _, row := range rows {
			if c < len(row) {
				if n := utf8.RuneCountInString(cellText(row[c])); n > width {
					width = n
				}
			}
		}
		width += 2
		if width > maxColWidth {
			width = maxColWidth
		}
		col, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

// RecordHeaders 生产记录报表表头
var RecordHeaders = []string{
	"sku", "descripcion", "familia", "marca", "tipo", "fecha", "semana", "anio",
	"fabricado", "programado", "porcentaje", "estatus",
}

// RecordRows 生产记录转为报表行
func RecordRows(records []model.ProductionRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.Sku, r.Descripcion, r.Familia, r.Marca, string(r.Tipo),
			r.Fecha.Format("2006-01-02"), r.Semana, r.Anio,
			r.Fabricado, r.Programado, r.Porcentaje(), string(r.Estatus()),
		})
	}
	return rows
}

// RejectionHeaders 拒绝行报表表头
var RejectionHeaders = []string{"archivo", "fila", "sku", "motivo"}

// RejectionRows 拒绝行转为报表行
func RejectionRows(rejected []model.RejectedRow) [][]any {
	rows := make([][]any, 0, len(rejected))
	for _, r := range rejected {
		rows = append(rows, []any{r.File, r.Row, r.Sku, r.Reason})
	}
	return rows
}

// IntervalHeaders 区间产品报表表头
var IntervalHeaders = []string{
	"sku", "descripcion", "inicio_intervalo", "fin_intervalo", "marca", "familia", "tipo",
	"programado", "fabricado", "cumplimiento",
}

// IntervalRows 区间产品转为报表行
func IntervalRows(products []calculator.IntervalProduct) [][]any {
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{
			p.Sku, p.Descripcion, p.InicioIntervalo, p.FinIntervalo, p.Marca, p.Familia, string(p.Tipo),
			p.Programado, p.Fabricado, p.Cumplimiento,
		})
	}
	return rows
}

// ExportRecords 导出生产记录
func (e *Exporter) ExportRecords(records []model.ProductionRecord) ([]byte, error) {
	return e.Export("produccion", RecordHeaders, RecordRows(records), 2)
}

// ExportRejections 导出拒绝行
func (e *Exporter) ExportRejections(rejected []model.RejectedRow) ([]byte, error) {
	return e.Export("rechazados", RejectionHeaders, RejectionRows(rejected), 1)
}

// ExportInterval 导出区间产品汇总
func (e *Exporter) ExportInterval(products []calculator.IntervalProduct) ([]byte, error) {
	return e.Export("intervalo", IntervalHeaders, IntervalRows(products), 2)
}
