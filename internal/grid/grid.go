package grid

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound 工作表不存在
var ErrSheetNotFound = errors.New("sheet not found")

// Coord 单元格坐标，行列均从 1 开始
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	name, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", c.Row, c.Col)
	}
	return name
}

// Sheet 工作表选择器：Name 非空时按名称，否则按 Index（从 0 开始）
type Sheet struct {
	Index int    `json:"index" toml:"index"`
	Name  string `json:"name,omitempty" toml:"name"`
}

func (s Sheet) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("#%d", s.Index)
}

// Grid 工作表的只读二维视图
type Grid struct {
	sheet  string
	rows   [][]Value
	maxCol int
}

// New 由内存中的行构造 Grid（第一行对应第 1 行）
func New(sheet string, rows [][]Value) *Grid {
	g := &Grid{sheet: sheet, rows: rows}
	for _, r := range rows {
		if len(r) > g.maxCol {
			g.maxCol = len(r)
		}
	}
	return g
}

// LoadFile 从 xlsx 文件路径加载指定工作表
func LoadFile(path string, sheet Sheet) (*Grid, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer fh.Close()
	return Load(fh, sheet)
}

// Load 从 xlsx 流加载指定工作表
func Load(r io.Reader, sheet Sheet) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return FromFile(f, sheet)
}

// FromFile 从已打开的 excelize 工作簿读取指定工作表
func FromFile(f *excelize.File, sheet Sheet) (*Grid, error) {
	name, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	c := &cellReader{f: f, sheet: name, date1904: date1904, dateStyles: make(map[int]bool)}
	rows := make([][]Value, len(raw))
	for i, line := range raw {
		row := make([]Value, len(line))
		for j, s := range line {
			if s == "" {
				continue
			}
			row[j] = c.read(i+1, j+1, s)
		}
		rows[i] = row
	}

	return New(name, rows), nil
}

func resolveSheet(f *excelize.File, sheet Sheet) (string, error) {
	list := f.GetSheetList()
	if sheet.Name != "" {
		for _, n := range list {
			if n == sheet.Name {
				return n, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrSheetNotFound, sheet.Name)
	}
	if sheet.Index < 0 || sheet.Index >= len(list) {
		return "", fmt.Errorf("%w: index %d of %d", ErrSheetNotFound, sheet.Index, len(list))
	}
	return list[sheet.Index], nil
}

// SheetName 工作表名称
func (g *Grid) SheetName() string { return g.sheet }

// MaxRow 最大行号
func (g *Grid) MaxRow() int { return len(g.rows) }

// MaxCol 最大列号
func (g *Grid) MaxCol() int { return g.maxCol }

// Cell 读取单元格，越界返回空值
func (g *Grid) Cell(row, col int) Value {
	if row < 1 || row > len(g.rows) {
		return Empty()
	}
	r := g.rows[row-1]
	if col < 1 || col > len(r) {
		return Empty()
	}
	return r[col-1]
}

// At 按坐标读取单元格
func (g *Grid) At(c Coord) Value {
	return g.Cell(c.Row, c.Col)
}

type cellReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (c *cellReader) read(row, col int, raw string) Value {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Text(raw)
	}
	typ, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return Text(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return Text(raw)
	case excelize.CellTypeFormula:
		// 公式单元格只取缓存文本
		return Text(raw)
	case excelize.CellTypeDate:
		for _, layout := range []string{"2006-01-02T15:04:05Z", "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return Date(t)
			}
		}
		return Text(raw)
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Text(raw)
	}
	if c.isDateCell(cell) {
		if t, err := excelize.ExcelDateToTime(num, c.date1904); err == nil {
			return Date(t)
		}
	}
	return Number(num)
}

func (c *cellReader) isDateCell(cell string) bool {
	styleID, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if v, ok := c.dateStyles[styleID]; ok {
		return v
	}
	isDate := false
	if style, err := c.f.GetStyle(styleID); err == nil && style != nil {
		isDate = IsDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	c.dateStyles[styleID] = isDate
	return isDate
}

// IsDateFormat 判断数字格式是否为日期格式
func IsDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return isDateFormatCode(*custom)
	}
	switch {
	case numFmt >= 14 && numFmt <= 22,
		numFmt >= 27 && numFmt <= 36,
		numFmt >= 45 && numFmt <= 47,
		numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	s := strings.ReplaceAll(b.String(), "general", "")
	return strings.ContainsAny(s, "dmy")
}
