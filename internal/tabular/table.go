// Package tabular 读写带表头的二维表文件（csv / xlsx / parquet）
package tabular

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedFileType 扩展名不在 csv / xlsx / parquet 之内
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Format 文件格式
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// ParseFormat 校验格式名
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatCSV, FormatXLSX, FormatParquet:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, s)
}

// FormatOf 由路径扩展名判断格式
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Kind 列类型
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
)

// DateLayout 日期列的文本格式
const DateLayout = "2006-01-02"

// Column 列定义
type Column struct {
	Name string
	Kind Kind
}

// Table 以文本保存单元格的表；日期列使用 DateLayout
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Names 列名
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index 列名到下标
func (t *Table) Index() map[string]int {
	out := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		out[c.Name] = i
	}
	return out
}

// SchemaMismatchError 文件列与期望列不一致
type SchemaMismatchError struct {
	Path     string
	Expected []string
	Actual   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: expected [%s], got [%s]",
		e.Path, strings.Join(e.Expected, ", "), strings.Join(e.Actual, ", "))
}

// ErrSchemaMismatch 供 errors.Is 判断
var ErrSchemaMismatch = errors.New("schema mismatch")

func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

// CheckColumns 要求列集合相同（顺序无关）
func CheckColumns(path string, expected, actual []string) error {
	if sameSet(expected, actual) {
		return nil
	}
	return &SchemaMismatchError{Path: path, Expected: expected, Actual: actual}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}

// Read 按扩展名读取整表
func Read(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return readCSV(path)
	case FormatXLSX:
		return readXLSX(path)
	default:
		return readParquet(path)
	}
}

// ReadHeader 只读取列名
func ReadHeader(path string) ([]string, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	return t.Names(), nil
}

// Write 原子写入：先写同目录临时文件，再 rename 覆盖
func Write(path string, t *Table) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	ext := filepath.Ext(path)
	tmp := strings.TrimSuffix(path, ext) + ".tmp-" + uuid.New().String() + ext

	switch format {
	case FormatCSV:
		err = writeCSV(tmp, t)
	case FormatXLSX:
		err = writeXLSX(tmp, t)
	default:
		err = writeParquet(tmp, t)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Exists 文件是否存在
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
