package parser

import (
	"fmt"

	"produccion/internal/grid"
	"produccion/internal/model"
)

// ColumnSearch 数值列标题的查找范围
type ColumnSearch string

const (
	// SearchGlobal 全表查找，取第一个匹配
	SearchGlobal ColumnSearch = "global"
	// SearchHeaderRow 仅在索引列标题所在行查找
	SearchHeaderRow ColumnSearch = "header_row"
)

// DefaultMaxRowsToScan 标题行以下扫描的最大行数
const DefaultMaxRowsToScan = 250

// Profile 一种工作簿模板的布局描述
type Profile struct {
	Tipo               model.Tipo
	IndexLabel         string
	ValueColumns       []string
	OutputNames        []string
	DateLabels         []string
	Sheet              grid.Sheet
	ShiftBetweenValues int
	MaxRowsToScan      int
	ColumnSearch       ColumnSearch
}

// 输出列名
const (
	OutputSku        = "sku"
	OutputFabricado  = "fabricado"
	OutputProgramado = "programado"
)

var builtinProfiles = map[model.Tipo]Profile{
	model.TipoLiquido: {
		Tipo:         model.TipoLiquido,
		IndexLabel:   "CLAVE",
		ValueColumns: []string{"Fabricado", "Programa"},
		OutputNames:  []string{OutputSku, OutputFabricado, OutputProgramado},
		DateLabels:   []string{"DEL:", "Del:", "DEL", "del"},
	},
	model.TipoPolvo: {
		Tipo:         model.TipoPolvo,
		IndexLabel:   "CLAVE",
		ValueColumns: []string{"KG FABRICADOS", "KG PROGRAMADOS"},
		OutputNames:  []string{OutputSku, OutputFabricado, OutputProgramado},
		DateLabels:   []string{"Fecha", "fecha", "Fecha Inicio"},
	},
	model.TipoLerma: {
		Tipo:         model.TipoLerma,
		IndexLabel:   "Clave",
		ValueColumns: []string{"Producido", "Programado por \nsemana"},
		OutputNames:  []string{OutputSku, OutputFabricado, OutputProgramado},
		DateLabels:   []string{"Fecha", "fecha", "fecha:", "Fecha:"},
	},
}

// ProfileFor 返回内置模板（副本）
func ProfileFor(tipo model.Tipo) (Profile, error) {
	p, ok := builtinProfiles[tipo]
	if !ok {
		return Profile{}, fmt.Errorf("no profile for tipo %q", tipo)
	}
	return p.clone(), nil
}

// WithScan 覆盖扫描参数，返回新模板
func (p Profile) WithScan(maxRows int, search ColumnSearch) Profile {
	out := p.clone()
	if maxRows > 0 {
		out.MaxRowsToScan = maxRows
	}
	if search != "" {
		out.ColumnSearch = search
	}
	return out
}

// Validate 检查模板自洽
func (p Profile) Validate() error {
	if p.IndexLabel == "" {
		return fmt.Errorf("profile %s: empty index label", p.Tipo)
	}
	if len(p.ValueColumns) == 0 {
		return fmt.Errorf("profile %s: no value columns", p.Tipo)
	}
	if len(p.OutputNames) != len(p.ValueColumns)+1 {
		return fmt.Errorf("profile %s: %d output names for %d value columns", p.Tipo, len(p.OutputNames), len(p.ValueColumns))
	}
	if !contains(p.OutputNames[1:], OutputFabricado) || !contains(p.OutputNames[1:], OutputProgramado) {
		return fmt.Errorf("profile %s: output names must map %s and %s", p.Tipo, OutputFabricado, OutputProgramado)
	}
	if len(p.DateLabels) == 0 {
		return fmt.Errorf("profile %s: no date labels", p.Tipo)
	}
	switch p.ColumnSearch {
	case "", SearchGlobal, SearchHeaderRow:
	default:
		return fmt.Errorf("profile %s: unknown column search %q", p.Tipo, p.ColumnSearch)
	}
	return nil
}

func (p Profile) maxRows() int {
	if p.MaxRowsToScan > 0 {
		return p.MaxRowsToScan
	}
	return DefaultMaxRowsToScan
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p Profile) clone() Profile {
	out := p
	out.ValueColumns = append([]string(nil), p.ValueColumns...)
	out.OutputNames = append([]string(nil), p.OutputNames...)
	out.DateLabels = append([]string(nil), p.DateLabels...)
	return out
}
