package calculator

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"produccion/internal/model"
)

// ErrNotReady 过滤后没有记录，无法计算指标
var ErrNotReady = errors.New("no production records for the selected filter and date range")

// Field 过滤维度
type Field string

const (
	FieldFamilia Field = "familia"
	FieldMarca   Field = "marca"
	FieldSku     Field = "sku"
)

// ParseField 解析过滤维度
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldFamilia, FieldMarca, FieldSku:
		return f, nil
	}
	return "", fmt.Errorf("invalid filter field %q", s)
}

// Filter 单维度等值过滤
type Filter struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

func (f Filter) match(r model.ProductionRecord) bool {
	switch f.Field {
	case FieldFamilia:
		return r.Familia == f.Value
	case FieldMarca:
		return r.Marca == f.Value
	case FieldSku:
		return r.Sku == f.Value
	}
	return false
}

// ProductCompletion 单个 sku 在区间内的累计完成情况
type ProductCompletion struct {
	Sku          string  `json:"sku"`
	Fabricado    float64 `json:"fabricado"`
	Programado   float64 `json:"programado"`
	Cumplimiento float64 `json:"cumplimiento"`
	Terminado    bool    `json:"terminado"`

	ratio float64
}

// KPIs 过滤结果的汇总指标
type KPIs struct {
	UniqueSkus            int                `json:"unique_skus"`
	SkusTerminados        int                `json:"skus_terminados"`
	KgltProgramados       float64            `json:"kglt_programados"`
	KgltFabricados        float64            `json:"kglt_fabricados"`
	CumplimientoKglt      float64            `json:"cumplimiento_kglt"`
	CumplimientoProductos float64            `json:"cumplimiento_productos"`
	BestProduct           *ProductCompletion `json:"best_product"`
	WorstProduct          *ProductCompletion `json:"worst_product"`
}

// Source 数据集读取接口
type Source interface {
	Load() ([]model.ProductionRecord, error)
}

// Engine 基于数据集快照的指标计算器
type Engine struct {
	source Source
}

// NewEngine 创建计算器
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// KPIs 读取数据集并计算指标
func (e *Engine) KPIs(filter Filter, from, to time.Time) (*KPIs, error) {
	records, err := e.source.Load()
	if err != nil {
		return nil, err
	}
	return ComputeKPIs(records, filter, from, to)
}

// FilterRecords 按维度过滤，并保留 from <= fecha <= to 的记录
func FilterRecords(records []model.ProductionRecord, filter Filter, from, to time.Time) []model.ProductionRecord {
	out := []model.ProductionRecord{}
	for _, r := range records {
		if !filter.match(r) {
			continue
		}
		if r.Fecha.Before(from) || r.Fecha.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ComputeKPIs 计算指标；过滤结果为空时返回 ErrNotReady
func ComputeKPIs(records []model.ProductionRecord, filter Filter, from, to time.Time) (*KPIs, error) {
	filtered := FilterRecords(records, filter, from, to)
	if len(filtered) == 0 {
		return nil, ErrNotReady
	}

	k := &KPIs{}
	skus := map[string]struct{}{}
	for _, r := range filtered {
		skus[r.Sku] = struct{}{}
		k.KgltFabricados += r.Fabricado
		k.KgltProgramados += r.Programado
	}
	k.UniqueSkus = len(skus)
	if k.KgltProgramados != 0 {
		k.CumplimientoKglt = model.Round2(k.KgltFabricados / k.KgltProgramados * 100)
	}

	table := CompletionBySku(filtered)
	if len(table) > 0 {
		for _, p := range table {
			if p.Terminado {
				k.SkusTerminados++
			}
		}
		k.CumplimientoProductos = model.Round2(float64(k.SkusTerminados) / float64(len(table)) * 100)
		best, worst := table[0], table[len(table)-1]
		k.BestProduct, k.WorstProduct = &best, &worst
	}
	return k, nil
}

// CompletionBySku 按 sku 累计产量并计算完成率；计划量为 0 的 sku 被丢弃。
// 结果按完成率降序，完成率相同按 sku 升序
func CompletionBySku(records []model.ProductionRecord) []ProductCompletion {
	bySku := map[string]*ProductCompletion{}
	for _, r := range records {
		p, ok := bySku[r.Sku]
		if !ok {
			p = &ProductCompletion{Sku: r.Sku}
			bySku[r.Sku] = p
		}
		p.Fabricado += r.Fabricado
		p.Programado += r.Programado
	}

	out := make([]ProductCompletion, 0, len(bySku))
	for _, p := range bySku {
		if p.Programado == 0 {
			continue
		}
		p.ratio = p.Fabricado / p.Programado
		p.Cumplimiento = model.Round2(p.ratio * 100)
		p.Terminado = p.Fabricado >= p.Programado
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ratio != out[j].ratio {
			return out[i].ratio > out[j].ratio
		}
		return out[i].Sku < out[j].Sku
	})
	return out
}
