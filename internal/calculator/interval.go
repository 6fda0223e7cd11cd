package calculator

import (
	"sort"
	"time"

	"produccion/internal/model"
)

// DisplayDateLayout 对外展示的日期格式（DD-MM-YYYY）
const DisplayDateLayout = "02-01-2006"

// InInterval 保留 from <= fecha < to 的记录
func InInterval(records []model.ProductionRecord, from, to time.Time) []model.ProductionRecord {
	out := []model.ProductionRecord{}
	for _, r := range records {
		if !r.Fecha.Before(from) && r.Fecha.Before(to) {
			out = append(out, r)
		}
	}
	return out
}

// IntervalProduct 区间内一个产品的汇总
type IntervalProduct struct {
	InicioIntervalo string     `json:"inicio_intervalo"`
	FinIntervalo    string     `json:"fin_intervalo"`
	Sku             string     `json:"sku"`
	Descripcion     string     `json:"descripcion"`
	Marca           string     `json:"marca"`
	Familia         string     `json:"familia"`
	Tipo            model.Tipo `json:"tipo"`
	Programado      float64    `json:"programado"`
	Fabricado       float64    `json:"fabricado"`
	Cumplimiento    float64    `json:"cumplimiento"`
	Porcentajes     []float64  `json:"porcentajes"`
}

// ProductsOnInterval 按 (sku, 描述, 品牌, 家族, 类型) 汇总区间内的产量，
// 按完成率升序（计划量为 0 的排在最后），完成率相同按 sku 升序
func ProductsOnInterval(records []model.ProductionRecord, from, to time.Time) []IntervalProduct {
	type key struct {
		sku, descripcion, marca, familia string
		tipo                             model.Tipo
	}
	inicio := from.Format(DisplayDateLayout)
	fin := to.AddDate(0, 0, -1).Format(DisplayDateLayout)

	groups := map[key]*IntervalProduct{}
	order := []key{}
	for _, r := range InInterval(records, from, to) {
		k := key{r.Sku, r.Descripcion, r.Marca, r.Familia, r.Tipo}
		p, ok := groups[k]
		if !ok {
			p = &IntervalProduct{
				InicioIntervalo: inicio,
				FinIntervalo:    fin,
				Sku:             r.Sku,
				Descripcion:     r.Descripcion,
				Marca:           r.Marca,
				Familia:         r.Familia,
				Tipo:            r.Tipo,
				Porcentajes:     []float64{},
			}
			groups[k] = p
			order = append(order, k)
		}
		p.Programado += r.Programado
		p.Fabricado += r.Fabricado
		p.Porcentajes = append(p.Porcentajes, r.Porcentaje())
	}

	out := make([]IntervalProduct, 0, len(order))
	computable := map[int]bool{}
	for _, k := range order {
		p := groups[k]
		if p.Programado != 0 {
			p.Cumplimiento = model.Round2(p.Fabricado / p.Programado)
			computable[len(out)] = true
		}
		out = append(out, *p)
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if computable[i] != computable[j] {
			return computable[i]
		}
		if out[i].Cumplimiento != out[j].Cumplimiento {
			return out[i].Cumplimiento < out[j].Cumplimiento
		}
		return out[i].Sku < out[j].Sku
	})
	sorted := make([]IntervalProduct, len(out))
	for n, i := range idx {
		sorted[n] = out[i]
	}
	return sorted
}

// CompletionOnInterval 区间内已完成记录的占比（百分比，两位小数）
func CompletionOnInterval(records []model.ProductionRecord, from, to time.Time) (float64, error) {
	in := InInterval(records, from, to)
	if len(in) == 0 {
		return 0, ErrNotReady
	}
	done := 0
	for _, r := range in {
		if r.Terminado() {
			done++
		}
	}
	return model.Round2(float64(done) / float64(len(in)) * 100), nil
}

// ProductCounts 区间内产品数量
type ProductCounts struct {
	Total    int `json:"total"`
	Catalogo int `json:"catalogo"`
	Externos int `json:"externos"`
}

// CountProducts 统计区间内不同 sku 数，区分外部产品
func CountProducts(records []model.ProductionRecord, from, to time.Time) ProductCounts {
	all := map[string]struct{}{}
	externos := map[string]struct{}{}
	for _, r := range InInterval(records, from, to) {
		all[r.Sku] = struct{}{}
		if r.Familia == model.FamiliaExterno {
			externos[r.Sku] = struct{}{}
		}
	}
	return ProductCounts{
		Total:    len(all),
		Catalogo: len(all) - len(externos),
		Externos: len(externos),
	}
}

// LastUpdateByTipo 每种类型最近一周的日期（DD-MM-YYYY）
func LastUpdateByTipo(records []model.ProductionRecord) map[model.Tipo]string {
	latest := map[model.Tipo]time.Time{}
	for _, r := range records {
		if cur, ok := latest[r.Tipo]; !ok || r.Fecha.After(cur) {
			latest[r.Tipo] = r.Fecha
		}
	}
	out := make(map[model.Tipo]string, len(latest))
	for t, d := range latest {
		out[t] = d.Format(DisplayDateLayout)
	}
	return out
}

// SkuHistory 一个 sku 的全部记录，按年份和周次排序
func SkuHistory(records []model.ProductionRecord, sku string) []model.ProductionRecord {
	out := []model.ProductionRecord{}
	for _, r := range records {
		if r.Sku == sku {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Anio != out[j].Anio {
			return out[i].Anio < out[j].Anio
		}
		return out[i].Semana < out[j].Semana
	})
	return out
}

// Option 可选过滤值
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AvailableValues 某一维度的全部取值（排序去重）；sku 的标签附带描述
func AvailableValues(records []model.ProductionRecord, field Field) []Option {
	seen := map[string]Option{}
	for _, r := range records {
		var o Option
		switch field {
		case FieldFamilia:
			o = Option{Value: r.Familia, Label: r.Familia}
		case FieldMarca:
			o = Option{Value: r.Marca, Label: r.Marca}
		case FieldSku:
			o = Option{Value: r.Sku, Label: r.Sku + " - " + r.Descripcion}
		default:
			return []Option{}
		}
		if o.Value == "" {
			continue
		}
		if _, ok := seen[o.Value]; !ok {
			seen[o.Value] = o
		}
	}
	out := make([]Option, 0, len(seen))
	for _, o := range seen {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// AvailableDates 过滤值对应的最早与最晚日期
func AvailableDates(records []model.ProductionRecord, filter Filter) (time.Time, time.Time, error) {
	var min, max time.Time
	found := false
	for _, r := range records {
		if !filter.match(r) {
			continue
		}
		if !found || r.Fecha.Before(min) {
			min = r.Fecha
		}
		if !found || r.Fecha.After(max) {
			max = r.Fecha
		}
		found = true
	}
	if !found {
		return time.Time{}, time.Time{}, ErrNotReady
	}
	return min, max, nil
}

// Week 一个 ISO 周
type Week struct {
	Anio   int       `json:"anio"`
	Semana int       `json:"semana"`
	Fecha  time.Time `json:"fecha"`
}

// AvailableWeeks 指定类型已有数据的周，按时间升序；tipo 为空表示全部
func AvailableWeeks(records []model.ProductionRecord, tipo model.Tipo) []Week {
	seen := map[[2]int]Week{}
	for _, r := range records {
		if tipo != "" && r.Tipo != tipo {
			continue
		}
		k := [2]int{r.Anio, r.Semana}
		if w, ok := seen[k]; !ok || r.Fecha.Before(w.Fecha) {
			seen[k] = Week{Anio: r.Anio, Semana: r.Semana, Fecha: r.Fecha}
		}
	}
	out := make([]Week, 0, len(seen))
	for _, w := range seen {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Anio != out[j].Anio {
			return out[i].Anio < out[j].Anio
		}
		return out[i].Semana < out[j].Semana
	})
	return out
}
