package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Tipo 产品类型（对应一种模板）
type Tipo string

const (
	TipoLiquido Tipo = "liquido"
	TipoPolvo   Tipo = "polvo"
	TipoLerma   Tipo = "lerma"
)

// Tipos 全部产品类型
var Tipos = []Tipo{TipoLiquido, TipoPolvo, TipoLerma}

// ParseTipo 解析产品类型
func ParseTipo(s string) (Tipo, error) {
	t := Tipo(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tipos {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tipo %q", s)
}

// Estatus 生产状态
type Estatus string

const (
	EstatusCompletado Estatus = "COMPLETADO"
	EstatusPendiente  Estatus = "PENDIENTE"
	EstatusSuperado   Estatus = "SUPERADO"
)

// ProductionRecord 一个 sku 在一周内的计划与实际产量
type ProductionRecord struct {
	Sku         string    `json:"sku"`
	Fabricado   float64   `json:"fabricado"`
	Programado  float64   `json:"programado"`
	Fecha       time.Time `json:"fecha"`
	Semana      int       `json:"semana"`
	Anio        int       `json:"anio"`
	Tipo        Tipo      `json:"tipo"`
	Descripcion string    `json:"descripcion"`
	Familia     string    `json:"familia"`
	Marca       string    `json:"marca"`
}

// RecordKey 去重键：sku + ISO 周 + ISO 年
type RecordKey struct {
	Sku    string
	Semana int
	Anio   int
}

// NewRecord 创建记录，周次与年份取 fecha 的 ISO 周
func NewRecord(sku string, fabricado, programado float64, fecha time.Time, tipo Tipo) ProductionRecord {
	anio, semana := fecha.ISOWeek()
	return ProductionRecord{
		Sku:        sku,
		Fabricado:  fabricado,
		Programado: programado,
		Fecha:      fecha,
		Semana:     semana,
		Anio:       anio,
		Tipo:       tipo,
	}
}

// Key 去重键
func (r ProductionRecord) Key() RecordKey {
	return RecordKey{Sku: r.Sku, Semana: r.Semana, Anio: r.Anio}
}

// Ratio 完成比例；计划量为 0 时不可计算
func (r ProductionRecord) Ratio() (float64, bool) {
	if r.Programado == 0 {
		return 0, false
	}
	return r.Fabricado / r.Programado, true
}

// Porcentaje 完成比例，保留两位小数；不可计算时为 0
func (r ProductionRecord) Porcentaje() float64 {
	ratio, ok := r.Ratio()
	if !ok {
		return 0
	}
	return Round2(ratio)
}

// Terminado 实际产量 >= 计划量
func (r ProductionRecord) Terminado() bool {
	return r.Fabricado >= r.Programado
}

// Estatus 按两位小数的完成比例判定状态
func (r ProductionRecord) Estatus() Estatus {
	if r.Programado == 0 {
		if r.Fabricado > 0 {
			return EstatusSuperado
		}
		return EstatusCompletado
	}
	p := r.Porcentaje()
	switch {
	case p == 1:
		return EstatusCompletado
	case p < 1:
		return EstatusPendiente
	default:
		return EstatusSuperado
	}
}

// Round2 四舍五入保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
