package model

import "produccion/internal/grid"

// RawRow 抽取出但尚未校验的一行
type RawRow struct {
	Row        int        `json:"row"`
	Sku        string     `json:"sku"`
	Fabricado  grid.Value `json:"-"`
	Programado grid.Value `json:"-"`
}
