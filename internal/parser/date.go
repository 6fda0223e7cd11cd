package parser

import (
	"errors"
	"time"

	"produccion/internal/grid"
)

// ResolveDate 读取锚点下方或右侧的日期（按此顺序），日期必须是周一
func ResolveDate(g *grid.Grid, anchor grid.Coord) (time.Time, error) {
	candidates := []grid.Coord{
		{Row: anchor.Row + 1, Col: anchor.Col},
		{Row: anchor.Row, Col: anchor.Col + 1},
	}
	for _, c := range candidates {
		v := g.At(c)
		if v.Kind != grid.KindDate {
			continue
		}
		d := truncateDay(v.Time)
		if d.Weekday() != time.Monday {
			return time.Time{}, &DateNotMondayError{Date: d}
		}
		return d, nil
	}
	a := anchor
	return time.Time{}, &DateNotFoundError{Anchor: &a}
}

// FindWeekStart 按优先级尝试每个日期标签，返回第一个可解析的周一日期
func FindWeekStart(g *grid.Grid, labels []string) (time.Time, error) {
	var firstMiss error
	for _, label := range labels {
		for _, anchor := range g.FindAll(grid.Text(label)) {
			d, err := ResolveDate(g, anchor)
			if err == nil {
				return d, nil
			}
			var notMonday *DateNotMondayError
			if errors.As(err, &notMonday) {
				return time.Time{}, err
			}
			if firstMiss == nil {
				firstMiss = err
			}
		}
	}
	if firstMiss != nil {
		return time.Time{}, firstMiss
	}
	return time.Time{}, &DateNotFoundError{Labels: append([]string(nil), labels...)}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
