package grid

// FindAll 按行优先顺序返回所有与 target 类型和值完全相等的单元格坐标
func (g *Grid) FindAll(target Value) []Coord {
	out := []Coord{}
	if target.IsEmpty() {
		return out
	}
	for r, row := range g.rows {
		for c, v := range row {
			if v.Equal(target) {
				out = append(out, Coord{Row: r + 1, Col: c + 1})
			}
		}
	}
	return out
}

// FindFirst 返回第一个匹配坐标
func (g *Grid) FindFirst(target Value) (Coord, bool) {
	for r, row := range g.rows {
		for c, v := range row {
			if !target.IsEmpty() && v.Equal(target) {
				return Coord{Row: r + 1, Col: c + 1}, true
			}
		}
	}
	return Coord{}, false
}

// FindAllInRow 只在指定行内查找
func (g *Grid) FindAllInRow(row int, target Value) []Coord {
	out := []Coord{}
	if target.IsEmpty() || row < 1 || row > len(g.rows) {
		return out
	}
	for c, v := range g.rows[row-1] {
		if v.Equal(target) {
			out = append(out, Coord{Row: row, Col: c + 1})
		}
	}
	return out
}
