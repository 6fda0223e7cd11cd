package catalog

import (
	"sort"
	"strings"
	"unicode/utf8"

	"produccion/internal/model"
)

// CleanDescripcion 逗号替换为空格并去掉首尾空白；空值与 #N/A 记为占位文本
func CleanDescripcion(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
	if s == "" || s == "#N/A" {
		return model.SinDescripcion
	}
	return s
}

// SelectDescription 从候选描述中选出规范描述：
// 有其他候选时忽略占位文本，取最短者，等长时取字典序最小者
func SelectDescription(candidates []string) string {
	uniq := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		uniq[CleanDescripcion(c)] = struct{}{}
	}
	if len(uniq) > 1 {
		delete(uniq, model.SinDescripcion)
	}
	if len(uniq) == 0 {
		return model.SinDescripcion
	}

	list := make([]string, 0, len(uniq))
	for c := range uniq {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(list[i]), utf8.RuneCountInString(list[j])
		if li != lj {
			return li < lj
		}
		return list[i] < list[j]
	})
	return list[0]
}
