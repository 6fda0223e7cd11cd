package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"produccion/internal/grid"
)

var (
	skuDotDigits  = regexp.MustCompile(`\.\d+`)
	skuDashDigits = regexp.MustCompile(`-\d+`)
)

// NormalizeSKU 将索引单元格转换为规范 sku
func NormalizeSKU(v grid.Value) string {
	switch v.Kind {
	case grid.KindEmpty:
		return ""
	case grid.KindText, grid.KindNumber:
		return NormalizeSKUString(v.String())
	}
	return strings.TrimSpace(v.String())
}

// NormalizeSKUString 规范化 sku 文本：
// 去掉制表符、尾部空白和 ´，去掉 .数字 与 -数字 片段，去掉前缀 ANSA，
// 纯整数去掉前导零
func NormalizeSKUString(s string) string {
	s = strings.ReplaceAll(s, "\t", "")
	s = strings.TrimRight(s, " \r\n\v\f")
	s = strings.ReplaceAll(s, "´", "")
	s = skuDotDigits.ReplaceAllString(s, "")
	s = skuDashDigits.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "ANSA")
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}

// ParseQuantity 将数值单元格转换为数量；文本允许千分位
func ParseQuantity(v grid.Value) (float64, bool) {
	switch v.Kind {
	case grid.KindNumber:
		return v.Num, isFinite(v.Num)
	case grid.KindText:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", "") // 移除千分位
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, isFinite(f)
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
