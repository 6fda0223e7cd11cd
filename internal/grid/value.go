package grid

import (
	"strconv"
	"time"
)

// Kind 单元格值类型
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// Value 带类型的单元格值
// 比较按类型进行：Number(0) 与 Text("0") 不相等
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Time time.Time
	Bool bool
}

// Empty 空值
func Empty() Value { return Value{} }

// Text 文本值
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Number 数值
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Date 日期值
func Date(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// Bool 布尔值
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IsEmpty 是否为空
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// Equal 类型敏感的相等比较
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindEmpty:
		return true
	case KindText:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindDate:
		return v.Time.Equal(o.Time)
	case KindBool:
		return v.Bool == o.Bool
	}
	return false
}

// String 返回值的文本表示，整数数值不带小数
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindBool:
		return strconv.FormatBool(v.Bool)
	}
	return ""
}
