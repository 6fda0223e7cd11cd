package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"produccion/internal/grid"
)

var (
	ErrHeaderNotFound = errors.New("header not found")
	ErrColumnNotFound = errors.New("value column not found")
	ErrDateNotFound   = errors.New("week start date not found")
	ErrDateNotMonday  = errors.New("week start date is not a monday")
)

// HeaderNotFoundError 索引列标题不存在
type HeaderNotFoundError struct {
	Label string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("%v: %q", ErrHeaderNotFound, e.Label)
}

func (e *HeaderNotFoundError) Unwrap() error { return ErrHeaderNotFound }

// ColumnNotFoundError 数值列标题不存在
type ColumnNotFoundError struct {
	Label string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("%v: %q", ErrColumnNotFound, e.Label)
}

func (e *ColumnNotFoundError) Unwrap() error { return ErrColumnNotFound }

// DateNotFoundError 日期标签缺失或其相邻单元格不是日期
type DateNotFoundError struct {
	Labels []string
	Anchor *grid.Coord
}

func (e *DateNotFoundError) Error() string {
	if e.Anchor != nil {
		return fmt.Sprintf("%v: no date next to %s", ErrDateNotFound, e.Anchor)
	}
	return fmt.Sprintf("%v: none of [%s] present", ErrDateNotFound, strings.Join(e.Labels, ", "))
}

func (e *DateNotFoundError) Unwrap() error { return ErrDateNotFound }

// DateNotMondayError 找到的日期不是周一
type DateNotMondayError struct {
	Date time.Time
}

func (e *DateNotMondayError) Error() string {
	return fmt.Sprintf("%v: %s is a %s", ErrDateNotMonday, e.Date.Format("2006-01-02"), e.Date.Weekday())
}

func (e *DateNotMondayError) Unwrap() error { return ErrDateNotMonday }
