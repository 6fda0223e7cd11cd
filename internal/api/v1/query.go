package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"produccion/internal/calculator"
	"produccion/internal/model"
	"produccion/internal/tabular"
)

// GetKPIs 过滤后的汇总指标
// GET /api/kpis?field=familia&value=EXTERNO&from=2024-01-01&to=2024-03-31
func (h *Handler) GetKPIs(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	kpis, err := h.engine.KPIs(filter, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// GetValues 某一维度的可选值
// GET /api/values/:field
func (h *Handler) GetValues(c *gin.Context) {
	field, err := calculator.ParseField(c.Param("field"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, calculator.AvailableValues(records, field))
}

// GetDates 过滤值对应的日期范围
// GET /api/dates?field=sku&value=100
func (h *Handler) GetDates(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	from, to, err := calculator.AvailableDates(records, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from": from.Format(tabular.DateLayout),
		"to":   to.Format(tabular.DateLayout),
	})
}

// GetWeeks 已有数据的周
// GET /api/weeks?tipo=liquido
func (h *Handler) GetWeeks(c *gin.Context) {
	var tipo model.Tipo
	if v := strings.TrimSpace(c.Query("tipo")); v != "" {
		t, err := model.ParseTipo(v)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		tipo = t
	}
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, calculator.AvailableWeeks(records, tipo))
}

// GetIntervalProducts 区间内按产品汇总（结束日期不含）
// GET /api/interval/products?from=2024-03-04&to=2024-03-18
func (h *Handler) GetIntervalProducts(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, calculator.ProductsOnInterval(records, from, to))
}

// IntervalSummary 区间汇总
type IntervalSummary struct {
	Cumplimiento float64                  `json:"cumplimiento"`
	Productos    calculator.ProductCounts `json:"productos"`
}

// GetIntervalSummary 区间完成率与产品数
// GET /api/interval/summary?from=2024-03-04&to=2024-03-18
func (h *Handler) GetIntervalSummary(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	cumplimiento, err := calculator.CompletionOnInterval(records, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, IntervalSummary{
		Cumplimiento: cumplimiento,
		Productos:    calculator.CountProducts(records, from, to),
	})
}

// GetLastUpdate 每种类型最近一周的日期
// GET /api/last-update
func (h *Handler) GetLastUpdate(c *gin.Context) {
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, calculator.LastUpdateByTipo(records))
}

// GetSkuHistory 单个 sku 的历史
// GET /api/sku/:sku
func (h *Handler) GetSkuHistory(c *gin.Context) {
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	history := calculator.SkuHistory(records, c.Param("sku"))
	if len(history) == 0 {
		writeError(c, calculator.ErrNotReady)
		return
	}
	c.JSON(http.StatusOK, history)
}
