package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"produccion/internal/calculator"
	"produccion/internal/catalog"
	"produccion/internal/config"
	"produccion/internal/dataset"
	"produccion/internal/exporter"
	"produccion/internal/parser"
	"produccion/internal/store"
	"produccion/internal/tabular"
)

// Handler V1 API 处理器
type Handler struct {
	cfg       *config.AppConfig
	dataset   *dataset.Store
	catalog   *catalog.Store
	logs      *store.Store
	engine    *calculator.Engine
	exporter  *exporter.Exporter
	downloads *exportDownloadStore

	uploadDir string
	exportDir string
}

// Deps 处理器依赖
type Deps struct {
	Config    *config.AppConfig
	Dataset   *dataset.Store
	Catalog   *catalog.Store
	Logs      *store.Store
	UploadDir string
	ExportDir string
}

// NewHandler 创建 V1 API 处理器
func NewHandler(d Deps) *Handler {
	return &Handler{
		cfg:       d.Config,
		dataset:   d.Dataset,
		catalog:   d.Catalog,
		logs:      d.Logs,
		engine:    calculator.NewEngine(d.Dataset),
		exporter:  exporter.NewExporter(d.ExportDir),
		downloads: newExportDownloadStore(),
		uploadDir: d.UploadDir,
		exportDir: d.ExportDir,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据导入
	router.POST("/import/:tipo", h.Import)
	router.GET("/imports", h.ListImports)
	router.GET("/imports/:id/rejected", h.ListRejected)

	// 指标查询
	router.GET("/kpis", h.GetKPIs)
	router.GET("/values/:field", h.GetValues)
	router.GET("/dates", h.GetDates)
	router.GET("/weeks", h.GetWeeks)
	router.GET("/interval/products", h.GetIntervalProducts)
	router.GET("/interval/summary", h.GetIntervalSummary)
	router.GET("/last-update", h.GetLastUpdate)
	router.GET("/sku/:sku", h.GetSkuHistory)

	// 产品目录
	router.GET("/catalog", h.GetCatalog)
	router.POST("/catalog", h.UpdateCatalog)
	router.GET("/catalog/history", h.GetCatalogHistory)

	// 数据导出
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}

// writeError 按错误类型映射 HTTP 状态码
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, calculator.ErrNotReady):
		status = http.StatusNotFound
	case errors.Is(err, dataset.ErrLocked):
		status = http.StatusConflict
	case errors.Is(err, tabular.ErrSchemaMismatch),
		errors.Is(err, tabular.ErrUnsupportedFileType),
		errors.Is(err, parser.ErrHeaderNotFound),
		errors.Is(err, parser.ErrColumnNotFound),
		errors.Is(err, parser.ErrDateNotFound),
		errors.Is(err, parser.ErrDateNotMonday):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parseDateParam 读取 YYYY-MM-DD 查询参数
func parseDateParam(c *gin.Context, name string) (time.Time, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return time.Time{}, fmt.Errorf("missing query parameter %q", name)
	}
	t, err := time.Parse(tabular.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, v)
	}
	return t, nil
}

func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := parseDateParam(c, "from")
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDateParam(c, "to")
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		badRequest(c, "to must not be before from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseFilter(c *gin.Context) (calculator.Filter, bool) {
	field, err := calculator.ParseField(c.Query("field"))
	if err != nil {
		badRequest(c, err.Error())
		return calculator.Filter{}, false
	}
	value := c.Query("value")
	if value == "" {
		badRequest(c, "missing query parameter \"value\"")
		return calculator.Filter{}, false
	}
	return calculator.Filter{Field: field, Value: value}, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
