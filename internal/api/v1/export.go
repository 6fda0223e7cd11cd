package v1

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"produccion/internal/calculator"
	"produccion/internal/model"
	"produccion/internal/tabular"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// 导出类型
const (
	ExportRecords    = "records"
	ExportInterval   = "interval"
	ExportRejections = "rejections"
)

// ExportRequest 导出请求
type ExportRequest struct {
	Kind     string `json:"kind"`               // records / interval / rejections
	Field    string `json:"field,omitempty"`    // records 可选过滤维度
	Value    string `json:"value,omitempty"`    // records 可选过滤值
	From     string `json:"from,omitempty"`     // YYYY-MM-DD
	To       string `json:"to,omitempty"`       // YYYY-MM-DD
	ImportID int64  `json:"importId,omitempty"` // rejections 对应的导入日志
}

func parseOptionalDate(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(tabular.DateLayout, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, true, nil
}

// Export 导出报表并直接返回 xlsx
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求参数")
		return
	}
	from, hasFrom, err := parseOptionalDate(req.From)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	to, hasTo, err := parseOptionalDate(req.To)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var data []byte
	var name string
	switch req.Kind {
	case ExportRecords:
		var records []model.ProductionRecord
		records, err = h.dataset.Load()
		if err != nil {
			writeError(c, err)
			return
		}
		if req.Field != "" {
			field, perr := calculator.ParseField(req.Field)
			if perr != nil {
				badRequest(c, perr.Error())
				return
			}
			if !hasFrom {
				from = time.Time{}
			}
			if !hasTo {
				to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
			}
			records = calculator.FilterRecords(records, calculator.Filter{Field: field, Value: req.Value}, from, to)
		}
		data, err = h.exporter.ExportRecords(records)
		name = "produccion.xlsx"
	case ExportInterval:
		if !hasFrom || !hasTo {
			badRequest(c, "from and to are required")
			return
		}
		var records []model.ProductionRecord
		records, err = h.dataset.Load()
		if err != nil {
			writeError(c, err)
			return
		}
		data, err = h.exporter.ExportInterval(calculator.ProductsOnInterval(records, from, to))
		name = fmt.Sprintf("intervalo_%s_%s.xlsx", req.From, req.To)
	case ExportRejections:
		var rows []model.RejectedRow
		if h.logs != nil {
			rows, err = h.logs.ListRejectedRows(req.ImportID)
			if err != nil {
				writeError(c, err)
				return
			}
		}
		data, err = h.exporter.ExportRejections(rows)
		name = fmt.Sprintf("rechazados_%d.xlsx", req.ImportID)
	default:
		badRequest(c, fmt.Sprintf("unknown export kind %q", req.Kind))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	c.Data(http.StatusOK, xlsxMime, data)
}

// DownloadExport 按一次性 token 下载已生成的报表
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	data, err := os.ReadFile(item.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.downloads.delete(token)
			c.JSON(http.StatusNotFound, gin.H{"error": "文件不存在"})
			return
		}
		writeError(c, err)
		return
	}

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(item.filename))
	c.Data(http.StatusOK, xlsxMime, data)
}
