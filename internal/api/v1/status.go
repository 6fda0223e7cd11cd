package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"produccion/internal/calculator"
	"produccion/internal/model"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool                  `json:"initialized"`    // 数据集是否有数据
	TotalRecords   int                   `json:"totalRecords"`   // 数据集记录数
	CatalogEntries int                   `json:"catalogEntries"` // 目录条目数
	DatasetPath    string                `json:"datasetPath"`    // 数据集文件
	DatasetFormat  string                `json:"datasetFormat"`  // 数据集格式
	LastUpdate     map[model.Tipo]string `json:"lastUpdate"`     // 每种类型最近一周
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	records, err := h.dataset.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	entries, err := h.catalog.Load()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:    len(records) > 0,
		TotalRecords:   len(records),
		CatalogEntries: len(entries),
		DatasetPath:    h.dataset.Path(),
		DatasetFormat:  string(h.dataset.Format()),
		LastUpdate:     calculator.LastUpdateByTipo(records),
	})
}
