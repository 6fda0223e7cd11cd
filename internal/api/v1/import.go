package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"produccion/internal/importer"
	"produccion/internal/model"
)

// rejectionReportTTL 拒绝行报表的下载有效期
const rejectionReportTTL = 30 * time.Minute

// Import 导入一批同类型的 Excel 文件 (SSE 流式响应)
// POST /api/import/:tipo
func (h *Handler) Import(c *gin.Context) {
	tipo, err := model.ParseTipo(c.Param("tipo"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	profile, err := h.cfg.Profile(tipo)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "无效的表单数据")
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		badRequest(c, "未找到上传文件")
		return
	}

	// 保存到上传目录，保持上传顺序
	uploads := make([]importer.Upload, 0, len(files))
	defer func() {
		for _, up := range uploads {
			os.Remove(up.Path)
		}
	}()
	for _, fh := range files {
		path := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(fh.Filename)))
		if err := c.SaveUploadedFile(fh, path); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
			return
		}
		uploads = append(uploads, importer.Upload{Filename: fh.Filename, Path: path})
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event importer.ProgressEvent) {
		eventData, err := json.Marshal(event)
		if err != nil {
			return
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}

	coordinator := importer.NewCoordinator(h.dataset, h.catalog, h.logs)
	for event := range coordinator.Import(c.Request.Context(), uploads, profile) {
		send(event)
		if event.Type != importer.EventDone {
			continue
		}
		report, _ := event.Data.(*model.BatchReport)
		if report == nil || report.Validation.Empty() {
			continue
		}
		if url, err := h.publishRejections(c.Request.Context(), report); err != nil {
			log.Printf("[import] rejection report for batch %s: %v", report.BatchID, err)
		} else {
			send(importer.ProgressEvent{
				Type:      "report",
				Message:   fmt.Sprintf("%d 行未通过校验", len(report.Validation.Rejected)),
				Data:      map[string]string{"downloadUrl": url},
				Timestamp: time.Now(),
			})
		}
	}
}

// publishRejections 导出拒绝行并返回下载地址
func (h *Handler) publishRejections(ctx context.Context, report *model.BatchReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := h.exporter.ExportRejections(report.Validation.Rejected)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("rechazados_%s.xlsx", report.BatchID)
	path := filepath.Join(h.exportDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write rejection report: %w", err)
	}
	token := h.downloads.put(path, name, rejectionReportTTL)
	return "/api/export/download/" + token, nil
}

// ListImports 最近的导入日志
// GET /api/imports?limit=50
func (h *Handler) ListImports(c *gin.Context) {
	if h.logs == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	logs, err := h.logs.ListImports(queryInt(c, "limit", 50))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// ListRejected 某次导入的拒绝行
// GET /api/imports/:id/rejected
func (h *Handler) ListRejected(c *gin.Context) {
	var id int64
	if _, err := fmt.Sscan(c.Param("id"), &id); err != nil || id <= 0 {
		badRequest(c, "无效的导入 id")
		return
	}
	if h.logs == nil {
		c.JSON(http.StatusOK, []model.RejectedRow{})
		return
	}
	rows, err := h.logs.ListRejectedRows(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
