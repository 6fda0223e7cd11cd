package v1

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"produccion/internal/tabular"
)

// GetCatalog 当前产品目录
// GET /api/catalog
func (h *Handler) GetCatalog(c *gin.Context) {
	entries, err := h.catalog.Load()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// UpdateCatalog 上传新目录替换当前目录，旧目录自动归档
// POST /api/catalog (multipart: file)
func (h *Handler) UpdateCatalog(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "未找到上传文件")
		return
	}
	if _, err := tabular.FormatOf(fh.Filename); err != nil {
		writeError(c, err)
		return
	}

	path := filepath.Join(h.uploadDir, fmt.Sprintf("catalogo_%s%s", uuid.NewString(), filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}
	defer os.Remove(path)

	n, err := h.catalog.UpdateFromFile(path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": n})
}

// GetCatalogHistory 目录历史版本
// GET /api/catalog/history
func (h *Handler) GetCatalogHistory(c *gin.Context) {
	files, err := h.catalog.History()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}
