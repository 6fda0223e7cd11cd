package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"produccion/internal/api/v1"
	"produccion/internal/catalog"
	"produccion/internal/config"
	"produccion/internal/dataset"
	"produccion/internal/store"
)

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	dataset *dataset.Store
	catalog *catalog.Store
	v1      *v1.Handler
}

// NewServer 创建服务器并初始化存储
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	ds, err := dataset.Open(cfg.DatasetPath(), dataset.Options{
		StaleLockAfter: cfg.StaleLockAfter(),
		DefaultMarca:   cfg.Catalog.DefaultMarca,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	cat, err := catalog.NewStore(cfg.CatalogPath(), cfg.CatalogHistoryPath(), catalog.Options{
		DefaultFamilia: cfg.Catalog.DefaultFamilia,
		DefaultMarca:   cfg.Catalog.DefaultMarca,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	sqliteStore, err := store.New(cfg.ImportLogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	s := &Server{
		router:  gin.Default(),
		store:   sqliteStore,
		dataset: ds,
		catalog: cat,
		v1: v1.NewHandler(v1.Deps{
			Config:    cfg,
			Dataset:   ds,
			Catalog:   cat,
			Logs:      sqliteStore,
			UploadDir: filepath.Join(dataDir, "uploads"),
			ExportDir: filepath.Join(dataDir, "exports"),
		}),
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler 暴露路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 释放数据库连接
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
