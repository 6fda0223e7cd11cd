package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"produccion/internal/catalog"
	"produccion/internal/dataset"
	"produccion/internal/grid"
	"produccion/internal/model"
	"produccion/internal/parser"
	"produccion/internal/store"
)

// 进度事件类型
const (
	EventStart     = "start"
	EventFileStart = "file_start"
	EventFileDone  = "file_done"
	EventInfo      = "info"
	EventWarning   = "warning"
	EventError     = "error"
	EventDone      = "done"
)

// Coordinator 导入协调器
type Coordinator struct {
	dataset *dataset.Store
	catalog *catalog.Store
	logs    *store.Store
}

// NewCoordinator 创建导入协调器；logs 为 nil 时不记录导入日志
func NewCoordinator(ds *dataset.Store, cat *catalog.Store, logs *store.Store) *Coordinator {
	return &Coordinator{dataset: ds, catalog: cat, logs: logs}
}

// Upload 一个待导入的上传文件
type Upload struct {
	Filename string // 原始文件名
	Path     string // 本地临时路径
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/file_start/file_done/info/warning/error/done
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// batchContext 一批导入的上下文
type batchContext struct {
	ctx          context.Context
	profile      parser.Profile
	report       *model.BatchReport
	progressChan chan ProgressEvent
}

// Import 按上传顺序逐个导入文件，返回进度通道；最后一个事件为 done，Data 为 *model.BatchReport
func (c *Coordinator) Import(ctx context.Context, uploads []Upload, profile parser.Profile) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, uploads, profile, progressChan)
	}()

	return progressChan
}

// Run 同步执行导入，丢弃中间进度
func (c *Coordinator) Run(ctx context.Context, uploads []Upload, profile parser.Profile) (*model.BatchReport, error) {
	var report *model.BatchReport
	var lastErr string
	for evt := range c.Import(ctx, uploads, profile) {
		switch evt.Type {
		case EventDone:
			report, _ = evt.Data.(*model.BatchReport)
		case EventError:
			lastErr = evt.Message
		}
	}
	if report == nil {
		return nil, fmt.Errorf("import aborted: %s", lastErr)
	}
	return report, nil
}

func (c *Coordinator) doImport(ctx context.Context, uploads []Upload, profile parser.Profile, progressChan chan ProgressEvent) {
	startTime := time.Now()
	bc := &batchContext{
		ctx:          ctx,
		profile:      profile,
		progressChan: progressChan,
		report: &model.BatchReport{
			BatchID:    uuid.NewString(),
			TotalFiles: len(uploads),
			Files:      []model.FileReport{},
		},
	}

	if err := profile.Validate(); err != nil {
		c.sendProgress(bc, ProgressEvent{
			Type:      EventError,
			Message:   fmt.Sprintf("模板配置无效: %v", err),
			Timestamp: time.Now(),
		})
		return
	}

	c.sendProgress(bc, ProgressEvent{
		Type:    EventStart,
		Message: fmt.Sprintf("开始导入 %d 个文件", len(uploads)),
		Data: map[string]interface{}{
			"batch_id":    bc.report.BatchID,
			"tipo":        profile.Tipo,
			"total_files": len(uploads),
		},
		Timestamp: time.Now(),
	})

	for _, up := range uploads {
		c.processFile(bc, up)
	}

	bc.report.Duration = time.Since(startTime)
	log.Printf("[import] batch %s done: files=%d imported=%d failed=%d rows=%d rejected=%d",
		bc.report.BatchID, bc.report.TotalFiles, bc.report.ImportedFiles, bc.report.FailedFiles,
		bc.report.ImportedRows, bc.report.RejectedRows)

	c.sendProgress(bc, ProgressEvent{
		Type:      EventDone,
		Message:   "导入完成",
		Data:      bc.report,
		Timestamp: time.Now(),
	})
}

// processFile 处理单个文件；失败只影响该文件
func (c *Coordinator) processFile(bc *batchContext, up Upload) {
	fileStart := time.Now()
	result := model.FileReport{Filename: up.Filename, Tipo: bc.profile.Tipo}

	c.sendProgress(bc, ProgressEvent{
		Type:      EventFileStart,
		Message:   fmt.Sprintf("正在处理文件: %s", up.Filename),
		Data:      map[string]string{"filename": up.Filename},
		Timestamp: time.Now(),
	})

	var logID int64
	if c.logs != nil {
		hash, err := fileHash(up.Path)
		if err != nil {
			log.Printf("[import] hash %s: %v", up.Filename, err)
		}
		if logID, err = c.logs.CreateImportLog(bc.report.BatchID, up.Filename, hash, bc.profile.Tipo); err != nil {
			log.Printf("[import] %v", err)
		}
	}

	rejected, err := c.ingestFile(bc, up, &result)
	result.Duration = time.Since(fileStart)
	if err != nil {
		result.Status = model.FileStatusError
		result.Error = err.Error()
		log.Printf("[import] %s failed: %v", up.Filename, err)
		c.sendProgress(bc, ProgressEvent{
			Type:      EventError,
			Message:   fmt.Sprintf("文件 %s 导入失败: %v", up.Filename, err),
			Data:      result,
			Timestamp: time.Now(),
		})
	} else {
		result.Status = model.FileStatusImported
	}

	if logID > 0 {
		if err := c.logs.UpdateImportLog(logID, result); err != nil {
			log.Printf("[import] %v", err)
		}
		if err := c.logs.InsertRejectedRows(logID, rejected); err != nil {
			log.Printf("[import] %v", err)
		}
	}

	c.recordFileResult(bc, result, rejected)

	if result.Status == model.FileStatusImported {
		c.sendProgress(bc, ProgressEvent{
			Type:      EventFileDone,
			Message:   fmt.Sprintf("文件 %s 导入 %d 行，拒绝 %d 行", up.Filename, result.ImportedRows, result.RejectedRows),
			Data:      result,
			Timestamp: time.Now(),
		})
	}
}

// ingestFile 读取 → 定位日期 → 抽取 → 校验 → 合并写入
func (c *Coordinator) ingestFile(bc *batchContext, up Upload, result *model.FileReport) ([]model.RejectedRow, error) {
	if err := bc.ctx.Err(); err != nil {
		return nil, err
	}

	g, err := grid.LoadFile(up.Path, bc.profile.Sheet)
	if err != nil {
		return nil, err
	}

	fecha, err := parser.FindWeekStart(g, bc.profile.DateLabels)
	if err != nil {
		return nil, err
	}
	result.Fecha = &fecha

	raw, err := parser.Extract(g, bc.profile)
	if err != nil {
		return nil, err
	}
	result.ExtractedRows = len(raw)

	cat, err := c.catalog.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	valid, rejected := Validate(up.Filename, raw, fecha, bc.profile.Tipo, cat)
	result.RejectedRows = len(rejected)

	if len(valid) == 0 {
		c.sendProgress(bc, ProgressEvent{
			Type:      EventWarning,
			Message:   fmt.Sprintf("文件 %s 没有有效记录", up.Filename),
			Timestamp: time.Now(),
		})
		return rejected, nil
	}

	res, err := c.dataset.Ingest(bc.ctx, valid, c.catalog)
	if err != nil {
		return rejected, err
	}
	result.ImportedRows = len(valid)

	c.sendProgress(bc, ProgressEvent{
		Type:      EventInfo,
		Message:   fmt.Sprintf("数据集更新: %d → %d 条（替换 %d）", res.Before, res.After, res.Replaced),
		Data:      res,
		Timestamp: time.Now(),
	})
	return rejected, nil
}

// recordFileResult 汇总单个文件的结果
func (c *Coordinator) recordFileResult(bc *batchContext, result model.FileReport, rejected []model.RejectedRow) {
	r := bc.report
	r.Files = append(r.Files, result)
	r.Validation.Add(rejected...)
	r.RejectedRows += len(rejected)

	if result.Status == model.FileStatusImported {
		r.ImportedFiles++
		r.ImportedRows += result.ImportedRows
	} else {
		r.FailedFiles++
	}
}

// sendProgress 发送进度事件；调用方取消后不再阻塞
func (c *Coordinator) sendProgress(bc *batchContext, event ProgressEvent) {
	select {
	case bc.progressChan <- event:
	case <-bc.ctx.Done():
	}
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
