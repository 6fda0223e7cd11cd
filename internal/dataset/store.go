package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"produccion/internal/catalog"
	"produccion/internal/model"
	"produccion/internal/tabular"
)

// Options 数据集存储选项
type Options struct {
	// StaleLockAfter 锁文件超过该时长视为遗留
	StaleLockAfter time.Duration
	// DefaultMarca 目录未收录 sku 的品牌
	DefaultMarca string
}

// Store 历史生产数据集（单文件，整表读改写）
type Store struct {
	path   string
	format tabular.Format
	opts   Options

	mu   sync.Mutex
	lock fileLock
}

// IngestResult 一次合并写入的统计
type IngestResult struct {
	Before   int `json:"before"`
	Incoming int `json:"incoming"`
	After    int `json:"after"`
	Replaced int `json:"replaced"`
}

// Open 打开数据集存储，扩展名必须为 csv / xlsx / parquet
func Open(path string, opts Options) (*Store, error) {
	format, err := tabular.FormatOf(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:   path,
		format: format,
		opts:   opts,
		lock:   fileLock{path: path + ".lock", stale: opts.StaleLockAfter},
	}, nil
}

// Path 数据集文件路径
func (s *Store) Path() string { return s.path }

// Format 数据集文件格式
func (s *Store) Format() tabular.Format { return s.format }

// Load 读取全部记录，文件不存在时返回空数据集
func (s *Store) Load() ([]model.ProductionRecord, error) {
	if !tabular.Exists(s.path) {
		return []model.ProductionRecord{}, nil
	}
	t, err := tabular.Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return fromTable(s.path, t)
}

// Save 原子写入全部记录；已有文件的列必须与数据集列一致
func (s *Store) Save(records []model.ProductionRecord) error {
	if tabular.Exists(s.path) {
		header, err := tabular.ReadHeader(s.path)
		if err != nil {
			return fmt.Errorf("failed to read dataset header: %w", err)
		}
		if err := tabular.CheckColumns(s.path, ColumnNames(), header); err != nil {
			return err
		}
	}
	if err := tabular.Write(s.path, toTable(records)); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}

// Merge 拼接已有与新增记录，按 (sku, ISO 周, ISO 年) 去重保留最后一条，
// 再用目录覆盖描述、家族与品牌。cat 为 nil 时保留记录原有描述字段
func Merge(existing, incoming []model.ProductionRecord, cat model.Catalog, defaultMarca string) []model.ProductionRecord {
	all := make([]model.ProductionRecord, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)

	last := make(map[model.RecordKey]int, len(all))
	for i, r := range all {
		last[r.Key()] = i
	}

	out := make([]model.ProductionRecord, 0, len(last))
	for i, r := range all {
		if last[r.Key()] != i {
			continue
		}
		if cat != nil {
			cat.Apply(&r, defaultMarca)
		}
		out = append(out, r)
	}
	return out
}

// Ingest 单写者临界区内完成：读取 → 合并去重 → 更新目录 → 重新关联目录 → 原子保存
func (s *Store) Ingest(ctx context.Context, incoming []model.ProductionRecord, cat *catalog.Store) (IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lock.acquire(ctx)
	if err != nil {
		return IngestResult{}, err
	}
	defer release()

	existing, err := s.Load()
	if err != nil {
		return IngestResult{}, err
	}

	merged := Merge(existing, incoming, nil, "")

	if cat != nil {
		entries, err := cat.Refresh(merged)
		if err != nil {
			return IngestResult{}, fmt.Errorf("failed to refresh catalog: %w", err)
		}
		merged = Merge(nil, merged, model.NewCatalog(entries), s.opts.DefaultMarca)
	}

	if err := s.Save(merged); err != nil {
		return IngestResult{}, err
	}

	return IngestResult{
		Before:   len(existing),
		Incoming: len(incoming),
		After:    len(merged),
		Replaced: len(existing) + len(incoming) - len(merged),
	}, nil
}
