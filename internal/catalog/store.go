package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"produccion/internal/model"
	"produccion/internal/tabular"
)

// HistoryDateLayout 目录备份文件名中的日期格式（DD-MM-YYYY）
const HistoryDateLayout = "02-01-2006"

// Options 目录存储选项
type Options struct {
	DefaultFamilia string
	DefaultMarca   string
}

// Store 产品目录文件存储
type Store struct {
	path       string
	historyDir string
	opts       Options

	mu  sync.Mutex
	now func() time.Time
}

// NewStore 创建目录存储
func NewStore(path, historyDir string, opts Options) (*Store, error) {
	if _, err := tabular.FormatOf(path); err != nil {
		return nil, err
	}
	if opts.DefaultFamilia == "" {
		opts.DefaultFamilia = model.FamiliaExterno
	}
	return &Store{path: path, historyDir: historyDir, opts: opts, now: time.Now}, nil
}

// Path 目录文件路径
func (s *Store) Path() string { return s.path }

// DefaultMarca 未收录 sku 使用的品牌
func (s *Store) DefaultMarca() string { return s.opts.DefaultMarca }

// Load 读取目录，文件不存在时返回空目录
func (s *Store) Load() ([]model.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Catalog 读取目录并建立索引
func (s *Store) Catalog() (model.Catalog, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	return model.NewCatalog(entries), nil
}

func (s *Store) load() ([]model.CatalogEntry, error) {
	if !tabular.Exists(s.path) {
		return []model.CatalogEntry{}, nil
	}
	t, err := tabular.Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return entriesFromTable(s.path, t)
}

func entriesFromTable(path string, t *tabular.Table) ([]model.CatalogEntry, error) {
	idx := t.Index()
	for _, c := range model.CatalogColumns {
		if _, ok := idx[c]; !ok {
			return nil, &tabular.SchemaMismatchError{Path: path, Expected: model.CatalogColumns, Actual: t.Names()}
		}
	}

	entries := make([]model.CatalogEntry, 0, len(t.Rows))
	for _, row := range t.Rows {
		sku := strings.TrimSpace(row[idx["sku"]])
		if sku == "" {
			continue
		}
		entries = append(entries, model.CatalogEntry{
			Sku:         sku,
			Descripcion: CleanDescripcion(row[idx["descripcion"]]),
			Familia:     strings.TrimSpace(row[idx["familia"]]),
			Marca:       strings.TrimSpace(row[idx["marca"]]),
		})
	}
	return entries, nil
}

// Save 原子写入目录
func (s *Store) Save(entries []model.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(entries)
}

func (s *Store) save(entries []model.CatalogEntry) error {
	t := &tabular.Table{Columns: make([]tabular.Column, len(model.CatalogColumns))}
	for i, c := range model.CatalogColumns {
		t.Columns[i] = tabular.Column{Name: c, Kind: tabular.KindString}
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{e.Sku, e.Descripcion, e.Familia, e.Marca})
	}
	if err := tabular.Write(s.path, t); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// UpdateFromFile 用新目录文件替换当前目录：
// 列必须与当前目录一致，旧目录先备份到历史目录（DD-MM-YYYY）
func (s *Store) UpdateFromFile(newPath string) (int, error) {
	incoming, err := tabular.Read(newPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read new catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expected := model.CatalogColumns
	if tabular.Exists(s.path) {
		current, err := tabular.ReadHeader(s.path)
		if err != nil {
			return 0, fmt.Errorf("failed to read current catalog: %w", err)
		}
		expected = current
	}
	if err := tabular.CheckColumns(newPath, expected, incoming.Names()); err != nil {
		return 0, err
	}
	entries, err := entriesFromTable(newPath, incoming)
	if err != nil {
		return 0, err
	}

	if _, err := s.backup(); err != nil {
		return 0, err
	}
	if err := tabular.Write(s.path, incoming); err != nil {
		return 0, fmt.Errorf("failed to save catalog: %w", err)
	}
	return len(entries), nil
}

// backup 将当前目录复制到历史目录，当前目录不存在时跳过
func (s *Store) backup() (string, error) {
	if !tabular.Exists(s.path) {
		return "", nil
	}
	if err := os.MkdirAll(s.historyDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create catalog history dir: %w", err)
	}

	dst := filepath.Join(s.historyDir, s.now().Format(HistoryDateLayout)+filepath.Ext(s.path))
	if err := copyFile(s.path, dst); err != nil {
		return "", fmt.Errorf("failed to back up catalog: %w", err)
	}
	return dst, nil
}

// History 列出历史目录中的备份文件名（按修改时间倒序）
func (s *Store) History() ([]HistoryFile, error) {
	entries, err := os.ReadDir(s.historyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []HistoryFile{}, nil
		}
		return nil, fmt.Errorf("failed to list catalog history: %w", err)
	}

	out := []HistoryFile{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := tabular.FormatOf(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, HistoryFile{Name: e.Name(), Path: filepath.Join(s.historyDir, e.Name()), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

// HistoryFile 一个目录备份
type HistoryFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Refresh 用数据集中出现的 (sku, 描述) 更新目录：
// 目录已收录的 sku 保留目录描述，仅在目录描述为空时才参考数据集；
// 目录中没有的 sku 从数据集描述中按 SelectDescription 选出一个，使用默认家族与品牌
func (s *Store) Refresh(records []model.ProductionRecord) ([]model.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, err
	}

	merged := Merge(current, records, s.opts)
	if err := s.save(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge 合并目录与记录中的描述，结果按 sku 排序。
// 目录描述优先；重复的目录行之间按 SelectDescription 取舍
func Merge(current []model.CatalogEntry, records []model.ProductionRecord, opts Options) []model.CatalogEntry {
	type acc struct {
		entry      model.CatalogEntry
		candidates []string // 目录描述
		fallback   []string // 数据集描述
	}
	bySku := map[string]*acc{}

	for _, e := range current {
		a, ok := bySku[e.Sku]
		if !ok {
			a = &acc{entry: e}
			bySku[e.Sku] = a
		} else {
			a.entry.Familia, a.entry.Marca = e.Familia, e.Marca
		}
		a.candidates = append(a.candidates, e.Descripcion)
	}
	for _, r := range records {
		if r.Sku == "" || r.Sku == "0" {
			continue
		}
		a, ok := bySku[r.Sku]
		if !ok {
			familia := opts.DefaultFamilia
			if familia == "" {
				familia = model.FamiliaExterno
			}
			a = &acc{entry: model.CatalogEntry{Sku: r.Sku, Familia: familia, Marca: opts.DefaultMarca}}
			bySku[r.Sku] = a
		}
		a.fallback = append(a.fallback, r.Descripcion)
	}

	out := make([]model.CatalogEntry, 0, len(bySku))
	for _, a := range bySku {
		e := a.entry
		e.Descripcion = SelectDescription(a.candidates)
		if e.Descripcion == model.SinDescripcion && len(a.fallback) > 0 {
			e.Descripcion = SelectDescription(a.fallback)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sku < out[j].Sku })
	return out
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
