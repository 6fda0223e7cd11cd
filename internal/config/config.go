package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"produccion/internal/grid"
	"produccion/internal/model"
	"produccion/internal/parser"
	"produccion/internal/tabular"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Extraction ExtractionConfig `toml:"extraction"`
	Catalog    CatalogConfig    `toml:"catalog"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir           string `toml:"data_dir"`
	DatasetFile       string `toml:"dataset_file"`
	DatasetFormat     string `toml:"dataset_format"`
	CatalogFile       string `toml:"catalog_file"`
	CatalogHistoryDir string `toml:"catalog_history_dir"`
	ImportLogDB       string `toml:"import_log_db"`
	StaleLockSeconds  int    `toml:"stale_lock_seconds"`
}

// ExtractionConfig 抽取配置，按类型覆盖内置模板的扫描参数
type ExtractionConfig struct {
	MaxRowsToScan int                        `toml:"max_rows_to_scan"`
	ColumnSearch  string                     `toml:"column_search"`
	Sheets        map[string]grid.Sheet      `toml:"sheets"`
	Overrides     map[string]ProfileOverride `toml:"profiles"`
}

// ProfileOverride 单个模板的可选覆盖项
type ProfileOverride struct {
	ShiftBetweenValues int `toml:"shift_between_values"`
}

// CatalogConfig 目录配置
type CatalogConfig struct {
	DefaultFamilia string `toml:"default_familia"`
	DefaultMarca   string `toml:"default_marca"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	ConfigPath    string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:           "data",
			DatasetFile:       "datos_historicos",
			DatasetFormat:     string(tabular.FormatXLSX),
			CatalogFile:       "catalogo.xlsx",
			CatalogHistoryDir: "historico_catalogo",
			ImportLogDB:       "importaciones.db",
			StaleLockSeconds:  600,
		},
		Extraction: ExtractionConfig{
			MaxRowsToScan: parser.DefaultMaxRowsToScan,
			ColumnSearch:  string(parser.SearchGlobal),
		},
		Catalog: CatalogConfig{
			DefaultFamilia: model.FamiliaExterno,
			DefaultMarca:   "BAYER",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom 从指定路径加载配置；文件不存在时使用默认配置。环境变量优先于文件
func LoadFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{ConfigPath: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	applyEnv(config, &info)

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖（.env 由 main 预先加载）
func applyEnv(config *AppConfig, info *LoadConfigInfo) {
	if v := os.Getenv("PRODUCCION_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("PRODUCCION_DATASET_FORMAT"); v != "" {
		config.Data.DatasetFormat = v
	}
	if v := os.Getenv("PRODUCCION_DEFAULT_MARCA"); v != "" {
		config.Catalog.DefaultMarca = v
	}
	if v := os.Getenv("PRODUCCION_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
			info.PortSpecified = true
		}
	}
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	if _, err := tabular.ParseFormat(c.Data.DatasetFormat); err != nil {
		return fmt.Errorf("data.dataset_format: %w", err)
	}
	if filepath.Ext(c.Data.CatalogFile) == "" {
		return fmt.Errorf("data.catalog_file must have an extension")
	}
	if _, err := tabular.FormatOf(c.Data.CatalogFile); err != nil {
		return fmt.Errorf("data.catalog_file: %w", err)
	}
	switch parser.ColumnSearch(c.Extraction.ColumnSearch) {
	case parser.SearchGlobal, parser.SearchHeaderRow:
	default:
		return fmt.Errorf("extraction.column_search: unknown value %q", c.Extraction.ColumnSearch)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// DefaultConfigPath 可执行文件同目录的 config.toml
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

// SaveConfig 校验后写入配置文件；先写临时文件再重命名
func SaveConfig(config *AppConfig, configPath string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// ResolveDataDir 数据目录的绝对路径；相对路径基于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"uploads", "exports", config.Data.CatalogHistoryDir}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据目录下的文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}

// DatasetPath 历史数据集文件路径（扩展名由格式决定）
func (c *AppConfig) DatasetPath() string {
	return GetDataPath(c, "", c.Data.DatasetFile+"."+c.Data.DatasetFormat)
}

// CatalogPath 目录文件路径
func (c *AppConfig) CatalogPath() string {
	return GetDataPath(c, "", c.Data.CatalogFile)
}

// CatalogHistoryPath 目录历史版本目录
func (c *AppConfig) CatalogHistoryPath() string {
	return GetDataPath(c, c.Data.CatalogHistoryDir, "")
}

// ImportLogPath 导入日志数据库路径
func (c *AppConfig) ImportLogPath() string {
	return GetDataPath(c, "", c.Data.ImportLogDB)
}

// StaleLockAfter 锁文件过期时长
func (c *AppConfig) StaleLockAfter() time.Duration {
	return time.Duration(c.Data.StaleLockSeconds) * time.Second
}

// Profile 按配置生成某一类型的模板
func (c *AppConfig) Profile(tipo model.Tipo) (parser.Profile, error) {
	p, err := parser.ProfileFor(tipo)
	if err != nil {
		return parser.Profile{}, err
	}
	p = p.WithScan(c.Extraction.MaxRowsToScan, parser.ColumnSearch(c.Extraction.ColumnSearch))
	if s, ok := c.Extraction.Sheets[string(tipo)]; ok {
		p.Sheet = s
	}
	if o, ok := c.Extraction.Overrides[string(tipo)]; ok {
		p.ShiftBetweenValues = o.ShiftBetweenValues
	}
	return p, nil
}
