package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"produccion/internal/catalog"
	"produccion/internal/config"
	"produccion/internal/dataset"
	"produccion/internal/importer"
	"produccion/internal/model"
	"produccion/internal/server"
	"produccion/internal/store"
)

var (
	port    = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	tipo    = flag.String("tipo", "", "import 子命令的文件类型: liquido / polvo / lerma")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Produccion - 周生产计划汇总工具")
	fmt.Println("==========================================")

	// 加载 .env
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	if flag.NArg() > 0 {
		switch flag.Arg(0) {
		case "import":
			if err := runImport(cfg, *tipo, flag.Args()[1:]); err != nil {
				log.Fatalf("导入失败: %v", err)
			}
			return
		case "init-config":
			if err := runInitConfig(cfg, info); err != nil {
				log.Fatalf("写入配置失败: %v", err)
			}
			return
		}
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	fmt.Printf("数据目录: %s\n", config.ResolveDataDir(cfg))
	fmt.Printf("数据集: %s\n", cfg.DatasetPath())

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// 启动服务器
	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	if err := srv.Close(); err != nil {
		log.Printf("关闭数据库失败: %v", err)
	}
}

// runImport 命令行批量导入，按参数顺序处理文件并输出报告
func runImport(cfg *config.AppConfig, tipoName string, files []string) error {
	t, err := model.ParseTipo(tipoName)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files given")
	}
	profile, err := cfg.Profile(t)
	if err != nil {
		return err
	}
	if _, err := config.EnsureDataDir(cfg); err != nil {
		return err
	}

	ds, err := dataset.Open(cfg.DatasetPath(), dataset.Options{
		StaleLockAfter: cfg.StaleLockAfter(),
		DefaultMarca:   cfg.Catalog.DefaultMarca,
	})
	if err != nil {
		return err
	}
	cat, err := catalog.NewStore(cfg.CatalogPath(), cfg.CatalogHistoryPath(), catalog.Options{
		DefaultFamilia: cfg.Catalog.DefaultFamilia,
		DefaultMarca:   cfg.Catalog.DefaultMarca,
	})
	if err != nil {
		return err
	}
	logs, err := store.New(cfg.ImportLogPath())
	if err != nil {
		return err
	}
	defer logs.Close()

	uploads := make([]importer.Upload, 0, len(files))
	for _, f := range files {
		uploads = append(uploads, importer.Upload{Filename: filepath.Base(f), Path: f})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for event := range importer.NewCoordinator(ds, cat, logs).Import(ctx, uploads, profile) {
		switch event.Type {
		case importer.EventDone:
			out, _ := json.MarshalIndent(event.Data, "", "  ")
			fmt.Println(string(out))
		case importer.EventError, importer.EventWarning:
			log.Println(event.Message)
		default:
			fmt.Println(event.Message)
		}
	}
	return nil
}

// runInitConfig 将当前生效的配置写入 config.toml，已存在时不覆盖
func runInitConfig(cfg *config.AppConfig, info config.LoadConfigInfo) error {
	path := info.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}
	fmt.Printf("配置已写入: %s\n", path)
	return nil
}
