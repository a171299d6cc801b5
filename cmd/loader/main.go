package main

import (
	"flag"
	"fmt"

	"video-stats/internal/config"
	"video-stats/internal/infra/database"
	"video-stats/internal/repository"
	"video-stats/internal/service"
	"video-stats/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	filePath := flag.String("file", "/tmp/videos.json", "视频数据 JSON 文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	db := database.Get()
	importService := service.NewImportService(
		db,
		repository.NewVideoRepository(db),
		repository.NewSnapshotRepository(db),
	)

	count, err := importService.ImportFile(*filePath)
	if err != nil {
		logger.Fatal("Import failed", zap.String("file", *filePath), zap.Error(err))
	}

	logger.Info("Import completed",
		zap.String("file", *filePath),
		zap.Int("videos", count),
	)
}
