package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"video-stats/internal/config"
	"video-stats/internal/infra/database"
	infraKafka "video-stats/internal/infra/kafka"
	infraRedis "video-stats/internal/infra/redis"
	"video-stats/internal/repository"
	"video-stats/internal/service"
	"video-stats/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
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

	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to init redis", zap.Error(err))
	}
	defer infraRedis.Close()

	db := database.Get()
	videoRepo := repository.NewVideoRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	cache := infraRedis.NewSnapshotCache(infraRedis.Get(), cfg.Redis.CacheTTLDuration())
	statsService := service.NewStatsService(db, videoRepo, snapshotRepo, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	topic, err := cfg.Kafka.ObservationTopic()
	if err != nil {
		logger.Fatal("Invalid kafka config", zap.Error(err))
	}
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "video-stats-observation-worker"
	}

	logger.Info("Observation worker started",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
	)

	infraKafka.StartObservationConsumer(ctx, cfg.Kafka.Brokers, topic, groupID, func(event *infraKafka.ObservationEvent) error {
		_, err := statsService.RecordObservation(ctx, &service.Observation{
			VideoID:        event.VideoID,
			CreatorID:      event.CreatorID,
			VideoCreatedAt: event.VideoCreatedAt,
			ViewsCount:     event.ViewsCount,
			LikesCount:     event.LikesCount,
			CommentsCount:  event.CommentsCount,
			ReportsCount:   event.ReportsCount,
			ObservedAt:     event.ObservedAt,
		})
		return err
	})

	logger.Info("Observation worker stopped")
}
