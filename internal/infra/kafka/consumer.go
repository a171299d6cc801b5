package kafka

import (
	"context"
	"encoding/json"
	"time"

	"video-stats/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ObservationEvent 外部采集方上报的一次视频计数观测
type ObservationEvent struct {
	VideoID        string    `json:"video_id"`
	CreatorID      string    `json:"creator_id"`
	VideoCreatedAt time.Time `json:"video_created_at"`
	ViewsCount     int       `json:"views_count"`
	LikesCount     int       `json:"likes_count"`
	CommentsCount  int       `json:"comments_count"`
	ReportsCount   int       `json:"reports_count"`
	ObservedAt     time.Time `json:"observed_at"`
}

// ObservationHandler 处理观测事件的回调函数
type ObservationHandler func(event *ObservationEvent) error

// StartObservationConsumer 启动观测事件消费者（阻塞，需在 goroutine 或主循环中运行）
// ctx 取消后会自动停止
func StartObservationConsumer(ctx context.Context, brokers []string, topic, groupID string, handler ObservationHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka observation consumer stopped")
	}()

	logger.Info("Kafka observation consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var event ObservationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("Failed to unmarshal observation event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(&event); err != nil {
			logger.Error("Failed to handle observation event",
				zap.String("video_id", event.VideoID),
				zap.Error(err),
			)
		}
	}
}
