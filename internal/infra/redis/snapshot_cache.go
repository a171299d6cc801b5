package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"video-stats/internal/model"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache 缓存每个视频最近一次快照，录制时避免回查快照表
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache 构造快照缓存
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(videoID string) string {
	return "video_stats:latest_snapshot:" + videoID
}

// GetLatest 读取视频最近一次快照，缓存未命中时返回 (nil, nil)
func (c *SnapshotCache) GetLatest(ctx context.Context, videoID string) (*model.VideoSnapshot, error) {
	payload, err := c.client.Get(ctx, snapshotKey(videoID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest snapshot from redis: %w", err)
	}

	var snap model.VideoSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal cached snapshot: %w", err)
	}
	return &snap, nil
}

// SetLatest 写入视频最近一次快照
func (c *SnapshotCache) SetLatest(ctx context.Context, snap *model.VideoSnapshot) error {
	if snap.VideoID == nil {
		return nil
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot for cache: %w", err)
	}

	if err := c.client.Set(ctx, snapshotKey(*snap.VideoID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set latest snapshot in redis: %w", err)
	}
	return nil
}

// DeleteLatest 删除视频的缓存条目，写入失败后用来失效旧值
func (c *SnapshotCache) DeleteLatest(ctx context.Context, videoID string) error {
	if err := c.client.Del(ctx, snapshotKey(videoID)).Err(); err != nil {
		return fmt.Errorf("delete latest snapshot from redis: %w", err)
	}
	return nil
}
