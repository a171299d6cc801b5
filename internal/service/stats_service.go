package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-stats/internal/model"
	"video-stats/internal/repository"
	"video-stats/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrVideoIDRequired        = errors.New("视频ID不能为空")
	ErrCreatorIDRequired      = errors.New("创作者ID不能为空")
	ErrVideoCreatedAtRequired = errors.New("视频发布时间不能为空")
	ErrObservedAtRequired     = errors.New("快照采集时间不能为空")
)

// SnapshotCache 最近快照缓存，未命中时返回 (nil, nil)
type SnapshotCache interface {
	GetLatest(ctx context.Context, videoID string) (*model.VideoSnapshot, error)
	SetLatest(ctx context.Context, snap *model.VideoSnapshot) error
	DeleteLatest(ctx context.Context, videoID string) error
}

// Observation 外部写入方上报的一次视频计数观测
type Observation struct {
	VideoID        string
	CreatorID      string
	VideoCreatedAt time.Time
	ViewsCount     int
	LikesCount     int
	CommentsCount  int
	ReportsCount   int
	ObservedAt     time.Time
}

type StatsService struct {
	db           *gorm.DB
	videoRepo    *repository.VideoRepository
	snapshotRepo *repository.SnapshotRepository
	cache        SnapshotCache // 可以为 nil，此时每次回查数据库
}

func NewStatsService(db *gorm.DB, videoRepo *repository.VideoRepository, snapshotRepo *repository.SnapshotRepository, cache SnapshotCache) *StatsService {
	return &StatsService{
		db:           db,
		videoRepo:    videoRepo,
		snapshotRepo: snapshotRepo,
		cache:        cache,
	}
}

// RecordObservation 记录一次观测：更新视频累计计数并追加快照
// 两次写入在同一事务中完成，保证 videos 的计数与最新快照一致
// 增量相对同一视频上一次快照计算，没有上一次快照时增量等于绝对值
func (s *StatsService) RecordObservation(ctx context.Context, obs *Observation) (*model.VideoSnapshot, error) {
	if obs.VideoID == "" {
		return nil, ErrVideoIDRequired
	}
	if obs.CreatorID == "" {
		return nil, ErrCreatorIDRequired
	}
	if obs.VideoCreatedAt.IsZero() {
		return nil, ErrVideoCreatedAtRequired
	}
	if obs.ObservedAt.IsZero() {
		return nil, ErrObservedAtRequired
	}

	// 上一次快照在事务外读取，增量正确性依赖同一视频同一时刻只有一个写入方上报
	prev, err := s.latestSnapshot(ctx, obs.VideoID)
	if err != nil {
		return nil, fmt.Errorf("查询上一次快照失败: %w", err)
	}

	videoID := obs.VideoID
	snap := &model.VideoSnapshot{
		ID:            uuid.NewString(),
		VideoID:       &videoID,
		ViewsCount:    obs.ViewsCount,
		LikesCount:    obs.LikesCount,
		CommentsCount: obs.CommentsCount,
		ReportsCount:  obs.ReportsCount,
		CreatedAt:     obs.ObservedAt,
	}
	if prev != nil {
		// 计数回退时增量为负，原样记录
		snap.DeltaViewsCount = obs.ViewsCount - prev.ViewsCount
		snap.DeltaLikesCount = obs.LikesCount - prev.LikesCount
		snap.DeltaCommentsCount = obs.CommentsCount - prev.CommentsCount
		snap.DeltaReportsCount = obs.ReportsCount - prev.ReportsCount
	} else {
		snap.DeltaViewsCount = obs.ViewsCount
		snap.DeltaLikesCount = obs.LikesCount
		snap.DeltaCommentsCount = obs.CommentsCount
		snap.DeltaReportsCount = obs.ReportsCount
	}

	video := &model.Video{
		ID:             obs.VideoID,
		CreatorID:      obs.CreatorID,
		VideoCreatedAt: obs.VideoCreatedAt,
		ViewsCount:     obs.ViewsCount,
		LikesCount:     obs.LikesCount,
		CommentsCount:  obs.CommentsCount,
		ReportsCount:   obs.ReportsCount,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.videoRepo.WithTx(tx).Upsert(video); err != nil {
			return fmt.Errorf("更新视频计数失败: %w", err)
		}
		if err := s.snapshotRepo.WithTx(tx).Append(snap); err != nil {
			return fmt.Errorf("追加快照失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 缓存写入失败时必须把旧条目失效掉，否则后续增量会相对陈旧快照计算
	// 失效后下一次观测缓存未命中，回查数据库
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, snap); err != nil {
			logger.Warn("Failed to cache latest snapshot",
				zap.String("video_id", obs.VideoID),
				zap.Error(err),
			)
			if err := s.cache.DeleteLatest(ctx, obs.VideoID); err != nil {
				logger.Error("Failed to invalidate snapshot cache",
					zap.String("video_id", obs.VideoID),
					zap.Error(err),
				)
			}
		}
	}

	logger.Info("Observation recorded",
		zap.String("video_id", obs.VideoID),
		zap.Int("views", snap.ViewsCount),
		zap.Int("delta_views", snap.DeltaViewsCount),
		zap.Time("observed_at", snap.CreatedAt),
	)

	return snap, nil
}

// latestSnapshot 查询视频上一次快照，优先走缓存
func (s *StatsService) latestSnapshot(ctx context.Context, videoID string) (*model.VideoSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.GetLatest(ctx, videoID)
		if err != nil {
			logger.Warn("Failed to read snapshot cache, falling back to database",
				zap.String("video_id", videoID),
				zap.Error(err),
			)
		} else if snap != nil {
			return snap, nil
		}
	}
	return s.snapshotRepo.GetLatest(videoID)
}

// GetVideo 获取单个视频的当前计数
func (s *StatsService) GetVideo(id string) (*model.Video, error) {
	return s.videoRepo.GetByID(id)
}

// History 按采集时间正序返回视频的快照历史
func (s *StatsService) History(videoID string, skip, limit int) ([]model.VideoSnapshot, int64, error) {
	return s.snapshotRepo.ListByVideo(videoID, skip, limit)
}

// VideosByCreator 返回创作者的全部视频
func (s *StatsService) VideosByCreator(creatorID string, skip, limit int) ([]model.Video, int64, error) {
	return s.videoRepo.ListByCreator(creatorID, skip, limit)
}

// VideosByCreatedRange 返回发布时间在 [from, to) 区间内的视频
func (s *StatsService) VideosByCreatedRange(from, to time.Time, skip, limit int) ([]model.Video, int64, error) {
	return s.videoRepo.ListByCreatedRange(from, to, skip, limit)
}
