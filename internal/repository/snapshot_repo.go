package repository

import (
	"errors"

	"video-stats/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx 返回使用指定事务的仓储副本
func (r *SnapshotRepository) WithTx(tx *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: tx}
}

// Append 追加一条快照，快照只追加不修改
func (r *SnapshotRepository) Append(snap *model.VideoSnapshot) error {
	return r.db.Create(snap).Error
}

// Upsert 按 ID 插入或更新快照，供批量导入时重放同一份数据使用
// created_at 是快照的采集时间，导入重放时不会被覆盖
func (r *SnapshotRepository) Upsert(snap *model.VideoSnapshot) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"video_id",
			"views_count", "likes_count", "comments_count", "reports_count",
			"delta_views_count", "delta_likes_count", "delta_comments_count", "delta_reports_count",
			"updated_at",
		}),
	}).Create(snap).Error
}

// GetLatest 获取视频最近一次快照，不存在时返回 (nil, nil)
func (r *SnapshotRepository) GetLatest(videoID string) (*model.VideoSnapshot, error) {
	var snap model.VideoSnapshot
	err := r.db.Where("video_id = ?", videoID).
		Order("created_at DESC").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// ListByVideo 按采集时间正序查询视频的快照历史（分页）
func (r *SnapshotRepository) ListByVideo(videoID string, skip, limit int) ([]model.VideoSnapshot, int64, error) {
	query := r.db.Model(&model.VideoSnapshot{}).Where("video_id = ?", videoID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var snaps []model.VideoSnapshot
	err := query.Order("created_at ASC").Offset(skip).Limit(limit).Find(&snaps).Error
	if err != nil {
		return nil, 0, err
	}

	return snaps, total, nil
}
