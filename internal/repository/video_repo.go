package repository

import (
	"time"

	"video-stats/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// WithTx 返回使用指定事务的仓储副本
func (r *VideoRepository) WithTx(tx *gorm.DB) *VideoRepository {
	return &VideoRepository{db: tx}
}

// Create 创建视频记录
func (r *VideoRepository) Create(video *model.Video) error {
	return r.db.Create(video).Error
}

// GetByID 根据 ID 获取视频
func (r *VideoRepository) GetByID(id string) (*model.Video, error) {
	var video model.Video
	err := r.db.Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Upsert 按 ID 插入或更新视频
// 已存在时覆盖计数和元信息并推进 updated_at，重复写入相同计数是幂等的
func (r *VideoRepository) Upsert(video *model.Video) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"creator_id", "video_created_at",
			"views_count", "likes_count", "comments_count", "reports_count",
			"updated_at",
		}),
	}).Create(video).Error
}

// UpdateCounters 更新视频累计计数并推进 updated_at
func (r *VideoRepository) UpdateCounters(id string, views, likes, comments, reports int) error {
	result := r.db.Model(&model.Video{}).Where("id = ?", id).Updates(map[string]interface{}{
		"views_count":    views,
		"likes_count":    likes,
		"comments_count": comments,
		"reports_count":  reports,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByCreator 查询创作者的全部视频（分页）
func (r *VideoRepository) ListByCreator(creatorID string, skip, limit int) ([]model.Video, int64, error) {
	query := r.db.Model(&model.Video{}).Where("creator_id = ?", creatorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	err := query.Order("video_created_at DESC").Offset(skip).Limit(limit).Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// ListByCreatedRange 查询发布时间在 [from, to) 区间内的视频（分页）
func (r *VideoRepository) ListByCreatedRange(from, to time.Time, skip, limit int) ([]model.Video, int64, error) {
	query := r.db.Model(&model.Video{}).
		Where("video_created_at >= ? AND video_created_at < ?", from, to)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []model.Video
	err := query.Order("video_created_at ASC").Offset(skip).Limit(limit).Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// Delete 删除视频，存在快照时外键会阻止删除，错误原样返回
func (r *VideoRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&model.Video{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
