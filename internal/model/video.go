package model

import "time"

// Video 视频指标记录，每个被跟踪的视频一行，保存当前累计计数
type Video struct {
	ID             string    `gorm:"type:text;primaryKey;comment:视频标识" json:"id"`
	CreatorID      string    `gorm:"type:text;not null;index:idx_videos_creator_id;comment:创作者标识" json:"creator_id"`
	VideoCreatedAt time.Time `gorm:"not null;index:idx_videos_video_created_at;comment:视频发布时间" json:"video_created_at"`
	ViewsCount     int       `gorm:"type:integer;default:0;comment:累计播放量" json:"views_count"`
	LikesCount     int       `gorm:"type:integer;default:0;comment:累计点赞数" json:"likes_count"`
	CommentsCount  int       `gorm:"type:integer;default:0;comment:累计评论数" json:"comments_count"`
	ReportsCount   int       `gorm:"type:integer;default:0;comment:累计举报数" json:"reports_count"`
	CreatedAt      time.Time `gorm:"autoCreateTime;comment:记录创建时间" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;comment:记录更新时间" json:"updated_at"`

	// 关联关系
	Snapshots []VideoSnapshot `gorm:"foreignKey:VideoID;references:ID" json:"snapshots,omitempty"`
}

func (Video) TableName() string {
	return "videos"
}
