package model

import "time"

// VideoSnapshot 视频计数的定时快照，只追加不修改
// delta_* 为与同一视频上一次快照的差值，计数回退（如取消点赞）时可以为负
type VideoSnapshot struct {
	ID                 string    `gorm:"type:text;primaryKey;comment:快照标识" json:"id"`
	VideoID            *string   `gorm:"type:text;index:idx_video_snapshots_video_id;comment:视频标识" json:"video_id"`
	ViewsCount         int       `gorm:"type:integer;default:0;comment:快照时播放量" json:"views_count"`
	LikesCount         int       `gorm:"type:integer;default:0;comment:快照时点赞数" json:"likes_count"`
	CommentsCount      int       `gorm:"type:integer;default:0;comment:快照时评论数" json:"comments_count"`
	ReportsCount       int       `gorm:"type:integer;default:0;comment:快照时举报数" json:"reports_count"`
	DeltaViewsCount    int       `gorm:"type:integer;default:0;comment:播放量增量" json:"delta_views_count"`
	DeltaLikesCount    int       `gorm:"type:integer;default:0;comment:点赞数增量" json:"delta_likes_count"`
	DeltaCommentsCount int       `gorm:"type:integer;default:0;comment:评论数增量" json:"delta_comments_count"`
	DeltaReportsCount  int       `gorm:"type:integer;default:0;comment:举报数增量" json:"delta_reports_count"`
	// created_at 表示快照采集时间，由写入方提供，没有数据库默认值
	CreatedAt time.Time `gorm:"not null;index:idx_video_snapshots_created_at;autoCreateTime:false;comment:快照采集时间" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:记录更新时间" json:"updated_at"`

	// 删除带有快照的视频会被拒绝，快照是审计日志，不随视频级联删除
	Video *Video `gorm:"foreignKey:VideoID;references:ID;constraint:OnDelete:RESTRICT" json:"video,omitempty"`
}

func (VideoSnapshot) TableName() string {
	return "video_snapshots"
}
