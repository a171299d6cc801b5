package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"video-stats/internal/model"
	"video-stats/internal/repository"
	"video-stats/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSnapshotCreatedAtMissing = errors.New("快照缺少采集时间")

// ImportService 从 JSON 文件批量导入视频及其已算好增量的快照
type ImportService struct {
	db           *gorm.DB
	videoRepo    *repository.VideoRepository
	snapshotRepo *repository.SnapshotRepository
}

func NewImportService(db *gorm.DB, videoRepo *repository.VideoRepository, snapshotRepo *repository.SnapshotRepository) *ImportService {
	return &ImportService{
		db:           db,
		videoRepo:    videoRepo,
		snapshotRepo: snapshotRepo,
	}
}

// ImportFileData JSON 文件顶层结构
type ImportFileData struct {
	Videos []ImportVideo `json:"videos"`
}

// ImportVideo 导入文件中的一条视频，快照内嵌在视频下
type ImportVideo struct {
	ID             flexID           `json:"id"`
	CreatorID      flexID           `json:"creator_id"`
	VideoCreatedAt string           `json:"video_created_at"`
	ViewsCount     int              `json:"views_count"`
	LikesCount     int              `json:"likes_count"`
	CommentsCount  int              `json:"comments_count"`
	ReportsCount   int              `json:"reports_count"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
	Snapshots      []ImportSnapshot `json:"snapshots"`
}

// ImportSnapshot 导入文件中的一条快照，增量由数据方预先算好
type ImportSnapshot struct {
	ID                 flexID `json:"id"`
	VideoID            flexID `json:"video_id"`
	ViewsCount         int    `json:"views_count"`
	LikesCount         int    `json:"likes_count"`
	CommentsCount      int    `json:"comments_count"`
	ReportsCount       int    `json:"reports_count"`
	DeltaViewsCount    int    `json:"delta_views_count"`
	DeltaLikesCount    int    `json:"delta_likes_count"`
	DeltaCommentsCount int    `json:"delta_comments_count"`
	DeltaReportsCount  int    `json:"delta_reports_count"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// flexID 兼容 JSON 中数字或字符串形式的标识
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// ImportFile 读取 JSON 文件并导入，返回导入的视频数
func (s *ImportService) ImportFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("读取导入文件失败: %w", err)
	}

	var file ImportFileData
	if err := json.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("解析导入文件失败: %w", err)
	}

	logger.Info("Import file parsed",
		zap.String("path", path),
		zap.Int("videos", len(file.Videos)),
	)

	if err := s.Import(&file); err != nil {
		return 0, err
	}
	return len(file.Videos), nil
}

// Import 在一个事务中导入全部视频和快照，按 ID 幂等重放
func (s *ImportService) Import(file *ImportFileData) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		videoRepo := s.videoRepo.WithTx(tx)
		snapshotRepo := s.snapshotRepo.WithTx(tx)

		for i, v := range file.Videos {
			video := &model.Video{
				ID:            string(v.ID),
				CreatorID:     string(v.CreatorID),
				ViewsCount:    v.ViewsCount,
				LikesCount:    v.LikesCount,
				CommentsCount: v.CommentsCount,
				ReportsCount:  v.ReportsCount,
			}
			created := parseTime(v.VideoCreatedAt)
			if created == nil {
				return fmt.Errorf("导入视频 %s 失败: %w", video.ID, ErrVideoCreatedAtRequired)
			}
			video.VideoCreatedAt = *created
			if t := parseTime(v.CreatedAt); t != nil {
				video.CreatedAt = *t
			}
			if t := parseTime(v.UpdatedAt); t != nil {
				video.UpdatedAt = *t
			}

			if err := videoRepo.Upsert(video); err != nil {
				return fmt.Errorf("导入视频 %s 失败: %w", video.ID, err)
			}

			for _, sn := range v.Snapshots {
				created := parseTime(sn.CreatedAt)
				if created == nil {
					return fmt.Errorf("导入快照 %s 失败: %w", string(sn.ID), ErrSnapshotCreatedAtMissing)
				}

				snap := &model.VideoSnapshot{
					ID:                 string(sn.ID),
					ViewsCount:         sn.ViewsCount,
					LikesCount:         sn.LikesCount,
					CommentsCount:      sn.CommentsCount,
					ReportsCount:       sn.ReportsCount,
					DeltaViewsCount:    sn.DeltaViewsCount,
					DeltaLikesCount:    sn.DeltaLikesCount,
					DeltaCommentsCount: sn.DeltaCommentsCount,
					DeltaReportsCount:  sn.DeltaReportsCount,
					CreatedAt:          *created,
				}
				if id := string(sn.VideoID); id != "" {
					snap.VideoID = &id
				}
				if t := parseTime(sn.UpdatedAt); t != nil {
					snap.UpdatedAt = *t
				}

				if err := snapshotRepo.Upsert(snap); err != nil {
					return fmt.Errorf("导入快照 %s 失败: %w", snap.ID, err)
				}
			}

			if (i+1)%100 == 0 {
				logger.Info("Import progress",
					zap.Int("processed", i+1),
					zap.Int("total", len(file.Videos)),
				)
			}
		}
		return nil
	})
}

// parseTime 解析 ISO 时间字符串，空串或无法解析时返回 nil
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
