package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"video-stats/internal/model"
	"video-stats/internal/repository"
	"video-stats/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const importFixture = `{
  "videos": [
    {
      "id": 1001,
      "creator_id": 42,
      "video_created_at": "2025-01-10T08:00:00Z",
      "views_count": 150,
      "likes_count": 12,
      "comments_count": 3,
      "reports_count": 0,
      "created_at": "2025-01-10T08:05:00Z",
      "updated_at": "2025-01-12T08:05:00Z",
      "snapshots": [
        {
          "id": "snap-1",
          "video_id": 1001,
          "views_count": 100,
          "likes_count": 10,
          "comments_count": 2,
          "reports_count": 0,
          "delta_views_count": 100,
          "delta_likes_count": 10,
          "delta_comments_count": 2,
          "delta_reports_count": 0,
          "created_at": "2025-01-11T08:00:00Z"
        },
        {
          "id": "snap-2",
          "video_id": 1001,
          "views_count": 150,
          "likes_count": 12,
          "comments_count": 3,
          "reports_count": 0,
          "delta_views_count": 50,
          "delta_likes_count": 2,
          "delta_comments_count": 1,
          "delta_reports_count": 0,
          "created_at": "2025-01-12T08:00:00Z"
        }
      ]
    },
    {
      "id": "vid-2",
      "creator_id": "creator-7",
      "video_created_at": "2025-02-01T00:00:00Z",
      "views_count": 5,
      "snapshots": []
    }
  ]
}`

func newImportService(t *testing.T) (*service.ImportService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := service.NewImportService(
		db,
		repository.NewVideoRepository(db),
		repository.NewSnapshotRepository(db),
	)
	return svc, db
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "videos.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportFile(t *testing.T) {
	svc, db := newImportService(t)
	path := writeFixture(t, importFixture)

	count, err := svc.ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	videoRepo := repository.NewVideoRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// 数字形式的 ID 以文本落库
	video, err := videoRepo.GetByID("1001")
	require.NoError(t, err)
	assert.Equal(t, "42", video.CreatorID)
	assert.Equal(t, 150, video.ViewsCount)
	assert.Equal(t, 12, video.LikesCount)

	snaps, total, err := snapshotRepo.ListByVideo("1001", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, snaps, 2)
	assert.Equal(t, "snap-1", snaps[0].ID)
	assert.Equal(t, 100, snaps[0].DeltaViewsCount)
	assert.Equal(t, "snap-2", snaps[1].ID)
	assert.Equal(t, 50, snaps[1].DeltaViewsCount)
	assert.Equal(t, 2, snaps[1].DeltaLikesCount)

	other, err := videoRepo.GetByID("vid-2")
	require.NoError(t, err)
	assert.Equal(t, "creator-7", other.CreatorID)
	assert.Equal(t, 5, other.ViewsCount)
}

func TestImportFile_ReplayIsIdempotent(t *testing.T) {
	svc, db := newImportService(t)
	path := writeFixture(t, importFixture)

	_, err := svc.ImportFile(path)
	require.NoError(t, err)
	_, err = svc.ImportFile(path)
	require.NoError(t, err)

	var videos, snaps int64
	require.NoError(t, db.Model(&model.Video{}).Count(&videos).Error)
	require.NoError(t, db.Model(&model.VideoSnapshot{}).Count(&snaps).Error)
	assert.EqualValues(t, 2, videos)
	assert.EqualValues(t, 2, snaps)
}

func TestImportFile_SnapshotWithoutCreatedAtRejected(t *testing.T) {
	svc, db := newImportService(t)
	path := writeFixture(t, `{
  "videos": [
    {
      "id": "v1",
      "creator_id": "c1",
      "video_created_at": "2025-01-10T08:00:00Z",
      "snapshots": [
        {"id": "s1", "video_id": "v1", "views_count": 1}
      ]
    }
  ]
}`)

	_, err := svc.ImportFile(path)
	assert.ErrorIs(t, err, service.ErrSnapshotCreatedAtMissing)

	// 事务回滚，视频也不应落库
	var videos int64
	require.NoError(t, db.Model(&model.Video{}).Count(&videos).Error)
	assert.EqualValues(t, 0, videos)
}

func TestImportFile_MissingFile(t *testing.T) {
	svc, _ := newImportService(t)

	_, err := svc.ImportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestImportFile_VideoWithoutCreatedAtRejected(t *testing.T) {
	svc, _ := newImportService(t)
	path := writeFixture(t, `{"videos": [{"id": "v1", "creator_id": "c1", "snapshots": []}]}`)

	_, err := svc.ImportFile(path)
	assert.ErrorIs(t, err, service.ErrVideoCreatedAtRequired)
}
