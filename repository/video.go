package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-platform/constant"
	"video-platform/entities"
)

type VideoFilter struct {
	ChannelId *uuid.UUID
	Status    *constant.VideoStatus
	Query     string
}

type VideoRepository interface {
	CreateVideo(ctx context.Context, video *entities.Video) error
	FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error)
	UpdateVideo(ctx context.Context, id uuid.UUID, updates map[string]any) error
	TransitionVideoStatus(ctx context.Context, id uuid.UUID, to constant.VideoStatus, updates map[string]any) (bool, error)
	AdjustVideoCounter(ctx context.Context, id uuid.UUID, column string, delta int64) error
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	ListVideos(ctx context.Context, filter VideoFilter, offset, limit int) ([]entities.Video, int64, error)
	FindVideoIdsByChannel(ctx context.Context, channelId uuid.UUID) ([]uuid.UUID, error)
}

func (r *repo) CreateVideo(ctx context.Context, video *entities.Video) error {
	return translate(r.conn(ctx).Create(video).Error)
}

func (r *repo) FindVideoById(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	video := &entities.Video{}
	if err := r.conn(ctx).Preload("Channel").First(video, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return video, nil
}

func (r *repo) UpdateVideo(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.conn(ctx).Model(&entities.Video{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionVideoStatus moves the video to status `to` only when its current status is
// one of to's predecessors. It reports false when the row exists but was in another status.
func (r *repo) TransitionVideoStatus(ctx context.Context, id uuid.UUID, to constant.VideoStatus, updates map[string]any) (bool, error) {
	values := map[string]any{"status": to}
	for k, v := range updates {
		values[k] = v
	}

	res := r.conn(ctx).Model(&entities.Video{}).
		Where("id = ? AND status IN ?", id, to.Predecessors()).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := r.conn(ctx).Model(&entities.Video{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *repo) AdjustVideoCounter(ctx context.Context, id uuid.UUID, column string, delta int64) error {
	res := r.conn(ctx).Model(&entities.Video{}).Where("id = ?", id).UpdateColumn(column, adjust(column, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVideo removes the video together with its likes, comments and jobs.
func (r *repo) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	return r.Transaction(ctx, func(ctx context.Context) error {
		if err := r.conn(ctx).Where("video_id = ?", id).Delete(&entities.VideoLike{}).Error; err != nil {
			return err
		}
		if err := r.conn(ctx).Where("video_id = ?", id).Delete(&entities.Comment{}).Error; err != nil {
			return err
		}
		if err := r.conn(ctx).Where("entity_id = ?", id).Delete(&entities.Job{}).Error; err != nil {
			return err
		}

		res := r.conn(ctx).Where("id = ?", id).Delete(&entities.Video{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repo) ListVideos(ctx context.Context, filter VideoFilter, offset, limit int) ([]entities.Video, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&entities.Video{})
		if filter.ChannelId != nil {
			db = db.Where("channel_id = ?", *filter.ChannelId)
		}
		if filter.Status != nil {
			db = db.Where("status = ?", *filter.Status)
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
			db = db.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\\')", pattern, pattern)
		}
		return db
	}

	var total int64
	if err := r.conn(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []entities.Video
	err := r.conn(ctx).Scopes(scope).
		Preload("Channel").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *repo) FindVideoIdsByChannel(ctx context.Context, channelId uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(ctx).Model(&entities.Video{}).Where("channel_id = ?", channelId).Pluck("id", &ids).Error
	return ids, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
