package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-platform/entities"
)

type ChannelRepository interface {
	CreateChannel(ctx context.Context, channel *entities.Channel) error
	FindChannelById(ctx context.Context, id uuid.UUID) (*entities.Channel, error)
	FindChannelByUserId(ctx context.Context, userId uuid.UUID) (*entities.Channel, error)
	UpdateChannel(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AdjustSubscriberCount(ctx context.Context, id uuid.UUID, delta int64) error
	DeleteChannel(ctx context.Context, id uuid.UUID) error
}

func (r *repo) CreateChannel(ctx context.Context, channel *entities.Channel) error {
	return translate(r.conn(ctx).Create(channel).Error)
}

func (r *repo) FindChannelById(ctx context.Context, id uuid.UUID) (*entities.Channel, error) {
	channel := &entities.Channel{}
	if err := r.conn(ctx).First(channel, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.fillVideoCount(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (r *repo) FindChannelByUserId(ctx context.Context, userId uuid.UUID) (*entities.Channel, error) {
	channel := &entities.Channel{}
	if err := r.conn(ctx).First(channel, "user_id = ?", userId).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.fillVideoCount(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (r *repo) fillVideoCount(ctx context.Context, channel *entities.Channel) error {
	return r.conn(ctx).Model(&entities.Video{}).Where("channel_id = ?", channel.ID).Count(&channel.VideoCount).Error
}

func (r *repo) UpdateChannel(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.conn(ctx).Model(&entities.Channel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) AdjustSubscriberCount(ctx context.Context, id uuid.UUID, delta int64) error {
	res := r.conn(ctx).Model(&entities.Channel{}).Where("id = ?", id).
		UpdateColumn("subscriber_count", adjust("subscriber_count", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChannel removes the channel with its videos, their likes, comments and jobs,
// and every subscription to it.
func (r *repo) DeleteChannel(ctx context.Context, id uuid.UUID) error {
	return r.Transaction(ctx, func(ctx context.Context) error {
		videoIds := func() *gorm.DB {
			return r.conn(ctx).Model(&entities.Video{}).Select("id").Where("channel_id = ?", id)
		}

		if err := r.conn(ctx).Where("video_id IN (?)", videoIds()).Delete(&entities.VideoLike{}).Error; err != nil {
			return err
		}
		if err := r.conn(ctx).Where("video_id IN (?)", videoIds()).Delete(&entities.Comment{}).Error; err != nil {
			return err
		}
		if err := r.conn(ctx).Where("entity_id IN (?)", videoIds()).Delete(&entities.Job{}).Error; err != nil {
			return err
		}
		if err := r.conn(ctx).Where("channel_id = ?", id).Delete(&entities.Video{}).Error; err != nil {
			return err
		}
		if err := r.conn(ctx).Where("channel_id = ?", id).Delete(&entities.Subscription{}).Error; err != nil {
			return err
		}

		res := r.conn(ctx).Where("id = ?", id).Delete(&entities.Channel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
