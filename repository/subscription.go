package repository

import (
	"context"

	"github.com/google/uuid"
	"video-platform/entities"
)

type SubscriptionRepository interface {
	FindSubscription(ctx context.Context, userId, channelId uuid.UUID) (*entities.Subscription, error)
	CreateSubscription(ctx context.Context, subscription *entities.Subscription) error
	DeleteSubscription(ctx context.Context, id uuid.UUID) error
	ListSubscriptions(ctx context.Context, userId uuid.UUID) ([]entities.Subscription, error)
	CountSubscriptions(ctx context.Context, channelId uuid.UUID) (int64, error)
}

func (r *repo) FindSubscription(ctx context.Context, userId, channelId uuid.UUID) (*entities.Subscription, error) {
	subscription := &entities.Subscription{}
	if err := r.conn(ctx).First(subscription, "user_id = ? AND channel_id = ?", userId, channelId).Error; err != nil {
		return nil, translate(err)
	}
	return subscription, nil
}

func (r *repo) CreateSubscription(ctx context.Context, subscription *entities.Subscription) error {
	return translate(r.conn(ctx).Create(subscription).Error)
}

func (r *repo) DeleteSubscription(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(&entities.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) ListSubscriptions(ctx context.Context, userId uuid.UUID) ([]entities.Subscription, error) {
	var subscriptions []entities.Subscription
	err := r.conn(ctx).Preload("Channel").
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&subscriptions).Error
	return subscriptions, err
}

func (r *repo) CountSubscriptions(ctx context.Context, channelId uuid.UUID) (int64, error) {
	var total int64
	err := r.conn(ctx).Model(&entities.Subscription{}).Where("channel_id = ?", channelId).Count(&total).Error
	return total, err
}
