package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/pkg/metrics"
	"video-platform/repository"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, userId, channelId uuid.UUID) error
	Unsubscribe(ctx context.Context, userId, channelId uuid.UUID) error
	Status(ctx context.Context, userId, channelId uuid.UUID) (*dto.SubscriptionState, error)
	List(ctx context.Context, userId uuid.UUID) ([]entities.Subscription, error)
}

type subscriptionService struct {
	repo repository.Repository
}

func NewSubscriptionService(repo repository.Repository) SubscriptionService {
	return &subscriptionService{repo: repo}
}

func (s *subscriptionService) findChannel(ctx context.Context, channelId uuid.UUID) (*entities.Channel, error) {
	channel, err := s.repo.FindChannelById(ctx, channelId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("channel")
	}
	return channel, err
}

func (s *subscriptionService) Subscribe(ctx context.Context, userId, channelId uuid.UUID) error {
	_, err := retryOnRace(ctx, s.repo, func(ctx context.Context) (struct{}, error) {
		channel, err := s.findChannel(ctx, channelId)
		if err != nil {
			return struct{}{}, err
		}
		if channel.UserId == userId {
			return struct{}{}, ErrSelfSubscription
		}

		_, err = s.repo.FindSubscription(ctx, userId, channelId)
		if err == nil {
			return struct{}{}, ErrAlreadySubscribed
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return struct{}{}, err
		}

		if err := s.repo.CreateSubscription(ctx, &entities.Subscription{UserId: userId, ChannelId: channelId}); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.repo.AdjustSubscriberCount(ctx, channelId, 1)
	})
	if err != nil {
		return err
	}

	metrics.SubscriptionsTotal.WithLabelValues("subscribed").Inc()
	return nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userId, channelId uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.findChannel(ctx, channelId); err != nil {
			return err
		}

		subscription, err := s.repo.FindSubscription(ctx, userId, channelId)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotSubscribed
		}
		if err != nil {
			return err
		}

		if err := s.repo.DeleteSubscription(ctx, subscription.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotSubscribed
			}
			return err
		}
		return s.repo.AdjustSubscriberCount(ctx, channelId, -1)
	})
	if err != nil {
		return err
	}

	metrics.SubscriptionsTotal.WithLabelValues("unsubscribed").Inc()
	return nil
}

func (s *subscriptionService) Status(ctx context.Context, userId, channelId uuid.UUID) (*dto.SubscriptionState, error) {
	if _, err := s.findChannel(ctx, channelId); err != nil {
		return nil, err
	}

	_, err := s.repo.FindSubscription(ctx, userId, channelId)
	if errors.Is(err, repository.ErrNotFound) {
		return &dto.SubscriptionState{IsSubscribed: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionState{IsSubscribed: true}, nil
}

func (s *subscriptionService) List(ctx context.Context, userId uuid.UUID) ([]entities.Subscription, error) {
	subscriptions, err := s.repo.ListSubscriptions(ctx, userId)
	if err != nil {
		return nil, err
	}
	if subscriptions == nil {
		subscriptions = []entities.Subscription{}
	}
	return subscriptions, nil
}
