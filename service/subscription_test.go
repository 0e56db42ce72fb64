package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-platform/entities"
	"video-platform/service"
)

func assertSubscriberCount(t *testing.T, f *fixture, channel *entities.Channel, expected int64) {
	t.Helper()
	stored, err := f.repo.FindChannelById(f.ctx, channel.ID)
	require.NoError(t, err)
	rows, err := f.repo.CountSubscriptions(f.ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, stored.SubscriberCount)
	assert.Equal(t, rows, stored.SubscriberCount)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	subscriptions := service.NewSubscriptionService(f.repo)
	owner := f.user(t)
	fan := f.user(t)
	channel := f.channel(t, owner)

	t.Run("own channel", func(t *testing.T) {
		err := subscriptions.Subscribe(f.ctx, owner.ID, channel.ID)
		assert.ErrorIs(t, err, service.ErrSelfSubscription)
		assert.ErrorIs(t, err, service.ErrConflict)
		assertSubscriberCount(t, f, channel, 0)
	})

	t.Run("unknown channel", func(t *testing.T) {
		assert.ErrorIs(t, subscriptions.Subscribe(f.ctx, fan.ID, uuid.New()), service.ErrNotFound)
	})

	t.Run("subscribe once", func(t *testing.T) {
		require.NoError(t, subscriptions.Subscribe(f.ctx, fan.ID, channel.ID))
		assertSubscriberCount(t, f, channel, 1)

		state, err := subscriptions.Status(f.ctx, fan.ID, channel.ID)
		require.NoError(t, err)
		assert.True(t, state.IsSubscribed)
	})

	t.Run("subscribe twice", func(t *testing.T) {
		err := subscriptions.Subscribe(f.ctx, fan.ID, channel.ID)
		assert.ErrorIs(t, err, service.ErrAlreadySubscribed)
		assertSubscriberCount(t, f, channel, 1)
	})

	t.Run("list", func(t *testing.T) {
		list, err := subscriptions.List(f.ctx, fan.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.NotNil(t, list[0].Channel)
		assert.Equal(t, channel.ID, list[0].Channel.ID)

		empty, err := subscriptions.List(f.ctx, owner.ID)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		require.NoError(t, subscriptions.Unsubscribe(f.ctx, fan.ID, channel.ID))
		assertSubscriberCount(t, f, channel, 0)

		err := subscriptions.Unsubscribe(f.ctx, fan.ID, channel.ID)
		assert.ErrorIs(t, err, service.ErrNotSubscribed)
		assertSubscriberCount(t, f, channel, 0)

		state, err := subscriptions.Status(f.ctx, fan.ID, channel.ID)
		require.NoError(t, err)
		assert.False(t, state.IsSubscribed)
	})
}

func TestStatus_UnknownChannel(t *testing.T) {
	f := newFixture(t)
	subscriptions := service.NewSubscriptionService(f.repo)

	_, err := subscriptions.Status(f.ctx, f.user(t).ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
