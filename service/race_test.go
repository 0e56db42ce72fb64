package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/repository"
	"video-platform/service"
)

// racingRepo replays what a request sees when another request commits between its read
// and its write: the first lookup returns a prepared result, and inserts can be made to
// lose the unique race.
type racingRepo struct {
	repository.Repository

	reactionRead     func() (*entities.VideoLike, error)
	subscriptionRead func() (*entities.Subscription, error)

	duplicateReactions     int
	duplicateSubscriptions int

	reactionReads     int
	subscriptionReads int
}

func (r *racingRepo) FindReaction(ctx context.Context, userId, videoId uuid.UUID) (*entities.VideoLike, error) {
	r.reactionReads++
	if read := r.reactionRead; read != nil {
		r.reactionRead = nil
		return read()
	}
	return r.Repository.FindReaction(ctx, userId, videoId)
}

func (r *racingRepo) CreateReaction(ctx context.Context, like *entities.VideoLike) error {
	if r.duplicateReactions > 0 {
		r.duplicateReactions--
		return fmt.Errorf("%w: video_likes user_id, video_id", repository.ErrDuplicate)
	}
	return r.Repository.CreateReaction(ctx, like)
}

func (r *racingRepo) FindSubscription(ctx context.Context, userId, channelId uuid.UUID) (*entities.Subscription, error) {
	r.subscriptionReads++
	if read := r.subscriptionRead; read != nil {
		r.subscriptionRead = nil
		return read()
	}
	return r.Repository.FindSubscription(ctx, userId, channelId)
}

func (r *racingRepo) CreateSubscription(ctx context.Context, subscription *entities.Subscription) error {
	if r.duplicateSubscriptions > 0 {
		r.duplicateSubscriptions--
		return fmt.Errorf("%w: subscriptions user_id, channel_id", repository.ErrDuplicate)
	}
	return r.Repository.CreateSubscription(ctx, subscription)
}

// snapshot returns a reader that hands out the row as it is now.
func snapshot(t *testing.T, f *fixture, userId, videoId uuid.UUID) func() (*entities.VideoLike, error) {
	t.Helper()
	row, err := f.repo.FindReaction(f.ctx, userId, videoId)
	require.NoError(t, err)
	stale := *row
	return func() (*entities.VideoLike, error) {
		copied := stale
		return &copied, nil
	}
}

func notFoundReaction() (*entities.VideoLike, error) {
	return nil, repository.ErrNotFound
}

func TestSetReaction_RacingWrites(t *testing.T) {
	type setup func(t *testing.T, f *fixture, plain service.ReactionService, racing *racingRepo, viewer, video uuid.UUID)

	cases := []struct {
		name     string
		setup    setup
		reaction constant.Reaction
		state    dto.ReactionState
		likes    int64
		dislikes int64
		reads    int
	}{
		{
			name: "switch after a concurrent switch",
			setup: func(t *testing.T, f *fixture, plain service.ReactionService, racing *racingRepo, viewer, video uuid.UUID) {
				_, err := plain.SetReaction(f.ctx, viewer, video, constant.ReactionLike)
				require.NoError(t, err)
				racing.reactionRead = snapshot(t, f, viewer, video)
				_, err = plain.SetReaction(f.ctx, viewer, video, constant.ReactionDislike)
				require.NoError(t, err)
			},
			// The stale like is rejected; the fresh read sees the dislike and removes it.
			reaction: constant.ReactionDislike,
			state:    dto.ReactionState{},
			reads:    2,
		},
		{
			name: "toggle off after a concurrent toggle off",
			setup: func(t *testing.T, f *fixture, plain service.ReactionService, racing *racingRepo, viewer, video uuid.UUID) {
				_, err := plain.SetReaction(f.ctx, viewer, video, constant.ReactionLike)
				require.NoError(t, err)
				racing.reactionRead = snapshot(t, f, viewer, video)
				_, err = plain.SetReaction(f.ctx, viewer, video, constant.ReactionLike)
				require.NoError(t, err)
			},
			reaction: constant.ReactionLike,
			state:    dto.ReactionState{Liked: true},
			likes:    1,
			reads:    2,
		},
		{
			name: "insert hits the unique index",
			setup: func(t *testing.T, f *fixture, plain service.ReactionService, racing *racingRepo, viewer, video uuid.UUID) {
				_, err := plain.SetReaction(f.ctx, viewer, video, constant.ReactionLike)
				require.NoError(t, err)
				racing.reactionRead = notFoundReaction
			},
			reaction: constant.ReactionLike,
			state:    dto.ReactionState{},
			reads:    2,
		},
		{
			name: "insert loses to a concurrent insert",
			setup: func(t *testing.T, f *fixture, plain service.ReactionService, racing *racingRepo, viewer, video uuid.UUID) {
				racing.duplicateReactions = 1
			},
			reaction: constant.ReactionDislike,
			state:    dto.ReactionState{Disliked: true},
			dislikes: 1,
			reads:    2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			racing := &racingRepo{Repository: f.repo}
			plain := service.NewReactionService(f.repo)
			reactions := service.NewReactionService(racing)
			viewer := f.user(t)
			video := f.readyVideo(t, f.channel(t, f.user(t)), "Clip")

			tc.setup(t, f, plain, racing, viewer.ID, video.ID)

			state, err := reactions.SetReaction(f.ctx, viewer.ID, video.ID, tc.reaction)
			require.NoError(t, err)
			assert.Equal(t, tc.state, *state)
			assert.Equal(t, tc.reads, racing.reactionReads)

			stored := f.reload(t, video.ID)
			assert.Equal(t, tc.likes, stored.LikeCount)
			assert.Equal(t, tc.dislikes, stored.DislikeCount)
			assertReactionCounters(t, f, video)
		})
	}
}

func TestSetReaction_RaceNeverSettlesIsConflict(t *testing.T) {
	f := newFixture(t)
	racing := &racingRepo{Repository: f.repo, duplicateReactions: 10}
	reactions := service.NewReactionService(racing)
	viewer := f.user(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Clip")

	_, err := reactions.SetReaction(f.ctx, viewer.ID, video.ID, constant.ReactionLike)
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.NotErrorIs(t, err, repository.ErrDuplicate)
	assertReactionCounters(t, f, video)
}

func TestSubscribe_RacingWrites(t *testing.T) {
	t.Run("insert hits the unique index", func(t *testing.T) {
		f := newFixture(t)
		racing := &racingRepo{Repository: f.repo}
		fan := f.user(t)
		channel := f.channel(t, f.user(t))
		require.NoError(t, service.NewSubscriptionService(f.repo).Subscribe(f.ctx, fan.ID, channel.ID))

		racing.subscriptionRead = func() (*entities.Subscription, error) { return nil, repository.ErrNotFound }
		err := service.NewSubscriptionService(racing).Subscribe(f.ctx, fan.ID, channel.ID)
		assert.ErrorIs(t, err, service.ErrAlreadySubscribed)
		assert.Equal(t, 2, racing.subscriptionReads)
		assertSubscriberCount(t, f, channel, 1)
	})

	t.Run("insert loses to a concurrent insert", func(t *testing.T) {
		f := newFixture(t)
		racing := &racingRepo{Repository: f.repo, duplicateSubscriptions: 1}
		fan := f.user(t)
		channel := f.channel(t, f.user(t))

		require.NoError(t, service.NewSubscriptionService(racing).Subscribe(f.ctx, fan.ID, channel.ID))
		assert.Equal(t, 2, racing.subscriptionReads)
		assertSubscriberCount(t, f, channel, 1)
	})
}
