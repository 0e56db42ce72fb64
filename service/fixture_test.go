package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"video-platform/constant"
	"video-platform/entities"
	"video-platform/pkg/progress"
	"video-platform/pkg/testhelpers"
	"video-platform/repository"
	"video-platform/service"
)

type fixture struct {
	ctx       context.Context
	repo      repository.Repository
	storage   *testhelpers.FakeStorage
	extractor *testhelpers.FakeExtractor
	progress  *progress.MemoryStore
	videos    service.VideoService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:       zerolog.Nop().WithContext(context.Background()),
		repo:      testhelpers.NewRepo(t),
		storage:   testhelpers.NewFakeStorage(),
		extractor: &testhelpers.FakeExtractor{Duration: 42},
		progress:  progress.NewMemoryStore(time.Hour),
	}
	f.videos = service.NewVideoService(f.repo, f.storage, f.extractor, f.progress, "")
	return f
}

func (f *fixture) user(t *testing.T) *entities.User {
	t.Helper()
	user := &entities.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, f.repo.CreateUser(f.ctx, user))
	return user
}

func (f *fixture) channel(t *testing.T, owner *entities.User) *entities.Channel {
	t.Helper()
	channel := &entities.Channel{UserId: owner.ID, Name: "Channel " + owner.ID.String()[:8]}
	require.NoError(t, f.repo.CreateChannel(f.ctx, channel))
	return channel
}

func (f *fixture) readyVideo(t *testing.T, channel *entities.Channel, title string) *entities.Video {
	t.Helper()
	video := &entities.Video{
		ChannelId:       channel.ID,
		Title:           title,
		Status:          constant.VideoStatusReady,
		OriginalFileUrl: "https://storage.test/original.mp4",
		ThumbnailUrl:    "https://storage.test/thumb.jpg",
	}
	require.NoError(t, f.repo.CreateVideo(f.ctx, video))
	return video
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *entities.Video {
	t.Helper()
	video, err := f.repo.FindVideoById(f.ctx, id)
	require.NoError(t, err)
	return video
}

func ptr[T any](v T) *T {
	return &v
}
