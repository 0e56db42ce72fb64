package service_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/pkg/testhelpers"
	"video-platform/repository"
	"video-platform/service"
)

func TestCreateVideo(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))

	video, err := f.videos.CreateVideo(f.ctx, channel.ID, "  Intro  ", ptr("first upload"))
	require.NoError(t, err)

	assert.Equal(t, "Intro", video.Title)
	assert.Equal(t, constant.VideoStatusUploading, video.Status)

	stored := f.reload(t, video.ID)
	assert.Equal(t, constant.VideoStatusUploading, stored.Status)
	assert.Zero(t, stored.ViewCount)
	assert.Zero(t, stored.LikeCount)
	assert.Zero(t, stored.DislikeCount)
	assert.Zero(t, stored.CommentCount)
	assert.Zero(t, stored.Duration)
	assert.Empty(t, stored.OriginalFileUrl)
	assert.Empty(t, stored.ThumbnailUrl)
}

func TestCreateVideo_Validation(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))

	tests := []struct {
		name        string
		title       string
		description *string
	}{
		{"empty title", "   ", nil},
		{"title too long", strings.Repeat("a", service.MaxTitleLength+1), nil},
		{"description too long", "ok", ptr(strings.Repeat("d", service.MaxDescriptionLength+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.videos.CreateVideo(f.ctx, channel.ID, tt.title, tt.description)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}

	_, total, err := f.repo.ListVideos(f.ctx, repository.VideoFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateVideo_TitleAtLimit(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))

	_, err := f.videos.CreateVideo(f.ctx, channel.ID, strings.Repeat("é", service.MaxTitleLength), nil)
	assert.NoError(t, err)
}

func TestCreateVideo_UnknownChannel(t *testing.T) {
	f := newFixture(t)

	_, err := f.videos.CreateVideo(f.ctx, uuid.New(), "Intro", nil)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUploadLifecycle_WithoutExtractor(t *testing.T) {
	f := newFixture(t)
	f.extractor.Unavailable = true
	channel := f.channel(t, f.user(t))

	video, err := f.videos.CreateVideo(f.ctx, channel.ID, "Intro", nil)
	require.NoError(t, err)

	video, err = f.videos.CompleteUpload(f.ctx, video.ID, testhelpers.SampleVideo, "intro.mp4")
	require.NoError(t, err)
	assert.Equal(t, constant.VideoStatusProcessing, video.Status)
	assert.NotEmpty(t, video.OriginalFileUrl)
	assert.True(t, f.storage.Has(video.OriginalFileKey))

	p, err := f.videos.GetProgress(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, constant.ProgressStatusProcessing, p.Status)
	assert.Equal(t, 100, p.Progress)

	url, err := f.videos.GenerateThumbnail(f.ctx, video.ID, testhelpers.SampleVideo)
	require.NoError(t, err)
	assert.Equal(t, service.PlaceholderThumbnail, url)

	video, err = f.videos.FinalizeUpload(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, constant.VideoStatusReady, video.Status)
	assert.Equal(t, service.PlaceholderThumbnail, video.ThumbnailUrl)
	assert.Empty(t, video.ThumbnailKey)
}

func TestGenerateThumbnail_StoresExtractedFrame(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))
	video, err := f.videos.CreateVideo(f.ctx, channel.ID, "Intro", nil)
	require.NoError(t, err)

	url, err := f.videos.GenerateThumbnail(f.ctx, video.ID, testhelpers.SampleVideo)
	require.NoError(t, err)

	stored := f.reload(t, video.ID)
	assert.Equal(t, url, stored.ThumbnailUrl)
	assert.True(t, strings.HasPrefix(stored.ThumbnailKey, video.StoragePrefix()+"thumbnails/"))
	assert.True(t, f.storage.Has(stored.ThumbnailKey))
	assert.Equal(t, 1, f.extractor.Calls)
}

func TestGenerateThumbnail_DegradesToPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{"extraction fails", func(f *fixture) { f.extractor.FrameErr = testhelpers.ErrInjected }},
		{"storage rejects the frame", func(f *fixture) { f.storage.FailPutPrefix = "thumbnails" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)
			channel := f.channel(t, f.user(t))
			video, err := f.videos.CreateVideo(f.ctx, channel.ID, "Intro", nil)
			require.NoError(t, err)

			url, err := f.videos.GenerateThumbnail(f.ctx, video.ID, testhelpers.SampleVideo)
			require.NoError(t, err)
			assert.Equal(t, service.PlaceholderThumbnail, url)
			assert.Equal(t, service.PlaceholderThumbnail, f.reload(t, video.ID).ThumbnailUrl)
		})
	}
}

func TestGenerateThumbnail_CustomPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.extractor.Unavailable = true
	videos := service.NewVideoService(f.repo, f.storage, f.extractor, f.progress, "https://cdn.test/placeholder.png")
	channel := f.channel(t, f.user(t))
	video, err := videos.CreateVideo(f.ctx, channel.ID, "Intro", nil)
	require.NoError(t, err)

	url, err := videos.GenerateThumbnail(f.ctx, video.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/placeholder.png", url)
}

func TestCompleteUpload_StorageFailureMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.storage.FailPut = true
	channel := f.channel(t, f.user(t))
	video, err := f.videos.CreateVideo(f.ctx, channel.ID, "Intro", nil)
	require.NoError(t, err)

	_, err = f.videos.CompleteUpload(f.ctx, video.ID, testhelpers.SampleVideo, "intro.mp4")
	assert.ErrorIs(t, err, service.ErrUpstreamUnavailable)

	stored := f.reload(t, video.ID)
	assert.Equal(t, constant.VideoStatusFailed, stored.Status)
	assert.Empty(t, stored.OriginalFileUrl)

	p, err := f.videos.GetProgress(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, constant.ProgressStatusFailed, p.Status)
}

func TestCompleteUpload_RejectsWrongState(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))
	video := f.readyVideo(t, channel, "Done")

	_, err := f.videos.CompleteUpload(f.ctx, video.ID, testhelpers.SampleVideo, "intro.mp4")
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.Empty(t, f.storage.Keys())
}

func TestFinalizeUpload(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))

	t.Run("requires a thumbnail", func(t *testing.T) {
		video, err := f.videos.CreateVideo(f.ctx, channel.ID, "Intro", nil)
		require.NoError(t, err)
		_, err = f.videos.CompleteUpload(f.ctx, video.ID, testhelpers.SampleVideo, "intro.mp4")
		require.NoError(t, err)

		_, err = f.videos.FinalizeUpload(f.ctx, video.ID)
		assert.ErrorIs(t, err, service.ErrConflict)
		assert.Equal(t, constant.VideoStatusProcessing, f.reload(t, video.ID).Status)
	})

	t.Run("ready is idempotent", func(t *testing.T) {
		video := f.readyVideo(t, channel, "Done")

		got, err := f.videos.FinalizeUpload(f.ctx, video.ID)
		require.NoError(t, err)
		assert.Equal(t, constant.VideoStatusReady, got.Status)
	})

	t.Run("unknown video", func(t *testing.T) {
		_, err := f.videos.FinalizeUpload(f.ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestMarkFailed(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))

	t.Run("ready cannot fail", func(t *testing.T) {
		video := f.readyVideo(t, channel, "Done")

		err := f.videos.MarkFailed(f.ctx, video.ID, "boom")
		assert.ErrorIs(t, err, service.ErrConflict)
		assert.Equal(t, constant.VideoStatusReady, f.reload(t, video.ID).Status)
	})

	t.Run("processing video drops its original", func(t *testing.T) {
		video, err := f.videos.CreateVideo(f.ctx, channel.ID, "Intro", nil)
		require.NoError(t, err)
		video, err = f.videos.CompleteUpload(f.ctx, video.ID, testhelpers.SampleVideo, "intro.mp4")
		require.NoError(t, err)

		require.NoError(t, f.videos.MarkFailed(f.ctx, video.ID, "Processing failed"))
		require.NoError(t, f.videos.MarkFailed(f.ctx, video.ID, "again"))

		stored := f.reload(t, video.ID)
		assert.Equal(t, constant.VideoStatusFailed, stored.Status)
		assert.Empty(t, stored.OriginalFileUrl)
		assert.False(t, f.storage.Has(video.OriginalFileKey))
	})
}

func TestUpdateMetadata(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t)
	stranger := f.user(t)
	video := f.readyVideo(t, f.channel(t, owner), "Original")

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := f.videos.UpdateMetadata(f.ctx, video.ID, stranger.ID, dto.UpdateVideoRequest{Title: ptr("Hijacked")})
		assert.ErrorIs(t, err, service.ErrForbidden)
		assert.Equal(t, "Original", f.reload(t, video.ID).Title)
	})

	t.Run("title too long", func(t *testing.T) {
		_, err := f.videos.UpdateMetadata(f.ctx, video.ID, owner.ID, dto.UpdateVideoRequest{Title: ptr(strings.Repeat("x", 101))})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := f.videos.UpdateMetadata(f.ctx, video.ID, owner.ID, dto.UpdateVideoRequest{})
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("owner updates title and description", func(t *testing.T) {
		got, err := f.videos.UpdateMetadata(f.ctx, video.ID, owner.ID, dto.UpdateVideoRequest{
			Title:       ptr("Renamed"),
			Description: ptr("new words"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, "new words", *got.Description)
		assert.Equal(t, constant.VideoStatusReady, got.Status)
	})
}

func TestDeleteVideo(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t)
	viewer := f.user(t)
	video := f.readyVideo(t, f.channel(t, owner), "Doomed")

	reactions := service.NewReactionService(f.repo)
	comments := service.NewCommentService(f.repo)
	_, err := reactions.SetReaction(f.ctx, viewer.ID, video.ID, constant.ReactionLike)
	require.NoError(t, err)
	_, err = comments.Create(f.ctx, viewer.ID, video.ID, dto.CreateCommentRequest{Content: "nice"})
	require.NoError(t, err)

	err = f.videos.DeleteVideo(f.ctx, video.ID, viewer.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	f.storage.FailDelete = true
	require.NoError(t, f.videos.DeleteVideo(f.ctx, video.ID, owner.ID))

	_, err = f.repo.FindVideoById(f.ctx, video.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.repo.FindReaction(f.ctx, viewer.ID, video.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	count, err := f.repo.CountTopLevelComments(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Contains(t, f.storage.DeletedPrefixes, video.StoragePrefix())

	_, err = f.videos.GetProgress(f.ctx, video.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestIncrementView(t *testing.T) {
	f := newFixture(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Popular")

	for i := 0; i < 3; i++ {
		require.NoError(t, f.videos.IncrementView(f.ctx, video.ID))
	}
	assert.EqualValues(t, 3, f.reload(t, video.ID).ViewCount)

	assert.ErrorIs(t, f.videos.IncrementView(f.ctx, uuid.New()), service.ErrNotFound)
}

func TestGetStream(t *testing.T) {
	f := newFixture(t)
	channel := f.channel(t, f.user(t))

	t.Run("not ready", func(t *testing.T) {
		video, err := f.videos.CreateVideo(f.ctx, channel.ID, "Pending", nil)
		require.NoError(t, err)

		_, err = f.videos.GetStream(f.ctx, video.ID)
		assert.ErrorIs(t, err, service.ErrNotReady)
		assert.Regexp(t, `^video is \w+$`, service.Message(err))
	})

	t.Run("falls back to the original file", func(t *testing.T) {
		video := f.readyVideo(t, channel, "Plain")

		stream, err := f.videos.GetStream(f.ctx, video.ID)
		require.NoError(t, err)
		assert.Equal(t, video.OriginalFileUrl, stream.HlsPlaylistUrl)
		assert.Equal(t, video.OriginalFileUrl, stream.OriginalUrl)
	})

	t.Run("prefers the hls playlist", func(t *testing.T) {
		video := f.readyVideo(t, channel, "Adaptive")
		require.NoError(t, f.repo.UpdateVideo(f.ctx, video.ID, map[string]any{"hls_playlist_url": "https://storage.test/master.m3u8"}))

		stream, err := f.videos.GetStream(f.ctx, video.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://storage.test/master.m3u8", stream.HlsPlaylistUrl)
	})
}

func TestGetProgress_DerivedFromStatus(t *testing.T) {
	f := newFixture(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Done")

	p, err := f.videos.GetProgress(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.Progress{
		VideoId:  video.ID.String(),
		Progress: 100,
		Status:   constant.ProgressStatusReady,
		Message:  "Video is ready",
	}, p)

	_, err = f.videos.GetProgress(f.ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListAndSearch(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t)
	channel := f.channel(t, owner)
	f.readyVideo(t, channel, "Go Concurrency Patterns")
	f.readyVideo(t, channel, "Cooking pasta")
	_, err := f.videos.CreateVideo(f.ctx, channel.ID, "Go draft", nil)
	require.NoError(t, err)

	recent, err := f.videos.ListRecent(f.ctx, dto.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, recent.Total)
	assert.Equal(t, dto.DefaultPageLimit, recent.Limit)

	found, err := f.videos.Search(f.ctx, "go concurrency", dto.Pagination{})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Go Concurrency Patterns", found.Items[0].Title)

	none, err := f.videos.Search(f.ctx, "100%", dto.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, none.Items)

	_, err = f.videos.Search(f.ctx, "  ", dto.Pagination{})
	assert.ErrorIs(t, err, service.ErrValidation)

	public, err := f.videos.ListByChannel(f.ctx, channel.ID, false, dto.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, public.Total)

	all, err := f.videos.ListByChannel(f.ctx, channel.ID, true, dto.Pagination{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 2, all.Pages)

	_, err = f.videos.ListByChannel(f.ctx, uuid.New(), false, dto.Pagination{})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUploadThumbnail(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t)
	video := f.readyVideo(t, f.channel(t, owner), "Custom")

	_, err := f.videos.UploadThumbnail(f.ctx, video.ID, owner.ID, []byte("plain text"), "thumb.txt")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.videos.UploadThumbnail(f.ctx, video.ID, f.user(t).ID, testhelpers.SamplePNG, "thumb.png")
	assert.ErrorIs(t, err, service.ErrForbidden)

	got, err := f.videos.UploadThumbnail(f.ctx, video.ID, owner.ID, testhelpers.SamplePNG, "thumb.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got.ThumbnailKey, ".png"))
	assert.True(t, f.storage.Has(got.ThumbnailKey))
	assert.Equal(t, f.storage.URL(got.ThumbnailKey), got.ThumbnailUrl)
}
