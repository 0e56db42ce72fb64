package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/repository"
	"video-platform/service"
)

func assertCommentCount(t *testing.T, f *fixture, video *entities.Video, expected int64) {
	t.Helper()
	count, err := f.repo.CountTopLevelComments(f.ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, count)
	assert.Equal(t, count, f.reload(t, video.ID).CommentCount)
}

func TestCreateComment_OnlyTopLevelCounts(t *testing.T) {
	f := newFixture(t)
	comments := service.NewCommentService(f.repo)
	author := f.user(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Talk")

	top, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "  first!  "})
	require.NoError(t, err)
	assert.Equal(t, "first!", top.Content)
	require.NotNil(t, top.User)
	assert.Equal(t, author.ID, top.User.ID)
	assertCommentCount(t, f, video, 1)

	reply, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "reply", ParentId: &top.ID})
	require.NoError(t, err)
	assert.Equal(t, &top.ID, reply.ParentId)
	assertCommentCount(t, f, video, 1)
}

func TestCreateComment_Errors(t *testing.T) {
	f := newFixture(t)
	comments := service.NewCommentService(f.repo)
	author := f.user(t)
	channel := f.channel(t, f.user(t))
	video := f.readyVideo(t, channel, "Talk")
	other := f.readyVideo(t, channel, "Other talk")

	top, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "top"})
	require.NoError(t, err)
	reply, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "reply", ParentId: &top.ID})
	require.NoError(t, err)

	tests := []struct {
		name     string
		videoId  uuid.UUID
		req      dto.CreateCommentRequest
		expected error
	}{
		{"empty content", video.ID, dto.CreateCommentRequest{Content: "   "}, service.ErrValidation},
		{"content too long", video.ID, dto.CreateCommentRequest{Content: strings.Repeat("c", service.MaxCommentLength+1)}, service.ErrValidation},
		{"unknown video", uuid.New(), dto.CreateCommentRequest{Content: "hi"}, service.ErrNotFound},
		{"unknown parent", video.ID, dto.CreateCommentRequest{Content: "hi", ParentId: ptr(uuid.New())}, service.ErrNotFound},
		{"parent on another video", other.ID, dto.CreateCommentRequest{Content: "hi", ParentId: &top.ID}, service.ErrValidation},
		{"reply to a reply", video.ID, dto.CreateCommentRequest{Content: "hi", ParentId: &reply.ID}, service.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := comments.Create(f.ctx, author.ID, tt.videoId, tt.req)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	assertCommentCount(t, f, video, 1)
	assertCommentCount(t, f, other, 0)
}

func TestDeleteComment_TopLevelWithReplies(t *testing.T) {
	f := newFixture(t)
	comments := service.NewCommentService(f.repo)
	author := f.user(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Talk")

	_, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "stays"})
	require.NoError(t, err)
	top, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "goes"})
	require.NoError(t, err)
	var replyIds []uuid.UUID
	for i := 0; i < 3; i++ {
		reply, err := comments.Create(f.ctx, f.user(t).ID, video.ID, dto.CreateCommentRequest{Content: "reply", ParentId: &top.ID})
		require.NoError(t, err)
		replyIds = append(replyIds, reply.ID)
	}
	assertCommentCount(t, f, video, 2)

	err = comments.Delete(f.ctx, top.ID, f.user(t).ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	require.NoError(t, comments.Delete(f.ctx, top.ID, author.ID))
	assertCommentCount(t, f, video, 1)
	for _, id := range replyIds {
		_, err := f.repo.FindCommentById(f.ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	}

	assert.ErrorIs(t, comments.Delete(f.ctx, top.ID, author.ID), service.ErrNotFound)
}

func TestDeleteComment_ReplyKeepsCount(t *testing.T) {
	f := newFixture(t)
	comments := service.NewCommentService(f.repo)
	author := f.user(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Talk")

	top, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "top"})
	require.NoError(t, err)
	reply, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "reply", ParentId: &top.ID})
	require.NoError(t, err)

	require.NoError(t, comments.Delete(f.ctx, reply.ID, author.ID))
	assertCommentCount(t, f, video, 1)
}

func TestUpdateComment(t *testing.T) {
	f := newFixture(t)
	comments := service.NewCommentService(f.repo)
	author := f.user(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Talk")
	comment, err := comments.Create(f.ctx, author.ID, video.ID, dto.CreateCommentRequest{Content: "typo"})
	require.NoError(t, err)

	_, err = comments.Update(f.ctx, comment.ID, f.user(t).ID, "vandalism")
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = comments.Update(f.ctx, comment.ID, author.ID, "")
	assert.ErrorIs(t, err, service.ErrValidation)

	updated, err := comments.Update(f.ctx, comment.ID, author.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content)

	_, err = comments.Update(f.ctx, uuid.New(), author.ID, "fixed")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListComments(t *testing.T) {
	f := newFixture(t)
	comments := service.NewCommentService(f.repo)
	author := f.user(t)
	video := f.readyVideo(t, f.channel(t, f.user(t)), "Talk")

	base := time.Now().Add(-time.Hour)
	older := &entities.Comment{VideoId: video.ID, UserId: author.ID, Content: "older", CreatedAt: base}
	newer := &entities.Comment{VideoId: video.ID, UserId: author.ID, Content: "newer", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, f.repo.CreateComment(f.ctx, older))
	require.NoError(t, f.repo.CreateComment(f.ctx, newer))
	for i, content := range []string{"second reply", "first reply"} {
		require.NoError(t, f.repo.CreateComment(f.ctx, &entities.Comment{
			VideoId:   video.ID,
			UserId:    author.ID,
			ParentId:  &older.ID,
			Content:   content,
			CreatedAt: base.Add(time.Duration(10-i) * time.Second),
		}))
	}

	page, err := comments.List(f.ctx, video.ID, dto.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)

	assert.Equal(t, "newer", page.Items[0].Content)
	assert.NotNil(t, page.Items[0].Replies)
	assert.Empty(t, page.Items[0].Replies)

	assert.Equal(t, "older", page.Items[1].Content)
	require.Len(t, page.Items[1].Replies, 2)
	assert.Equal(t, "first reply", page.Items[1].Replies[0].Content)
	assert.Equal(t, "second reply", page.Items[1].Replies[1].Content)
	require.NotNil(t, page.Items[1].Replies[0].User)

	_, err = comments.List(f.ctx, uuid.New(), dto.Pagination{})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
