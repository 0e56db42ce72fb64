package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/pkg/metrics"
	"video-platform/pkg/progress"
	"video-platform/repository"
)

type UploadInput struct {
	Title       string
	Description *string
	Filename    string
	ContentType string
	Data        []byte
}

type UploadService interface {
	Upload(ctx context.Context, userId uuid.UUID, input UploadInput) (*entities.Video, error)
}

type uploadService struct {
	repo       repository.Repository
	videos     VideoService
	dispatcher Dispatcher
	progress   progress.Store
}

func NewUploadService(repo repository.Repository, videos VideoService, dispatcher Dispatcher, progressStore progress.Store) UploadService {
	return &uploadService{
		repo:       repo,
		videos:     videos,
		dispatcher: dispatcher,
		progress:   progressStore,
	}
}

// Upload creates the video in the requester's channel, stores the file and hands the
// video to post-processing. The returned video is PROCESSING or, when processing ran
// inline, READY or FAILED.
func (s *uploadService) Upload(ctx context.Context, userId uuid.UUID, input UploadInput) (*entities.Video, error) {
	channel, err := s.repo.FindChannelByUserId(ctx, userId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationError("create a channel before uploading videos")
		}
		return nil, err
	}

	if len(input.Data) == 0 {
		return nil, validationError("video file is required")
	}
	if !isVideo(input.Data, input.ContentType) {
		return nil, validationError("only video files are allowed")
	}

	video, err := s.videos.CreateVideo(ctx, channel.ID, input.Title, input.Description)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx).With().Str("video_id", video.ID.String()).Logger()

	if err := s.progress.Set(ctx, dto.Progress{
		VideoId:  video.ID.String(),
		Progress: 0,
		Status:   constant.ProgressStatusUploading,
		Message:  "Uploading video...",
	}); err != nil {
		logger.Warn().Err(err).Msg("failed to record upload progress")
	}

	video, err = s.videos.CompleteUpload(ctx, video.ID, input.Data, input.Filename)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.UploadsTotal.WithLabelValues("stored").Inc()

	if _, err := s.dispatcher.Dispatch(ctx, video); err != nil {
		logger.Error().Err(err).Msg("failed to dispatch processing")
	}

	return s.videos.GetVideo(ctx, video.ID)
}

func isVideo(data []byte, declared string) bool {
	if strings.HasPrefix(mimetype.Detect(data).String(), "video/") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(declared), "video/")
}
