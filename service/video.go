package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/pkg/ffmpeg"
	"video-platform/pkg/metrics"
	"video-platform/pkg/progress"
	"video-platform/pkg/storage"
	"video-platform/repository"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
)

// PlaceholderThumbnail is a 1280x720 grey SVG recorded when no frame can be extracted.
const PlaceholderThumbnail = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMTI4MCIgaGVpZ2h0PSI3MjAiIHhtbG5zPSJodHRwOi8vd3d3LnczLm9yZy8yMDAwL3N2ZyI+PHJlY3Qgd2lkdGg9IjEyODAiIGhlaWdodD0iNzIwIiBmaWxsPSIjZTVlN2ViIi8+PHRleHQgeD0iNTAlIiB5PSI1MCUiIGZvbnQtZmFtaWx5PSJBcmlhbCIgZm9udC1zaXplPSI0OCIgZmlsbD0iIzlhYTBhNiIgdGV4dC1hbmNob3I9Im1pZGRsZSIgZHk9Ii4zZW0iPlZpZGVvIFRodW1ibmFpbDwvdGV4dD48L3N2Zz4="

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type VideoService interface {
	CreateVideo(ctx context.Context, channelId uuid.UUID, title string, description *string) (*entities.Video, error)
	CompleteUpload(ctx context.Context, videoId uuid.UUID, data []byte, originalFilename string) (*entities.Video, error)
	GenerateThumbnail(ctx context.Context, videoId uuid.UUID, data []byte) (string, error)
	FinalizeUpload(ctx context.Context, videoId uuid.UUID) (*entities.Video, error)
	MarkFailed(ctx context.Context, videoId uuid.UUID, reason string) error
	UpdateMetadata(ctx context.Context, videoId, requesterId uuid.UUID, req dto.UpdateVideoRequest) (*entities.Video, error)
	DeleteVideo(ctx context.Context, videoId, requesterId uuid.UUID) error
	IncrementView(ctx context.Context, videoId uuid.UUID) error
	GetStream(ctx context.Context, videoId uuid.UUID) (*dto.StreamInfo, error)
	GetVideo(ctx context.Context, videoId uuid.UUID) (*entities.Video, error)
	GetProgress(ctx context.Context, videoId uuid.UUID) (*dto.Progress, error)
	ListRecent(ctx context.Context, page dto.Pagination) (dto.Page[entities.Video], error)
	Search(ctx context.Context, query string, page dto.Pagination) (dto.Page[entities.Video], error)
	ListByChannel(ctx context.Context, channelId uuid.UUID, includeUnpublished bool, page dto.Pagination) (dto.Page[entities.Video], error)
	UploadThumbnail(ctx context.Context, videoId, requesterId uuid.UUID, data []byte, filename string) (*entities.Video, error)
}

type videoService struct {
	repo        repository.Repository
	storage     storage.Storage
	extractor   ffmpeg.Extractor
	progress    progress.Store
	placeholder string
}

func NewVideoService(repo repository.Repository, store storage.Storage, extractor ffmpeg.Extractor, progressStore progress.Store, placeholder string) VideoService {
	if placeholder == "" {
		placeholder = PlaceholderThumbnail
	}
	return &videoService{
		repo:        repo,
		storage:     store,
		extractor:   extractor,
		progress:    progressStore,
		placeholder: placeholder,
	}
}

func (s *videoService) findVideo(ctx context.Context, id uuid.UUID) (*entities.Video, error) {
	video, err := s.repo.FindVideoById(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("video")
	}
	return video, err
}

// findOwnedVideo loads the video and checks that requesterId owns its channel.
func (s *videoService) findOwnedVideo(ctx context.Context, id, requesterId uuid.UUID, action string) (*entities.Video, error) {
	video, err := s.findVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Channel == nil || video.Channel.UserId != requesterId {
		return nil, forbidden(action)
	}
	return video, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationError("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", validationError("title must be at most %d characters", MaxTitleLength)
	}
	return title, nil
}

func validateDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	if utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return nil, validationError("description must be at most %d characters", MaxDescriptionLength)
	}
	return description, nil
}

func (s *videoService) CreateVideo(ctx context.Context, channelId uuid.UUID, title string, description *string) (*entities.Video, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = validateDescription(description)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindChannelById(ctx, channelId); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("channel")
		}
		return nil, err
	}

	video := &entities.Video{
		ChannelId:   channelId,
		Title:       title,
		Description: description,
		Status:      constant.VideoStatusUploading,
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("video_id", video.ID.String()).Msg("video created")
	return video, nil
}

func (s *videoService) CompleteUpload(ctx context.Context, videoId uuid.UUID, data []byte, originalFilename string) (*entities.Video, error) {
	video, err := s.findVideo(ctx, videoId)
	if err != nil {
		return nil, err
	}
	if video.Status != constant.VideoStatusUploading {
		return nil, fmt.Errorf("%w: video is already %s", ErrConflict, video.Status.ProgressStatus())
	}
	if len(data) == 0 {
		return nil, validationError("video file is empty")
	}

	key := storage.GenerateKey(path.Join(video.StoragePrefix(), "original"), originalFilename)
	url, err := s.storage.Put(ctx, key, data, storage.ContentType(data, originalFilename))
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("put").Inc()
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoId.String()).Msg("failed to store original file")
		if failErr := s.MarkFailed(ctx, videoId, "Upload failed"); failErr != nil {
			zerolog.Ctx(ctx).Error().Err(failErr).Str("video_id", videoId.String()).Msg("failed to mark video failed")
		}
		return nil, fmt.Errorf("%w: could not store video file", ErrUpstreamUnavailable)
	}
	metrics.UploadBytesTotal.Add(float64(len(data)))

	ok, err := s.repo.TransitionVideoStatus(ctx, videoId, constant.VideoStatusProcessing, map[string]any{
		"original_file_url": url,
		"original_file_key": key,
	})
	if err != nil || !ok {
		s.deleteObject(ctx, key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("video")
			}
			return nil, err
		}
		return nil, fmt.Errorf("%w: video is no longer uploading", ErrConflict)
	}

	s.setProgress(ctx, dto.Progress{
		VideoId:  videoId.String(),
		Progress: 100,
		Status:   constant.ProgressStatusProcessing,
		Message:  "Generating thumbnail...",
	})

	return s.findVideo(ctx, videoId)
}

// GenerateThumbnail records either an extracted frame or the placeholder. Extractor and
// storage failures never fail the call.
func (s *videoService) GenerateThumbnail(ctx context.Context, videoId uuid.UUID, data []byte) (string, error) {
	video, err := s.findVideo(ctx, videoId)
	if err != nil {
		return "", err
	}

	logger := zerolog.Ctx(ctx).With().Str("video_id", videoId.String()).Logger()
	url, key := s.placeholder, ""

	frame, err := s.extractFrame(ctx, data)
	if err != nil {
		logger.Warn().Err(err).Msg("thumbnail extraction failed; using placeholder")
	} else {
		thumbKey := storage.GenerateKey(path.Join(video.StoragePrefix(), "thumbnails"), "thumbnail.jpg")
		thumbURL, err := s.storage.Put(ctx, thumbKey, frame, "image/jpeg")
		if err != nil {
			metrics.StorageErrorsTotal.WithLabelValues("put").Inc()
			logger.Warn().Err(err).Msg("failed to store thumbnail; using placeholder")
		} else {
			url, key = thumbURL, thumbKey
		}
	}

	if err := s.repo.UpdateVideo(ctx, videoId, map[string]any{
		"thumbnail_url": url,
		"thumbnail_key": key,
	}); err != nil {
		if key != "" {
			s.deleteObject(ctx, key)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFound("video")
		}
		return "", err
	}

	if video.ThumbnailKey != "" && video.ThumbnailKey != key {
		s.deleteObject(ctx, video.ThumbnailKey)
	}

	source := "generated"
	if key == "" {
		source = "placeholder"
	}
	metrics.ThumbnailsTotal.WithLabelValues(source).Inc()
	logger.Info().Str("source", source).Msg("thumbnail recorded")

	return url, nil
}

func (s *videoService) extractFrame(ctx context.Context, data []byte) ([]byte, error) {
	if s.extractor == nil || !s.extractor.IsAvailable(ctx) {
		return nil, ffmpeg.ErrUnavailable
	}
	return s.extractor.ExtractFirstFrame(ctx, data)
}

func (s *videoService) FinalizeUpload(ctx context.Context, videoId uuid.UUID) (*entities.Video, error) {
	video, err := s.findVideo(ctx, videoId)
	if err != nil {
		return nil, err
	}
	if video.Status == constant.VideoStatusReady {
		return video, nil
	}
	if video.OriginalFileUrl == "" || video.ThumbnailUrl == "" {
		return nil, fmt.Errorf("%w: video is missing its file or thumbnail", ErrConflict)
	}

	ok, err := s.repo.TransitionVideoStatus(ctx, videoId, constant.VideoStatusReady, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: video cannot become ready while %s", ErrConflict, video.Status.ProgressStatus())
	}

	zerolog.Ctx(ctx).Info().Str("video_id", videoId.String()).Msg("video ready")
	return s.findVideo(ctx, videoId)
}

// MarkFailed moves a non-terminal video to FAILED, clearing and removing its stored original.
func (s *videoService) MarkFailed(ctx context.Context, videoId uuid.UUID, reason string) error {
	video, err := s.findVideo(ctx, videoId)
	if err != nil {
		return err
	}
	if video.Status == constant.VideoStatusFailed {
		return nil
	}

	ok, err := s.repo.TransitionVideoStatus(ctx, videoId, constant.VideoStatusFailed, map[string]any{
		"original_file_url": "",
		"original_file_key": "",
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: video is already %s", ErrConflict, video.Status.ProgressStatus())
	}

	if video.OriginalFileKey != "" {
		s.deleteObject(ctx, video.OriginalFileKey)
	}

	s.setProgress(ctx, dto.Progress{
		VideoId:  videoId.String(),
		Progress: 0,
		Status:   constant.ProgressStatusFailed,
		Message:  reason,
	})

	zerolog.Ctx(ctx).Warn().Str("video_id", videoId.String()).Str("reason", reason).Msg("video failed")
	return nil
}

func (s *videoService) UpdateMetadata(ctx context.Context, videoId, requesterId uuid.UUID, req dto.UpdateVideoRequest) (*entities.Video, error) {
	if _, err := s.findOwnedVideo(ctx, videoId, requesterId, "update your own videos"); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if req.Description != nil {
		if _, err := validateDescription(req.Description); err != nil {
			return nil, err
		}
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return nil, validationError("nothing to update")
	}

	if err := s.repo.UpdateVideo(ctx, videoId, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("video")
		}
		return nil, err
	}
	return s.findVideo(ctx, videoId)
}

func (s *videoService) DeleteVideo(ctx context.Context, videoId, requesterId uuid.UUID) error {
	video, err := s.findOwnedVideo(ctx, videoId, requesterId, "delete your own videos")
	if err != nil {
		return err
	}

	s.deletePrefix(ctx, video.StoragePrefix())

	if err := s.repo.DeleteVideo(ctx, videoId); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("video")
		}
		return err
	}

	if err := s.progress.Delete(ctx, videoId.String()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("video_id", videoId.String()).Msg("failed to drop upload progress")
	}

	zerolog.Ctx(ctx).Info().Str("video_id", videoId.String()).Msg("video deleted")
	return nil
}

func (s *videoService) IncrementView(ctx context.Context, videoId uuid.UUID) error {
	err := s.repo.AdjustVideoCounter(ctx, videoId, "view_count", 1)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("video")
	}
	return err
}

func (s *videoService) GetStream(ctx context.Context, videoId uuid.UUID) (*dto.StreamInfo, error) {
	video, err := s.findVideo(ctx, videoId)
	if err != nil {
		return nil, err
	}
	if video.Status != constant.VideoStatusReady {
		return nil, fmt.Errorf("%w: video is %s", ErrNotReady, video.Status.ProgressStatus())
	}

	playlist := video.OriginalFileUrl
	if video.HlsPlaylistUrl != nil && *video.HlsPlaylistUrl != "" {
		playlist = *video.HlsPlaylistUrl
	}
	return &dto.StreamInfo{
		HlsPlaylistUrl: playlist,
		OriginalUrl:    video.OriginalFileUrl,
	}, nil
}

func (s *videoService) GetVideo(ctx context.Context, videoId uuid.UUID) (*entities.Video, error) {
	return s.findVideo(ctx, videoId)
}

// GetProgress prefers the side channel and otherwise derives progress from the status.
func (s *videoService) GetProgress(ctx context.Context, videoId uuid.UUID) (*dto.Progress, error) {
	p, err := s.progress.Get(ctx, videoId.String())
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("video_id", videoId.String()).Msg("failed to read upload progress")
	}
	if p != nil {
		return p, nil
	}

	video, err := s.findVideo(ctx, videoId)
	if err != nil {
		return nil, err
	}
	status := video.Status.ProgressStatus()
	return &dto.Progress{
		VideoId:  videoId.String(),
		Progress: 100,
		Status:   status,
		Message:  "Video is " + string(status),
	}, nil
}

func (s *videoService) list(ctx context.Context, filter repository.VideoFilter, page dto.Pagination) (dto.Page[entities.Video], error) {
	page = page.Normalize()
	videos, total, err := s.repo.ListVideos(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return dto.Page[entities.Video]{}, err
	}
	return dto.NewPage(videos, total, page.Page, page.Limit), nil
}

func (s *videoService) ListRecent(ctx context.Context, page dto.Pagination) (dto.Page[entities.Video], error) {
	ready := constant.VideoStatusReady
	return s.list(ctx, repository.VideoFilter{Status: &ready}, page)
}

func (s *videoService) Search(ctx context.Context, query string, page dto.Pagination) (dto.Page[entities.Video], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return dto.Page[entities.Video]{}, validationError("search query is required")
	}
	ready := constant.VideoStatusReady
	return s.list(ctx, repository.VideoFilter{Status: &ready, Query: query}, page)
}

// ListByChannel returns READY videos, or every video when includeUnpublished is set for the owner.
func (s *videoService) ListByChannel(ctx context.Context, channelId uuid.UUID, includeUnpublished bool, page dto.Pagination) (dto.Page[entities.Video], error) {
	if _, err := s.repo.FindChannelById(ctx, channelId); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.Page[entities.Video]{}, notFound("channel")
		}
		return dto.Page[entities.Video]{}, err
	}

	filter := repository.VideoFilter{ChannelId: &channelId}
	if !includeUnpublished {
		ready := constant.VideoStatusReady
		filter.Status = &ready
	}
	return s.list(ctx, filter, page)
}

func (s *videoService) UploadThumbnail(ctx context.Context, videoId, requesterId uuid.UUID, data []byte, filename string) (*entities.Video, error) {
	video, err := s.findOwnedVideo(ctx, videoId, requesterId, "change thumbnails of your own videos")
	if err != nil {
		return nil, err
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return nil, validationError("thumbnail must be a jpeg, png or webp image")
	}

	key := storage.GenerateKey(path.Join(video.StoragePrefix(), "thumbnails"), "thumbnail"+mt.Extension())
	url, err := s.storage.Put(ctx, key, data, mt.String())
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("put").Inc()
		zerolog.Ctx(ctx).Error().Err(err).Str("video_id", videoId.String()).Msg("failed to store custom thumbnail")
		return nil, fmt.Errorf("%w: could not store thumbnail", ErrUpstreamUnavailable)
	}

	if err := s.repo.UpdateVideo(ctx, videoId, map[string]any{
		"thumbnail_url": url,
		"thumbnail_key": key,
	}); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}
	if video.ThumbnailKey != "" {
		s.deleteObject(ctx, video.ThumbnailKey)
	}

	return s.findVideo(ctx, videoId)
}

func (s *videoService) setProgress(ctx context.Context, p dto.Progress) {
	if err := s.progress.Set(ctx, p); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("video_id", p.VideoId).Msg("failed to record upload progress")
	}
}

func (s *videoService) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("delete").Inc()
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete stored object")
	}
}

func (s *videoService) deletePrefix(ctx context.Context, prefix string) {
	if err := s.storage.DeletePrefix(ctx, prefix); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("delete").Inc()
		zerolog.Ctx(ctx).Warn().Err(err).Str("prefix", prefix).Msg("failed to delete stored objects")
	}
}
