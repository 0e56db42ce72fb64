package service

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/pkg/ffmpeg"
	"video-platform/pkg/metrics"
	"video-platform/pkg/progress"
	"video-platform/pkg/storage"
	"video-platform/repository"
)

type ProcessingService interface {
	Process(ctx context.Context, message dto.VideoProcessingMessage) error
}

type ProcessingOptions struct {
	TempDir      string
	MaxAttempts  int
	TranscodeHLS bool
}

type processingService struct {
	repo      repository.Repository
	videos    VideoService
	storage   storage.Storage
	extractor ffmpeg.Extractor
	progress  progress.Store
	opts      ProcessingOptions
}

func NewProcessingService(
	repo repository.Repository,
	videos VideoService,
	store storage.Storage,
	extractor ffmpeg.Extractor,
	progressStore progress.Store,
	opts ProcessingOptions,
) ProcessingService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &processingService{
		repo:      repo,
		videos:    videos,
		storage:   store,
		extractor: extractor,
		progress:  progressStore,
		opts:      opts,
	}
}

// Process runs the post-upload pipeline of one video: duration probe, thumbnail, optional
// HLS rendition, READY. A returned error means the job went back to PENDING and should be
// redelivered; an interrupted run does not count as an attempt. Non-retryable failures and exhausted attempts fail the job and the video and
// return nil.
func (s processingService) Process(ctx context.Context, message dto.VideoProcessingMessage) (err error) {
	logger := zerolog.Ctx(ctx).With().
		Str("job_id", message.JobId.String()).
		Str("video_id", message.VideoId.String()).
		Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Msg("processing job")

	job, err := s.repo.FindJobById(ctx, message.JobId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Msg("job not found, dropping message")
			return nil
		}
		logger.Error().Err(err).Msg("failed to find job by id")
		return err
	}

	if job.Status != constant.JobStatusPending {
		logger.Info().Str("status", string(job.Status)).Msg("job is not pending")
		return nil
	}

	started, err := s.repo.StartJob(ctx, message.JobId)
	if err != nil {
		logger.Error().Err(err).Msg("failed to update job status")
		return err
	}
	if !started {
		logger.Info().Msg("job claimed by another worker")
		return nil
	}
	attempt := job.Attempts + 1
	startedAt := time.Now()

	defer func() {
		metrics.ProcessingDuration.Observe(time.Since(startedAt).Seconds())
		if err == nil {
			return
		}
		// The job row must leave PROCESSING even when ctx was cancelled by a shutdown.
		cleanupCtx := context.WithoutCancel(ctx)
		if ctx.Err() != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("processing interrupted, releasing job")
			if releaseErr := s.repo.ReleaseJob(cleanupCtx, message.JobId); releaseErr != nil {
				logger.Error().Err(releaseErr).Msg("failed to release job")
			}
			err = errors.Join(ctx.Err(), err)
			return
		}
		if errors.Is(err, ErrNonRetryable) || attempt >= s.opts.MaxAttempts {
			logger.Error().Err(err).Int("attempt", attempt).Msg("processing failed permanently")
			s.fail(cleanupCtx, message, err)
			err = nil
			return
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("processing failed, will retry")
		metrics.ProcessingJobsTotal.WithLabelValues("retried").Inc()
		if updateErr := s.repo.UpdateStatusJob(cleanupCtx, constant.JobStatusPending, message.JobId); updateErr != nil {
			logger.Error().Err(updateErr).Msg("failed to update job status")
		}
	}()

	tempDir := filepath.Join(s.opts.TempDir, message.JobId.String())
	defer os.RemoveAll(tempDir)
	if err = os.MkdirAll(tempDir, os.ModePerm); err != nil {
		logger.Error().Err(err).Msg("failed to create temp directory")
		return errors.Join(ErrNonRetryable, err)
	}

	video, err := s.videos.GetVideo(ctx, message.VideoId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errors.Join(ErrNonRetryable, err)
		}
		return err
	}
	if video.Status == constant.VideoStatusReady {
		logger.Info().Msg("video already ready")
		return s.complete(ctx, message)
	}
	if video.Status != constant.VideoStatusProcessing {
		return errors.Join(ErrNonRetryable, errors.New("video is "+string(video.Status.ProgressStatus())))
	}

	objectKey := message.ObjectKey
	if objectKey == "" {
		objectKey = video.OriginalFileKey
	}
	logger.Info().Str("object_key", objectKey).Msg("downloading original file")
	data, err := s.storage.Get(ctx, objectKey)
	if err != nil {
		logger.Error().Err(err).Msg("failed to download file")
		if errors.Is(err, storage.ErrObjectNotFound) {
			return errors.Join(ErrNonRetryable, err)
		}
		return err
	}

	s.probeDuration(ctx, message, data)

	if _, err = s.videos.GenerateThumbnail(ctx, message.VideoId, data); err != nil {
		logger.Error().Err(err).Msg("failed to record thumbnail")
		if errors.Is(err, ErrNotFound) {
			return errors.Join(ErrNonRetryable, err)
		}
		return err
	}

	if s.opts.TranscodeHLS {
		s.transcode(ctx, message, data, tempDir)
	}

	if _, err = s.videos.FinalizeUpload(ctx, message.VideoId); err != nil {
		logger.Error().Err(err).Msg("failed to finalize upload")
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return errors.Join(ErrNonRetryable, err)
		}
		return err
	}

	return s.complete(ctx, message)
}

func (s processingService) complete(ctx context.Context, message dto.VideoProcessingMessage) error {
	if err := s.repo.UpdateStatusJob(ctx, constant.JobStatusCompleted, message.JobId); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update job status")
		return err
	}

	if err := s.progress.Set(ctx, dto.Progress{
		VideoId:  message.VideoId.String(),
		Progress: 100,
		Status:   constant.ProgressStatusReady,
		Message:  "Video ready",
	}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record upload progress")
	}

	metrics.ProcessingJobsTotal.WithLabelValues("completed").Inc()
	zerolog.Ctx(ctx).Info().Msg("job completed")
	return nil
}

func (s processingService) fail(ctx context.Context, message dto.VideoProcessingMessage, cause error) {
	if err := s.repo.FailJob(ctx, message.JobId, cause.Error()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update job status")
	}
	if err := s.videos.MarkFailed(ctx, message.VideoId, "Processing failed"); err != nil && !errors.Is(err, ErrNotFound) {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark video failed")
	}
	metrics.ProcessingJobsTotal.WithLabelValues("failed").Inc()
}

// probeDuration is best effort; a video without a known duration keeps 0.
func (s processingService) probeDuration(ctx context.Context, message dto.VideoProcessingMessage, data []byte) {
	if s.extractor == nil {
		return
	}
	seconds, err := s.extractor.ProbeDuration(ctx, data)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to probe duration")
		return
	}
	if err := s.repo.UpdateVideo(ctx, message.VideoId, map[string]any{"duration": seconds}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to record duration")
	}
}

// transcode is best effort; without a rendition the stream falls back to the original file.
func (s processingService) transcode(ctx context.Context, message dto.VideoProcessingMessage, data []byte, tempDir string) {
	logger := zerolog.Ctx(ctx)
	if s.extractor == nil {
		return
	}

	inputFilepath := filepath.Join(tempDir, "input")
	outputDir := filepath.Join(tempDir, "output")
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		logger.Warn().Err(err).Msg("failed to create output dir")
		return
	}
	if err := os.WriteFile(inputFilepath, data, 0o600); err != nil {
		logger.Warn().Err(err).Msg("failed to write input file")
		return
	}

	logger.Info().Msg("transcode file")
	if err := s.extractor.TranscodeHLS(ctx, inputFilepath, outputDir); err != nil {
		logger.Warn().Err(err).Msg("failed to transcode file")
		return
	}

	prefix := path.Join("videos", message.VideoId.String(), "hls")
	logger.Info().Msg("upload transcode file")
	if err := storage.UploadDirectory(ctx, s.storage, outputDir, prefix); err != nil {
		logger.Warn().Err(err).Msg("failed to upload directory")
		return
	}

	playlistURL := s.storage.URL(path.Join(prefix, ffmpeg.MasterPlaylist))
	if err := s.repo.UpdateVideo(ctx, message.VideoId, map[string]any{"hls_playlist_url": playlistURL}); err != nil {
		logger.Warn().Err(err).Msg("failed to record playlist url")
	}
}
