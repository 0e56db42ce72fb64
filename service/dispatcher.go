package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/repository"
)

// Publisher hands a message to the processing queue.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

// Dispatcher schedules post-upload processing for a video in PROCESSING.
type Dispatcher interface {
	Dispatch(ctx context.Context, video *entities.Video) (*entities.Job, error)
}

type dispatcher struct {
	repo        repository.Repository
	publisher   Publisher
	processor   ProcessingService
	maxAttempts int
	retryDelay  time.Duration
}

// NewDispatcher queues work through publisher when one is given and otherwise runs the
// processor inline.
func NewDispatcher(repo repository.Repository, publisher Publisher, processor ProcessingService, maxAttempts int) Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &dispatcher{
		repo:        repo,
		publisher:   publisher,
		processor:   processor,
		maxAttempts: maxAttempts,
		retryDelay:  500 * time.Millisecond,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, video *entities.Video) (*entities.Job, error) {
	job := &entities.Job{
		EntityId:   video.ID,
		EntityType: constant.EntityTypeVideo,
		Status:     constant.JobStatusPending,
		JobType:    constant.JobTypeVideoProcessing,
	}
	if err := d.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	message := dto.VideoProcessingMessage{
		JobId:     job.ID,
		VideoId:   video.ID,
		ObjectKey: video.OriginalFileKey,
	}
	logger := zerolog.Ctx(ctx).With().Str("job_id", job.ID.String()).Str("video_id", video.ID.String()).Logger()

	if d.publisher != nil {
		err := d.publisher.Publish(ctx, message)
		if err == nil {
			logger.Info().Msg("processing job queued")
			return job, nil
		}
		logger.Warn().Err(err).Msg("failed to publish processing job; running inline")
	}

	// Inline processing outlives a disconnected client.
	inlineCtx := context.WithoutCancel(ctx)
	_, err := backoff.Retry(inlineCtx, func() (struct{}, error) {
		return struct{}{}, d.processor.Process(inlineCtx, message)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(d.retryDelay)),
		backoff.WithMaxTries(uint(d.maxAttempts)),
	)
	if err != nil {
		return job, err
	}
	return job, nil
}
