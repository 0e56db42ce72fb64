package handler

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"video-platform/dto"
	"video-platform/pkg/rabbitmq"
	"video-platform/service"
)

type ServiceDependencies struct {
	ProcessingService service.ProcessingService
}

// JobHandler decodes a processing message and runs it. Undecodable bodies are discarded.
func JobHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var job dto.VideoProcessingMessage
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal processing message")
		return errors.Join(rabbitmq.ErrDiscard, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("job_id", job.JobId.String()).
		Str("video_id", job.VideoId.String()).
		Msg("received processing message")

	return deps.ProcessingService.Process(ctx, job)
}
