package progress

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"video-platform/dto"
)

const DefaultTTL = time.Hour

// Store holds short-lived upload progress per video. Get returns nil when nothing is stored.
type Store interface {
	Set(ctx context.Context, p dto.Progress) error
	Get(ctx context.Context, videoId string) (*dto.Progress, error)
	Delete(ctx context.Context, videoId string) error
}

// New returns a redis backed store when client is set, otherwise an in-memory one.
func New(ctx context.Context, client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if client == nil {
		zerolog.Ctx(ctx).Warn().Msg("redis is not configured; upload progress is kept in memory")
		return NewMemoryStore(ttl)
	}
	return NewRedisStore(client, ttl)
}

func key(videoId string) string {
	return "upload:" + videoId
}
