package progress

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"video-platform/dto"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Set(ctx context.Context, p dto.Progress) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(p.VideoId), payload, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, videoId string) (*dto.Progress, error) {
	raw, err := s.client.Get(ctx, key(videoId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p dto.Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RedisStore) Delete(ctx context.Context, videoId string) error {
	return s.client.Del(ctx, key(videoId)).Err()
}
