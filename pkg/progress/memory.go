package progress

import (
	"context"
	"sync"
	"time"

	"video-platform/dto"
)

type entry struct {
	value     dto.Progress
	expiresAt time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *MemoryStore) Set(_ context.Context, p dto.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)
	s.entries[key(p.VideoId)] = entry{value: p, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, videoId string) (*dto.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key(videoId)]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key(videoId))
		return nil, nil
	}
	p := e.value
	return &p, nil
}

func (s *MemoryStore) Delete(_ context.Context, videoId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key(videoId))
	return nil
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
