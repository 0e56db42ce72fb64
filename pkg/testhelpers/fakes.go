package testhelpers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"video-platform/dto"
	"video-platform/pkg/ffmpeg"
	"video-platform/pkg/storage"
)

var ErrInjected = errors.New("injected failure")

var (
	// SampleVideo starts with an ISO base media ftyp box.
	SampleVideo = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free")
	SamplePNG   = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

// FakeStorage keeps objects in memory and can be told to fail.
type FakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	FailPut         bool
	FailPutPrefix   string
	FailGet         bool
	// OnGet runs before every Get, outside the lock.
	OnGet           func()
	FailDelete      bool
	DeletedPrefixes []string
	DeletedKeys     []string
	NotConfigured   bool
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{objects: make(map[string][]byte)}
}

func (s *FakeStorage) Name() string       { return "fake" }
func (s *FakeStorage) IsConfigured() bool { return !s.NotConfigured }

func (s *FakeStorage) URL(key string) string {
	return "https://storage.test/" + key
}

func (s *FakeStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPut || (s.FailPutPrefix != "" && strings.Contains(key, s.FailPutPrefix)) {
		return "", ErrInjected
	}
	s.objects[key] = append([]byte(nil), data...)
	return s.URL(key), nil
}

func (s *FakeStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if s.OnGet != nil {
		s.OnGet()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailGet {
		return nil, ErrInjected
	}
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (s *FakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeletedKeys = append(s.DeletedKeys, key)
	if s.FailDelete {
		return ErrInjected
	}
	delete(s.objects, key)
	return nil
}

func (s *FakeStorage) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.DeletedPrefixes = append(s.DeletedPrefixes, prefix)
	if s.FailDelete {
		return ErrInjected
	}
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			delete(s.objects, k)
		}
	}
	return nil
}

func (s *FakeStorage) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *FakeStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// FakeExtractor returns canned frames, durations and errors.
type FakeExtractor struct {
	Unavailable  bool
	Frame        []byte
	FrameErr     error
	Duration     int
	DurationErr  error
	TranscodeErr error
	Calls        int
}

func (e *FakeExtractor) IsAvailable(context.Context) bool {
	return !e.Unavailable
}

func (e *FakeExtractor) ExtractFirstFrame(_ context.Context, _ []byte) ([]byte, error) {
	e.Calls++
	if e.Unavailable {
		return nil, ffmpeg.ErrUnavailable
	}
	if e.FrameErr != nil {
		return nil, e.FrameErr
	}
	if e.Frame == nil {
		return []byte{0xFF, 0xD8, 0xFF, 0xE0}, nil
	}
	return e.Frame, nil
}

func (e *FakeExtractor) ProbeDuration(context.Context, []byte) (int, error) {
	if e.Unavailable {
		return 0, ffmpeg.ErrUnavailable
	}
	return e.Duration, e.DurationErr
}

// TranscodeHLS writes a minimal master playlist.
func (e *FakeExtractor) TranscodeHLS(_ context.Context, _ string, outputDir string) error {
	if e.Unavailable {
		return ffmpeg.ErrUnavailable
	}
	if e.TranscodeErr != nil {
		return e.TranscodeErr
	}
	return os.WriteFile(filepath.Join(outputDir, ffmpeg.MasterPlaylist), []byte("#EXTM3U\n"), 0o644)
}

// FakePublisher records published messages and optionally fails.
type FakePublisher struct {
	mu       sync.Mutex
	Fail     bool
	Messages []dto.VideoProcessingMessage
}

func (p *FakePublisher) Publish(_ context.Context, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Fail {
		return ErrInjected
	}
	if msg, ok := payload.(dto.VideoProcessingMessage); ok {
		p.Messages = append(p.Messages, msg)
	}
	return nil
}
