package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-platform/constant"
	"video-platform/dto"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	got, err := s.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set(ctx, dto.Progress{VideoId: "v1", Progress: 40, Status: constant.ProgressStatusUploading}))

	got, err = s.Get(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, constant.ProgressStatusUploading, got.Status)

	require.NoError(t, s.Delete(ctx, "v1"))
	got, err = s.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, dto.Progress{VideoId: "v1", Progress: 100, Status: constant.ProgressStatusProcessing}))

	now = now.Add(59 * time.Minute)
	got, err := s.Get(ctx, "v1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(time.Minute)
	got, err = s.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNew_FallsBackToMemory(t *testing.T) {
	s := New(context.Background(), nil, 0)
	_, ok := s.(*MemoryStore)
	assert.True(t, ok)
}
