package constant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"video-platform/constant"
)

func TestVideoStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     constant.VideoStatus
		to       constant.VideoStatus
		expected bool
	}{
		{"uploading to processing", constant.VideoStatusUploading, constant.VideoStatusProcessing, true},
		{"uploading to failed", constant.VideoStatusUploading, constant.VideoStatusFailed, true},
		{"uploading to ready skips processing", constant.VideoStatusUploading, constant.VideoStatusReady, false},
		{"processing to ready", constant.VideoStatusProcessing, constant.VideoStatusReady, true},
		{"processing to failed", constant.VideoStatusProcessing, constant.VideoStatusFailed, true},
		{"processing back to uploading", constant.VideoStatusProcessing, constant.VideoStatusUploading, false},
		{"ready is final", constant.VideoStatusReady, constant.VideoStatusProcessing, false},
		{"ready cannot fail", constant.VideoStatusReady, constant.VideoStatusFailed, false},
		{"failed is final", constant.VideoStatusFailed, constant.VideoStatusReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestVideoStatus_Predecessors(t *testing.T) {
	assert.ElementsMatch(t, []constant.VideoStatus{constant.VideoStatusUploading}, constant.VideoStatusProcessing.Predecessors())
	assert.ElementsMatch(t, []constant.VideoStatus{constant.VideoStatusProcessing}, constant.VideoStatusReady.Predecessors())
	assert.ElementsMatch(t,
		[]constant.VideoStatus{constant.VideoStatusUploading, constant.VideoStatusProcessing},
		constant.VideoStatusFailed.Predecessors(),
	)
	assert.Empty(t, constant.VideoStatusUploading.Predecessors())
}

func TestVideoStatus_IsTerminal(t *testing.T) {
	assert.False(t, constant.VideoStatusUploading.IsTerminal())
	assert.False(t, constant.VideoStatusProcessing.IsTerminal())
	assert.True(t, constant.VideoStatusReady.IsTerminal())
	assert.True(t, constant.VideoStatusFailed.IsTerminal())
}

func TestVideoStatus_ProgressStatus(t *testing.T) {
	assert.Equal(t, constant.ProgressStatusReady, constant.VideoStatusReady.ProgressStatus())
	assert.Equal(t, constant.ProgressStatusUploading, constant.VideoStatusUploading.ProgressStatus())
}

func TestReaction(t *testing.T) {
	assert.True(t, constant.ReactionLike.Valid())
	assert.True(t, constant.ReactionDislike.Valid())
	assert.False(t, constant.Reaction("LOVE").Valid())

	assert.Equal(t, constant.ReactionDislike, constant.ReactionLike.Opposite())
	assert.Equal(t, constant.ReactionLike, constant.ReactionDislike.Opposite())

	assert.Equal(t, "like_count", constant.ReactionLike.CounterColumn())
	assert.Equal(t, "dislike_count", constant.ReactionDislike.CounterColumn())
}
