package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/pkg/metrics"
	"video-platform/repository"
)

type ReactionService interface {
	SetReaction(ctx context.Context, userId, videoId uuid.UUID, reaction constant.Reaction) (*dto.ReactionState, error)
	GetReaction(ctx context.Context, userId, videoId uuid.UUID) (*dto.ReactionState, error)
}

type reactionService struct {
	repo repository.Repository
}

func NewReactionService(repo repository.Repository) ReactionService {
	return &reactionService{repo: repo}
}

func stateOf(reaction *constant.Reaction) *dto.ReactionState {
	state := &dto.ReactionState{}
	if reaction != nil {
		state.Liked = *reaction == constant.ReactionLike
		state.Disliked = *reaction == constant.ReactionDislike
	}
	return state
}

type reactionChange struct {
	state  *dto.ReactionState
	action string
}

// SetReaction applies the toggle rules: no row creates one, the same reaction removes it,
// the opposite reaction flips it. The row and the video counters change in one transaction.
func (s *reactionService) SetReaction(ctx context.Context, userId, videoId uuid.UUID, reaction constant.Reaction) (*dto.ReactionState, error) {
	if !reaction.Valid() {
		return nil, validationError("unknown reaction %q", reaction)
	}

	change, err := retryOnRace(ctx, s.repo, func(ctx context.Context) (reactionChange, error) {
		if _, err := s.repo.FindVideoById(ctx, videoId); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return reactionChange{}, notFound("video")
			}
			return reactionChange{}, err
		}

		existing, err := s.repo.FindReaction(ctx, userId, videoId)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if err := s.repo.CreateReaction(ctx, &entities.VideoLike{
				UserId:   userId,
				VideoId:  videoId,
				Reaction: reaction,
			}); err != nil {
				return reactionChange{}, err
			}
			if err := s.repo.AdjustVideoCounter(ctx, videoId, reaction.CounterColumn(), 1); err != nil {
				return reactionChange{}, err
			}
			return reactionChange{state: stateOf(&reaction), action: "added"}, nil

		case err != nil:
			return reactionChange{}, err

		case existing.Reaction == reaction:
			if err := s.repo.DeleteReaction(ctx, existing.ID, existing.Reaction); err != nil {
				return reactionChange{}, err
			}
			if err := s.repo.AdjustVideoCounter(ctx, videoId, reaction.CounterColumn(), -1); err != nil {
				return reactionChange{}, err
			}
			return reactionChange{state: stateOf(nil), action: "removed"}, nil

		default:
			if err := s.repo.UpdateReaction(ctx, existing.ID, existing.Reaction, reaction); err != nil {
				return reactionChange{}, err
			}
			if err := s.repo.AdjustVideoCounter(ctx, videoId, existing.Reaction.CounterColumn(), -1); err != nil {
				return reactionChange{}, err
			}
			if err := s.repo.AdjustVideoCounter(ctx, videoId, reaction.CounterColumn(), 1); err != nil {
				return reactionChange{}, err
			}
			return reactionChange{state: stateOf(&reaction), action: "switched"}, nil
		}
	})
	if err != nil {
		return nil, err
	}

	metrics.ReactionsTotal.WithLabelValues(string(reaction), change.action).Inc()
	zerolog.Ctx(ctx).Debug().
		Str("video_id", videoId.String()).
		Str("reaction", string(reaction)).
		Str("action", change.action).
		Msg("reaction changed")
	return change.state, nil
}

func (s *reactionService) GetReaction(ctx context.Context, userId, videoId uuid.UUID) (*dto.ReactionState, error) {
	existing, err := s.repo.FindReaction(ctx, userId, videoId)
	if errors.Is(err, repository.ErrNotFound) {
		return stateOf(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return stateOf(&existing.Reaction), nil
}
