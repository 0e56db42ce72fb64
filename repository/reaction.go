package repository

import (
	"context"

	"github.com/google/uuid"
	"video-platform/constant"
	"video-platform/entities"
)

type ReactionRepository interface {
	FindReaction(ctx context.Context, userId, videoId uuid.UUID) (*entities.VideoLike, error)
	CreateReaction(ctx context.Context, like *entities.VideoLike) error
	UpdateReaction(ctx context.Context, id uuid.UUID, from, to constant.Reaction) error
	DeleteReaction(ctx context.Context, id uuid.UUID, reaction constant.Reaction) error
	CountReactions(ctx context.Context, videoId uuid.UUID, reaction constant.Reaction) (int64, error)
}

func (r *repo) FindReaction(ctx context.Context, userId, videoId uuid.UUID) (*entities.VideoLike, error) {
	like := &entities.VideoLike{}
	if err := r.conn(ctx).First(like, "user_id = ? AND video_id = ?", userId, videoId).Error; err != nil {
		return nil, translate(err)
	}
	return like, nil
}

func (r *repo) CreateReaction(ctx context.Context, like *entities.VideoLike) error {
	return translate(r.conn(ctx).Create(like).Error)
}

// UpdateReaction flips the row only while it still holds from. ErrStale means another
// request changed or removed it after it was read.
func (r *repo) UpdateReaction(ctx context.Context, id uuid.UUID, from, to constant.Reaction) error {
	res := r.conn(ctx).Model(&entities.VideoLike{}).
		Where("id = ? AND reaction = ?", id, from).
		Update("reaction", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// DeleteReaction removes the row only while it still holds reaction.
func (r *repo) DeleteReaction(ctx context.Context, id uuid.UUID, reaction constant.Reaction) error {
	res := r.conn(ctx).Where("id = ? AND reaction = ?", id, reaction).Delete(&entities.VideoLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *repo) CountReactions(ctx context.Context, videoId uuid.UUID, reaction constant.Reaction) (int64, error) {
	var total int64
	err := r.conn(ctx).Model(&entities.VideoLike{}).
		Where("video_id = ? AND reaction = ?", videoId, reaction).
		Count(&total).Error
	return total, err
}
