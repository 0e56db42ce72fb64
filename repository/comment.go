package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-platform/entities"
)

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *entities.Comment) error
	FindCommentById(ctx context.Context, id uuid.UUID) (*entities.Comment, error)
	UpdateCommentContent(ctx context.Context, id uuid.UUID, content string) error
	DeleteComment(ctx context.Context, id uuid.UUID) (int64, error)
	ListTopLevelComments(ctx context.Context, videoId uuid.UUID, offset, limit int) ([]entities.Comment, int64, error)
	CountTopLevelComments(ctx context.Context, videoId uuid.UUID) (int64, error)
}

func (r *repo) CreateComment(ctx context.Context, comment *entities.Comment) error {
	return translate(r.conn(ctx).Create(comment).Error)
}

func (r *repo) FindCommentById(ctx context.Context, id uuid.UUID) (*entities.Comment, error) {
	comment := &entities.Comment{}
	if err := r.conn(ctx).Preload("User").First(comment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return comment, nil
}

func (r *repo) UpdateCommentContent(ctx context.Context, id uuid.UUID, content string) error {
	res := r.conn(ctx).Model(&entities.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteComment removes the comment and its replies. It returns the number of replies removed.
func (r *repo) DeleteComment(ctx context.Context, id uuid.UUID) (int64, error) {
	var replies int64
	err := r.Transaction(ctx, func(ctx context.Context) error {
		res := r.conn(ctx).Where("parent_id = ?", id).Delete(&entities.Comment{})
		if res.Error != nil {
			return res.Error
		}
		replies = res.RowsAffected

		res = r.conn(ctx).Where("id = ?", id).Delete(&entities.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return replies, err
}

// ListTopLevelComments returns a page of top-level comments, newest first, each with its
// replies oldest first.
func (r *repo) ListTopLevelComments(ctx context.Context, videoId uuid.UUID, offset, limit int) ([]entities.Comment, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&entities.Comment{}).
		Where("video_id = ? AND parent_id IS NULL", videoId).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []entities.Comment
	err := r.conn(ctx).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User").
		Where("video_id = ? AND parent_id IS NULL", videoId).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *repo) CountTopLevelComments(ctx context.Context, videoId uuid.UUID) (int64, error) {
	var total int64
	err := r.conn(ctx).Model(&entities.Comment{}).
		Where("video_id = ? AND parent_id IS NULL", videoId).
		Count(&total).Error
	return total, err
}
