package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/repository"
)

const MaxCommentLength = 1000

type CommentService interface {
	List(ctx context.Context, videoId uuid.UUID, page dto.Pagination) (dto.Page[entities.Comment], error)
	Create(ctx context.Context, userId, videoId uuid.UUID, req dto.CreateCommentRequest) (*entities.Comment, error)
	Update(ctx context.Context, commentId, userId uuid.UUID, content string) (*entities.Comment, error)
	Delete(ctx context.Context, commentId, userId uuid.UUID) error
}

type commentService struct {
	repo repository.Repository
}

func NewCommentService(repo repository.Repository) CommentService {
	return &commentService{repo: repo}
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", validationError("comment content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", validationError("comment must be at most %d characters", MaxCommentLength)
	}
	return content, nil
}

func (s *commentService) findComment(ctx context.Context, id uuid.UUID) (*entities.Comment, error) {
	comment, err := s.repo.FindCommentById(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("comment")
	}
	return comment, err
}

func (s *commentService) List(ctx context.Context, videoId uuid.UUID, page dto.Pagination) (dto.Page[entities.Comment], error) {
	if _, err := s.repo.FindVideoById(ctx, videoId); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.Page[entities.Comment]{}, notFound("video")
		}
		return dto.Page[entities.Comment]{}, err
	}

	page = page.Normalize()
	comments, total, err := s.repo.ListTopLevelComments(ctx, videoId, page.Offset(), page.Limit)
	if err != nil {
		return dto.Page[entities.Comment]{}, err
	}
	for i := range comments {
		if comments[i].Replies == nil {
			comments[i].Replies = []entities.Comment{}
		}
	}
	return dto.NewPage(comments, total, page.Page, page.Limit), nil
}

// Create adds a comment. Only top-level comments count towards the video's comment_count,
// and a reply must answer a top-level comment of the same video.
func (s *commentService) Create(ctx context.Context, userId, videoId uuid.UUID, req dto.CreateCommentRequest) (*entities.Comment, error) {
	content, err := validateComment(req.Content)
	if err != nil {
		return nil, err
	}

	var created *entities.Comment
	err = s.repo.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindVideoById(ctx, videoId); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("video")
			}
			return err
		}

		if req.ParentId != nil {
			parent, err := s.repo.FindCommentById(ctx, *req.ParentId)
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("parent comment")
			}
			if err != nil {
				return err
			}
			if parent.VideoId != videoId {
				return validationError("parent comment belongs to another video")
			}
			if !parent.IsTopLevel() {
				return validationError("replies can only answer top-level comments")
			}
		}

		comment := &entities.Comment{
			VideoId:  videoId,
			UserId:   userId,
			ParentId: req.ParentId,
			Content:  content,
		}
		if err := s.repo.CreateComment(ctx, comment); err != nil {
			return err
		}
		if comment.IsTopLevel() {
			if err := s.repo.AdjustVideoCounter(ctx, videoId, "comment_count", 1); err != nil {
				return err
			}
		}

		created, err = s.repo.FindCommentById(ctx, comment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *commentService) Update(ctx context.Context, commentId, userId uuid.UUID, content string) (*entities.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.findComment(ctx, commentId)
	if err != nil {
		return nil, err
	}
	if comment.UserId != userId {
		return nil, forbidden("edit your own comments")
	}

	if err := s.repo.UpdateCommentContent(ctx, commentId, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("comment")
		}
		return nil, err
	}
	return s.findComment(ctx, commentId)
}

// Delete removes the comment with its replies. A top-level delete decrements the counter once.
func (s *commentService) Delete(ctx context.Context, commentId, userId uuid.UUID) error {
	return s.repo.Transaction(ctx, func(ctx context.Context) error {
		comment, err := s.findComment(ctx, commentId)
		if err != nil {
			return err
		}
		if comment.UserId != userId {
			return forbidden("delete your own comments")
		}

		if _, err := s.repo.DeleteComment(ctx, commentId); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("comment")
			}
			return err
		}
		if comment.IsTopLevel() {
			return s.repo.AdjustVideoCounter(ctx, comment.VideoId, "comment_count", -1)
		}
		return nil
	})
}
