package dto

import (
	"github.com/google/uuid"
	"video-platform/constant"
)

type VideoProcessingMessage struct {
	JobId     uuid.UUID `json:"jobId"`
	VideoId   uuid.UUID `json:"videoId"`
	ObjectKey string    `json:"objectKey"`
}

type Progress struct {
	VideoId  string                  `json:"videoId"`
	Progress int                     `json:"progress"`
	Status   constant.ProgressStatus `json:"status"`
	Message  string                  `json:"message,omitempty"`
}

type ReactionState struct {
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
}

type SubscriptionState struct {
	IsSubscribed bool `json:"isSubscribed"`
}

type StreamInfo struct {
	HlsPlaylistUrl string `json:"hlsPlaylistUrl"`
	OriginalUrl    string `json:"originalUrl"`
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit, Pages: pages}
}

type Pagination struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps page and limit to sane values.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

type RegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

type CreateChannelRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type UpdateChannelRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type UpdateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type CreateCommentRequest struct {
	Content  string     `json:"content"`
	ParentId *uuid.UUID `json:"parentId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type UploadVideoResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description *string              `json:"description,omitempty"`
	Status      constant.VideoStatus `json:"status"`
	Message     string               `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
