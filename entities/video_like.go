package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-platform/constant"
)

// VideoLike holds a user's reaction to a video. No row means no reaction.
type VideoLike struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID         `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_video_likes_user_video"`
	VideoId   uuid.UUID         `json:"videoId" gorm:"type:uuid;not null;uniqueIndex:idx_video_likes_user_video;index:idx_video_likes_video_id"`
	Video     *Video            `json:"-" gorm:"foreignKey:VideoId;constraint:OnDelete:CASCADE"`
	Reaction  constant.Reaction `json:"reaction" gorm:"type:varchar(10);not null"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (VideoLike) TableName() string {
	return "video_likes"
}

func (l *VideoLike) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
