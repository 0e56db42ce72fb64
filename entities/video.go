package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-platform/constant"
)

type Video struct {
	ID              uuid.UUID            `json:"id" gorm:"type:uuid;primaryKey"`
	ChannelId       uuid.UUID            `json:"channelId" gorm:"type:uuid;not null;index:idx_videos_channel_id"`
	Channel         *Channel             `json:"channel,omitempty" gorm:"foreignKey:ChannelId;constraint:OnDelete:CASCADE"`
	Title           string               `json:"title" gorm:"type:varchar(100);not null"`
	Description     *string              `json:"description,omitempty" gorm:"type:text"`
	ThumbnailUrl    string               `json:"thumbnailUrl" gorm:"type:text;not null;default:''"`
	ThumbnailKey    string               `json:"-" gorm:"type:varchar(500)"`
	OriginalFileUrl string               `json:"originalFileUrl" gorm:"type:text;not null;default:''"`
	OriginalFileKey string               `json:"-" gorm:"type:varchar(500)"`
	HlsPlaylistUrl  *string              `json:"hlsPlaylistUrl,omitempty" gorm:"type:text"`
	Duration        int                  `json:"duration" gorm:"not null;default:0"`
	Status          constant.VideoStatus `json:"status" gorm:"type:varchar(20);not null;default:'UPLOADING';index:idx_videos_status"`
	ViewCount       int64                `json:"viewCount" gorm:"not null;default:0"`
	LikeCount       int64                `json:"likeCount" gorm:"not null;default:0"`
	DislikeCount    int64                `json:"dislikeCount" gorm:"not null;default:0"`
	CommentCount    int64                `json:"commentCount" gorm:"not null;default:0"`
	CreatedAt       time.Time            `json:"createdAt" gorm:"index:idx_videos_created_at"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func (Video) TableName() string {
	return "videos"
}

func (v *Video) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// StoragePrefix is the object storage prefix holding every file of the video.
func (v *Video) StoragePrefix() string {
	return VideoStoragePrefix(v.ID)
}

func VideoStoragePrefix(id uuid.UUID) string {
	return "videos/" + id.String() + "/"
}
