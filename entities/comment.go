package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	VideoId   uuid.UUID  `json:"videoId" gorm:"type:uuid;not null;index:idx_comments_video_parent"`
	Video     *Video     `json:"-" gorm:"foreignKey:VideoId;constraint:OnDelete:CASCADE"`
	UserId    uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index:idx_comments_user_id"`
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	ParentId  *uuid.UUID `json:"parentId" gorm:"type:uuid;index:idx_comments_video_parent"`
	Replies   []Comment  `json:"replies,omitempty" gorm:"foreignKey:ParentId;constraint:OnDelete:CASCADE"`
	Content   string     `json:"content" gorm:"type:varchar(1000);not null"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Comment) IsTopLevel() bool {
	return c.ParentId == nil
}
