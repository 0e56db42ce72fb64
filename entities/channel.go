package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Channel struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserId          uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_channels_user_id"`
	User            *User     `json:"-" gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Name            string    `json:"name" gorm:"type:varchar(50);not null"`
	Description     *string   `json:"description,omitempty" gorm:"type:text"`
	AvatarUrl       *string   `json:"avatarUrl,omitempty" gorm:"type:text"`
	AvatarKey       string    `json:"-" gorm:"type:varchar(500)"`
	SubscriberCount int64     `json:"subscriberCount" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// VideoCount is filled on reads, it is not a column.
	VideoCount int64 `json:"videoCount" gorm:"-"`
}

func (Channel) TableName() string {
	return "channels"
}

func (c *Channel) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
