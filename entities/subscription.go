package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subscription struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_user_channel"`
	ChannelId uuid.UUID `json:"channelId" gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_user_channel;index:idx_subscriptions_channel_id"`
	Channel   *Channel  `json:"channel,omitempty" gorm:"foreignKey:ChannelId;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
