package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	FirstName    *string   `json:"firstName,omitempty" gorm:"type:varchar(100)"`
	LastName     *string   `json:"lastName,omitempty" gorm:"type:varchar(100)"`
	AvatarUrl    *string   `json:"avatarUrl,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
