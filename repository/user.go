package repository

import (
	"context"

	"github.com/google/uuid"
	"video-platform/entities"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *entities.User) error
	FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
}

func (r *repo) CreateUser(ctx context.Context, user *entities.User) error {
	return translate(r.conn(ctx).Create(user).Error)
}

func (r *repo) FindUserById(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user := &entities.User{}
	if err := r.conn(ctx).First(user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	user := &entities.User{}
	if err := r.conn(ctx).First(user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}
