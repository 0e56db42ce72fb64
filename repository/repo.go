package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"
	"video-platform/entities"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale reports a conditional write that matched nothing because the row changed.
	ErrStale = errors.New("stale record")
)

type Repository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB

	UserRepository
	ChannelRepository
	VideoRepository
	CommentRepository
	ReactionRepository
	SubscriptionRepository
	JobRepository
}

type repo struct {
	db *gorm.DB
}

type txKey struct{}

func NewRepo(db *gorm.DB) Repository {
	return &repo{
		db: db,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

// Transaction runs callback inside one database transaction. Repository calls made
// with the callback's ctx join that transaction; nested calls reuse the outer one.
func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return callback(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return callback(context.WithValue(ctx, txKey{}, tx))
	}, opts...)
}

func (r *repo) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Migrate creates or updates the schema for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.User{},
		&entities.Channel{},
		&entities.Video{},
		&entities.Comment{},
		&entities.VideoLike{},
		&entities.Subscription{},
		&entities.Job{},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// isUniqueViolation catches drivers whose errors are not translated by gorm.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func increment(column string, n int64) any {
	return gorm.Expr(column+" + ?", n)
}

// decrement never takes the column below zero.
func decrement(column string, n int64) any {
	return gorm.Expr("CASE WHEN "+column+" >= ? THEN "+column+" - ? ELSE 0 END", n, n)
}

func adjust(column string, delta int64) any {
	if delta < 0 {
		return decrement(column, -delta)
	}
	return increment(column, delta)
}
