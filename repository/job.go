package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-platform/constant"
	"video-platform/entities"
)

type JobRepository interface {
	CreateJob(ctx context.Context, job *entities.Job) error
	FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error)
	UpdateStatusJob(ctx context.Context, status constant.JobStatus, id uuid.UUID) error
	StartJob(ctx context.Context, id uuid.UUID) (bool, error)
	FailJob(ctx context.Context, id uuid.UUID, reason string) error
	ReleaseJob(ctx context.Context, id uuid.UUID) error
}

func (r *repo) CreateJob(ctx context.Context, job *entities.Job) error {
	return translate(r.conn(ctx).Create(job).Error)
}

func (r *repo) FindJobById(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	job := &entities.Job{}
	if err := r.conn(ctx).First(job, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return job, nil
}

func (r *repo) UpdateStatusJob(ctx context.Context, status constant.JobStatus, id uuid.UUID) error {
	res := r.conn(ctx).Model(&entities.Job{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// StartJob claims a pending job and counts the attempt. It reports false when another
// worker already claimed it or it is no longer pending.
func (r *repo) StartJob(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.conn(ctx).Model(&entities.Job{}).
		Where("id = ? AND status = ?", id, constant.JobStatusPending).
		Updates(map[string]any{
			"status":   constant.JobStatusProcessing,
			"attempts": gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FailJob(ctx context.Context, id uuid.UUID, reason string) error {
	return r.conn(ctx).Model(&entities.Job{}).Where("id = ?", id).Updates(map[string]any{
		"status": constant.JobStatusFailed,
		"error":  reason,
	}).Error
}

// ReleaseJob hands a job that was interrupted mid-run back to the queue without counting
// the attempt.
func (r *repo) ReleaseJob(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Model(&entities.Job{}).
		Where("id = ? AND status = ?", id, constant.JobStatusProcessing).
		Updates(map[string]any{
			"status":   constant.JobStatusPending,
			"attempts": gorm.Expr("CASE WHEN attempts > 0 THEN attempts - 1 ELSE 0 END"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
