package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"video-platform/constant"
)

type Job struct {
	ID         uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	EntityId   uuid.UUID          `json:"entity_id" gorm:"type:uuid;not null;index:idx_jobs_entity_id"`
	EntityType string             `json:"entity_type" gorm:"type:varchar(20);not null"`
	Status     constant.JobStatus `json:"status" gorm:"type:varchar(20);not null;index:idx_jobs_status"`
	JobType    constant.JobType   `json:"job_type" gorm:"type:varchar(30);not null"`
	Attempts   int                `json:"attempts" gorm:"not null;default:0"`
	Error      *string            `json:"error" gorm:"type:text"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(*gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
