package entity

import (
	"time"

	"github.com/questx-lab/rewards/pkg/enum"
)

type PendingJobKind string

var (
	PendingJobAward            = enum.New(PendingJobKind("award"), "award")
	PendingJobAchievementCheck = enum.New(PendingJobKind("achievement_check"), "achievement_check")
)

type PendingJobStatus string

var (
	PendingJobStatusPending = enum.New(PendingJobStatus("pending"), "pending")
	PendingJobStatusDone    = enum.New(PendingJobStatus("done"), "done")
	PendingJobStatusFailed  = enum.New(PendingJobStatus("failed"), "failed")
)

// PendingJob is work which could not be completed inline and is retried by
// the cron command.
type PendingJob struct {
	ID        string `gorm:"primaryKey"`
	Kind      PendingJobKind
	UserID    string
	Payload   Map
	Status    PendingJobStatus `gorm:"index:idx_pending_jobs_status_next"`
	Attempts  int
	LastError string
	NextRunAt time.Time `gorm:"index:idx_pending_jobs_status_next"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
