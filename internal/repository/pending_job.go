package repository

import (
	"context"
	"time"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type PendingJobRepository interface {
	Create(ctx context.Context, job *entity.PendingJob) error
	GetDue(ctx context.Context, now time.Time, limit int) ([]entity.PendingJob, error)
	MarkDone(ctx context.Context, id string) error
	MarkRetry(ctx context.Context, id string, attempts int, nextRunAt time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error
}

type pendingJobRepository struct{}

func NewPendingJobRepository() *pendingJobRepository {
	return &pendingJobRepository{}
}

func (r *pendingJobRepository) Create(ctx context.Context, job *entity.PendingJob) error {
	return xcontext.DB(ctx).Create(job).Error
}

func (r *pendingJobRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]entity.PendingJob, error) {
	result := []entity.PendingJob{}
	err := xcontext.DB(ctx).
		Where("status=? AND next_run_at<=?", entity.PendingJobStatusPending, now).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pendingJobRepository) MarkDone(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.PendingJob{}).
		Where("id=?", id).
		Update("status", entity.PendingJobStatusDone).Error
}

func (r *pendingJobRepository) MarkRetry(
	ctx context.Context, id string, attempts int, nextRunAt time.Time, lastErr string,
) error {
	return xcontext.DB(ctx).Model(&entity.PendingJob{}).
		Where("id=?", id).
		Updates(map[string]any{
			"attempts":    attempts,
			"next_run_at": nextRunAt,
			"last_error":  lastErr,
		}).Error
}

func (r *pendingJobRepository) MarkFailed(ctx context.Context, id string, attempts int, lastErr string) error {
	return xcontext.DB(ctx).Model(&entity.PendingJob{}).
		Where("id=?", id).
		Updates(map[string]any{
			"status":     entity.PendingJobStatusFailed,
			"attempts":   attempts,
			"last_error": lastErr,
		}).Error
}
