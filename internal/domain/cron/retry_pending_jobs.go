package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain"
	"github.com/questx-lab/rewards/internal/domain/ledger"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

const maxRetryBackoff = time.Hour

var errInvalidJob = errors.New("invalid pending job")

type achievementCheckPayload struct {
	Streak int `mapstructure:"streak"`
}

// RetryPendingJobsCronJob runs the awards and achievement checks which could
// not complete when they were requested.
type RetryPendingJobsCronJob struct {
	pendingJobRepo repository.PendingJobRepository
	ledger         *ledger.Ledger
	interval       time.Duration
	now            func() time.Time
}

func NewRetryPendingJobsCronJob(
	pendingJobRepo repository.PendingJobRepository,
	ledger *ledger.Ledger,
	interval time.Duration,
) *RetryPendingJobsCronJob {
	return &RetryPendingJobsCronJob{
		pendingJobRepo: pendingJobRepo,
		ledger:         ledger,
		interval:       interval,
		now:            time.Now,
	}
}

func (job *RetryPendingJobsCronJob) Do(ctx context.Context) {
	cfg := xcontext.Configs(ctx).Cron
	pendingJobs, err := job.pendingJobRepo.GetDue(ctx, job.now(), cfg.PendingJobBatch)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get due pending jobs: %v", err)
		return
	}

	for i := range pendingJobs {
		p := &pendingJobs[i]
		err := job.process(ctx, p)
		if err == nil {
			if err := job.pendingJobRepo.MarkDone(ctx, p.ID); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot mark pending job %s done: %v", p.ID, err)
			}
			common.PromCounters[common.PendingJobTotal].WithLabelValues(string(p.Kind), "done").Inc()
			continue
		}

		attempts := p.Attempts + 1
		if isPermanent(err) || attempts >= cfg.MaxAttempts {
			xcontext.Logger(ctx).Errorf("Give up pending job %s of user %s after %d attempts: %v",
				p.ID, p.UserID, attempts, err)
			if err := job.pendingJobRepo.MarkFailed(ctx, p.ID, attempts, err.Error()); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot mark pending job %s failed: %v", p.ID, err)
			}
			common.PromCounters[common.PendingJobTotal].WithLabelValues(string(p.Kind), "failed").Inc()
			continue
		}

		xcontext.Logger(ctx).Warnf("Pending job %s failed, attempt %d: %v", p.ID, attempts, err)
		nextRunAt := job.now().Add(retryBackoff(job.interval, attempts))
		if err := job.pendingJobRepo.MarkRetry(ctx, p.ID, attempts, nextRunAt, err.Error()); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reschedule pending job %s: %v", p.ID, err)
		}
		common.PromCounters[common.PendingJobTotal].WithLabelValues(string(p.Kind), "retry").Inc()
	}
}

func (job *RetryPendingJobsCronJob) process(ctx context.Context, p *entity.PendingJob) error {
	switch p.Kind {
	case entity.PendingJobAward:
		event, err := domain.DecodePurchaseEvent(p.Payload)
		if err != nil {
			return fmt.Errorf("%w: %v", errInvalidJob, err)
		}

		_, err = job.ledger.Award(ctx, domain.PurchaseAwardParams(event))
		return err

	case entity.PendingJobAchievementCheck:
		payload := achievementCheckPayload{}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &payload,
		})
		if err != nil {
			return err
		}

		if err := decoder.Decode(map[string]any(p.Payload)); err != nil {
			return fmt.Errorf("%w: %v", errInvalidJob, err)
		}

		_, err = job.ledger.CreditAchievements(ctx, p.UserID, payload.Streak)
		return err

	default:
		return fmt.Errorf("%w: unknown kind %s", errInvalidJob, p.Kind)
	}
}

func (job *RetryPendingJobsCronJob) RunNow() bool {
	return true
}

func (job *RetryPendingJobsCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

// isPermanent tells whether running the job again can never succeed.
func isPermanent(err error) bool {
	return errors.Is(err, errInvalidJob) || errorx.Is(err, errorx.BadRequest)
}

// retryBackoff doubles the interval on every attempt, up to an hour.
func retryBackoff(interval time.Duration, attempts int) time.Duration {
	backoff := interval
	for i := 1; i < attempts && backoff < maxRetryBackoff; i++ {
		backoff *= 2
	}

	if backoff > maxRetryBackoff {
		return maxRetryBackoff
	}

	return backoff
}
