package cron

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/storage"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	reconcileBatchSize    = 200
	reconcileReportPrefix = "reconcile"
)

type LedgerMismatch struct {
	UserID         string
	TotalXP        int64
	LedgerTotal    int64
	LifetimeXP     int64
	LedgerPositive int64
}

// ReconcileLedgerCronJob compares every profile with the sums of its ledger
// rows. Mismatches are logged and, if a storage is given, uploaded as a CSV
// report. Nothing is corrected automatically.
type ReconcileLedgerCronJob struct {
	profileRepo repository.RewardProfileRepository
	xpTxRepo    repository.XPTransactionRepository
	storage     storage.Storage
	interval    time.Duration
	now         func() time.Time
}

func NewReconcileLedgerCronJob(
	profileRepo repository.RewardProfileRepository,
	xpTxRepo repository.XPTransactionRepository,
	storage storage.Storage,
	interval time.Duration,
) *ReconcileLedgerCronJob {
	return &ReconcileLedgerCronJob{
		profileRepo: profileRepo,
		xpTxRepo:    xpTxRepo,
		storage:     storage,
		interval:    interval,
		now:         time.Now,
	}
}

func (job *ReconcileLedgerCronJob) Do(ctx context.Context) {
	mismatches, err := job.Reconcile(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reconcile ledger: %v", err)
		return
	}

	if len(mismatches) == 0 {
		xcontext.Logger(ctx).Infof("Ledger is consistent")
		return
	}

	for _, m := range mismatches {
		xcontext.Logger(ctx).Errorf("Ledger mismatch of user %s: total_xp=%d ledger=%d lifetime_xp=%d ledger_positive=%d",
			m.UserID, m.TotalXP, m.LedgerTotal, m.LifetimeXP, m.LedgerPositive)
	}

	if job.storage == nil {
		return
	}

	resp, err := job.uploadReport(ctx, mismatches)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload reconcile report: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Uploaded reconcile report to %s", resp.Url)
}

// Reconcile returns the users whose profile disagrees with their ledger.
// Every candidate is compared again on a fresh read before it is reported, so
// an award committed between the two reads of a batch is not a mismatch.
func (job *ReconcileLedgerCronJob) Reconcile(ctx context.Context) ([]LedgerMismatch, error) {
	mismatches := []LedgerMismatch{}
	for offset := 0; ; offset += reconcileBatchSize {
		candidates, count, err := job.reconcileBatch(ctx, offset)
		if err != nil {
			return nil, err
		}

		for _, c := range candidates {
			m, err := job.recheck(ctx, c.UserID)
			if err != nil {
				return nil, err
			}

			if m != nil {
				mismatches = append(mismatches, *m)
			}
		}

		if count < reconcileBatchSize {
			return mismatches, nil
		}
	}
}

// reconcileBatch reads one page of profiles and their ledger sums in a single
// read transaction. It returns the candidates and the page size.
func (job *ReconcileLedgerCronJob) reconcileBatch(ctx context.Context, offset int) ([]LedgerMismatch, int, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	profiles, err := job.profileRepo.GetList(ctx, offset, reconcileBatchSize)
	if err != nil {
		return nil, 0, err
	}

	if len(profiles) == 0 {
		return nil, 0, nil
	}

	userIDs := []string{}
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
	}

	sums, err := job.xpTxRepo.Sums(ctx, userIDs...)
	if err != nil {
		return nil, 0, err
	}

	return compareLedger(profiles, sums), len(profiles), nil
}

func (job *ReconcileLedgerCronJob) recheck(ctx context.Context, userID string) (*LedgerMismatch, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	profile, err := job.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	sums, err := job.xpTxRepo.Sums(ctx, userID)
	if err != nil {
		return nil, err
	}

	mismatches := compareLedger([]entity.UserRewardProfile{*profile}, sums)
	if len(mismatches) == 0 {
		return nil, nil
	}

	return &mismatches[0], nil
}

func compareLedger(profiles []entity.UserRewardProfile, sums []repository.XPSums) []LedgerMismatch {
	sumByUser := map[string]repository.XPSums{}
	for _, s := range sums {
		sumByUser[s.UserID] = s
	}

	mismatches := []LedgerMismatch{}
	for _, p := range profiles {
		s := sumByUser[p.UserID]
		if s.Total != p.TotalXP || s.Positive != p.LifetimeXP {
			mismatches = append(mismatches, LedgerMismatch{
				UserID:         p.UserID,
				TotalXP:        p.TotalXP,
				LedgerTotal:    s.Total,
				LifetimeXP:     p.LifetimeXP,
				LedgerPositive: s.Positive,
			})
		}
	}

	return mismatches
}

func (job *ReconcileLedgerCronJob) uploadReport(
	ctx context.Context, mismatches []LedgerMismatch,
) (*storage.UploadResponse, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	records := [][]string{{"user_id", "total_xp", "ledger_total", "lifetime_xp", "ledger_positive"}}
	for _, m := range mismatches {
		records = append(records, []string{
			m.UserID,
			strconv.FormatInt(m.TotalXP, 10),
			strconv.FormatInt(m.LedgerTotal, 10),
			strconv.FormatInt(m.LifetimeXP, 10),
			strconv.FormatInt(m.LedgerPositive, 10),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}

	return job.storage.Upload(ctx, &storage.UploadObject{
		Bucket:   xcontext.Configs(ctx).Storage.Bucket,
		Prefix:   reconcileReportPrefix,
		FileName: fmt.Sprintf("ledger-%s.csv", job.now().UTC().Format("20060102T150405")),
		Mime:     "text/csv",
		Data:     buf.Bytes(),
	})
}

func (job *ReconcileLedgerCronJob) RunNow() bool {
	return false
}

func (job *ReconcileLedgerCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
