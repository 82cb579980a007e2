package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/idutil"
	"github.com/questx-lab/rewards/pkg/pubsub"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/questx-lab/rewards/pkg/xredis"
	"gorm.io/gorm"
)

const achievementSavePoint = "achievements"

// Ledger is the only writer of balances. Every write of a user holds the
// user lock, runs in one database transaction and checks the profile
// version, so concurrent writes of the same user never lose an update.
type Ledger struct {
	profileRepo    repository.RewardProfileRepository
	xpTxRepo       repository.XPTransactionRepository
	receiptRepo    repository.AwardReceiptRepository
	pendingJobRepo repository.PendingJobRepository
	achievements   *achievement.Manager
	locker         common.UserLocker
	idGenerator    idutil.Generator
	publisher      pubsub.Publisher
	redisClient    xredis.Client
	activityRoller *reward.Roller
	purchaseRoller *reward.Roller
	now            func() time.Time
}

type Option func(*Ledger)

func WithActivityRoller(roller *reward.Roller) Option {
	return func(l *Ledger) { l.activityRoller = roller }
}

func WithPurchaseRoller(roller *reward.Roller) Option {
	return func(l *Ledger) { l.purchaseRoller = roller }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithPublisher enables xp events, nothing is published otherwise.
func WithPublisher(publisher pubsub.Publisher) Option {
	return func(l *Ledger) { l.publisher = publisher }
}

// WithLeaderboard keeps the lifetime XP sorted set of redis up to date.
func WithLeaderboard(redisClient xredis.Client) Option {
	return func(l *Ledger) { l.redisClient = redisClient }
}

func New(
	profileRepo repository.RewardProfileRepository,
	xpTxRepo repository.XPTransactionRepository,
	receiptRepo repository.AwardReceiptRepository,
	pendingJobRepo repository.PendingJobRepository,
	achievements *achievement.Manager,
	locker common.UserLocker,
	idGenerator idutil.Generator,
	opts ...Option,
) *Ledger {
	l := &Ledger{
		profileRepo:    profileRepo,
		xpTxRepo:       xpTxRepo,
		receiptRepo:    receiptRepo,
		pendingJobRepo: pendingJobRepo,
		achievements:   achievements,
		locker:         locker,
		idGenerator:    idGenerator,
		activityRoller: reward.NewRoller(reward.ActivitySchedule, nil),
		purchaseRoller: reward.NewRoller(reward.PurchaseRaritySchedule, nil),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// isConflict tells whether err comes from a concurrent write of the same
// user, in which case the whole operation can be run again.
func isConflict(err error) bool {
	return errors.Is(err, repository.ErrStaleVersion) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, common.ErrLockTimeout)
}

func unavailable(ctx context.Context, format string, a ...any) error {
	xcontext.Logger(ctx).Errorf(format, a...)
	return errorx.New(errorx.Unavailable, "Reward storage is temporarily unavailable")
}

// withRetry runs fn again after a conflict, at most MaxConflictRetries times.
func withRetry[T any](ctx context.Context, operation string, fn func() (*T, error)) (*T, error) {
	maxRetries := xcontext.Configs(ctx).Reward.MaxConflictRetries
	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if !isConflict(err) {
			return nil, err
		}

		if attempt >= maxRetries {
			xcontext.Logger(ctx).Warnf("Give up %s after %d conflicts: %v", operation, attempt+1, err)
			return nil, errorx.New(errorx.Conflict, "Too many concurrent updates, please retry")
		}

		common.PromCounters[common.LedgerConflictRetryTotal].WithLabelValues(operation).Inc()
		xcontext.Logger(ctx).Debugf("Retry %s after conflict: %v", operation, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 5 * time.Millisecond):
		}
	}
}

// lock acquires the user lock. A lock timeout is a conflict, other failures
// mean the lock service is down.
func (l *Ledger) lock(ctx context.Context, userID string) (func(), error) {
	unlock, err := l.locker.Lock(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrLockTimeout) || errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		return nil, unavailable(ctx, "Cannot lock user %s: %v", userID, err)
	}

	return unlock, nil
}

// loadReceipt decodes the stored result of key into v. It returns false if
// the key was never used.
func (l *Ledger) loadReceipt(ctx context.Context, userID, key string, v any) (bool, error) {
	receipt, err := l.receiptRepo.Get(ctx, userID, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, unavailable(ctx, "Cannot get receipt: %v", err)
	}

	if err := json.Unmarshal(receipt.Result, v); err != nil {
		return false, unavailable(ctx, "Cannot decode receipt: %v", err)
	}

	return true, nil
}

func (l *Ledger) storeReceipt(
	ctx context.Context, userID, key string, kind entity.ReceiptKind, v any,
) error {
	b, err := json.Marshal(v)
	if err != nil {
		return unavailable(ctx, "Cannot encode receipt: %v", err)
	}

	err = l.receiptRepo.Create(ctx, &entity.AwardReceipt{
		UserID:         userID,
		IdempotencyKey: key,
		Kind:           kind,
		Result:         b,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		return unavailable(ctx, "Cannot create receipt: %v", err)
	}

	return nil
}

func (l *Ledger) enqueueAchievementCheck(ctx context.Context, userID string, streak int) error {
	return l.pendingJobRepo.Create(ctx, &entity.PendingJob{
		ID:        uuid.NewString(),
		Kind:      entity.PendingJobAchievementCheck,
		UserID:    userID,
		Payload:   entity.Map{"streak": streak},
		Status:    entity.PendingJobStatusPending,
		NextRunAt: l.now(),
	})
}

// afterCommit notifies the optional collaborators. Failures are logged only,
// the ledger is already committed and stays the source of truth.
func (l *Ledger) afterCommit(ctx context.Context, userID string, lifetimeDelta int64, events ...model.XPEvent) {
	if l.redisClient != nil && lifetimeDelta > 0 {
		err := l.redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard, lifetimeDelta, userID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update leaderboard of user %s: %v", userID, err)
		}
	}

	if l.publisher == nil {
		return
	}

	topic := xcontext.Configs(ctx).Kafka.XPEventTopic
	for _, event := range events {
		b, err := json.Marshal(event)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal xp event: %v", err)
			continue
		}

		err = l.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(userID), Msg: b})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot publish xp event %s: %v", event.Type, err)
		}
	}
}
