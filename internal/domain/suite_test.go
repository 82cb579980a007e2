package domain

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/domain/ledger"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/idutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type suite struct {
	ledger             *ledger.Ledger
	profileRepo        repository.RewardProfileRepository
	xpTxRepo           repository.XPTransactionRepository
	achievementRepo    repository.AchievementRepository
	pendingJobRepo     repository.PendingJobRepository
	achievementManager *achievement.Manager
}

// newSuite wires a ledger rolling the base tier on every activity, with the
// achievement catalog seeded.
func newSuite(t *testing.T, ctx context.Context, opts ...ledger.Option) *suite {
	s := &suite{
		profileRepo:     repository.NewRewardProfileRepository(),
		xpTxRepo:        repository.NewXPTransactionRepository(),
		achievementRepo: repository.NewAchievementRepository(),
		pendingJobRepo:  repository.NewPendingJobRepository(),
	}

	idGen, err := idutil.NewSnowflakeGenerator(1)
	require.NoError(t, err)
	require.NoError(t, achievement.SeedCatalog(ctx, s.achievementRepo))

	s.achievementManager = achievement.NewManager(
		s.achievementRepo, s.xpTxRepo, idGen, achievement.DefaultScanners(s.xpTxRepo)...)

	opts = append([]ledger.Option{
		ledger.WithClock(func() time.Time { return testNow }),
		ledger.WithActivityRoller(reward.NewRoller(reward.ActivitySchedule,
			reward.FixedRand(reward.ActivitySchedule, reward.TierBase))),
		ledger.WithPurchaseRoller(reward.NewRoller(reward.PurchaseRaritySchedule,
			reward.FixedRand(reward.PurchaseRaritySchedule, reward.TierBase))),
	}, opts...)

	s.ledger = ledger.New(
		s.profileRepo, s.xpTxRepo, repository.NewAwardReceiptRepository(), s.pendingJobRepo,
		s.achievementManager, common.NewLocalLocker(5*time.Second), idGen, opts...,
	)

	return s
}
