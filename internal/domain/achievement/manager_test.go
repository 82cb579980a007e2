package achievement

import (
	"context"
	"testing"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/idutil"
	"github.com/questx-lab/rewards/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ctx context.Context) (*Manager, repository.XPTransactionRepository, idutil.Generator) {
	achievementRepo := repository.NewAchievementRepository()
	xpTxRepo := repository.NewXPTransactionRepository()
	idGen, err := idutil.NewSnowflakeGenerator(1)
	require.NoError(t, err)

	require.NoError(t, SeedCatalog(ctx, achievementRepo))
	return NewManager(achievementRepo, xpTxRepo, idGen, DefaultScanners(xpTxRepo)...), xpTxRepo, idGen
}

func insertActivity(
	t *testing.T, ctx context.Context, repo repository.XPTransactionRepository,
	idGen idutil.Generator, kind entity.ActivityKind, n int,
) {
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Create(ctx, &entity.XPTransaction{
			ID:     idGen.Next(),
			UserID: testutil.User1,
			Amount: 5,
			Source: entity.SourceOf(kind),
		}))
	}
}

func slugs(earned []EarnedAchievement) []string {
	result := []string{}
	for _, e := range earned {
		result = append(result, e.Slug)
	}
	return result
}

func TestSeedCatalog_Idempotent(t *testing.T) {
	ctx := testutil.MockContext()
	achievementRepo := repository.NewAchievementRepository()

	require.NoError(t, SeedCatalog(ctx, achievementRepo))
	require.NoError(t, SeedCatalog(ctx, achievementRepo))

	all, err := achievementRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(Catalog()))
}

func TestManager_Evaluate(t *testing.T) {
	ctx := testutil.MockContext()
	manager, xpTxRepo, idGen := newTestManager(t, ctx)

	insertActivity(t, ctx, xpTxRepo, idGen, entity.ActivityPageView, 9)
	insertActivity(t, ctx, xpTxRepo, idGen, entity.ActivityReturnVisit, 1)
	insertActivity(t, ctx, xpTxRepo, idGen, entity.ActivityNewsletterSignup, 1)

	earned, xp, err := manager.Evaluate(ctx, testutil.User1, Context{Streak: 3})
	require.NoError(t, err)
	require.ElementsMatch(t,
		[]string{"first_visit", "regular_reader", "streak_3", "newsletter_subscriber"},
		slugs(earned))
	require.Equal(t, int64(10+50+25+50), xp)

	count, err := xpTxRepo.CountBySources(ctx, testutil.User1, entity.XPSourceAchievement)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	// Nothing is granted twice.
	earned, xp, err = manager.Evaluate(ctx, testutil.User1, Context{Streak: 3})
	require.NoError(t, err)
	require.Empty(t, earned)
	require.Zero(t, xp)

	count, err = xpTxRepo.CountBySources(ctx, testutil.User1, entity.XPSourceAchievement)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	owned, err := manager.GetUserAchievements(ctx, testutil.User1)
	require.NoError(t, err)
	require.Len(t, owned, 4)
	require.NotEmpty(t, owned[0].Name)
}

func TestManager_Evaluate_Purchases(t *testing.T) {
	ctx := testutil.MockContext()
	manager, xpTxRepo, idGen := newTestManager(t, ctx)

	insertActivity(t, ctx, xpTxRepo, idGen, entity.ActivityDocumentPurchase, 1)
	earned, xp, err := manager.Evaluate(ctx, testutil.User1, Context{Streak: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"first_purchase"}, slugs(earned))
	require.Equal(t, int64(100), xp)

	insertActivity(t, ctx, xpTxRepo, idGen, entity.ActivityDocumentPurchase, 4)
	earned, xp, err = manager.Evaluate(ctx, testutil.User1, Context{Streak: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"loyal_client"}, slugs(earned))
	require.Equal(t, int64(500), xp)
}

func TestManager_Evaluate_AlreadyGrantedConcurrently(t *testing.T) {
	ctx := testutil.MockContext()
	manager, _, _ := newTestManager(t, ctx)
	achievementRepo := repository.NewAchievementRepository()

	a, err := achievementRepo.GetBySlug(ctx, "streak_3")
	require.NoError(t, err)

	inserted, err := achievementRepo.CreateUserAchievement(ctx, &entity.UserAchievement{
		UserID: testutil.User1, AchievementID: a.ID,
	})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = achievementRepo.CreateUserAchievement(ctx, &entity.UserAchievement{
		UserID: testutil.User1, AchievementID: a.ID,
	})
	require.NoError(t, err)
	require.False(t, inserted)

	earned, _, err := manager.Evaluate(ctx, testutil.User1, Context{Streak: 7})
	require.NoError(t, err)
	require.Equal(t, []string{"streak_7"}, slugs(earned))
}
