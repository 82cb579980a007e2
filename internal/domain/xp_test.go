package domain

import (
	"database/sql"
	"testing"
	"time"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/testutil"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestXPDomain(s *suite) *xpDomain {
	d := NewXPDomain(s.ledger, s.profileRepo, s.xpTxRepo, s.achievementManager)
	d.now = func() time.Time { return testNow }
	return d
}

func Test_xpDomain_Award(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestXPDomain(s)

	// Untrusted callers are rejected.
	_, err := d.Award(ctx, &model.AwardRequest{UserID: testutil.User1, Activity: "newsletter_signup"})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	trustedCtx := xcontext.WithTrustedCaller(ctx)
	resp, err := d.Award(trustedCtx, &model.AwardRequest{
		UserID:   "  Alice@Example.com ",
		Activity: "newsletter_signup",
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), resp.TotalXPEarned)
	require.Equal(t, "base", resp.Tier)
	require.Equal(t, int64(75), resp.NewBalance)
	require.Equal(t, "Newcomer", resp.LevelTitle)
	require.Len(t, resp.AchievementsEarned, 1)
	require.Equal(t, "newsletter_subscriber", resp.AchievementsEarned[0].Slug)

	// The email was normalized.
	profile, err := s.profileRepo.Get(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, int64(75), profile.TotalXP)

	_, err = d.Award(trustedCtx, &model.AwardRequest{UserID: testutil.User1, Activity: "unknown"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.Award(trustedCtx, &model.AwardRequest{Activity: "page_view"})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_xpDomain_Award_Purchase(t *testing.T) {
	ctx := xcontext.WithTrustedCaller(testutil.MockContext())
	s := newSuite(t, ctx)
	d := newTestXPDomain(s)

	// A purchase needs an idempotency key.
	_, err := d.Award(ctx, &model.AwardRequest{UserID: testutil.User1, Activity: "document_purchase"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	resp, err := d.Award(ctx, &model.AwardRequest{
		UserID:         testutil.User1,
		Activity:       "document_purchase",
		IdempotencyKey: "order-1",
		Metadata:       map[string]any{"item_count": "2"},
	})
	require.NoError(t, err)
	// 50 * 3 bundle + 100 first purchase + 250 first bundle.
	require.Equal(t, int64(500), resp.TotalXPEarned)
	require.False(t, resp.Replayed)

	resp, err = d.Award(ctx, &model.AwardRequest{
		UserID:         testutil.User1,
		Activity:       "document_purchase",
		IdempotencyKey: "order-1",
	})
	require.NoError(t, err)
	require.True(t, resp.Replayed)
	require.Equal(t, int64(500), resp.TotalXPEarned)

	_, err = d.Award(ctx, &model.AwardRequest{
		UserID:         testutil.User1,
		Activity:       "document_purchase",
		IdempotencyKey: "order-2",
		Metadata:       map[string]any{"item_count": "many"},
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_xpDomain_TrackActivity(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestXPDomain(s)

	_, err := d.TrackActivity(ctx, &model.TrackActivityRequest{Activity: "page_view"})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	userCtx := xcontext.WithRequestUserID(ctx, testutil.User1)
	resp, err := d.TrackActivity(userCtx, &model.TrackActivityRequest{Activity: "page_view"})
	require.NoError(t, err)
	require.Equal(t, int64(5), resp.TotalXPEarned)
	require.Equal(t, 1, resp.Streak)

	// Server-side activities cannot be reported by a browser.
	_, err = d.TrackActivity(userCtx, &model.TrackActivityRequest{Activity: "consultation_booked"})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.TrackActivity(userCtx, &model.TrackActivityRequest{Activity: "unknown"})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_xpDomain_GetProfile(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestXPDomain(s)
	userCtx := xcontext.WithRequestUserID(ctx, testutil.User1)

	// A user without activity has an empty profile.
	resp, err := d.GetProfile(userCtx, &model.GetProfileRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.TotalXP)
	require.Equal(t, 1, resp.CurrentLevel)
	require.Equal(t, "Newcomer", resp.Progress.Title)
	require.Equal(t, int64(100), resp.Progress.XPToNext)
	require.Empty(t, resp.Achievements)

	_, err = d.TrackActivity(userCtx, &model.TrackActivityRequest{Activity: "return_visit"})
	require.NoError(t, err)

	resp, err = d.GetProfile(userCtx, &model.GetProfileRequest{})
	require.NoError(t, err)
	// 15 for the visit and 10 for the first visit achievement.
	require.Equal(t, int64(25), resp.TotalXP)
	require.Equal(t, int64(25), resp.LifetimeXP)
	require.Equal(t, 1, resp.CurrentStreak)
	require.Equal(t, "2024-06-01", resp.LastActiveDate)
	require.Equal(t, 25.0, resp.Progress.PercentToNext)
	require.Len(t, resp.Achievements, 1)
	require.Equal(t, "first_visit", resp.Achievements[0].Slug)

	_, err = d.GetUserProfile(userCtx, &model.GetUserProfileRequest{UserID: testutil.User1})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	other, err := d.GetUserProfile(xcontext.WithTrustedCaller(ctx), &model.GetUserProfileRequest{
		UserID: "ALICE@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, resp.TotalXP, other.TotalXP)
}

func Test_xpDomain_GetProfile_LapsedStreak(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestXPDomain(s)
	userCtx := xcontext.WithRequestUserID(ctx, testutil.User1)

	testutil.InsertProfile(ctx, &entity.UserRewardProfile{
		UserID:         testutil.User1,
		TotalXP:        300,
		LifetimeXP:     300,
		CurrentLevel:   3,
		CurrentStreak:  7,
		LongestStreak:  7,
		LastActiveDate: sql.NullTime{Time: testNow.AddDate(0, 0, -10).Truncate(24 * time.Hour), Valid: true},
	})

	resp, err := d.GetProfile(userCtx, &model.GetProfileRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, resp.CurrentStreak)
	require.Equal(t, 7, resp.LongestStreak)
	require.Equal(t, "2024-05-22", resp.LastActiveDate)

	// Reading the profile does not write the reset.
	profile, err := s.profileRepo.Get(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, 7, profile.CurrentStreak)

	// Yesterday still counts as an active streak.
	testutil.InsertProfile(ctx, &entity.UserRewardProfile{
		UserID:         testutil.User2,
		CurrentLevel:   1,
		CurrentStreak:  4,
		LongestStreak:  4,
		LastActiveDate: sql.NullTime{Time: testNow.AddDate(0, 0, -1).Truncate(24 * time.Hour), Valid: true},
	})

	other, err := d.GetUserProfile(xcontext.WithTrustedCaller(ctx), &model.GetUserProfileRequest{
		UserID: testutil.User2,
	})
	require.NoError(t, err)
	require.Equal(t, 4, other.CurrentStreak)
}

func Test_xpDomain_GetMyTransactions(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	d := newTestXPDomain(s)
	userCtx := xcontext.WithRequestUserID(ctx, testutil.User1)

	for i := 0; i < 3; i++ {
		_, err := d.TrackActivity(userCtx, &model.TrackActivityRequest{Activity: "document_view"})
		require.NoError(t, err)
	}

	resp, err := d.GetMyTransactions(userCtx, &model.GetMyTransactionsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 3)
	for _, tx := range resp.Transactions {
		require.Equal(t, string(entity.SourceOf(entity.ActivityDocumentView)), tx.Source)
		require.Equal(t, int64(10), tx.Amount)
		require.Equal(t, "base", tx.Metadata["tier"])
	}

	resp, err = d.GetMyTransactions(userCtx, &model.GetMyTransactionsRequest{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 1)
}
