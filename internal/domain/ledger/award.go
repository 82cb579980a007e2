package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/dateutil"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type AwardParams struct {
	UserID         string
	Kind           entity.ActivityKind
	Metadata       map[string]any
	IdempotencyKey string

	// OccurredAt is when the activity happened, now if zero. It decides the
	// streak day.
	OccurredAt time.Time

	// Purchase details of a document_purchase award.
	Purchase *reward.PurchaseInfo
}

type AwardResult struct {
	UserID             string                          `json:"user_id"`
	Kind               entity.ActivityKind             `json:"kind"`
	BaseXP             int64                           `json:"base_xp"`
	BonusXP            int64                           `json:"bonus_xp"`
	TotalXPEarned      int64                           `json:"total_xp_earned"`
	Tier               reward.Tier                     `json:"tier"`
	Multiplier         float64                         `json:"multiplier"`
	Streak             int                             `json:"streak"`
	AchievementXP      int64                           `json:"achievement_xp"`
	NewBalance         int64                           `json:"new_balance"`
	LifetimeXP         int64                           `json:"lifetime_xp"`
	LeveledUp          bool                            `json:"leveled_up"`
	NewLevel           int                             `json:"new_level"`
	AchievementsEarned []achievement.EarnedAchievement `json:"achievements_earned"`
	AchievementPending bool                            `json:"achievement_pending"`
	Replayed           bool                            `json:"-"`
}

// Award credits an activity. Calling it again with the same idempotency key
// returns the first result without crediting anything.
func (l *Ledger) Award(ctx context.Context, params AwardParams) (*AwardResult, error) {
	if params.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require user id")
	}

	if _, ok := reward.LookupActivity(params.Kind); !ok {
		return nil, errorx.New(errorx.BadRequest, "Invalid activity %s", params.Kind)
	}

	if params.Kind == entity.ActivityDocumentPurchase && params.IdempotencyKey == "" {
		return nil, errorx.New(errorx.BadRequest, "Purchase award requires an idempotency key")
	}

	if params.OccurredAt.IsZero() {
		params.OccurredAt = l.now()
	}

	result, err := withRetry(ctx, "award", func() (*AwardResult, error) {
		return l.award(ctx, params)
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		common.PromCounters[common.XPAwardTotal].WithLabelValues(string(params.Kind), string(result.Tier)).Inc()
		common.PromCounters[common.XPAwardedPoints].WithLabelValues(string(params.Kind)).
			Add(float64(result.TotalXPEarned))
	}

	return result, nil
}

func (l *Ledger) award(ctx context.Context, params AwardParams) (*AwardResult, error) {
	unlock, err := l.lock(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if params.IdempotencyKey != "" {
		stored := &AwardResult{}
		found, err := l.loadReceipt(ctx, params.UserID, params.IdempotencyKey, stored)
		if err != nil {
			return nil, err
		}

		if found {
			stored.Replayed = true
			return stored, nil
		}
	}

	profile, err := l.profileRepo.GetOrCreate(ctx, params.UserID)
	if err != nil {
		return nil, unavailable(ctx, "Cannot get reward profile: %v", err)
	}

	oldLevel := reward.LevelForXP(profile.TotalXP)
	cfg := xcontext.Configs(ctx).Reward
	l.updateStreak(ctx, profile, dateutil.Date(params.OccurredAt, cfg.Location()))

	rolled, tier, err := l.activityRoller.Roll(params.Kind)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid activity %s", params.Kind)
	}

	streakMultiplier := reward.StreakMultiplier(profile.CurrentStreak)
	purchasePolicy := reward.NewPurchaseBonusPolicy(cfg)
	bundleMultiplier := 1.0
	if params.Purchase != nil {
		bundleMultiplier = purchasePolicy.Multiplier(*params.Purchase)
	}

	earned := reward.ApplyMultiplier(rolled, streakMultiplier, bundleMultiplier)
	metadata := entity.Map{}
	for k, v := range params.Metadata {
		metadata[k] = v
	}
	metadata["tier"] = string(tier)

	rows := []*entity.XPTransaction{{
		ID:          l.idGenerator.Next(),
		UserID:      params.UserID,
		Amount:      earned,
		Source:      entity.SourceOf(params.Kind),
		Multiplier:  streakMultiplier * bundleMultiplier,
		Description: fmt.Sprintf("%s (%s)", params.Kind, tier),
		Metadata:    metadata,
		IdempotencyKey: sql.NullString{
			String: params.IdempotencyKey,
			Valid:  params.IdempotencyKey != "",
		},
	}}

	if params.Kind == entity.ActivityDocumentPurchase {
		extras, err := l.purchaseExtras(ctx, params, purchasePolicy)
		if err != nil {
			return nil, err
		}
		rows = append(rows, extras...)
	}

	totalEarned := int64(0)
	for _, row := range rows {
		totalEarned += row.Amount
	}

	if err := l.xpTxRepo.Create(ctx, rows...); err != nil {
		if isConflict(err) {
			return nil, err
		}

		return nil, unavailable(ctx, "Cannot create xp transactions: %v", err)
	}

	profile.TotalXP += totalEarned
	profile.LifetimeXP += totalEarned

	earnedAchievements, achievementXP, pending, err := l.evaluateAchievements(ctx, params.UserID, profile.CurrentStreak)
	if err != nil {
		return nil, err
	}

	profile.TotalXP += achievementXP
	profile.LifetimeXP += achievementXP
	profile.CurrentLevel = reward.LevelForXP(profile.TotalXP)

	if err := l.profileRepo.UpdateWithVersion(ctx, profile); err != nil {
		if isConflict(err) {
			return nil, err
		}

		return nil, unavailable(ctx, "Cannot update reward profile: %v", err)
	}

	result := &AwardResult{
		UserID:             params.UserID,
		Kind:               params.Kind,
		BaseXP:             rolled,
		BonusXP:            totalEarned - rolled,
		TotalXPEarned:      totalEarned,
		Tier:               tier,
		Multiplier:         streakMultiplier * bundleMultiplier,
		Streak:             profile.CurrentStreak,
		AchievementXP:      achievementXP,
		NewBalance:         profile.TotalXP,
		LifetimeXP:         profile.LifetimeXP,
		LeveledUp:          profile.CurrentLevel > oldLevel,
		NewLevel:           profile.CurrentLevel,
		AchievementsEarned: earnedAchievements,
		AchievementPending: pending,
	}

	if params.IdempotencyKey != "" {
		err := l.storeReceipt(ctx, params.UserID, params.IdempotencyKey, entity.ReceiptKindAward, result)
		if err != nil {
			return nil, err
		}
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return nil, unavailable(ctx, "Cannot commit award: %v", err)
	}

	events := []model.XPEvent{{
		Type:       model.XPEventAwarded,
		UserID:     params.UserID,
		Amount:     totalEarned + achievementXP,
		Balance:    profile.TotalXP,
		Level:      profile.CurrentLevel,
		LeveledUp:  result.LeveledUp,
		Source:     string(params.Kind),
		OccurredAt: l.now(),
	}}
	for _, a := range earnedAchievements {
		events = append(events, model.XPEvent{
			Type:        model.XPEventAchievementEarned,
			UserID:      params.UserID,
			Amount:      a.XPReward,
			Balance:     profile.TotalXP,
			Level:       profile.CurrentLevel,
			Achievement: a.Slug,
			OccurredAt:  a.EarnedAt,
		})
	}
	l.afterCommit(ctx, params.UserID, totalEarned+achievementXP, events...)

	return result, nil
}

// updateStreak moves the streak to today. An activity dated before the last
// active day keeps both the streak and the date, it never decrements.
func (l *Ledger) updateStreak(ctx context.Context, profile *entity.UserRewardProfile, today time.Time) {
	var lastActive *time.Time
	if profile.LastActiveDate.Valid {
		last := profile.LastActiveDate.Time
		lastActive = &last
	}

	streak, err := reward.UpdateStreak(lastActive, today, profile.CurrentStreak)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Ignore streak of user %s: %v", profile.UserID, err)
		return
	}

	profile.CurrentStreak = streak
	profile.LastActiveDate = sql.NullTime{Time: today, Valid: true}
	if streak > profile.LongestStreak {
		profile.LongestStreak = streak
	}
}

func (l *Ledger) purchaseExtras(
	ctx context.Context, params AwardParams, policy reward.PurchaseBonusPolicy,
) ([]*entity.XPTransaction, error) {
	info := reward.PurchaseInfo{ItemCount: 1}
	if params.Purchase != nil {
		info = *params.Purchase
	}

	purchases, err := l.xpTxRepo.CountBySources(ctx, params.UserID, entity.SourceOf(entity.ActivityDocumentPurchase))
	if err != nil {
		return nil, unavailable(ctx, "Cannot count purchases: %v", err)
	}

	bundleBonuses, err := l.xpTxRepo.CountBySources(ctx, params.UserID, entity.XPSourceFirstBundleBonus)
	if err != nil {
		return nil, unavailable(ctx, "Cannot count bundle bonuses: %v", err)
	}

	rows := []*entity.XPTransaction{}
	for _, bonus := range policy.Extras(l.purchaseRoller, info, purchases == 0, bundleBonuses == 0) {
		metadata := entity.Map{"purchase": params.IdempotencyKey}
		if bonus.Tier != "" {
			metadata["tier"] = string(bonus.Tier)
		}

		rows = append(rows, &entity.XPTransaction{
			ID:          l.idGenerator.Next(),
			UserID:      params.UserID,
			Amount:      bonus.Amount,
			Source:      bonus.Source,
			Multiplier:  1,
			Description: string(bonus.Source),
			Metadata:    metadata,
		})
	}

	return rows, nil
}

// evaluateAchievements runs the evaluator inside a savepoint. If it fails the
// savepoint is rolled back, the award goes on and an achievement check is
// queued. The third return value tells whether a check was queued.
func (l *Ledger) evaluateAchievements(
	ctx context.Context, userID string, streak int,
) ([]achievement.EarnedAchievement, int64, bool, error) {
	if err := xcontext.DB(ctx).SavePoint(achievementSavePoint).Error; err != nil {
		return nil, 0, false, unavailable(ctx, "Cannot create savepoint: %v", err)
	}

	earned, xp, err := l.achievements.Evaluate(ctx, userID, achievement.Context{Streak: streak})
	if err == nil {
		return earned, xp, false, nil
	}

	xcontext.Logger(ctx).Errorf("Cannot evaluate achievements of user %s, queue a retry: %v", userID, err)
	if err := xcontext.DB(ctx).RollbackTo(achievementSavePoint).Error; err != nil {
		return nil, 0, false, unavailable(ctx, "Cannot rollback to savepoint: %v", err)
	}

	if err := l.enqueueAchievementCheck(ctx, userID, streak); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, 0, false, err
		}

		return nil, 0, false, unavailable(ctx, "Cannot queue achievement check: %v", err)
	}

	return []achievement.EarnedAchievement{}, 0, true, nil
}
