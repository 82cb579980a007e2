package ledger

import (
	"context"

	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type CreditResult struct {
	AchievementsEarned []achievement.EarnedAchievement
	AchievementXP      int64
	NewBalance         int64
	NewLevel           int
}

// CreditAchievements evaluates the achievements of a user outside of an
// award. It is used to retry an evaluation which failed during an award.
func (l *Ledger) CreditAchievements(ctx context.Context, userID string, streak int) (*CreditResult, error) {
	return withRetry(ctx, "credit_achievements", func() (*CreditResult, error) {
		return l.creditAchievements(ctx, userID, streak)
	})
}

func (l *Ledger) creditAchievements(ctx context.Context, userID string, streak int) (*CreditResult, error) {
	unlock, err := l.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	profile, err := l.profileRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, unavailable(ctx, "Cannot get reward profile: %v", err)
	}

	// The streak may have grown since the failed evaluation.
	if profile.CurrentStreak > streak {
		streak = profile.CurrentStreak
	}

	earned, xp, err := l.achievements.Evaluate(ctx, userID, achievement.Context{Streak: streak})
	if err != nil {
		return nil, err
	}

	result := &CreditResult{
		AchievementsEarned: earned,
		AchievementXP:      xp,
		NewBalance:         profile.TotalXP,
		NewLevel:           profile.CurrentLevel,
	}

	if len(earned) == 0 {
		return result, nil
	}

	profile.TotalXP += xp
	profile.LifetimeXP += xp
	profile.CurrentLevel = reward.LevelForXP(profile.TotalXP)
	if err := l.profileRepo.UpdateWithVersion(ctx, profile); err != nil {
		if isConflict(err) {
			return nil, err
		}

		return nil, unavailable(ctx, "Cannot update reward profile: %v", err)
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return nil, unavailable(ctx, "Cannot commit achievements: %v", err)
	}

	result.NewBalance = profile.TotalXP
	result.NewLevel = profile.CurrentLevel

	events := []model.XPEvent{}
	for _, a := range earned {
		events = append(events, model.XPEvent{
			Type:        model.XPEventAchievementEarned,
			UserID:      userID,
			Amount:      a.XPReward,
			Balance:     profile.TotalXP,
			Level:       profile.CurrentLevel,
			Achievement: a.Slug,
			OccurredAt:  a.EarnedAt,
		})
	}
	l.afterCommit(ctx, userID, xp, events...)

	return result, nil
}
