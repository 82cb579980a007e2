package domain

import (
	"strconv"
	"time"

	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/domain/ledger"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/dateutil"
)

const (
	defaultTimeLayout = time.RFC3339Nano
	dateLayout        = time.DateOnly
)

func convertAchievement(a *entity.Achievement) model.Achievement {
	return model.Achievement{
		ID:          a.ID,
		Slug:        a.Slug,
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		XPReward:    a.XPReward,
		Requirement: string(a.RequirementType),
		Value:       a.RequirementValue,
	}
}

func convertEarnedAchievements(earned []achievement.EarnedAchievement) []model.Achievement {
	result := []model.Achievement{}
	for _, a := range earned {
		result = append(result, model.Achievement{
			ID:          a.ID,
			Slug:        a.Slug,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			XPReward:    a.XPReward,
			EarnedAt:    a.EarnedAt,
		})
	}

	return result
}

func convertLevelProgress(p reward.LevelProgress) model.LevelProgress {
	return model.LevelProgress{
		Level:         p.Level,
		Title:         p.Title,
		CurrentFloor:  p.CurrentFloor,
		NextFloor:     p.NextFloor,
		XPToNext:      p.XPToNext,
		PercentToNext: p.PercentToNext,
	}
}

func convertAwardResult(r *ledger.AwardResult) *model.AwardResponse {
	return &model.AwardResponse{
		BaseXP:             r.BaseXP,
		BonusXP:            r.BonusXP,
		TotalXPEarned:      r.TotalXPEarned,
		Tier:               string(r.Tier),
		Multiplier:         r.Multiplier,
		Streak:             r.Streak,
		AchievementXP:      r.AchievementXP,
		NewBalance:         r.NewBalance,
		LifetimeXP:         r.LifetimeXP,
		LeveledUp:          r.LeveledUp,
		NewLevel:           r.NewLevel,
		LevelTitle:         reward.LevelTitle(r.NewLevel),
		AchievementsEarned: convertEarnedAchievements(r.AchievementsEarned),
		Replayed:           r.Replayed,
	}
}

// convertProfile reports a streak of zero once a full day has passed without
// activity. The stored streak is only reset by the next award.
func convertProfile(
	profile *entity.UserRewardProfile, achievements []achievement.EarnedAchievement, today time.Time,
) *model.GetProfileResponse {
	resp := &model.GetProfileResponse{
		UserID:        profile.UserID,
		TotalXP:       profile.TotalXP,
		LifetimeXP:    profile.LifetimeXP,
		CurrentLevel:  reward.LevelForXP(profile.TotalXP),
		CurrentStreak: profile.CurrentStreak,
		LongestStreak: profile.LongestStreak,
		Progress:      convertLevelProgress(reward.Progress(profile.TotalXP)),
		Achievements:  convertEarnedAchievements(achievements),
	}

	if profile.LastActiveDate.Valid {
		resp.LastActiveDate = profile.LastActiveDate.Time.Format(dateLayout)
		if dateutil.DaysBetween(profile.LastActiveDate.Time, today) > 1 {
			resp.CurrentStreak = 0
		}
	}

	return resp
}

func convertXPTransaction(tx *entity.XPTransaction) model.XPTransaction {
	return model.XPTransaction{
		ID:          strconv.FormatInt(tx.ID, 10),
		Amount:      tx.Amount,
		Source:      string(tx.Source),
		Multiplier:  tx.Multiplier,
		Description: tx.Description,
		Metadata:    tx.Metadata,
		CreatedAt:   tx.CreatedAt.Format(defaultTimeLayout),
	}
}

func convertDiscountTier(tier reward.DiscountTier) model.DiscountTier {
	return model.DiscountTier{XPCost: tier.XPCost, Discount: tier.Discount, Label: tier.Label}
}

func convertDiscountTiers(tiers []reward.DiscountTier) []model.DiscountTier {
	result := []model.DiscountTier{}
	for _, t := range tiers {
		result = append(result, convertDiscountTier(t))
	}

	return result
}
