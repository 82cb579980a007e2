package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/idutil"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type EarnedAchievement struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	XPReward    int64     `json:"xp_reward"`
	EarnedAt    time.Time `json:"earned_at"`
}

type Manager struct {
	// Only written at initialization.
	scanners map[entity.RequirementType]Scanner

	achievementRepo repository.AchievementRepository
	xpTxRepo        repository.XPTransactionRepository
	idGenerator     idutil.Generator
}

func NewManager(
	achievementRepo repository.AchievementRepository,
	xpTxRepo repository.XPTransactionRepository,
	idGenerator idutil.Generator,
	scanners ...Scanner,
) *Manager {
	manager := &Manager{
		scanners:        make(map[entity.RequirementType]Scanner),
		achievementRepo: achievementRepo,
		xpTxRepo:        xpTxRepo,
		idGenerator:     idGenerator,
	}

	for _, s := range scanners {
		manager.scanners[s.Requirement()] = s
	}

	return manager
}

// Evaluate grants every achievement the user has just qualified for and
// appends their XP to the ledger. It returns the granted achievements and
// the sum of their XP; the caller is responsible for the profile balance.
func (m *Manager) Evaluate(
	ctx context.Context, userID string, evalCtx Context,
) ([]EarnedAchievement, int64, error) {
	achievements, err := m.achievementRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievements: %v", err)
		return nil, 0, errorx.Unknown
	}

	owned, err := m.achievementRepo.GetUserAchievements(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user achievements: %v", err)
		return nil, 0, errorx.Unknown
	}

	ownedIDs := map[string]bool{}
	for _, ua := range owned {
		ownedIDs[ua.AchievementID] = true
	}

	values := map[entity.RequirementType]int64{}
	earned := []EarnedAchievement{}
	totalXP := int64(0)
	now := time.Now()
	for _, a := range achievements {
		if ownedIDs[a.ID] {
			continue
		}

		value, ok := values[a.RequirementType]
		if !ok {
			scanner, found := m.scanners[a.RequirementType]
			if !found {
				xcontext.Logger(ctx).Warnf("Not found scanner for requirement %s", a.RequirementType)
				continue
			}

			value, err = scanner.Scan(ctx, userID, evalCtx)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot scan requirement %s: %v", a.RequirementType, err)
				return nil, 0, errorx.Unknown
			}
			values[a.RequirementType] = value
		}

		if value < a.RequirementValue {
			continue
		}

		inserted, err := m.achievementRepo.CreateUserAchievement(ctx, &entity.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			EarnedAt:      now,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create user achievement: %v", err)
			return nil, 0, errorx.Unknown
		}

		// Someone else granted it concurrently.
		if !inserted {
			continue
		}

		if a.XPReward > 0 {
			err = m.xpTxRepo.Create(ctx, &entity.XPTransaction{
				ID:          m.idGenerator.Next(),
				UserID:      userID,
				Amount:      a.XPReward,
				Source:      entity.XPSourceAchievement,
				Multiplier:  1,
				Description: fmt.Sprintf("Achievement: %s", a.Name),
				Metadata:    entity.Map{"achievement": a.Slug},
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot create achievement transaction: %v", err)
				return nil, 0, errorx.Unknown
			}
		}

		totalXP += a.XPReward
		earned = append(earned, EarnedAchievement{
			ID:          a.ID,
			Slug:        a.Slug,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			XPReward:    a.XPReward,
			EarnedAt:    now,
		})
	}

	return earned, totalXP, nil
}

func (m *Manager) GetUserAchievements(ctx context.Context, userID string) ([]EarnedAchievement, error) {
	owned, err := m.achievementRepo.GetUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]EarnedAchievement, 0, len(owned))
	for _, ua := range owned {
		result = append(result, EarnedAchievement{
			ID:          ua.Achievement.ID,
			Slug:        ua.Achievement.Slug,
			Name:        ua.Achievement.Name,
			Description: ua.Achievement.Description,
			Icon:        ua.Achievement.Icon,
			XPReward:    ua.Achievement.XPReward,
			EarnedAt:    ua.EarnedAt,
		})
	}

	return result, nil
}
