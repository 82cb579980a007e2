package domain

import (
	"context"

	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/internal/repository"
)

type AchievementDomain interface {
	GetAchievements(context.Context, *model.GetAchievementsRequest) (*model.GetAchievementsResponse, error)
}

type achievementDomain struct {
	achievementRepo repository.AchievementRepository
}

func NewAchievementDomain(achievementRepo repository.AchievementRepository) *achievementDomain {
	return &achievementDomain{achievementRepo: achievementRepo}
}

func (d *achievementDomain) GetAchievements(
	ctx context.Context, req *model.GetAchievementsRequest,
) (*model.GetAchievementsResponse, error) {
	achievements, err := d.achievementRepo.GetAll(ctx)
	if err != nil {
		return nil, storageError(ctx, "Cannot get achievements: %v", err)
	}

	result := []model.Achievement{}
	for i := range achievements {
		result = append(result, convertAchievement(&achievements[i]))
	}

	return &model.GetAchievementsResponse{Achievements: result}, nil
}
