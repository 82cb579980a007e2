package repository

import (
	"context"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	Upsert(ctx context.Context, achievement *entity.Achievement) error
	GetAll(ctx context.Context) ([]entity.Achievement, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Achievement, error)
	CreateUserAchievement(ctx context.Context, ua *entity.UserAchievement) (bool, error)
	GetUserAchievements(ctx context.Context, userID string) ([]entity.UserAchievement, error)
}

type achievementRepository struct{}

func NewAchievementRepository() *achievementRepository {
	return &achievementRepository{}
}

func (r *achievementRepository) Upsert(ctx context.Context, achievement *entity.Achievement) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":              achievement.Name,
				"description":       achievement.Description,
				"icon":              achievement.Icon,
				"xp_reward":         achievement.XPReward,
				"requirement_type":  achievement.RequirementType,
				"requirement_value": achievement.RequirementValue,
			}),
		}).Create(achievement).Error
}

func (r *achievementRepository) GetAll(ctx context.Context) ([]entity.Achievement, error) {
	result := []entity.Achievement{}
	if err := xcontext.DB(ctx).Order("requirement_type, requirement_value").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *achievementRepository) GetBySlug(ctx context.Context, slug string) (*entity.Achievement, error) {
	result := &entity.Achievement{}
	if err := xcontext.DB(ctx).Where("slug=?", slug).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// CreateUserAchievement reports false without error if the user already
// earned the achievement.
func (r *achievementRepository) CreateUserAchievement(ctx context.Context, ua *entity.UserAchievement) (bool, error) {
	tx := xcontext.DB(ctx).
		Omit("Achievement").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ua)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *achievementRepository) GetUserAchievements(ctx context.Context, userID string) ([]entity.UserAchievement, error) {
	result := []entity.UserAchievement{}
	err := xcontext.DB(ctx).
		Preload("Achievement").
		Where("user_id=?", userID).
		Order("earned_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
