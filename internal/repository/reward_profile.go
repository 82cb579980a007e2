package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleVersion is returned by conditional updates when the row changed
// since it was read.
var ErrStaleVersion = errors.New("stale version")

type RewardProfileRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*entity.UserRewardProfile, error)
	Get(ctx context.Context, userID string) (*entity.UserRewardProfile, error)
	GetByIDs(ctx context.Context, userIDs []string) ([]entity.UserRewardProfile, error)
	GetList(ctx context.Context, offset, limit int) ([]entity.UserRewardProfile, error)
	GetTopByLifetimeXP(ctx context.Context, offset, limit int) ([]entity.UserRewardProfile, error)
	UpdateWithVersion(ctx context.Context, profile *entity.UserRewardProfile) error
	Debit(ctx context.Context, userID string, xp int64, version int64, newLevel int) error
}

type rewardProfileRepository struct{}

func NewRewardProfileRepository() *rewardProfileRepository {
	return &rewardProfileRepository{}
}

func (r *rewardProfileRepository) GetOrCreate(ctx context.Context, userID string) (*entity.UserRewardProfile, error) {
	err := xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.UserRewardProfile{UserID: userID, CurrentLevel: 1}).Error
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, userID)
}

func (r *rewardProfileRepository) Get(ctx context.Context, userID string) (*entity.UserRewardProfile, error) {
	result := &entity.UserRewardProfile{}
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Take(result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardProfileRepository) GetByIDs(ctx context.Context, userIDs []string) ([]entity.UserRewardProfile, error) {
	result := []entity.UserRewardProfile{}
	if err := xcontext.DB(ctx).Where("user_id IN (?)", userIDs).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardProfileRepository) GetList(ctx context.Context, offset, limit int) ([]entity.UserRewardProfile, error) {
	result := []entity.UserRewardProfile{}
	err := xcontext.DB(ctx).Order("user_id ASC").Offset(offset).Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardProfileRepository) GetTopByLifetimeXP(ctx context.Context, offset, limit int) ([]entity.UserRewardProfile, error) {
	result := []entity.UserRewardProfile{}
	err := xcontext.DB(ctx).
		Order("lifetime_xp DESC, user_id ASC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateWithVersion writes the profile only if its stored version is still
// profile.Version, then bumps profile.Version.
func (r *rewardProfileRepository) UpdateWithVersion(ctx context.Context, profile *entity.UserRewardProfile) error {
	tx := xcontext.DB(ctx).Model(&entity.UserRewardProfile{}).
		Where("user_id=? AND version=?", profile.UserID, profile.Version).
		Updates(map[string]any{
			"total_xp":         profile.TotalXP,
			"lifetime_xp":      profile.LifetimeXP,
			"current_level":    profile.CurrentLevel,
			"current_streak":   profile.CurrentStreak,
			"longest_streak":   profile.LongestStreak,
			"last_active_date": profile.LastActiveDate,
			"version":          profile.Version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	profile.Version++
	return nil
}

// Debit subtracts xp only if the balance still covers it and nobody wrote
// the profile since version was read.
func (r *rewardProfileRepository) Debit(ctx context.Context, userID string, xp int64, version int64, newLevel int) error {
	tx := xcontext.DB(ctx).Model(&entity.UserRewardProfile{}).
		Where("user_id=? AND version=? AND total_xp>=?", userID, version, xp).
		Updates(map[string]any{
			"total_xp":      gorm.Expr("total_xp-?", xp),
			"current_level": newLevel,
			"version":       version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}

	return nil
}
