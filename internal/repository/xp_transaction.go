package repository

import (
	"context"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type XPSums struct {
	UserID   string
	Total    int64
	Positive int64
}

type XPTransactionRepository interface {
	Create(ctx context.Context, txs ...*entity.XPTransaction) error
	GetList(ctx context.Context, userID string, offset, limit int) ([]entity.XPTransaction, error)
	CountBySources(ctx context.Context, userID string, sources ...entity.XPSource) (int64, error)
	Sums(ctx context.Context, userIDs ...string) ([]XPSums, error)
}

type xpTransactionRepository struct{}

func NewXPTransactionRepository() *xpTransactionRepository {
	return &xpTransactionRepository{}
}

func (r *xpTransactionRepository) Create(ctx context.Context, txs ...*entity.XPTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(txs).Error
}

func (r *xpTransactionRepository) GetList(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.XPTransaction, error) {
	result := []entity.XPTransaction{}
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *xpTransactionRepository) CountBySources(
	ctx context.Context, userID string, sources ...entity.XPSource,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.XPTransaction{}).
		Where("user_id=? AND source IN (?)", userID, sources).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Sums returns the sum of all amounts and of positive amounts per user.
func (r *xpTransactionRepository) Sums(ctx context.Context, userIDs ...string) ([]XPSums, error) {
	result := []XPSums{}
	err := xcontext.DB(ctx).Model(&entity.XPTransaction{}).
		Select("user_id, COALESCE(SUM(amount), 0) AS total, " +
			"COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS positive").
		Where("user_id IN (?)", userIDs).
		Group("user_id").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
