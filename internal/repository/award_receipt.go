package repository

import (
	"context"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

type AwardReceiptRepository interface {
	Get(ctx context.Context, userID, key string) (*entity.AwardReceipt, error)
	Create(ctx context.Context, receipt *entity.AwardReceipt) error
}

type awardReceiptRepository struct{}

func NewAwardReceiptRepository() *awardReceiptRepository {
	return &awardReceiptRepository{}
}

func (r *awardReceiptRepository) Get(ctx context.Context, userID, key string) (*entity.AwardReceipt, error) {
	result := &entity.AwardReceipt{}
	err := xcontext.DB(ctx).Where("user_id=? AND idempotency_key=?", userID, key).Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *awardReceiptRepository) Create(ctx context.Context, receipt *entity.AwardReceipt) error {
	return xcontext.DB(ctx).Create(receipt).Error
}
