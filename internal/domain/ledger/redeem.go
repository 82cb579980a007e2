package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type RedeemParams struct {
	UserID     string
	XP         int64
	OrderTotal float64

	// IdempotencyKey is usually the order id.
	IdempotencyKey string
}

type RedeemResult struct {
	Approved       bool                   `json:"approved"`
	Reason         reward.RejectionReason `json:"reason,omitempty"`
	DiscountAmount int64                  `json:"discount_amount"`
	XPRedeemed     int64                  `json:"xp_redeemed"`
	NewBalance     int64                  `json:"new_balance"`
	NewLevel       int                    `json:"new_level"`
	Replayed       bool                   `json:"-"`
}

func redemptionKey(key string) string {
	return "redemption:" + key
}

// Redeem debits xp for a discount on an order. The balance is always read
// from storage inside the user lock. A rejection is a result, not an error,
// and it is not remembered by the idempotency key.
func (l *Ledger) Redeem(ctx context.Context, params RedeemParams) (*RedeemResult, error) {
	if params.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require user id")
	}

	result, err := withRetry(ctx, "redeem", func() (*RedeemResult, error) {
		return l.redeem(ctx, params)
	})
	if err != nil {
		return nil, err
	}

	if !result.Replayed {
		label := "approved"
		if !result.Approved {
			label = string(result.Reason)
		}
		common.PromCounters[common.RedemptionTotal].WithLabelValues(label).Inc()
	}

	return result, nil
}

func (l *Ledger) redeem(ctx context.Context, params RedeemParams) (*RedeemResult, error) {
	unlock, err := l.lock(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	key := ""
	if params.IdempotencyKey != "" {
		key = redemptionKey(params.IdempotencyKey)
		stored := &RedeemResult{}
		found, err := l.loadReceipt(ctx, params.UserID, key, stored)
		if err != nil {
			return nil, err
		}

		if found {
			stored.Replayed = true
			return stored, nil
		}
	}

	profile, err := l.profileRepo.Get(ctx, params.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unavailable(ctx, "Cannot get reward profile: %v", err)
		}
		profile = &entity.UserRewardProfile{UserID: params.UserID, CurrentLevel: 1}
	}

	policy := reward.NewRedemptionPolicy(xcontext.Configs(ctx).Reward)
	if reason := policy.CheckRedemption(params.XP, params.OrderTotal, profile.TotalXP); reason != "" {
		return &RedeemResult{
			Approved:   false,
			Reason:     reason,
			NewBalance: profile.TotalXP,
			NewLevel:   reward.LevelForXP(profile.TotalXP),
		}, nil
	}

	newBalance := profile.TotalXP - params.XP
	newLevel := reward.LevelForXP(newBalance)
	if err := l.profileRepo.Debit(ctx, params.UserID, params.XP, profile.Version, newLevel); err != nil {
		if isConflict(err) {
			return nil, err
		}

		return nil, unavailable(ctx, "Cannot debit reward profile: %v", err)
	}

	discount := policy.XPToDiscount(params.XP)
	err = l.xpTxRepo.Create(ctx, &entity.XPTransaction{
		ID:          l.idGenerator.Next(),
		UserID:      params.UserID,
		Amount:      -params.XP,
		Source:      entity.XPSourceRedemption,
		Multiplier:  1,
		Description: fmt.Sprintf("Redeemed for $%d discount", discount),
		Metadata: entity.Map{
			"order_total": params.OrderTotal,
			"discount":    discount,
		},
		IdempotencyKey: sql.NullString{String: key, Valid: key != ""},
	})
	if err != nil {
		if isConflict(err) {
			return nil, err
		}

		return nil, unavailable(ctx, "Cannot create redemption transaction: %v", err)
	}

	result := &RedeemResult{
		Approved:       true,
		DiscountAmount: discount,
		XPRedeemed:     params.XP,
		NewBalance:     newBalance,
		NewLevel:       newLevel,
	}

	if key != "" {
		if err := l.storeReceipt(ctx, params.UserID, key, entity.ReceiptKindRedemption, result); err != nil {
			return nil, err
		}
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return nil, unavailable(ctx, "Cannot commit redemption: %v", err)
	}

	l.afterCommit(ctx, params.UserID, 0, model.XPEvent{
		Type:       model.XPEventRedeemed,
		UserID:     params.UserID,
		Amount:     -params.XP,
		Balance:    newBalance,
		Level:      newLevel,
		Source:     string(entity.XPSourceRedemption),
		OccurredAt: l.now(),
	})

	return result, nil
}
