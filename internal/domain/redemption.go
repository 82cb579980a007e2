package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/rewards/internal/domain/ledger"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type RedemptionDomain interface {
	ValidateRedemption(context.Context, *model.ValidateRedemptionRequest) (*model.ValidateRedemptionResponse, error)
	GetRedemptionOptions(context.Context, *model.GetRedemptionOptionsRequest) (*model.GetRedemptionOptionsResponse, error)
	GetNearMiss(context.Context, *model.GetNearMissRequest) (*model.GetNearMissResponse, error)
}

type redemptionDomain struct {
	ledger      *ledger.Ledger
	profileRepo repository.RewardProfileRepository
}

func NewRedemptionDomain(
	ledger *ledger.Ledger,
	profileRepo repository.RewardProfileRepository,
) *redemptionDomain {
	return &redemptionDomain{ledger: ledger, profileRepo: profileRepo}
}

// ValidateRedemption debits the xp if the redemption is allowed. The balance
// is never taken from the client.
func (d *redemptionDomain) ValidateRedemption(
	ctx context.Context, req *model.ValidateRedemptionRequest,
) (*model.ValidateRedemptionResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Require an access token")
	}

	result, err := d.ledger.Redeem(ctx, ledger.RedeemParams{
		UserID:         userID,
		XP:             req.XPToRedeem,
		OrderTotal:     req.OrderTotal,
		IdempotencyKey: req.OrderID,
	})
	if err != nil {
		return nil, err
	}

	resp := &model.ValidateRedemptionResponse{
		Approved:       result.Approved,
		Reason:         string(result.Reason),
		DiscountAmount: result.DiscountAmount,
		XPRedeemed:     result.XPRedeemed,
		NewBalance:     result.NewBalance,
		NewLevel:       result.NewLevel,
	}

	if !result.Approved {
		policy := reward.NewRedemptionPolicy(xcontext.Configs(ctx).Reward)
		resp.Message = rejectionMessage(policy, result.Reason, req.OrderTotal, result.NewBalance)
	}

	return resp, nil
}

func (d *redemptionDomain) GetRedemptionOptions(
	ctx context.Context, req *model.GetRedemptionOptionsRequest,
) (*model.GetRedemptionOptionsResponse, error) {
	if req.OrderTotal < 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid order total")
	}

	balance, err := d.balance(ctx)
	if err != nil {
		return nil, err
	}

	policy := reward.NewRedemptionPolicy(xcontext.Configs(ctx).Reward)
	maxRedeemable := policy.MaxRedeemableXP(req.OrderTotal, balance)
	resp := &model.GetRedemptionOptionsResponse{
		Balance:         balance,
		MaxRedeemableXP: maxRedeemable.MaxXP,
		MaxDiscount:     policy.XPToDiscount(maxRedeemable.MaxXP),
		CapReason:       string(maxRedeemable.Reason),
		MinRedemptionXP: policy.MinRedemptionXP,
		XPPerDollar:     policy.XPPerDollar,
		AffordableTiers: convertDiscountTiers(policy.AffordableTiers(req.OrderTotal, balance)),
	}

	if tier, gap, ok := reward.GetNextDiscountTier(balance); ok {
		next := convertDiscountTier(tier)
		resp.NextTier = &next
		resp.XPToNextTier = gap
	}

	return resp, nil
}

func (d *redemptionDomain) GetNearMiss(
	ctx context.Context, req *model.GetNearMissRequest,
) (*model.GetNearMissResponse, error) {
	if req.CartTotal < 0 || req.PotentialXP < 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid cart")
	}

	balance, err := d.balance(ctx)
	if err != nil {
		return nil, err
	}

	nearMiss := reward.GetNearMissMessage(balance, req.CartTotal, req.PotentialXP)
	resp := &model.GetNearMissResponse{
		HasNearMiss: nearMiss.HasNearMiss,
		Message:     nearMiss.Message,
		XPNeeded:    nearMiss.XPNeeded,
	}

	if nearMiss.NextTier != nil {
		next := convertDiscountTier(*nearMiss.NextTier)
		resp.NextTier = &next
	}

	return resp, nil
}

func (d *redemptionDomain) balance(ctx context.Context) (int64, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return 0, errorx.New(errorx.Unauthenticated, "Require an access token")
	}

	profile, err := d.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, storageError(ctx, "Cannot get reward profile: %v", err)
	}

	return profile.TotalXP, nil
}

func rejectionMessage(
	policy reward.RedemptionPolicy, reason reward.RejectionReason, orderTotal float64, balance int64,
) string {
	switch reason {
	case reward.RejectionInvalidAmount:
		return fmt.Sprintf("Redeem a positive multiple of %d XP on a valid order", policy.XPPerDollar)
	case reward.RejectionBelowMinimum:
		return fmt.Sprintf("You need to redeem at least %d XP", policy.MinRedemptionXP)
	case reward.RejectionExceedsBalance:
		return fmt.Sprintf("You only have %d XP available", balance)
	case reward.RejectionExceedsOrderCap:
		return fmt.Sprintf("You can redeem at most %d XP on this order", policy.OrderCapXP(orderTotal))
	default:
		return ""
	}
}
