package reward

import (
	"fmt"
	"math"

	"github.com/questx-lab/rewards/config"
	"github.com/questx-lab/rewards/pkg/enum"
)

type DiscountTier struct {
	XPCost   int64
	Discount int64
	Label    string
}

var discountTiers = []DiscountTier{
	{XPCost: 500, Discount: 5, Label: "$5 off"},
	{XPCost: 1000, Discount: 10, Label: "$10 off"},
	{XPCost: 2500, Discount: 25, Label: "$25 off"},
	{XPCost: 5000, Discount: 50, Label: "$50 off"},
	{XPCost: 10000, Discount: 100, Label: "$100 off"},
}

func DiscountTiers() []DiscountTier {
	return append([]DiscountTier{}, discountTiers...)
}

type CapReason string

var (
	CapReasonBalance      = enum.New(CapReason("balance"), "balance")
	CapReasonOrderCap     = enum.New(CapReason("order_cap"), "order_cap")
	CapReasonBelowMinimum = enum.New(CapReason("below_minimum"), "below_minimum")
)

type RejectionReason string

var (
	RejectionInvalidAmount   = enum.New(RejectionReason("invalid_amount"), "invalid_amount")
	RejectionBelowMinimum    = enum.New(RejectionReason("below_minimum"), "below_minimum")
	RejectionExceedsBalance  = enum.New(RejectionReason("exceeds_balance"), "exceeds_balance")
	RejectionExceedsOrderCap = enum.New(RejectionReason("exceeds_order_cap"), "exceeds_order_cap")
)

type RedemptionPolicy struct {
	XPPerDollar     int64
	MinRedemptionXP int64
	MaxOrderPercent int64
}

func NewRedemptionPolicy(cfg config.RewardConfigs) RedemptionPolicy {
	return RedemptionPolicy{
		XPPerDollar:     cfg.XPPerDollar,
		MinRedemptionXP: cfg.MinRedemptionXP,
		MaxOrderPercent: cfg.MaxOrderPercent,
	}
}

// XPToDiscount converts xp to whole dollars, rounding down.
func (p RedemptionPolicy) XPToDiscount(xp int64) int64 {
	if xp <= 0 {
		return 0
	}

	return xp / p.XPPerDollar
}

func (p RedemptionPolicy) DiscountToXP(dollars int64) int64 {
	if dollars <= 0 {
		return 0
	}

	return dollars * p.XPPerDollar
}

// OrderCapXP is the largest amount of XP allowed on an order of orderTotal
// dollars. It buys whole dollars only.
func (p RedemptionPolicy) OrderCapXP(orderTotal float64) int64 {
	if orderTotal <= 0 {
		return 0
	}

	cents := int64(math.Round(orderTotal * 100))
	capDollars := cents * p.MaxOrderPercent / 100 / 100
	return capDollars * p.XPPerDollar
}

// wholeDollars rounds xp down to an amount converting to whole dollars.
func (p RedemptionPolicy) wholeDollars(xp int64) int64 {
	return xp - xp%p.XPPerDollar
}

type MaxRedeemable struct {
	MaxXP  int64
	Reason CapReason
}

// MaxRedeemableXP returns the lesser of the balance and the order cap, or
// zero if that is below the redemption minimum.
func (p RedemptionPolicy) MaxRedeemableXP(orderTotal float64, userXP int64) MaxRedeemable {
	result := MaxRedeemable{MaxXP: p.wholeDollars(userXP), Reason: CapReasonBalance}
	if orderCap := p.OrderCapXP(orderTotal); orderCap < userXP {
		result = MaxRedeemable{MaxXP: orderCap, Reason: CapReasonOrderCap}
	}

	if result.MaxXP < p.MinRedemptionXP {
		return MaxRedeemable{MaxXP: 0, Reason: CapReasonBelowMinimum}
	}

	return result
}

// CheckRedemption returns the reason to reject spending xp on an order, or
// an empty reason if it is allowed. xp must convert to whole dollars, so the
// debit always equals the discount at the fixed rate.
func (p RedemptionPolicy) CheckRedemption(xp int64, orderTotal float64, balance int64) RejectionReason {
	switch {
	case xp <= 0 || orderTotal <= 0 || xp%p.XPPerDollar != 0:
		return RejectionInvalidAmount
	case xp < p.MinRedemptionXP:
		return RejectionBelowMinimum
	case xp > balance:
		return RejectionExceedsBalance
	case xp > p.OrderCapXP(orderTotal):
		return RejectionExceedsOrderCap
	default:
		return ""
	}
}

// AffordableTiers returns the tiers the user can redeem on this order.
func (p RedemptionPolicy) AffordableTiers(orderTotal float64, userXP int64) []DiscountTier {
	maxXP := p.MaxRedeemableXP(orderTotal, userXP).MaxXP
	result := []DiscountTier{}
	for _, tier := range discountTiers {
		if tier.XPCost <= maxXP {
			result = append(result, tier)
		}
	}

	return result
}

// GetNextDiscountTier returns the first tier above userXP and the XP gap to
// it. The last return value is false if every tier is already reached.
func GetNextDiscountTier(userXP int64) (DiscountTier, int64, bool) {
	for _, tier := range discountTiers {
		if tier.XPCost > userXP {
			return tier, tier.XPCost - userXP, true
		}
	}

	return DiscountTier{}, 0, false
}

type NearMiss struct {
	HasNearMiss bool
	Message     string
	NextTier    *DiscountTier
	XPNeeded    int64
}

// GetNearMissMessage tells the user how close the current cart brings them to
// the next discount tier. potentialXP is what the cart would earn.
func GetNearMissMessage(userXP int64, cartTotal float64, potentialXP int64) NearMiss {
	tier, gap, ok := GetNextDiscountTier(userXP)
	if !ok {
		return NearMiss{}
	}

	if potentialXP > 0 && potentialXP >= gap {
		return NearMiss{
			HasNearMiss: true,
			NextTier:    &tier,
			XPNeeded:    gap,
			Message: fmt.Sprintf("This $%.2f order earns you %d XP, enough to unlock %s on your next purchase!",
				cartTotal, potentialXP, tier.Label),
		}
	}

	// Near means at most a fifth of the tier cost is missing.
	if gap*5 > tier.XPCost {
		return NearMiss{NextTier: &tier, XPNeeded: gap}
	}

	return NearMiss{
		HasNearMiss: true,
		NextTier:    &tier,
		XPNeeded:    gap,
		Message:     fmt.Sprintf("You're only %d XP away from %s!", gap, tier.Label),
	}
}
