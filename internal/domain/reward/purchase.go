package reward

import (
	"github.com/questx-lab/rewards/config"
	"github.com/questx-lab/rewards/internal/entity"
)

// PurchaseRarityAmounts are the extra points of the purchase rarity roll,
// nothing on the base tier.
var PurchaseRarityAmounts = TierAmounts{Base: 0, Bonus: 50, Rare: 200, Jackpot: 500}

type PurchaseInfo struct {
	ItemCount int
	IsBundle  bool
}

type PurchaseBonusPolicy struct {
	BundleMultiplier   float64
	BundleMinItems     int
	FirstPurchaseBonus int64
	FirstBundleBonus   int64
}

func NewPurchaseBonusPolicy(cfg config.RewardConfigs) PurchaseBonusPolicy {
	return PurchaseBonusPolicy{
		BundleMultiplier:   cfg.BundleMultiplier,
		BundleMinItems:     cfg.BundleMinItems,
		FirstPurchaseBonus: cfg.FirstPurchaseBonus,
		FirstBundleBonus:   cfg.FirstBundleBonus,
	}
}

func (p PurchaseBonusPolicy) IsBundle(info PurchaseInfo) bool {
	return info.IsBundle || (p.BundleMinItems > 0 && info.ItemCount >= p.BundleMinItems)
}

// Multiplier is applied on top of the streak multiplier.
func (p PurchaseBonusPolicy) Multiplier(info PurchaseInfo) float64 {
	if p.IsBundle(info) && p.BundleMultiplier > 1 {
		return p.BundleMultiplier
	}

	return 1
}

type PurchaseBonus struct {
	Source entity.XPSource
	Amount int64
	Tier   Tier
}

// Extras rolls the rarity bonus and adds the one-time bonuses. The caller
// tells whether this is the first purchase and the first bundle of the user.
func (p PurchaseBonusPolicy) Extras(
	roller *Roller, info PurchaseInfo, firstPurchase, firstBundle bool,
) []PurchaseBonus {
	bonuses := []PurchaseBonus{}
	if amount, tier := roller.RollAmounts(PurchaseRarityAmounts); amount > 0 {
		bonuses = append(bonuses, PurchaseBonus{
			Source: entity.XPSourcePurchaseRarityBonus,
			Amount: amount,
			Tier:   tier,
		})
	}

	if firstPurchase && p.FirstPurchaseBonus > 0 {
		bonuses = append(bonuses, PurchaseBonus{
			Source: entity.XPSourceFirstPurchaseBonus,
			Amount: p.FirstPurchaseBonus,
		})
	}

	if firstBundle && p.IsBundle(info) && p.FirstBundleBonus > 0 {
		bonuses = append(bonuses, PurchaseBonus{
			Source: entity.XPSourceFirstBundleBonus,
			Amount: p.FirstBundleBonus,
		})
	}

	return bonuses
}
