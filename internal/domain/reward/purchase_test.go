package reward

import (
	"testing"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/stretchr/testify/require"
)

var testPurchasePolicy = PurchaseBonusPolicy{
	BundleMultiplier:   3,
	BundleMinItems:     2,
	FirstPurchaseBonus: 100,
	FirstBundleBonus:   250,
}

func TestPurchaseBonusPolicy_Multiplier(t *testing.T) {
	require.Equal(t, 1.0, testPurchasePolicy.Multiplier(PurchaseInfo{ItemCount: 1}))
	require.Equal(t, 3.0, testPurchasePolicy.Multiplier(PurchaseInfo{ItemCount: 2}))
	require.Equal(t, 3.0, testPurchasePolicy.Multiplier(PurchaseInfo{ItemCount: 1, IsBundle: true}))
}

func TestPurchaseBonusPolicy_Extras(t *testing.T) {
	roller := NewRoller(PurchaseRaritySchedule, FixedRand(PurchaseRaritySchedule, TierBase))
	require.Empty(t, testPurchasePolicy.Extras(roller, PurchaseInfo{ItemCount: 1}, false, false))

	bonuses := testPurchasePolicy.Extras(roller, PurchaseInfo{ItemCount: 1}, true, true)
	require.Equal(t, []PurchaseBonus{
		{Source: entity.XPSourceFirstPurchaseBonus, Amount: 100},
	}, bonuses)

	roller = NewRoller(PurchaseRaritySchedule, FixedRand(PurchaseRaritySchedule, TierJackpot))
	bonuses = testPurchasePolicy.Extras(roller, PurchaseInfo{ItemCount: 3}, true, true)
	require.Equal(t, []PurchaseBonus{
		{Source: entity.XPSourcePurchaseRarityBonus, Amount: 500, Tier: TierJackpot},
		{Source: entity.XPSourceFirstPurchaseBonus, Amount: 100},
		{Source: entity.XPSourceFirstBundleBonus, Amount: 250},
	}, bonuses)
}
