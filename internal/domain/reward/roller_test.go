package reward

import (
	"math"
	"testing"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestSchedule_TierOf(t *testing.T) {
	testCases := []struct {
		name string
		draw int
		want Tier
	}{
		{name: "lowest draw is jackpot", draw: 0, want: TierJackpot},
		{name: "last jackpot value", draw: 99, want: TierJackpot},
		{name: "first rare value", draw: 100, want: TierRare},
		{name: "last rare value", draw: 499, want: TierRare},
		{name: "first bonus value", draw: 500, want: TierBonus},
		{name: "last bonus value", draw: 1999, want: TierBonus},
		{name: "first base value", draw: 2000, want: TierBase},
		{name: "highest draw", draw: 9999, want: TierBase},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ActivitySchedule.TierOf(tt.draw))
		})
	}
}

func TestRoller_Roll(t *testing.T) {
	for _, tier := range []Tier{TierBase, TierBonus, TierRare, TierJackpot} {
		roller := NewRoller(ActivitySchedule, FixedRand(ActivitySchedule, tier))
		amount, got, err := roller.Roll(entity.ActivityNewsletterSignup)
		require.NoError(t, err)
		require.Equal(t, tier, got)

		activity, _ := LookupActivity(entity.ActivityNewsletterSignup)
		require.Equal(t, activity.Amounts.Of(tier), amount)
	}

	_, _, err := NewRoller(ActivitySchedule, nil).Roll(entity.ActivityKind("unknown"))
	require.Error(t, err)
}

func TestRoller_Distribution(t *testing.T) {
	const n = 100000
	roller := NewRoller(ActivitySchedule, nil)

	counts := map[Tier]int{}
	for i := 0; i < n; i++ {
		_, tier, err := roller.Roll(entity.ActivityPageView)
		require.NoError(t, err)
		counts[tier]++
	}

	expected := map[Tier]float64{
		TierBase:    80,
		TierBonus:   15,
		TierRare:    4,
		TierJackpot: 1,
	}

	for tier, percent := range expected {
		got := float64(counts[tier]) * 100 / n
		require.LessOrEqual(t, math.Abs(got-percent), 1.0, "tier %s got %.2f%%", tier, got)
	}
}

func TestPurchaseRaritySchedule(t *testing.T) {
	counts := map[Tier]int{}
	for draw := 0; draw < drawRange; draw++ {
		counts[PurchaseRaritySchedule.TierOf(draw)]++
	}

	require.Equal(t, 100, counts[TierJackpot])
	require.Equal(t, 400, counts[TierRare])
	require.Equal(t, 1000, counts[TierBonus])
	require.Equal(t, 8500, counts[TierBase])
}

func TestActivities(t *testing.T) {
	activities := Activities()
	require.Len(t, activities, 9)
	for i := 1; i < len(activities); i++ {
		require.Less(t, string(activities[i-1].Kind), string(activities[i].Kind))
	}

	for _, a := range activities {
		require.Less(t, a.Amounts.Base, a.Amounts.Bonus)
		require.Less(t, a.Amounts.Bonus, a.Amounts.Rare)
		require.Less(t, a.Amounts.Rare, a.Amounts.Jackpot)
	}

	purchase, ok := LookupActivity(entity.ActivityDocumentPurchase)
	require.True(t, ok)
	require.False(t, purchase.ClientTrackable)

	view, ok := LookupActivity(entity.ActivityPageView)
	require.True(t, ok)
	require.True(t, view.ClientTrackable)
}
