package reward

import (
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/enum"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Tier string

var (
	TierBase    = enum.New(Tier("base"), "base")
	TierBonus   = enum.New(Tier("bonus"), "bonus")
	TierRare    = enum.New(Tier("rare"), "rare")
	TierJackpot = enum.New(Tier("jackpot"), "jackpot")
)

// TierAmounts holds one point value per tier.
type TierAmounts struct {
	Base    int64
	Bonus   int64
	Rare    int64
	Jackpot int64
}

func (a TierAmounts) Of(tier Tier) int64 {
	switch tier {
	case TierJackpot:
		return a.Jackpot
	case TierRare:
		return a.Rare
	case TierBonus:
		return a.Bonus
	default:
		return a.Base
	}
}

type ActivityReward struct {
	Kind    entity.ActivityKind
	Amounts TierAmounts

	// ClientTrackable is true if a browser may report the activity itself.
	// Other activities are only awarded by trusted callers.
	ClientTrackable bool
}

var activityTable = map[entity.ActivityKind]ActivityReward{
	entity.ActivityPageView: {
		Kind:            entity.ActivityPageView,
		Amounts:         TierAmounts{Base: 5, Bonus: 10, Rare: 25, Jackpot: 50},
		ClientTrackable: true,
	},
	entity.ActivityDocumentView: {
		Kind:            entity.ActivityDocumentView,
		Amounts:         TierAmounts{Base: 10, Bonus: 20, Rare: 50, Jackpot: 100},
		ClientTrackable: true,
	},
	entity.ActivityNewsletterSignup: {
		Kind:    entity.ActivityNewsletterSignup,
		Amounts: TierAmounts{Base: 25, Bonus: 50, Rare: 100, Jackpot: 250},
	},
	entity.ActivityConsultationBooked: {
		Kind:    entity.ActivityConsultationBooked,
		Amounts: TierAmounts{Base: 100, Bonus: 200, Rare: 500, Jackpot: 1000},
	},
	entity.ActivityDocumentPurchase: {
		Kind:    entity.ActivityDocumentPurchase,
		Amounts: TierAmounts{Base: 50, Bonus: 100, Rare: 250, Jackpot: 500},
	},
	entity.ActivityIntakeComplete: {
		Kind:    entity.ActivityIntakeComplete,
		Amounts: TierAmounts{Base: 75, Bonus: 150, Rare: 300, Jackpot: 750},
	},
	entity.ActivityReturnVisit: {
		Kind:            entity.ActivityReturnVisit,
		Amounts:         TierAmounts{Base: 15, Bonus: 30, Rare: 75, Jackpot: 150},
		ClientTrackable: true,
	},
	entity.ActivityDiscussionPost: {
		Kind:            entity.ActivityDiscussionPost,
		Amounts:         TierAmounts{Base: 20, Bonus: 40, Rare: 100, Jackpot: 200},
		ClientTrackable: true,
	},
	entity.ActivityROICalculatorUsed: {
		Kind:            entity.ActivityROICalculatorUsed,
		Amounts:         TierAmounts{Base: 15, Bonus: 30, Rare: 75, Jackpot: 150},
		ClientTrackable: true,
	},
}

func LookupActivity(kind entity.ActivityKind) (ActivityReward, bool) {
	a, ok := activityTable[kind]
	return a, ok
}

// Activities returns the reward table ordered by activity name.
func Activities() []ActivityReward {
	kinds := maps.Keys(activityTable)
	slices.Sort(kinds)

	result := make([]ActivityReward, 0, len(kinds))
	for _, kind := range kinds {
		result = append(result, activityTable[kind])
	}

	return result
}
