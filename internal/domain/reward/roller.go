package reward

import (
	"fmt"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/crypto"
)

// drawRange is the resolution of a draw: [0, 10000) basis points, so a 1%
// chance is 100 values.
const drawRange = 10000

// RandFunc returns a uniform value in [0, n).
type RandFunc func(n int) int

// Schedule holds cumulative thresholds in basis points. A draw below Jackpot
// is a jackpot, below Rare is rare, below Bonus is bonus, otherwise base.
type Schedule struct {
	Jackpot int
	Rare    int
	Bonus   int
}

var (
	// ActivitySchedule yields 1% jackpot, 4% rare, 15% bonus, 80% base.
	ActivitySchedule = Schedule{Jackpot: 100, Rare: 500, Bonus: 2000}

	// PurchaseRaritySchedule yields 1% jackpot, 4% rare, 10% bonus.
	PurchaseRaritySchedule = Schedule{Jackpot: 100, Rare: 500, Bonus: 1500}
)

func (s Schedule) TierOf(draw int) Tier {
	switch {
	case draw < s.Jackpot:
		return TierJackpot
	case draw < s.Rare:
		return TierRare
	case draw < s.Bonus:
		return TierBonus
	default:
		return TierBase
	}
}

type Roller struct {
	schedule Schedule
	rand     RandFunc
}

// NewRoller returns a roller drawing from crypto/rand if rand is nil.
func NewRoller(schedule Schedule, rand RandFunc) *Roller {
	if rand == nil {
		rand = crypto.RandIntn
	}

	return &Roller{schedule: schedule, rand: rand}
}

func (r *Roller) Draw() Tier {
	return r.schedule.TierOf(r.rand(drawRange))
}

func (r *Roller) RollAmounts(amounts TierAmounts) (int64, Tier) {
	tier := r.Draw()
	return amounts.Of(tier), tier
}

func (r *Roller) Roll(kind entity.ActivityKind) (int64, Tier, error) {
	activity, ok := LookupActivity(kind)
	if !ok {
		return 0, "", fmt.Errorf("unknown activity %s", kind)
	}

	amount, tier := r.RollAmounts(activity.Amounts)
	return amount, tier, nil
}

// FixedRand always draws the value at the start of the given tier, it is
// used to force an outcome.
func FixedRand(schedule Schedule, tier Tier) RandFunc {
	var draw int
	switch tier {
	case TierJackpot:
		draw = 0
	case TierRare:
		draw = schedule.Jackpot
	case TierBonus:
		draw = schedule.Rare
	default:
		draw = schedule.Bonus
	}

	return func(int) int { return draw }
}
