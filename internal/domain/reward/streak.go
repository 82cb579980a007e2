package reward

import (
	"errors"
	"math"
	"time"

	"github.com/questx-lab/rewards/pkg/dateutil"
)

var ErrClockSkew = errors.New("today is before the last active date")

type streakThreshold struct {
	days       int
	multiplier float64
}

var streakTable = []streakThreshold{
	{days: 3, multiplier: 1.10},
	{days: 7, multiplier: 1.25},
	{days: 14, multiplier: 1.50},
	{days: 30, multiplier: 2.00},
	{days: 60, multiplier: 2.50},
	{days: 90, multiplier: 3.00},
}

// UpdateStreak returns the streak after an activity on today. Both dates are
// calendar dates as returned by dateutil.Date.
func UpdateStreak(lastActive *time.Time, today time.Time, current int) (int, error) {
	if lastActive == nil {
		return 1, nil
	}

	diff := dateutil.DaysBetween(*lastActive, today)
	switch {
	case diff < 0:
		return current, ErrClockSkew
	case diff == 0:
		return current, nil
	case diff == 1:
		return current + 1, nil
	default:
		return 1, nil
	}
}

func StreakMultiplier(streak int) float64 {
	multiplier := 1.0
	for _, t := range streakTable {
		if streak < t.days {
			break
		}
		multiplier = t.multiplier
	}

	return multiplier
}

// ApplyMultiplier multiplies amount by every multiplier and rounds half away
// from zero once at the end.
func ApplyMultiplier(amount int64, multipliers ...float64) int64 {
	result := float64(amount)
	for _, m := range multipliers {
		result *= m
	}

	return int64(math.Round(result))
}
