package reward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestUpdateStreak(t *testing.T) {
	today := date(2024, time.March, 10)
	ptr := func(t time.Time) *time.Time { return &t }

	testCases := []struct {
		name       string
		lastActive *time.Time
		current    int
		want       int
		wantErr    error
	}{
		{name: "first activity", lastActive: nil, current: 0, want: 1},
		{name: "same day", lastActive: ptr(today), current: 4, want: 4},
		{name: "next day", lastActive: ptr(date(2024, time.March, 9)), current: 4, want: 5},
		{name: "across month", lastActive: ptr(date(2024, time.February, 29)), current: 2, want: 1},
		{name: "gap of two days", lastActive: ptr(date(2024, time.March, 8)), current: 10, want: 1},
		{name: "clock skew", lastActive: ptr(date(2024, time.March, 11)), current: 6, want: 6, wantErr: ErrClockSkew},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UpdateStreak(tt.lastActive, today, tt.current)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateStreak_MonthBoundary(t *testing.T) {
	last := date(2024, time.February, 29)
	got, err := UpdateStreak(&last, date(2024, time.March, 1), 3)
	require.NoError(t, err)
	require.Equal(t, 4, got)
}

func TestStreakMultiplier(t *testing.T) {
	require.Equal(t, 1.0, StreakMultiplier(0))
	require.Equal(t, 1.0, StreakMultiplier(2))
	require.Equal(t, 1.10, StreakMultiplier(3))
	require.Equal(t, 1.10, StreakMultiplier(6))
	require.Equal(t, 1.25, StreakMultiplier(7))
	require.Equal(t, 1.50, StreakMultiplier(14))
	require.Equal(t, 2.00, StreakMultiplier(30))
	require.Equal(t, 2.50, StreakMultiplier(60))
	require.Equal(t, 3.00, StreakMultiplier(90))
	require.Equal(t, 3.00, StreakMultiplier(1000))

	previous := StreakMultiplier(0)
	for streak := 0; streak <= 120; streak++ {
		m := StreakMultiplier(streak)
		require.GreaterOrEqual(t, m, 1.0)
		require.GreaterOrEqual(t, m, previous)
		previous = m
	}
}

func TestApplyMultiplier(t *testing.T) {
	require.Equal(t, int64(25), ApplyMultiplier(25, 1.0))
	require.Equal(t, int64(28), ApplyMultiplier(25, 1.10)) // 27.5
	require.Equal(t, int64(31), ApplyMultiplier(25, 1.25)) // 31.25
	require.Equal(t, int64(150), ApplyMultiplier(50, 1.0, 3))
	require.Equal(t, int64(188), ApplyMultiplier(50, 1.25, 3)) // 187.5
	require.Equal(t, int64(7), ApplyMultiplier(7))
}
