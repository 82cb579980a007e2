package reward

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	require.Equal(t, 1, LevelForXP(0))
	require.Equal(t, 1, LevelForXP(99))
	require.Equal(t, 2, LevelForXP(100))
	require.Equal(t, 4, LevelForXP(500))
	require.Equal(t, 5, LevelForXP(1750))
	require.Equal(t, 12, LevelForXP(25000))
	require.Equal(t, 12, LevelForXP(1000000))

	for i := 1; i < len(levelTable); i++ {
		require.Less(t, levelTable[i-1].floor, levelTable[i].floor)
	}
}

func TestProgress(t *testing.T) {
	p := Progress(0)
	require.Equal(t, 1, p.Level)
	require.Equal(t, "Newcomer", p.Title)
	require.Equal(t, int64(100), p.XPToNext)
	require.Equal(t, 0.0, p.PercentToNext)

	p = Progress(175)
	require.Equal(t, 2, p.Level)
	require.Equal(t, int64(100), p.CurrentFloor)
	require.Equal(t, int64(250), p.NextFloor)
	require.Equal(t, int64(75), p.XPToNext)
	require.Equal(t, 50.0, p.PercentToNext)

	p = Progress(30000)
	require.Equal(t, MaxLevel(), p.Level)
	require.Equal(t, "Legend", p.Title)
	require.Equal(t, int64(0), p.XPToNext)
	require.Equal(t, 100.0, p.PercentToNext)
}

func TestLevelTitle(t *testing.T) {
	require.Equal(t, "Newcomer", LevelTitle(0))
	require.Equal(t, "Legend", LevelTitle(99))
}
