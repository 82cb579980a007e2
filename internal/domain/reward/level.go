package reward

type levelDefinition struct {
	floor int64
	title string
}

var levelTable = []levelDefinition{
	{floor: 0, title: "Newcomer"},
	{floor: 100, title: "Visitor"},
	{floor: 250, title: "Reader"},
	{floor: 500, title: "Regular"},
	{floor: 1000, title: "Informed"},
	{floor: 2000, title: "Advocate"},
	{floor: 3500, title: "Insider"},
	{floor: 5500, title: "Trusted Client"},
	{floor: 8000, title: "Counselor"},
	{floor: 12000, title: "Partner"},
	{floor: 17500, title: "Champion"},
	{floor: 25000, title: "Legend"},
}

func MaxLevel() int {
	return len(levelTable)
}

// LevelForXP returns the highest level whose floor is not greater than xp.
// Levels start at 1.
func LevelForXP(xp int64) int {
	level := 1
	for i, def := range levelTable {
		if xp < def.floor {
			break
		}
		level = i + 1
	}

	return level
}

func LevelTitle(level int) string {
	if level < 1 {
		level = 1
	}
	if level > len(levelTable) {
		level = len(levelTable)
	}

	return levelTable[level-1].title
}

type LevelProgress struct {
	Level         int
	Title         string
	CurrentFloor  int64
	NextFloor     int64
	XPToNext      int64
	PercentToNext float64
}

// Progress is pinned at 100% on the last level.
func Progress(xp int64) LevelProgress {
	level := LevelForXP(xp)
	current := levelTable[level-1]
	progress := LevelProgress{
		Level:        level,
		Title:        current.title,
		CurrentFloor: current.floor,
	}

	if level == len(levelTable) {
		progress.NextFloor = current.floor
		progress.PercentToNext = 100
		return progress
	}

	next := levelTable[level]
	progress.NextFloor = next.floor
	progress.XPToNext = next.floor - xp

	percent := float64(xp-current.floor) / float64(next.floor-current.floor) * 100
	progress.PercentToNext = clamp(percent, 0, 100)
	return progress
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
