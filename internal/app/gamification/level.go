package gamification

import "github.com/salescoach/coach/internal/domain"

// LevelForXP returns the level for a given XP total.
// Every level is domain.XPPerLevel wide; there is no curve and no cap.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/domain.XPPerLevel) + 1
}

// XPForLevel returns the cumulative XP required to reach a given level.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(level-1) * domain.XPPerLevel
}

// LevelInfo describes the level reached with xp and the progress toward the next one.
func LevelInfo(xp int64) domain.LevelInfo {
	if xp < 0 {
		xp = 0
	}
	current := xp % domain.XPPerLevel
	return domain.LevelInfo{
		Level:           LevelForXP(xp),
		CurrentLevelXP:  current,
		XPForNextLevel:  domain.XPPerLevel,
		ProgressPercent: float64(current) / float64(domain.XPPerLevel) * 100.0,
	}
}

// XPToNextLevel returns XP remaining until the next level boundary.
func XPToNextLevel(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	return XPForLevel(LevelForXP(xp)+1) - xp
}
