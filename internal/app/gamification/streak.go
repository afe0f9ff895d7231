// Package gamification implements the Sales Lead Coach gamification engine:
// XP awards, fixed-width levels, daily streaks and badge unlocks, plus the
// Service that owns one profile's state and the Registry that hosts many.
package gamification

import "time"

// StreakCheck classifies the day transition between the last activity and now.
type StreakCheck struct {
	Continues        bool
	IsNewCalendarDay bool
}

// EvaluateStreak compares the last activity date with now by calendar day,
// in now's location.
//
//	no previous activity → new day, not a continuation
//	same day             → continues, not a new day (streak unchanged)
//	next day             → continues on a new day (streak +1)
//	gap ≥2 or negative   → new day, broken (streak resets to 1)
func EvaluateStreak(last *time.Time, now time.Time) StreakCheck {
	if last == nil {
		return StreakCheck{Continues: false, IsNewCalendarDay: true}
	}

	switch diff := daysBetween(*last, now); diff {
	case 0:
		return StreakCheck{Continues: true, IsNewCalendarDay: false}
	case 1:
		return StreakCheck{Continues: true, IsNewCalendarDay: true}
	default:
		return StreakCheck{Continues: false, IsNewCalendarDay: true}
	}
}

// daysBetween returns the number of calendar days from a to b, using b's location.
// Civil dates are compared in UTC so DST shifts never produce a fractional day.
func daysBetween(a, b time.Time) int {
	return dayNumber(b, b.Location()) - dayNumber(a, b.Location())
}

func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// sameDay reports whether a and b fall on the same calendar day in b's location.
func sameDay(a, b time.Time) bool {
	return daysBetween(a, b) == 0
}
