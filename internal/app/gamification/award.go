package gamification

import (
	"time"

	"github.com/google/uuid"

	"github.com/salescoach/coach/internal/domain"
)

// AwardOutcome is the result of applying one event to a state.
type AwardOutcome struct {
	State     domain.State
	XPAwarded int64
	LeveledUp bool
	Event     domain.XPEvent
}

// AwardXP applies one gameplay event to state and returns the new state.
// The input is never modified. Unknown event types award 0 XP but still
// touch the streak and history, so the call never fails.
//
// On the first event of a consecutive day the daily_streak reward is folded
// into the event's XP as a bonus.
func AwardXP(state domain.State, eventType domain.XPEventType, description string, now time.Time, rules domain.XPRules) AwardOutcome {
	next := state.Clone()

	base := RewardFor(rules, eventType)
	var bonus int64

	check := EvaluateStreak(state.LastActivityDate, now)
	switch {
	case check.IsNewCalendarDay && check.Continues:
		next.StreakDays = state.StreakDays + 1
		bonus = RewardFor(rules, domain.EventDailyStreak)
	case check.IsNewCalendarDay:
		next.StreakDays = 1
	}

	total := base + bonus
	next.XP = state.XP + total
	next.Level = LevelForXP(next.XP)

	event := domain.XPEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		XP:          total,
		Description: description,
		Timestamp:   now,
	}
	next.History = prependEvent(next.History, event)

	at := now
	next.LastActivityDate = &at

	if next.Counters == nil {
		next.Counters = countsFromHistory(state.History)
	}
	if eventType.Valid() {
		next.Counters[eventType]++
	}

	return AwardOutcome{
		State:     next,
		XPAwarded: total,
		LeveledUp: next.Level > LevelForXP(state.XP),
		Event:     event,
	}
}

// prependEvent puts e at the front of history and drops the oldest entries
// beyond domain.HistoryLimit.
func prependEvent(history []domain.XPEvent, e domain.XPEvent) []domain.XPEvent {
	n := len(history) + 1
	if n > domain.HistoryLimit {
		n = domain.HistoryLimit
	}
	out := make([]domain.XPEvent, n)
	out[0] = e
	copy(out[1:], history)
	return out
}

// countsFromHistory rebuilds per-type counters from the history window. Used
// for states persisted before lifetime counters existed.
func countsFromHistory(history []domain.XPEvent) map[domain.XPEventType]int {
	counts := make(map[domain.XPEventType]int)
	for _, e := range history {
		if e.Type.Valid() {
			counts[e.Type]++
		}
	}
	return counts
}
