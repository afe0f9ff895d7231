package gamification

import (
	"time"

	"github.com/salescoach/coach/internal/domain"
)

// ─── Badge Catalog ──────────────────────────────────────────────────────────
// Each entry names the counter it tracks; the evaluator has no per-badge code.

// DefaultCatalog returns the shipped badge catalog.
func DefaultCatalog() []domain.BadgeDef {
	return []domain.BadgeDef{
		{
			ID: "first_lead", Name: "First Steps", Icon: "rocket",
			Description: "Create your first lead",
			Target:      1, Counter: domain.CounterEventCount, EventType: domain.EventCreateLead, Cap: 1,
		},
		{
			ID: "lead_hunter", Name: "Lead Hunter", Icon: "target",
			Description: "Create 25 leads",
			Target:      25, Counter: domain.CounterEventCount, EventType: domain.EventCreateLead,
		},
		{
			ID: "followup_pro", Name: "Follow-up Pro", Icon: "clock",
			Description: "Complete 10 follow-ups on time",
			Target:      10, Counter: domain.CounterEventCount, EventType: domain.EventFollowupOnTime,
		},
		{
			ID: "data_champion", Name: "Data Champion", Icon: "shield-check",
			Description: "Fix 20 missing fields",
			Target:      20, Counter: domain.CounterEventCount, EventType: domain.EventFixMissingField,
		},
		{
			ID: "deal_closer", Name: "Deal Closer", Icon: "trophy",
			Description: "Win 5 opportunities",
			Target:      5, Counter: domain.CounterEventCount, EventType: domain.EventWinOpportunity,
		},
		{
			ID: "streak_week", Name: "On Fire", Icon: "flame",
			Description: "Keep a 7-day activity streak",
			Target:      7, Counter: domain.CounterStreakDays,
		},
		{
			ID: "speed_demon", Name: "Speed Demon", Icon: "zap",
			Description: "Create 5 leads in a single day",
			Target:      5, Counter: domain.CounterEventCountToday, EventType: domain.EventCreateLead,
		},
	}
}

// ─── Evaluation ─────────────────────────────────────────────────────────────

// EvaluateBadges recomputes every catalog badge against state.
// The result always has one entry per catalog definition, in catalog order.
// Unlocks are sticky: a badge already unlocked in state keeps its UnlockedAt
// and stays at full progress whatever the counter says now.
func EvaluateBadges(state domain.State, catalog []domain.BadgeDef, now time.Time) []domain.Badge {
	prior := make(map[string]domain.Badge, len(state.Badges))
	for _, b := range state.Badges {
		prior[b.ID] = b
	}

	out := make([]domain.Badge, len(catalog))
	for i, def := range catalog {
		b := domain.NewBadge(def)

		if old, ok := prior[def.ID]; ok && old.UnlockedAt != nil {
			at := *old.UnlockedAt
			b.UnlockedAt = &at
			b.Progress = def.Target
			out[i] = b
			continue
		}

		b.Progress = min(badgeCounter(def, state, now), def.Target)
		if b.Progress < 0 {
			b.Progress = 0
		}
		if b.Progress >= def.Target {
			at := now
			b.UnlockedAt = &at
		}
		out[i] = b
	}
	return out
}

// NewlyUnlocked returns the badges unlocked in next that were not unlocked in prev.
func NewlyUnlocked(prev, next []domain.Badge) []domain.Badge {
	was := make(map[string]bool, len(prev))
	for _, b := range prev {
		if b.Unlocked() {
			was[b.ID] = true
		}
	}
	var fresh []domain.Badge
	for _, b := range next {
		if b.Unlocked() && !was[b.ID] {
			fresh = append(fresh, b)
		}
	}
	return fresh
}

// ReconcileBadges aligns a stored badge list with catalog: entries missing
// from the catalog are dropped, new catalog entries start locked, and display
// metadata always comes from the catalog.
func ReconcileBadges(stored []domain.Badge, catalog []domain.BadgeDef) []domain.Badge {
	byID := make(map[string]domain.Badge, len(stored))
	for _, b := range stored {
		byID[b.ID] = b
	}
	out := make([]domain.Badge, len(catalog))
	for i, def := range catalog {
		b := domain.NewBadge(def)
		if old, ok := byID[def.ID]; ok {
			b.Progress = min(max(old.Progress, 0), def.Target)
			if old.UnlockedAt != nil {
				at := *old.UnlockedAt
				b.UnlockedAt = &at
				b.Progress = def.Target
			}
		}
		out[i] = b
	}
	return out
}

func badgeCounter(def domain.BadgeDef, state domain.State, now time.Time) int {
	var n int
	switch def.Counter {
	case domain.CounterEventCount:
		n = lifetimeCount(state, def.EventType)
	case domain.CounterStreakDays:
		n = state.StreakDays
	case domain.CounterEventCountToday:
		for _, e := range state.History {
			if e.Type == def.EventType && sameDay(e.Timestamp, now) {
				n++
			}
		}
	}
	if def.Cap > 0 && n > def.Cap {
		n = def.Cap
	}
	return n
}

// lifetimeCount prefers the persisted counter and falls back to scanning the
// history window for states that carry no counters.
func lifetimeCount(state domain.State, eventType domain.XPEventType) int {
	if state.Counters != nil {
		return state.Counters[eventType]
	}
	n := 0
	for _, e := range state.History {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
