package domain

import (
	"testing"
	"time"
)

// ─── Event Types ────────────────────────────────────────────────────────────

func TestXPEventType_Valid(t *testing.T) {
	seen := make(map[XPEventType]bool)
	for _, et := range EventTypes() {
		if !et.Valid() {
			t.Errorf("%s should be valid", et)
		}
		if seen[et] {
			t.Errorf("duplicate XPEventType: %s", et)
		}
		seen[et] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 event types, got %d", len(seen))
	}
	if XPEventType("close_ticket").Valid() {
		t.Error("close_ticket should not be valid")
	}
}

// ─── State ──────────────────────────────────────────────────────────────────

func TestNewState_Defaults(t *testing.T) {
	catalog := []BadgeDef{
		{ID: "a", Name: "A", Target: 1, Counter: CounterStreakDays},
		{ID: "b", Name: "B", Target: 5, Counter: CounterStreakDays},
	}
	s := NewState(catalog)

	if s.XP != 0 || s.Level != 1 || s.StreakDays != 0 {
		t.Errorf("expected zero defaults, got xp=%d level=%d streak=%d", s.XP, s.Level, s.StreakDays)
	}
	if s.LastActivityDate != nil {
		t.Error("LastActivityDate should be nil")
	}
	if len(s.Badges) != 2 {
		t.Fatalf("expected 2 badges, got %d", len(s.Badges))
	}
	for _, b := range s.Badges {
		if b.Progress != 0 || b.Unlocked() {
			t.Errorf("badge %s should start locked at 0", b.ID)
		}
	}
	if s.History == nil || len(s.History) != 0 {
		t.Error("History should be empty and non-nil")
	}
}

func TestState_CloneIsDeep(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	s := State{
		XP:               10,
		Level:            1,
		LastActivityDate: &now,
		Badges:           []Badge{{ID: "a", Target: 1, Progress: 1, UnlockedAt: &now}},
		History:          []XPEvent{{ID: "e1", Type: EventCreateLead, XP: 10}},
		Counters:         map[XPEventType]int{EventCreateLead: 1},
	}

	c := s.Clone()
	*c.LastActivityDate = now.Add(time.Hour)
	*c.Badges[0].UnlockedAt = now.Add(time.Hour)
	c.History[0].XP = 99
	c.Counters[EventCreateLead] = 42

	if !s.LastActivityDate.Equal(now) {
		t.Error("LastActivityDate shared with clone")
	}
	if !s.Badges[0].UnlockedAt.Equal(now) {
		t.Error("badge UnlockedAt shared with clone")
	}
	if s.History[0].XP != 10 {
		t.Error("history shared with clone")
	}
	if s.Counters[EventCreateLead] != 1 {
		t.Error("counters shared with clone")
	}
}

func TestCelebration_CloneIsDeep(t *testing.T) {
	var nilCel *Celebration
	if nilCel.Clone() != nil {
		t.Error("nil celebration should clone to nil")
	}

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	unlocked := now
	c := &Celebration{
		Type:  CelebrateBadgeUnlock,
		Badge: &Badge{ID: "first_lead", Target: 1, Progress: 1, UnlockedAt: &unlocked},
	}

	cp := c.Clone()
	cp.Badge.Progress = 9
	*cp.Badge.UnlockedAt = now.Add(time.Hour)

	if c.Badge.Progress != 1 {
		t.Error("badge shared with clone")
	}
	if !c.Badge.UnlockedAt.Equal(now) {
		t.Error("badge UnlockedAt shared with clone")
	}
}
