// Package domain holds the gamification types shared by the engine, the stores
// and the API. XP drives levels, daily activity drives streaks, and badges are
// unlocked from lifetime counters.
package domain

import "time"

// XPPerLevel is the fixed width of every level.
const XPPerLevel int64 = 100

// HistoryLimit caps the number of XP events kept in State.History.
const HistoryLimit = 100

// StreakMilestoneDays is the streak length whose multiples trigger a celebration.
const StreakMilestoneDays = 7

// ─── XP Events ──────────────────────────────────────────────────────────────

// XPEventType identifies a gameplay event that can award XP.
type XPEventType string

const (
	EventCreateLead      XPEventType = "create_lead"
	EventFollowupOnTime  XPEventType = "followup_ontime"
	EventFixMissingField XPEventType = "fix_missing_field"
	EventDailyStreak     XPEventType = "daily_streak"
	EventWinOpportunity  XPEventType = "win_opportunity"
	EventAdvancePhase    XPEventType = "advance_phase"
)

// EventTypes lists every known event type in display order.
func EventTypes() []XPEventType {
	return []XPEventType{
		EventCreateLead,
		EventFollowupOnTime,
		EventFixMissingField,
		EventDailyStreak,
		EventWinOpportunity,
		EventAdvancePhase,
	}
}

// Valid reports whether t is one of the known event types.
func (t XPEventType) Valid() bool {
	for _, known := range EventTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// XPEvent is one immutable entry of the award history.
type XPEvent struct {
	ID          string      `json:"id"`
	Type        XPEventType `json:"type"`
	XP          int64       `json:"xp"` // includes any streak bonus
	Description string      `json:"description"`
	Timestamp   time.Time   `json:"timestamp"`
}

// XPRule is the reward configured for one event type.
type XPRule struct {
	XP          int64  `json:"xp" toml:"xp"`
	Label       string `json:"label" toml:"label"`
	Description string `json:"description" toml:"description"`
}

// XPRules maps event types to their rewards.
type XPRules map[XPEventType]XPRule

// ─── Levels ─────────────────────────────────────────────────────────────────

// LevelInfo describes where a given XP total sits on the level ladder.
type LevelInfo struct {
	Level           int     `json:"level"`
	CurrentLevelXP  int64   `json:"current_level_xp"`
	XPForNextLevel  int64   `json:"xp_for_next_level"`
	ProgressPercent float64 `json:"progress_percent"`
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// CounterKind selects which counter a badge tracks.
type CounterKind string

const (
	// CounterEventCount is the lifetime number of events of BadgeDef.EventType.
	CounterEventCount CounterKind = "event_count"
	// CounterStreakDays is the current streak length.
	CounterStreakDays CounterKind = "streak_days"
	// CounterEventCountToday counts events of BadgeDef.EventType on the current day.
	CounterEventCountToday CounterKind = "event_count_today"
)

// BadgeDef is a declarative badge catalog entry.
type BadgeDef struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Target      int         `json:"target"`
	Counter     CounterKind `json:"counter"`
	EventType   XPEventType `json:"event_type,omitempty"`
	Cap         int         `json:"cap,omitempty"` // 0 = no clamp
}

// Badge is the tracked state of one catalog entry.
type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Target      int        `json:"target"`
	Progress    int        `json:"progress"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// Unlocked reports whether the badge has been earned.
func (b Badge) Unlocked() bool {
	return b.UnlockedAt != nil
}

// Clone returns a copy of b that shares no memory with it.
func (b Badge) Clone() Badge {
	if b.UnlockedAt != nil {
		t := *b.UnlockedAt
		b.UnlockedAt = &t
	}
	return b
}

// NewBadge returns the locked, zero-progress badge for def.
func NewBadge(def BadgeDef) Badge {
	return Badge{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Icon:        def.Icon,
		Target:      def.Target,
	}
}

// ─── State ──────────────────────────────────────────────────────────────────

// State is the persisted gamification aggregate of one profile.
type State struct {
	XP               int64               `json:"xp"`
	Level            int                 `json:"level"`
	StreakDays       int                 `json:"streak_days"`
	LastActivityDate *time.Time          `json:"last_activity_date,omitempty"`
	Badges           []Badge             `json:"badges"`
	History          []XPEvent           `json:"history"`
	Counters         map[XPEventType]int `json:"counters,omitempty"`
}

// NewState returns the all-zero default state with one locked badge per catalog entry.
func NewState(catalog []BadgeDef) State {
	badges := make([]Badge, len(catalog))
	for i, def := range catalog {
		badges[i] = NewBadge(def)
	}
	return State{
		Level:    1,
		Badges:   badges,
		History:  []XPEvent{},
		Counters: map[XPEventType]int{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	if s.LastActivityDate != nil {
		t := *s.LastActivityDate
		out.LastActivityDate = &t
	}
	out.Badges = make([]Badge, len(s.Badges))
	for i, b := range s.Badges {
		out.Badges[i] = b.Clone()
	}
	out.History = make([]XPEvent, len(s.History))
	copy(out.History, s.History)
	if s.Counters != nil {
		out.Counters = make(map[XPEventType]int, len(s.Counters))
		for k, v := range s.Counters {
			out.Counters[k] = v
		}
	}
	return out
}

// ─── Transient feedback ─────────────────────────────────────────────────────

// LastAward is the most recent award, kept for toast-style feedback.
type LastAward struct {
	XP          int64       `json:"xp"`
	Description string      `json:"description"`
	Type        XPEventType `json:"type"`
}

// CelebrationType categorizes a celebration.
type CelebrationType string

const (
	CelebrateLevelUp         CelebrationType = "level-up"
	CelebrateBadgeUnlock     CelebrationType = "badge-unlock"
	CelebrateStreakMilestone CelebrationType = "streak-milestone"
)

// Celebration is the single most significant change of one award.
type Celebration struct {
	Type    CelebrationType `json:"type"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Level   int             `json:"level,omitempty"`
	Badge   *Badge          `json:"badge,omitempty"`
	Streak  int             `json:"streak,omitempty"`
}

// Clone returns a deep copy of c. A nil celebration clones to nil.
func (c *Celebration) Clone() *Celebration {
	if c == nil {
		return nil
	}
	out := *c
	if c.Badge != nil {
		b := c.Badge.Clone()
		out.Badge = &b
	}
	return &out
}

// AwardResult is what an award changed, returned for the caller to render.
type AwardResult struct {
	XPAwarded   int64        `json:"xp_awarded"`
	LeveledUp   bool         `json:"leveled_up"`
	NewBadges   []Badge      `json:"new_badges"`
	Celebration *Celebration `json:"celebration,omitempty"`
}
