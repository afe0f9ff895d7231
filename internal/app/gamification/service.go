package gamification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/salescoach/coach/internal/domain"
	"github.com/salescoach/coach/internal/infra/metrics"
)

// Service owns the gamification state of one profile. It loads the state on
// creation, saves it after every mutation, and keeps the last award and
// pending celebration in memory only.
//
// Saves are conditional on the store version the state was read at. When
// another writer got there first (a second process, or an older Service for
// the same profile dropped from a Registry cache), the stored state is
// reloaded and the mutation applied to it again.
//
// Exported methods are safe for concurrent use; awards are serialized so no
// update is lost.
type Service struct {
	mu      sync.Mutex
	key     string
	store   domain.StateStore
	rules   domain.XPRules
	catalog []domain.BadgeDef
	now     func() time.Time
	log     *slog.Logger

	state       domain.State
	version     int64
	lastAward   *domain.LastAward
	celebration *domain.Celebration
}

// Snapshot is a consistent read of a Service.
type Snapshot struct {
	State       domain.State        `json:"state"`
	LevelInfo   domain.LevelInfo    `json:"level_info"`
	LastAward   *domain.LastAward   `json:"last_award,omitempty"`
	Celebration *domain.Celebration `json:"celebration,omitempty"`
}

// NewService creates a service for the state stored under key, falling back
// to the default state if nothing usable is stored.
func NewService(ctx context.Context, store domain.StateStore, key string, opts ...Option) *Service {
	cfg := newSettings(opts)
	s := &Service{
		key:     key,
		store:   store,
		rules:   cfg.rules,
		catalog: cfg.catalog,
		now:     cfg.now,
		log:     cfg.log.With("key", key),
	}
	s.state, s.version = s.load(ctx)
	return s
}

// maxSaveAttempts bounds how often one mutation is applied before the
// in-memory result is kept without saving.
const maxSaveAttempts = 5

// ─── Mutations ──────────────────────────────────────────────────────────────

// AwardXP records one gameplay event and reports what changed.
// The only error is ctx's, checked before anything is modified; store
// failures are logged and the in-memory state stays authoritative.
func (s *Service) AwardXP(ctx context.Context, eventType domain.XPEventType, description string) (domain.AwardResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.AwardResult{}, err
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out AwardOutcome
	prev, next := s.update(ctx, func(cur domain.State) domain.State {
		out = AwardXP(cur, eventType, description, now, s.rules)
		st := out.State
		st.Badges = EvaluateBadges(st, s.catalog, out.Event.Timestamp)
		return st
	})
	fresh := NewlyUnlocked(prev.Badges, next.Badges)
	newBadges := make([]domain.Badge, len(fresh))
	for i, b := range fresh {
		newBadges[i] = b.Clone()
	}

	s.lastAward = &domain.LastAward{XP: out.XPAwarded, Description: description, Type: eventType}
	cel := pickCelebration(prev, next, out.LeveledUp, fresh)
	if cel != nil {
		s.celebration = cel
	}

	label := metrics.TypeLabel(eventType.Valid(), string(eventType))
	metrics.AwardsTotal.WithLabelValues(label).Inc()
	metrics.XPAwarded.WithLabelValues(label).Add(float64(out.XPAwarded))
	if out.LeveledUp {
		metrics.LevelUps.Inc()
	}
	for _, b := range fresh {
		metrics.BadgesUnlocked.WithLabelValues(b.ID).Inc()
	}
	if cel != nil {
		metrics.Celebrations.WithLabelValues(string(cel.Type)).Inc()
	}
	metrics.AwardDuration.Observe(time.Since(start).Seconds())

	s.log.Debug("xp awarded",
		"type", eventType,
		"xp", out.XPAwarded,
		"total_xp", next.XP,
		"level", next.Level,
		"streak", next.StreakDays,
		"new_badges", len(fresh),
	)

	return domain.AwardResult{
		XPAwarded:   out.XPAwarded,
		LeveledUp:   out.LeveledUp,
		NewBadges:   newBadges,
		Celebration: cel.Clone(),
	}, nil
}

// Reset discards all progress, history and transient feedback and deletes
// the stored document.
func (s *Service) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.NewState(s.catalog)
	s.lastAward = nil
	s.celebration = nil
	if err := s.store.Delete(context.WithoutCancel(ctx), s.key); err != nil {
		metrics.PersistFailures.WithLabelValues("delete").Inc()
		s.log.Error("delete state failed, keeping in-memory state", "error", err)
	} else {
		s.version = 0
	}

	metrics.Resets.Inc()
	s.log.Info("gamification state reset")
	return nil
}

// ClearLastAward drops the pending award notification.
func (s *Service) ClearLastAward() {
	s.mu.Lock()
	s.lastAward = nil
	s.mu.Unlock()
}

// ClearCelebration drops the pending celebration.
func (s *Service) ClearCelebration() {
	s.mu.Lock()
	s.celebration = nil
	s.mu.Unlock()
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// State returns a copy of the current state.
func (s *Service) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// LevelInfo returns the level progress for the current XP.
func (s *Service) LevelInfo() domain.LevelInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LevelInfo(s.state.XP)
}

// LastAward returns the pending award notification, or nil.
func (s *Service) LastAward() *domain.LastAward {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAward == nil {
		return nil
	}
	la := *s.lastAward
	return &la
}

// Celebration returns the pending celebration, or nil.
func (s *Service) Celebration() *domain.Celebration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.celebration.Clone()
}

// Snapshot returns state, level info and transient feedback read together.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:     s.state.Clone(),
		LevelInfo: LevelInfo(s.state.XP),
	}
	if s.lastAward != nil {
		la := *s.lastAward
		snap.LastAward = &la
	}
	snap.Celebration = s.celebration.Clone()
	return snap
}

// Rules returns the XP reward table in use.
func (s *Service) Rules() domain.XPRules {
	return copyRules(s.rules)
}

// ─── Persistence ────────────────────────────────────────────────────────────

// load reads the stored state and its version. A document that cannot be
// decoded yields the default state but keeps its version, so the next save
// replaces it.
func (s *Service) load(ctx context.Context) (domain.State, int64) {
	data, version, err := s.store.Load(ctx, s.key)
	if err != nil {
		metrics.PersistFailures.WithLabelValues("load").Inc()
		s.log.Warn("load state failed, starting fresh", "error", err)
		return domain.NewState(s.catalog), 0
	}
	if data == nil {
		return domain.NewState(s.catalog), 0
	}
	state, err := DecodeState(data, s.catalog)
	if err != nil {
		metrics.PersistFailures.WithLabelValues("decode").Inc()
		s.log.Warn("stored state unreadable, starting fresh", "error", err)
		return domain.NewState(s.catalog), version
	}
	return state, version
}

// update applies fn to the current state, commits the result in memory and
// saves it. If the save loses a version race, the stored state is reloaded
// and fn applied again. Callers hold s.mu. Saving is not tied to ctx
// cancellation: once committed in memory, a mutation is always written.
func (s *Service) update(ctx context.Context, fn func(domain.State) domain.State) (prev, next domain.State) {
	ctx = context.WithoutCancel(ctx)
	for attempt := 1; ; attempt++ {
		prev = s.state
		next = fn(prev)

		err := s.save(ctx, next)
		if errors.Is(err, domain.ErrVersionConflict) && attempt < maxSaveAttempts {
			metrics.SaveConflicts.Inc()
			s.log.Debug("state changed in store, reapplying", "attempt", attempt)
			s.state, s.version = s.load(ctx)
			continue
		}

		s.state = next
		if err != nil {
			metrics.PersistFailures.WithLabelValues("save").Inc()
			s.log.Error("save state failed, keeping in-memory state", "error", err)
		}
		return prev, next
	}
}

// save writes state at the current version and advances it.
func (s *Service) save(ctx context.Context, state domain.State) error {
	data, err := EncodeState(state)
	if err != nil {
		return err
	}
	version, err := s.store.Save(ctx, s.key, data, s.version)
	if err != nil {
		return err
	}
	s.version = version
	return nil
}

// ─── Celebrations ───────────────────────────────────────────────────────────

// pickCelebration chooses at most one celebration for an award:
// level-up, then the first newly unlocked badge, then a streak milestone.
func pickCelebration(prev, next domain.State, leveledUp bool, fresh []domain.Badge) *domain.Celebration {
	switch {
	case leveledUp:
		return &domain.Celebration{
			Type:    domain.CelebrateLevelUp,
			Title:   "Level up!",
			Message: fmt.Sprintf("You reached level %d", next.Level),
			Level:   next.Level,
		}
	case len(fresh) > 0:
		b := fresh[0].Clone()
		return &domain.Celebration{
			Type:    domain.CelebrateBadgeUnlock,
			Title:   "Badge unlocked!",
			Message: fmt.Sprintf("%s: %s", b.Name, b.Description),
			Badge:   &b,
		}
	case next.StreakDays > 0 &&
		next.StreakDays%domain.StreakMilestoneDays == 0 &&
		next.StreakDays != prev.StreakDays:
		return &domain.Celebration{
			Type:    domain.CelebrateStreakMilestone,
			Title:   "Streak milestone!",
			Message: fmt.Sprintf("%d days in a row", next.StreakDays),
			Streak:  next.StreakDays,
		}
	}
	return nil
}
