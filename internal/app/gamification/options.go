package gamification

import (
	"log/slog"
	"time"

	"github.com/salescoach/coach/internal/domain"
)

// DefaultCacheSize is the number of profiles a Registry keeps in memory.
const DefaultCacheSize = 256

// Option configures a Service or Registry.
type Option func(*settings)

type settings struct {
	rules     domain.XPRules
	catalog   []domain.BadgeDef
	now       func() time.Time
	log       *slog.Logger
	cacheSize int
}

func newSettings(opts []Option) settings {
	s := settings{
		rules:     DefaultRules(),
		catalog:   DefaultCatalog(),
		now:       time.Now,
		log:       slog.Default(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.log = s.log.With("component", "gamification")
	return s
}

// WithRules sets the XP reward table.
func WithRules(rules domain.XPRules) Option {
	return func(s *settings) {
		if rules != nil {
			s.rules = copyRules(rules)
		}
	}
}

// WithCatalog sets the badge catalog.
func WithCatalog(catalog []domain.BadgeDef) Option {
	return func(s *settings) {
		if catalog != nil {
			s.catalog = append([]domain.BadgeDef(nil), catalog...)
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCacheSize sets how many profiles a Registry keeps loaded.
func WithCacheSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}
