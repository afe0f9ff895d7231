package gamification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/salescoach/coach/internal/domain"
	"github.com/salescoach/coach/internal/infra/metrics"
)

// MaxProfileLen bounds profile names.
const MaxProfileLen = 64

// Registry hands out one Service per profile, loading each from the store on
// first use and keeping the most recently used ones in memory. Evicting a
// profile only drops its transient feedback; its state is already saved.
type Registry struct {
	store   domain.StateStore
	opts    []Option
	rules   domain.XPRules
	catalog []domain.BadgeDef
	log     *slog.Logger

	mu    sync.Mutex // serializes load-or-create
	cache *lru.Cache[string, *Service]
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store domain.StateStore, opts ...Option) (*Registry, error) {
	cfg := newSettings(opts)
	cache, err := lru.NewWithEvict[string, *Service](cfg.cacheSize, func(profile string, _ *Service) {
		cfg.log.Debug("profile evicted from cache", "profile", profile)
	})
	if err != nil {
		return nil, fmt.Errorf("create profile cache: %w", err)
	}
	return &Registry{
		store:   store,
		opts:    opts,
		rules:   cfg.rules,
		catalog: cfg.catalog,
		log:     cfg.log,
		cache:   cache,
	}, nil
}

// Get returns the service for profile, loading it if needed.
func (r *Registry) Get(ctx context.Context, profile string) (*Service, error) {
	if !ValidProfile(profile) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidProfile, profile)
	}
	if svc, ok := r.cache.Get(profile); ok {
		return svc, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have loaded it while we waited.
	if svc, ok := r.cache.Get(profile); ok {
		return svc, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	svc := NewService(ctx, r.store, StateKey(profile), r.opts...)
	r.cache.Add(profile, svc)
	metrics.ProfilesLoaded.Set(float64(r.cache.Len()))
	r.log.Debug("profile loaded", "profile", profile)
	return svc, nil
}

// Loaded returns the number of profiles held in memory.
func (r *Registry) Loaded() int {
	return r.cache.Len()
}

// Rules returns the XP reward table every profile uses.
func (r *Registry) Rules() domain.XPRules {
	return copyRules(r.rules)
}

// Catalog returns the badge catalog every profile uses.
func (r *Registry) Catalog() []domain.BadgeDef {
	return append([]domain.BadgeDef(nil), r.catalog...)
}

// Profiles lists the profiles with stored state, if the store can enumerate
// its keys.
func (r *Registry) Profiles(ctx context.Context) ([]string, error) {
	lister, ok := r.store.(domain.KeyLister)
	if !ok {
		return nil, fmt.Errorf("list profiles: %w", errors.ErrUnsupported)
	}
	keys, err := lister.Keys(ctx, StateNamespace+"/")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := make([]string, 0, len(keys))
	for _, k := range keys {
		profiles = append(profiles, strings.TrimPrefix(k, StateNamespace+"/"))
	}
	sort.Strings(profiles)
	return profiles, nil
}

// Ping checks the underlying store.
func (r *Registry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// ValidProfile reports whether name is usable as a profile: 1 to
// MaxProfileLen characters from [A-Za-z0-9._-].
func ValidProfile(name string) bool {
	if name == "" || len(name) > MaxProfileLen {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
