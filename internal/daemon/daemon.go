package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salescoach/coach/internal/api"
	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/domain"
	"github.com/salescoach/coach/internal/health"
	"github.com/salescoach/coach/internal/infra/redisstore"
	"github.com/salescoach/coach/internal/infra/sqlite"
	"github.com/salescoach/coach/internal/logger"
)

// Daemon is the coach runtime. It wires together all services.
type Daemon struct {
	Config   Config
	Store    domain.StateStore
	Registry *gamification.Registry
	Server   *api.Server
	Health   *health.Checker
	Log      *slog.Logger

	cancel context.CancelFunc
}

// New loads the configuration and creates a Daemon.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	log := logger.Init(logCfg)

	store, dataDir, err := OpenStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	rules, ignored := gamification.MergeRules(gamification.DefaultRules(), cfg.Rewards)
	for _, name := range ignored {
		log.Warn("ignoring reward override", "type", name)
	}

	registry, err := gamification.NewRegistry(store,
		gamification.WithRules(rules),
		gamification.WithLogger(log),
		gamification.WithCacheSize(cfg.Cache.Profiles),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	checker := health.NewChecker(store, dataDir)

	srv := api.NewServer(registry)
	srv.SetHealth(checker)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:   cfg,
		Store:    store,
		Registry: registry,
		Server:   srv,
		Health:   checker,
		Log:      log,
	}, nil
}

// OpenStore opens the configured state store. dataDir is the local
// directory the store writes to, empty for remote backends.
func OpenStore(cfg StorageConfig) (store domain.StateStore, dataDir string, err error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		dataDir = CoachHome()
		db, err := sqlite.Open(dataDir)
		if err != nil {
			return nil, "", fmt.Errorf("open database: %w", err)
		}
		return db, dataDir, nil
	case BackendRedis:
		return redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix), "", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", domain.ErrUnknownBackend, cfg.Backend)
	}
}

// Profile returns the gamification service for profile, or for the
// configured default profile when profile is empty.
func (d *Daemon) Profile(ctx context.Context, profile string) (*gamification.Service, error) {
	if profile == "" {
		profile = d.Config.Profile.Default
	}
	return d.Registry.Get(ctx, profile)
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.Store.Ping(ctx); err != nil {
		d.Log.Warn("state store unreachable at startup", "backend", d.Config.Storage.Backend, "error", err)
	}

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           d.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			d.Log.Error("http shutdown", "error", err)
		}
		cancel()
	}()

	d.Log.Info("coach serving",
		"addr", "http://"+addr,
		"backend", d.Config.Storage.Backend,
		"metrics", d.Config.Telemetry.Prometheus,
	)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-done
		d.Close()
		return err
	}
	<-done
	d.Close()
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Log.Warn("close store", "error", err)
		}
		d.Store = nil
	}
}
