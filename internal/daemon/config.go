// Package daemon manages the coach daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/salescoach/coach/internal/app/gamification"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all daemon configuration.
type Config struct {
	Profile   ProfileConfig   `toml:"profile"`
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Cache     CacheConfig     `toml:"cache"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`

	// Rewards overrides entries of the default XP table, keyed by event type.
	Rewards map[string]gamification.RuleOverride `toml:"rewards"`
}

// ProfileConfig selects the profile used when none is given.
type ProfileConfig struct {
	Default string `toml:"default" env:"COACH_PROFILE"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" env:"COACH_API_HOST"`
	Port        int      `toml:"port" env:"COACH_API_PORT"`
	CORSOrigins []string `toml:"cors_origins" env:"COACH_API_CORS_ORIGINS"`
}

// StorageConfig selects and configures the state store.
type StorageConfig struct {
	Backend       string `toml:"backend" env:"COACH_STORAGE_BACKEND"`
	RedisAddr     string `toml:"redis_addr" env:"COACH_REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"COACH_REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"COACH_REDIS_DB"`
	RedisPrefix   string `toml:"redis_prefix" env:"COACH_REDIS_PREFIX"`
}

// CacheConfig bounds in-memory state.
type CacheConfig struct {
	Profiles int `toml:"profiles" env:"COACH_CACHE_PROFILES"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level" env:"COACH_LOG_LEVEL"`
	Format string `toml:"format" env:"COACH_LOG_FORMAT"`
}

// TelemetryConfig toggles metrics exposition.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"COACH_PROMETHEUS"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Profile: ProfileConfig{Default: "default"},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8787,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "coach:",
		},
		Cache:     CacheConfig{Profiles: gamification.DefaultCacheSize},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{Prometheus: true},
	}
}

// LoadConfig reads $COACH_HOME/config.toml on top of the defaults, then
// applies COACH_* environment overrides. A .env file in the working
// directory is loaded first if present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom is LoadConfig for an explicit file path.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the daemon cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("storage backend %q: must be %q or %q", c.Storage.Backend, BackendSQLite, BackendRedis)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api port %d out of range", c.API.Port)
	}
	if !gamification.ValidProfile(c.Profile.Default) {
		return fmt.Errorf("default profile %q is not a valid profile name", c.Profile.Default)
	}
	return nil
}

// SaveConfig writes the config to $COACH_HOME/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(ConfigPath(), cfg)
}

// SaveConfigTo writes cfg as TOML to path.
func SaveConfigTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ConfigPath returns the path of the config file, $COACH_HOME/config.toml.
func ConfigPath() string {
	return filepath.Join(CoachHome(), "config.toml")
}

// CoachHome returns the coach data directory.
func CoachHome() string {
	if dir := os.Getenv("COACH_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".coach")
}
