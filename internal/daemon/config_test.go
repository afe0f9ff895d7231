package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8787 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8787)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendSQLite)
	}
	if cfg.Profile.Default != "default" {
		t.Errorf("Profile.Default = %q, want %q", cfg.Profile.Default, "default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("API.Port = %d, want default", cfg.API.Port)
	}
}

func TestLoadConfig_FileAndRewards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[profile]
default = "alice"

[api]
port = 9000

[storage]
backend = "redis"
redis_addr = "redis:6379"

[rewards.win_opportunity]
xp = 50

[rewards.create_lead]
label = "Fresh lead"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}
	if cfg.Profile.Default != "alice" {
		t.Errorf("Profile.Default = %q, want alice", cfg.Profile.Default)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("unset keys keep defaults, API.Host = %q", cfg.API.Host)
	}
	if cfg.Storage.Backend != BackendRedis || cfg.Storage.RedisAddr != "redis:6379" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}

	win := cfg.Rewards["win_opportunity"]
	if win.XP == nil || *win.XP != 50 {
		t.Errorf("rewards.win_opportunity.xp = %v, want 50", win.XP)
	}
	lead := cfg.Rewards["create_lead"]
	if lead.XP != nil {
		t.Errorf("rewards.create_lead.xp should be unset, got %d", *lead.XP)
	}
	if lead.Label != "Fresh lead" {
		t.Errorf("rewards.create_lead.label = %q", lead.Label)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api]\nport = 9000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COACH_API_PORT", "9100")
	t.Setenv("COACH_LOG_FORMAT", "json")
	t.Setenv("COACH_API_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error: %v", err)
	}
	if cfg.API.Port != 9100 {
		t.Errorf("API.Port = %d, want 9100", cfg.API.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
	if len(cfg.API.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.API.CORSOrigins)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad backend": "[storage]\nbackend = \"mongo\"\n",
		"bad port":    "[api]\nport = 70000\n",
		"bad profile": "[profile]\ndefault = \"a b\"\n",
		"bad toml":    "[api\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfigFrom(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("COACH_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9999
	cfg.Logging.Level = "debug"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if got.API.Port != 9999 || got.Logging.Level != "debug" {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestCoachHome(t *testing.T) {
	t.Setenv("COACH_HOME", "/tmp/coach-test")
	if got := CoachHome(); got != "/tmp/coach-test" {
		t.Errorf("CoachHome() = %q", got)
	}
}
