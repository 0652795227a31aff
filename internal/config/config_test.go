package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 8080 || cfg.App.Env != "dev" {
		t.Fatalf("app defaults = %+v", cfg.App)
	}
	if cfg.Limits.Transcription != 20 || cfg.Limits.Analysis != 3 || cfg.Limits.TaskMaxAttempts != 3 {
		t.Fatalf("limit defaults = %+v", cfg.Limits)
	}
	if !cfg.Reminder.Enabled || cfg.Reminder.HourUTC != 18 {
		t.Fatalf("reminder defaults = %+v", cfg.Reminder)
	}
	if cfg.RabbitMQ.TaskQueue != "journal.ai.tasks" {
		t.Fatalf("task queue default = %q", cfg.RabbitMQ.TaskQueue)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9000
env = "prod"

[limits]
analysis = 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 9000 || cfg.App.Env != "prod" {
		t.Fatalf("app from file = %+v", cfg.App)
	}
	if cfg.Limits.Analysis != 5 {
		t.Fatalf("limits from file = %+v", cfg.Limits)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Redis.Addr != "127.0.0.1:6379" {
		t.Fatalf("redis default lost: %+v", cfg.Redis)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[app]\nport = 9000\n"), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9100")
	t.Setenv("IDENTITY_SECRET", "env-secret")
	t.Setenv("LIMIT_DAILY_REFLECTION", "7")
	t.Setenv("REMINDER_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 9100 {
		t.Fatalf("port = %d, want env override 9100", cfg.App.Port)
	}
	if cfg.Auth.IdentitySecret != "env-secret" {
		t.Fatalf("identity secret = %q", cfg.Auth.IdentitySecret)
	}
	if cfg.Limits.DailyReflection != 7 {
		t.Fatalf("daily reflection limit = %d", cfg.Limits.DailyReflection)
	}
	if cfg.Reminder.Enabled {
		t.Fatal("reminder still enabled despite env override")
	}
}

func TestBadEnvValueKeepsFallback(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "not-a-port")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("port = %d, want default 8080", cfg.App.Port)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "journal"
	cfg.MySQL.Password = "pw"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "journal_test"
	cfg.MySQL.Params = "parseTime=true"

	want := "journal:pw@tcp(db:3307)/journal_test?parseTime=true"
	if got := cfg.MySQLDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}
