package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/groupwatch/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: \"123:abc\"\n")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q, want %q", cfg.Telegram.Token, "123:abc")
	}
	if cfg.Store.Driver != config.DefaultStoreDriver {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, config.DefaultStoreDriver)
	}
	if cfg.Store.Path != config.DefaultStorePath {
		t.Errorf("Store.Path = %q, want %q", cfg.Store.Path, config.DefaultStorePath)
	}
	if cfg.EventLog.Path != config.DefaultEventLogPath {
		t.Errorf("EventLog.Path = %q, want %q", cfg.EventLog.Path, config.DefaultEventLogPath)
	}
	if !cfg.Console.Color {
		t.Error("Console.Color = false, want true")
	}

	hb, ok := cfg.Scheduler.Tasks[config.TaskHeartbeat]
	if !ok {
		t.Fatal("heartbeat task missing from defaults")
	}
	if !hb.Enabled || hb.Interval != config.DefaultHeartbeatInterval {
		t.Errorf("heartbeat = %+v, want enabled with interval %v", hb, config.DefaultHeartbeatInterval)
	}

	maint := cfg.Scheduler.Tasks[config.TaskStoreMaintenance]
	if maint.Enabled {
		t.Error("store_maintenance should be disabled by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
telegram:
  token: "123:abc"
  poll_timeout: 20s
store:
  driver: sqlite
  path: groups.db
scheduler:
  tasks:
    heartbeat:
      enabled: true
      interval: 10s
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Telegram.PollTimeout != 20*time.Second {
		t.Errorf("PollTimeout = %v, want 20s", cfg.Telegram.PollTimeout)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "groups.db" {
		t.Errorf("Store = %+v, want sqlite/groups.db", cfg.Store)
	}
	if got := cfg.Scheduler.Tasks[config.TaskHeartbeat].Interval; got != 10*time.Second {
		t.Errorf("heartbeat interval = %v, want 10s", got)
	}
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "env-token")
	t.Setenv("BOT_EVENT_LOG_PATH", "env.log")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Telegram.Token != "env-token" {
		t.Errorf("Telegram.Token = %q, want env-token", cfg.Telegram.Token)
	}
	if cfg.EventLog.Path != "env.log" {
		t.Errorf("EventLog.Path = %q, want env.log", cfg.EventLog.Path)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing token",
			body: "log:\n  level: info\n",
		},
		{
			name: "unknown store driver",
			body: "telegram:\n  token: t\nstore:\n  driver: xlsx\n",
		},
		{
			name: "bad log level",
			body: "telegram:\n  token: t\nlog:\n  level: loud\n",
		},
		{
			name: "task with interval and schedule",
			body: "telegram:\n  token: t\nscheduler:\n  tasks:\n    heartbeat:\n      enabled: true\n      interval: 5s\n      schedule: \"* * * * * *\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, config.ErrValidation) {
				t.Errorf("LoadConfig() error = %v, want ErrValidation", err)
			}
		})
	}
}
