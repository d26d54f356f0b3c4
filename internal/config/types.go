// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"errors"
	"time"
)

// ErrValidation is returned when the loaded configuration fails validation.
var ErrValidation = errors.New("validation error")

// Config defines the application configuration. Values can be set via environment
// variables prefixed with BOT_ (e.g., BOT_TELEGRAM_TOKEN) or through config.yaml.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Store     StoreConfig     `mapstructure:"store"`
	EventLog  EventLogConfig  `mapstructure:"event_log"`
	Console   ConsoleConfig   `mapstructure:"console"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls operational logging.
type LogConfig struct {
	Level      string `mapstructure:"level"        validate:"required,oneof=debug info warn error"`
	Format     string `mapstructure:"format"       validate:"required,oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  validate:"min=1"`
	MaxBackups int    `mapstructure:"max_backups"  validate:"min=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"min=0"`
}

// TelegramConfig holds the transport settings.
type TelegramConfig struct {
	Token          string        `mapstructure:"token"           validate:"required"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"    validate:"min=1s,max=5m"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=10m"`
}

// StoreConfig selects the group store backend and its backing file.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=csv sqlite"`
	Path   string `mapstructure:"path"   validate:"required"`
}

// EventLogConfig points at the raw update journal.
type EventLogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ConsoleConfig controls the operator console.
type ConsoleConfig struct {
	Color bool `mapstructure:"color"`
}

// SchedulerConfig holds the scheduled task settings keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig describes when a task runs. Exactly one of Interval or Schedule
// must be set for an enabled task.
type TaskConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"omitempty,min=1s"`
	Schedule string        `mapstructure:"schedule"`
}
