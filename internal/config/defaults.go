package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28

	DefaultTelegramPollTimeout    = 10 * time.Second
	DefaultTelegramRequestTimeout = 30 * time.Second

	DefaultStoreDriver = "csv"
	DefaultStorePath   = "group_info.csv"

	DefaultEventLogPath = "raw_updates.log"

	DefaultConsoleColor = true

	DefaultHeartbeatInterval        = 5 * time.Second
	DefaultStoreMaintenanceSchedule = "0 0 3 * * *"
)

// Task names understood by the scheduler.
const (
	TaskHeartbeat        = "heartbeat"
	TaskStoreMaintenance = "store_maintenance"
)

var defaults = map[string]any{
	"log.level":        DefaultLogLevel,
	"log.format":       DefaultLogFormat,
	"log.file":         "",
	"log.max_size_mb":  DefaultLogMaxSizeMB,
	"log.max_backups":  DefaultLogMaxBackups,
	"log.max_age_days": DefaultLogMaxAgeDays,

	"telegram.token":           "",
	"telegram.poll_timeout":    DefaultTelegramPollTimeout,
	"telegram.request_timeout": DefaultTelegramRequestTimeout,

	"store.driver": DefaultStoreDriver,
	"store.path":   DefaultStorePath,

	"event_log.path": DefaultEventLogPath,

	"console.color": DefaultConsoleColor,

	"scheduler.tasks.heartbeat.enabled":          true,
	"scheduler.tasks.heartbeat.interval":         DefaultHeartbeatInterval,
	"scheduler.tasks.store_maintenance.enabled":  false,
	"scheduler.tasks.store_maintenance.schedule": DefaultStoreMaintenanceSchedule,
}
