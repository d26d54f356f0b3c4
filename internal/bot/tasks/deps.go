// Package tasks implements scheduled tasks for the group listener.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"log/slog"

	"github.com/edgard/groupwatch/internal/console"
	"github.com/edgard/groupwatch/internal/store"
)

// TaskDeps contains all dependencies required by scheduled tasks.
// Maintainer is nil when the configured store has no maintenance routine.
type TaskDeps struct {
	Logger     *slog.Logger
	Console    *console.Console
	Maintainer store.Maintainer
}
