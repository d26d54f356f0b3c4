// Package handlers contains the Telegram update handlers of the group listener.
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/groupwatch/internal/console"
	"github.com/edgard/groupwatch/internal/store"
)

// GroupStore is the deduplicating group record store.
type GroupStore interface {
	Contains(ctx context.Context, chatID string) bool
	Append(ctx context.Context, rec store.GroupRecord)
}

// EventLog is the raw update journal.
type EventLog interface {
	Record(action string, payload any)
}

// HandlerDeps provides dependencies for Telegram update handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Store   GroupStore
	Events  EventLog
	Console *console.Console
	Now     func() time.Time
}
