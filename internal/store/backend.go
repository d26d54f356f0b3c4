// Package store persists one record per group chat the bot has seen.
//
// Backends report every failure to the caller. Store wraps a backend with the
// listener's policy: lookups fail open, appends fail silently, and both
// failures are journaled.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edgard/groupwatch/internal/config"
)

// ErrUnknownDriver is returned by Open for unsupported store drivers.
var ErrUnknownDriver = errors.New("unknown store driver")

// Backend is the persistence contract shared by the CSV and SQLite stores.
type Backend interface {
	// Init creates the backing file with its header or schema when absent.
	Init(ctx context.Context) error

	// Contains reports whether a record with chatID exists.
	Contains(ctx context.Context, chatID string) (bool, error)

	// Append adds one record.
	Append(ctx context.Context, rec GroupRecord) error

	// List returns all records in insertion order.
	List(ctx context.Context) ([]GroupRecord, error)

	Close() error
}

// Maintainer is implemented by backends that support periodic maintenance.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// Open creates the backend selected by cfg.Driver. Init must still be called.
func Open(cfg config.StoreConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Driver {
	case "csv":
		return NewCSV(cfg.Path), nil
	case "sqlite":
		return OpenSQLite(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
