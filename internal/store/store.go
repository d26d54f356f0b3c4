package store

import (
	"context"
	"io"
	"log/slog"

	"github.com/edgard/groupwatch/internal/eventlog"
)

// Recorder journals an action with an optional payload.
type Recorder interface {
	Record(action string, payload any)
}

// Store applies the listener's failure policy on top of a Backend.
type Store struct {
	backend Backend
	events  Recorder
	logger  *slog.Logger
}

// New wraps backend. Failures are journaled on events.
func New(backend Backend, events Recorder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		backend: backend,
		events:  events,
		logger:  logger.With("component", "store"),
	}
}

// Initialize creates the backing file or schema. Unlike lookups and appends,
// a failure here is returned: the listener cannot start without its store.
func (s *Store) Initialize(ctx context.Context) error {
	return s.backend.Init(ctx)
}

// Contains reports whether chatID is stored. Read failures are journaled and
// reported as "not stored".
func (s *Store) Contains(ctx context.Context, chatID string) bool {
	found, err := s.backend.Contains(ctx, chatID)
	if err != nil {
		s.logger.WarnContext(ctx, "Store lookup failed", "chat_id", chatID, "error", err)
		s.events.Record(eventlog.ActionStoreContainsErr, failurePayload(chatID, err))
		return false
	}
	return found
}

// Append stores rec. Write failures are journaled and not retried.
func (s *Store) Append(ctx context.Context, rec GroupRecord) {
	if err := s.backend.Append(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "Store append failed", "chat_id", rec.ChatID, "error", err)
		s.events.Record(eventlog.ActionStoreAppendErr, failurePayload(rec.ChatID, err))
		return
	}
	s.logger.InfoContext(ctx, "Group stored", "chat_id", rec.ChatID, "group_name", rec.GroupName)
}

// Count returns the number of stored records, or -1 when they cannot be read.
func (s *Store) Count(ctx context.Context) int {
	records, err := s.backend.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Store listing failed", "error", err)
		return -1
	}
	return len(records)
}

func failurePayload(chatID string, err error) map[string]string {
	return map[string]string{
		"chat_id": chatID,
		"error":   err.Error(),
	}
}
