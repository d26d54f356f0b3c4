package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/groupwatch/internal/console"
	"github.com/edgard/groupwatch/internal/eventlog"
	"github.com/edgard/groupwatch/internal/store"
	"github.com/edgard/groupwatch/internal/telegram"
)

// Envelope mirrors the Bot API getUpdates response shape for journal entries.
type Envelope struct {
	OK     bool             `json:"ok"`
	Result []*models.Update `json:"result"`
}

// Failure describes an update that could not be handled.
type Failure struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type groupHandler struct {
	deps HandlerDeps
}

// NewGroupHandler returns the catch-all update handler. It stores every group
// or supergroup it has not seen before and journals every update. Nothing it
// does can fail the caller: errors and panics are journaled and printed.
func NewGroupHandler(deps HandlerDeps) bot.HandlerFunc {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return groupHandler{deps}.Handle
}

func (h groupHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.fail(ctx, update, panicFailure(r), string(debug.Stack()))
		}
	}()

	if err := h.process(ctx, update); err != nil {
		h.fail(ctx, update, errorFailure(err), "")
	}
}

func (h groupHandler) process(ctx context.Context, update *models.Update) error {
	if chat := telegram.EffectiveChat(update); telegram.IsGroupLike(chat) {
		h.recordGroup(ctx, chat)
	}

	payload, err := eventlog.Marshal(Envelope{OK: true, Result: []*models.Update{update}})
	if err != nil {
		return fmt.Errorf("failed to serialize update: %w", err)
	}
	h.deps.Events.Record(eventlog.ActionUpdateReceived, json.RawMessage(payload))
	return nil
}

func (h groupHandler) recordGroup(ctx context.Context, chat *models.Chat) {
	chatID := strconv.FormatInt(chat.ID, 10)

	if h.deps.Store.Contains(ctx, chatID) {
		h.deps.Console.AlreadyLogged(chat.Title, chatID)
		return
	}

	h.deps.Store.Append(ctx, store.GroupRecord{
		Timestamp: h.deps.Now().Format(console.TimeLayout),
		GroupName: chat.Title,
		ChatID:    chatID,
	})
}

func (h groupHandler) fail(ctx context.Context, update *models.Update, failure Failure, trace string) {
	var updateID int64
	if update != nil {
		updateID = update.ID
	}

	h.deps.Logger.ErrorContext(ctx, "Failed to handle update",
		"update_id", updateID, "error_type", failure.Type, "error", failure.Message)
	h.deps.Events.Record(eventlog.ActionHandleUpdateError, failure)

	if trace == "" {
		trace = fmt.Sprintf("%s: %s", failure.Type, failure.Message)
	}
	h.deps.Console.Error(fmt.Sprintf("Error handling update %d:", updateID), trace)
}

// errorFailure names the innermost wrapped error type.
func errorFailure(err error) Failure {
	root := err
	for next := errors.Unwrap(root); next != nil; next = errors.Unwrap(root) {
		root = next
	}
	return Failure{Type: fmt.Sprintf("%T", root), Message: err.Error()}
}

func panicFailure(r any) Failure {
	if err, ok := r.(error); ok {
		return Failure{Type: fmt.Sprintf("%T", err), Message: err.Error()}
	}
	return Failure{Type: "panic", Message: fmt.Sprint(r)}
}
