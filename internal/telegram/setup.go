// Package telegram handles the setup of the Telegram bot client and helpers
// for inspecting incoming updates.
package telegram

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-telegram/bot"

	"github.com/edgard/groupwatch/internal/config"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

// Options builds the bot options shared by every listener: a single catch-all
// handler wrapped in middlewares, polling timeouts and transport error logging.
// Handlers run inline on the update worker so updates are processed one at a
// time in arrival order.
func Options(cfg config.TelegramConfig, logger *slog.Logger, handler bot.HandlerFunc, mw ...bot.Middleware) []bot.Option {
	log := logger.With("component", "telegram_poller")

	client := &http.Client{Timeout: cfg.PollTimeout + cfg.RequestTimeout}

	return []bot.Option{
		bot.WithDefaultHandler(handler),
		bot.WithMiddlewares(mw...),
		bot.WithNotAsyncHandlers(),
		bot.WithHTTPClient(cfg.PollTimeout, client),
		bot.WithErrorsHandler(func(err error) {
			log.Error("Telegram polling error", "error", err)
		}),
	}
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}
