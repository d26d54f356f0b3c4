// Package main contains the entrypoint for the group listener bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgard/groupwatch/internal/bot"
	"github.com/edgard/groupwatch/internal/bot/handlers"
	"github.com/edgard/groupwatch/internal/bot/tasks"
	"github.com/edgard/groupwatch/internal/config"
	"github.com/edgard/groupwatch/internal/console"
	"github.com/edgard/groupwatch/internal/eventlog"
	"github.com/edgard/groupwatch/internal/logger"
	"github.com/edgard/groupwatch/internal/store"
	"github.com/edgard/groupwatch/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires configuration, journals, store, transport and scheduler, blocks
// until shutdown, and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	con := console.New(os.Stdout, cfg.Console.Color)

	events := eventlog.New(cfg.EventLog.Path, con)
	defer func() {
		if err := events.Close(); err != nil {
			log.Error("Failed to close raw log", "path", cfg.EventLog.Path, "error", err)
		}
	}()

	backend, err := store.Open(cfg.Store, log)
	if err != nil {
		log.Error("Failed to open group store", "driver", cfg.Store.Driver, "path", cfg.Store.Path, "error", err)
		return 1
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Failed to close group store", "error", err)
		}
	}()

	groups := store.New(backend, events, log)
	if err := groups.Initialize(ctx); err != nil {
		log.Error("Failed to initialize group store", "driver", cfg.Store.Driver, "path", cfg.Store.Path, "error", err)
		return 1
	}
	log.Info("Group store ready", "driver", cfg.Store.Driver, "path", cfg.Store.Path, "groups", groups.Count(ctx))

	handler := handlers.NewGroupHandler(handlers.HandlerDeps{
		Logger:  log.With("handler", "group"),
		Store:   groups,
		Events:  events,
		Console: con,
	})

	opts := telegram.Options(cfg.Telegram, log, handler, logger.Middleware(log))
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Console: con,
	}
	if m, ok := backend.(store.Maintainer); ok {
		tDeps.Maintainer = m
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, tg, sched)

	con.Started()
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	con.ShuttingDown()
	return 0
}
