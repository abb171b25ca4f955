// Package main contains the entrypoint for the foodbot webhook service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hklin/foodbot/internal/bot"
	"github.com/hklin/foodbot/internal/chat"
	"github.com/hklin/foodbot/internal/classifier"
	"github.com/hklin/foodbot/internal/config"
	"github.com/hklin/foodbot/internal/line"
	"github.com/hklin/foodbot/internal/logger"
	"github.com/hklin/foodbot/internal/nutrition"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, lookup table, classifier,
// chat client, LINE client, server, scheduler), handles graceful shutdown,
// and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := nutrition.NewDB(cfg.Nutrition.DBPath)
	if err != nil {
		log.Error("Failed to open lookup database", "path", cfg.Nutrition.DBPath, "error", err)
		return 1
	}
	defer nutrition.CloseDB(db)

	// The nutrition table is the one mandatory asset; refusing to start
	// without it beats answering every food query with a miss.
	if _, err := nutrition.LoadTable(ctx, db, cfg.Nutrition.TablePath); err != nil {
		log.Error("Failed to load nutrition table", "path", cfg.Nutrition.TablePath, "error", err)
		return 1
	}
	store := nutrition.NewStore(db, log)

	labels, err := classifier.LoadLabelMap(cfg.Nutrition.LabelMapPath)
	if err != nil {
		log.Error("Failed to load label map", "path", cfg.Nutrition.LabelMapPath, "error", err)
		return 1
	}

	clf, err := classifier.New(ctx, cfg.Classifier, labels, log)
	if err != nil {
		log.Error("Failed to initialize classifier", "backend", cfg.Classifier.Backend, "error", err)
		return 1
	}
	log.Info("Classifier initialized", "backend", cfg.Classifier.Backend)

	chatClient, err := chat.NewClient(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize chat client", "error", err)
		return 1
	}

	lineClient, err := line.NewClient(cfg.Line.ChannelSecret, cfg.Line.ChannelToken, log)
	if err != nil {
		log.Error("Failed to create LINE client", "error", err)
		return 1
	}

	deps := bot.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Classifier: clf,
		Chat:       chatClient,
		Messenger:  lineClient,
	}

	dispatcher := bot.NewDispatcher(deps)
	handler := bot.NewWebhookHandler(log, lineClient, dispatcher)

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, bot.RegisterAllTasks(deps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg.Server.Addr, handler, sched)

	log.Info("Starting foodbot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
