package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hklin/foodbot/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Bot owns the HTTP server and the scheduler and manages their lifecycle.
type Bot struct {
	logger    *slog.Logger
	echo      *echo.Echo
	addr      string
	scheduler *Scheduler
}

// NewBot builds the HTTP surface (middleware plus webhook routes) and wires
// it to the scheduler.
func NewBot(log *slog.Logger, addr string, handler *WebhookHandler, scheduler *Scheduler) *Bot {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(logger.RequestLogger(log))

	handler.Register(e)

	return &Bot{
		logger:    log.With("component", "bot_orchestrator"),
		echo:      e,
		addr:      addr,
		scheduler: scheduler,
	}
}

// Run starts the HTTP server and the scheduler and blocks until the context
// is cancelled or a component fails. Shutdown is graceful on both paths.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting HTTP server", "addr", b.addr)
		if err := b.echo.Start(b.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server stopped unexpectedly: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := b.echo.Shutdown(shutdownCtx); err != nil {
			b.logger.Error("Error during HTTP server shutdown", "error", err)
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
