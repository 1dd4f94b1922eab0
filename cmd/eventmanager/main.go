package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/event-manager/internal/application"
	"github.com/example/event-manager/internal/config"
	httptransport "github.com/example/event-manager/internal/http"
	"github.com/example/event-manager/internal/logging"
	"github.com/example/event-manager/internal/persistence/sqlite"
	"github.com/example/event-manager/internal/persistence/sqlite/migration"
)

func main() {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		bootstrap.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootstrap.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.OpenWithConfig(migration.DefaultSQLiteConfig(cfg.SQLiteDSN), logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	handler, err := newHandler(cfg, storage, time.Now, logger)
	if err != nil {
		logger.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("event manager listening", "addr", server.Addr, "database", cfg.SQLiteDSN)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newHandler wires services, handlers and middleware on top of storage.
func newHandler(cfg config.Config, storage *sqlite.Storage, now func() time.Time, logger *slog.Logger) (http.Handler, error) {
	categoryRepo := newCategoryRepositoryAdapter(storage)
	categoryCatalog := newCategoryCatalogAdapter(storage)
	eventRepo := newEventRepositoryAdapter(storage)
	participantRepo := newParticipantRepositoryAdapter(storage)

	categoryService := application.NewCategoryServiceWithLogger(categoryRepo, now, logger)
	eventService := application.NewEventServiceWithLogger(eventRepo, categoryCatalog, now, logger)
	participantService := application.NewParticipantServiceWithLogger(participantRepo, eventRepo, now, logger)
	dashboardService := application.NewDashboardServiceWithLogger(eventRepo, participantRepo, now, logger)

	flash := httptransport.NewFlashStore(cfg.SessionSecret, cfg.FlashTTL, now)
	responder, err := httptransport.NewResponder(flash, logger)
	if err != nil {
		return nil, err
	}

	return httptransport.NewRouter(httptransport.RouterConfig{
		Dashboard:    httptransport.NewDashboardHandler(dashboardService, responder),
		Events:       httptransport.NewEventHandler(eventService, responder, logger),
		Categories:   httptransport.NewCategoryHandler(categoryService, responder, logger),
		Participants: httptransport.NewParticipantHandler(participantService, responder, logger),
		Responder:    responder,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(responder),
		},
	}), nil
}
