package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/doubles-bracket/internal/config"
	"github.com/AdamBeresnev/doubles-bracket/internal/db"
	"github.com/AdamBeresnev/doubles-bracket/internal/logger"
	"github.com/AdamBeresnev/doubles-bracket/internal/middleware"
	"github.com/AdamBeresnev/doubles-bracket/internal/realtime"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.New(os.Stdout, cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("application stopped with an error", "error", err)
		os.Exit(1)
	}
	slog.Info("application exited")
}

func run(cfg *config.Config) error {
	database, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		return err
	}
	slog.Info("database ready", "driver", cfg.DBDriver)

	providers := middleware.InitAuth(cfg.Auth)

	events, closeEvents, err := newEvents(cfg)
	if err != nil {
		return err
	}
	defer closeEvents()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(cfg.CORSOrigins)
	go hub.Run(ctx, events.Subscribe())

	app := newApplication(cfg, database, newSessionManager(cfg, database), events, hub, providers)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      app.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", server.Addr, "base_url", cfg.BaseURL)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received", "timeout", shutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	slog.Info("server shutdown complete")
	return nil
}

func newSessionManager(cfg *config.Config, database *sqlx.DB) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	// The sessions table only exists in the SQLite schema
	if cfg.DBDriver == db.DriverSQLite {
		sessionManager.Store = sqlite3store.New(database.DB)
	} else {
		sessionManager.Store = memstore.New()
	}
	return sessionManager
}

// newEvents shares notifications through NATS when it is configured, so every
// instance can push updates to its own websocket clients.
func newEvents(cfg *config.Config) (*realtime.PubSub, func(), error) {
	if cfg.NATSURL == "" {
		return realtime.New(), func() {}, nil
	}

	upstream, err := realtime.NewNATSUpstream(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("realtime events shared over NATS", "url", cfg.NATSURL, "subject", cfg.NATSSubject)
	return realtime.NewWithUpstream(upstream), upstream.Close, nil
}

func newShuffleSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
