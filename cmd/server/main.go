/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the personnel availability engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load configuration
  2. Initialize SQLite store
  3. Wire session guard, limiter and domain service
  4. Bootstrap the protected admin account when missing
  5. Start the session janitor and the HTTP server

COMMAND-LINE FLAGS:
  -config  Configuration file path (default: config/app.yaml, optional)
  -addr    Listen address override
  -db      SQLite database path override
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the janitor, close the database
  4. Exit

SEE ALSO:
  - config/config.go: configuration layout and precedence
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/muster/personnel-engine/api"
	"github.com/muster/personnel-engine/config"
	"github.com/muster/personnel-engine/muster"
	"github.com/muster/personnel-engine/session"
	"github.com/muster/personnel-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	addr := flag.String("addr", "", "listen address override")
	dbPath := flag.String("db", "", "SQLite database path override")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	limiter := session.NewLockoutLimiter(cfg.Session.LockoutAttempts, cfg.Session.LockoutWindow)
	guard := session.NewGuard(store, store, limiter, cfg.Session.TTL)

	svc := muster.NewService(store, cfg.WeekMode(),
		muster.WithPasswordHasher(session.Hasher{}),
		muster.WithProtectedAdmin(cfg.Admin.Username),
	)

	if err := bootstrapAdmin(context.Background(), svc, store, cfg, log); err != nil {
		log.Error("failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(svc, guard, log)
	router := api.NewRouter(handler, cfg.StaticDir)

	// Session janitor: keeps the expired-session sweep bounded even when
	// nobody logs in for a while.
	janitor := cron.New()
	if _, err := janitor.AddFunc(cfg.Session.JanitorSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := store.DeleteSessionsBefore(ctx, time.Now().Add(-cfg.Session.TTL))
		if err != nil {
			log.Error("session sweep failed", "error", err)
			return
		}
		if n > 0 {
			log.Info("swept expired sessions", "count", n)
		}
	}); err != nil {
		log.Error("invalid janitor schedule", "spec", cfg.Session.JanitorSpec, "error", err)
		os.Exit(1)
	}
	janitor.Start()
	defer janitor.Stop()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// bootstrapAdmin creates the protected admin account on first start.
// An existing account is never touched; rotate its password through the
// admin UI.
func bootstrapAdmin(ctx context.Context, svc *muster.Service, store *sqlite.Store, cfg *config.AppConfig, log *slog.Logger) error {
	existing, err := store.GetUser(ctx, cfg.Admin.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if cfg.Admin.Password == "" {
		log.Warn("no admin account exists and no bootstrap password configured",
			"username", cfg.Admin.Username)
		return nil
	}
	if err := svc.AddUser(ctx, muster.User{
		Username: cfg.Admin.Username,
		Role:     muster.RoleAdmin,
	}, cfg.Admin.Password); err != nil {
		return err
	}
	log.Info("created bootstrap admin account", "username", cfg.Admin.Username)
	return nil
}
