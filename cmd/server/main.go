// Package main is the entry point for the slot spin engine API server.
// It wires the ledger, reels and spin service together and starts the HTTP
// server alongside the WebSocket hub and background scheduler.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/evetabi/slot/internal/api"
	"github.com/evetabi/slot/internal/config"
	"github.com/evetabi/slot/internal/domain"
	"github.com/evetabi/slot/internal/reel"
	"github.com/evetabi/slot/internal/repository"
	"github.com/evetabi/slot/internal/scheduler"
	"github.com/evetabi/slot/internal/service"
	"github.com/evetabi/slot/internal/ws"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting slot server", "env", cfg.Server.Env, "port", cfg.Server.Port)

	// ── 2. Symbol catalog ─────────────────────────────────────────────────────
	catalog, err := config.LoadCatalog(cfg.Game.CatalogFile)
	if err != nil {
		logger.Error("symbol catalog invalid", "file", cfg.Game.CatalogFile, "err", err)
		os.Exit(1)
	}
	logger.Info("symbol catalog loaded", "symbols", catalog.Len(), "total_weight", catalog.TotalWeight())

	// ── 3. Journal (optional database) ────────────────────────────────────────
	var journal repository.Journal = repository.NoopJournal{}
	var journalWriter *repository.JournalWriter
	var db *sqlx.DB
	if cfg.Journal.Enabled() {
		db, err = openJournalDB(cfg.Journal)
		if err != nil {
			logger.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		logger.Info("database connected")

		if err = runMigrations(db, cfg.Journal.MigrationsDir); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
		journalWriter = repository.NewJournalWriter(
			repository.NewSpinJournal(db), cfg.Journal.QueueSize, cfg.Journal.WriteTimeout, logger)
		go journalWriter.Run()
		journal = journalWriter
		logger.Info("spin journal writer started", "queue", cfg.Journal.QueueSize)
	} else {
		logger.Warn("DATABASE_DSN not set, spin journal disabled")
	}

	// ── 4. Ledger ─────────────────────────────────────────────────────────────
	ledger := repository.NewLedger(repository.LedgerConfig{
		StartingBalance: cfg.Game.StartingBalance,
		Retention:       cfg.Game.WinRetention,
		PageSize:        cfg.Game.WinPageSize,
		Pool: domain.PoolStats{
			TotalLiquidity: cfg.Pool.TotalLiquidity,
			UserShare:      cfg.Pool.UserShare,
			Volume24h:      cfg.Pool.Volume24h,
			APY:            cfg.Pool.APY,
		},
	})

	// ── 5. Services ───────────────────────────────────────────────────────────
	generator := reel.NewGenerator(reel.NewSampler(catalog, nil))
	spinSvc := service.NewSpinService(ledger, generator, catalog, journal, cfg, logger)

	// ── 6. WebSocket Hub ──────────────────────────────────────────────────────
	hub := ws.NewHub(cfg.Server.AllowedOrigins, logger)

	// Wire WS broadcaster into spin service
	spinSvc.SetBroadcaster(hub)

	// ── 7. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 8. Start WS Hub ───────────────────────────────────────────────────────
	go hub.Run()
	logger.Info("websocket hub started")

	// ── 9. Scheduler ──────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(ledger, hub, cfg, logger)
	if err = sched.Start(ctx); err != nil {
		logger.Error("scheduler failed to start", "err", err)
		os.Exit(1)
	}

	// ── 10. HTTP Router ───────────────────────────────────────────────────────
	router := api.SetupRouter(api.RouterDeps{
		SpinSvc: spinSvc,
		Hub:     hub,
		Cfg:     cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── 11. Start server ──────────────────────────────────────────────────────
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop() // trigger graceful shutdown
		}
	}()

	// ── 12. Graceful shutdown ─────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	hub.Stop()

	if journalWriter != nil {
		if err = journalWriter.Stop(shutdownCtx); err != nil {
			logger.Error("spin journal flush incomplete", "err", err)
		}
	}
	if db != nil {
		db.Close()
	}
	logger.Info("server stopped cleanly")
}

// openJournalDB connects to PostgreSQL and applies the pool settings.
func openJournalDB(cfg config.JournalConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("openJournalDB: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// runMigrations reads all *.sql files from dir, sorted by name, and executes
// them sequentially.  Idempotent: SQL files should use IF NOT EXISTS / ON CONFLICT.
func runMigrations(db *sqlx.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("runMigrations: read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("runMigrations: read %q: %w", f, err)
		}
		if _, err = db.Exec(string(data)); err != nil {
			return fmt.Errorf("runMigrations: exec %q: %w", f, err)
		}
		slog.Info("migration applied", "file", filepath.Base(f))
	}
	return nil
}
