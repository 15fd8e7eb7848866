package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	emailPkg "deleteop/internal/adapters/email"
	web "deleteop/internal/adapters/http"
	"deleteop/internal/adapters/notify"
	"deleteop/internal/adapters/storage"
	auditStore "deleteop/internal/adapters/storage/audit"
	kindStore "deleteop/internal/adapters/storage/kind"
	recordStore "deleteop/internal/adapters/storage/record"
	settingsStore "deleteop/internal/adapters/storage/settings"
	"deleteop/internal/application/orchestrators"
	"deleteop/internal/config"
	"deleteop/internal/domain/kind"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	config.SetupLogger(cfg, os.Stdout)
	if cfg.CSRFKeyGenerated {
		slog.Warn("csrf_key_generated", "detail", "using random CSRF key (sessions won't survive restart); set DELETEOP_CSRF_KEY")
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	timedDB := storage.NewTimedDB(db, cfg.SlowQueryMs)

	kinds := kindStore.NewCachedStore(kindStore.NewSQLiteStore(timedDB), cfg.KindCacheSize, cfg.KindCacheTTL)
	stores := &web.Stores{
		Records:  recordStore.NewSQLiteStore(timedDB),
		Kinds:    kinds,
		Settings: settingsStore.NewSQLiteStore(timedDB),
		Audit:    auditStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()

	// Seed default kinds once, then apply DELETEOP_LIFECYCLE_KINDS
	written, err := orchestrators.ExecuteSyncKinds(ctx, orchestrators.SyncKindsInput{
		Seed:      kind.DefaultKinds(),
		Lifecycle: cfg.LifecycleKinds,
	}, orchestrators.SyncKindsDeps{Kinds: kinds})
	if err != nil {
		log.Fatalf("failed to sync kinds: %v", err)
	}
	slog.Info("kinds_synced", "written", written, "configured", len(cfg.LifecycleKinds))

	if len(cfg.LabelOverrides) > 0 {
		err := orchestrators.ExecuteUpdateSettings(ctx, orchestrators.UpdateSettingsInput{
			Values: cfg.LabelOverrides,
		}, orchestrators.UpdateSettingsDeps{Settings: stores.Settings, Audit: stores.Audit})
		if err != nil {
			log.Fatalf("failed to apply label overrides: %v", err)
		}
	}

	// Sample records for development only
	if !cfg.IsProduction() {
		if _, err := orchestrators.ExecuteSeedRecords(ctx, orchestrators.SeedRecordsDeps{Records: stores.Records}); err != nil {
			log.Fatalf("failed to seed records: %v", err)
		}
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() && len(cfg.NotifyEmails) > 0 {
			slog.Warn("email_delivery_disabled", "detail", "DELETEOP_RESEND_KEY is not set")
		}
	}

	notifier := notify.Multi{
		notify.FlashNotifier{},
		notify.LogNotifier{},
		notify.NewEmailNotifier(sender, cfg.NotifyEmails, ""),
	}

	handler := web.NewMux(stores, web.Options{
		CSRFKey:        cfg.CSRFKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		RateLimit:      cfg.RateLimit,
		SlowRequestMs:  cfg.SlowRequestMs,
		SessionTTL:     cfg.SessionTTL,
		Notifier:       notifier,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"schema", storage.LatestSchemaVersion(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("server_stopping", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err)
	}
	slog.Info("server_stopped")
}
