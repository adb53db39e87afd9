package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"gym/internal/adapters/email"
	web "gym/internal/adapters/http"
	"gym/internal/adapters/http/middleware"
	"gym/internal/adapters/metrics"
	"gym/internal/adapters/session"
	"gym/internal/adapters/storage"
	auditStore "gym/internal/adapters/storage/audit"
	memberStore "gym/internal/adapters/storage/member"
	roleStore "gym/internal/adapters/storage/role"
	trainerStore "gym/internal/adapters/storage/trainer"
	"gym/internal/application/orchestrators"
	"gym/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.InitDB(ctx, db); err != nil {
		return err
	}

	m := metrics.New()
	timed := storage.NewTimedDB(db, m, cfg.SlowQueryMs)
	stores := web.Stores{
		MemberStore:  memberStore.NewSQLiteStore(timed),
		TrainerStore: trainerStore.NewSQLiteStore(timed),
		RoleStore:    roleStore.NewSQLiteStore(timed),
		AuditStore:   auditStore.NewSQLiteStore(timed),
	}

	seed, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Email:    cfg.Admin.Email,
		Name:     cfg.Admin.Name,
		Password: cfg.Admin.Password,
	}, orchestrators.SeedAdminDeps{
		MemberStore: stores.MemberStore,
		RoleStore:   stores.RoleStore,
	})
	if err != nil {
		return err
	}
	if seed.GeneratedPassword != "" {
		// Printed once so the operator can sign in; it must be changed at first sign-in.
		slog.Warn("admin_password_generated", "email", cfg.Admin.Email, "password", seed.GeneratedPassword)
	}

	sessions, readySessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	secrets, err := cfg.Secrets()
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	handler, err := web.NewRouter(web.Deps{
		Stores:         stores,
		Sessions:       sessions,
		Auth:           middleware.NewCookieAuth(secrets.CookieHash, secrets.CookieBlock, cfg.AuthLifetime, cfg.IsProduction()),
		Sender:         newSender(cfg),
		Metrics:        m,
		Limiter:        limiter,
		CSRFKey:        secrets.CSRF,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		SlowRequestMs:  cfg.SlowRequestMs,
		Ready: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return readySessions(ctx)
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("metrics_listener_starting", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics_listener_failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "session_backend", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return srv.Shutdown(shutdownCtx)
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

// openSessions returns the configured session store with its readiness check and closer.
func openSessions(ctx context.Context, cfg *config.Config) (session.Store, func(context.Context) error, func(), error) {
	if cfg.SessionBackend == config.SessionBackendRedis {
		rs, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.SessionIdleTimeout)
		if err != nil {
			return nil, nil, nil, err
		}
		return rs, rs.Ping, func() { rs.Close() }, nil
	}

	ms := session.NewMemoryStore(cfg.SessionIdleTimeout)
	ms.StartSweeper(ctx, time.Minute)
	return ms, func(context.Context) error { return nil }, func() {}, nil
}

func newSender(cfg *config.Config) email.Sender {
	if cfg.Email.ResendKey != "" {
		slog.Info("email_sender_configured", "provider", "resend")
		return email.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
	}
	if cfg.IsProduction() {
		slog.Warn("email_delivery_disabled", "reason", "GYM_RESEND_KEY is not set")
	}
	return email.NewNoopSender()
}
