// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/olib-go/internal/cache"
	"github.com/olegiv/olib-go/internal/config"
	"github.com/olegiv/olib-go/internal/content"
	"github.com/olegiv/olib-go/internal/geoip"
	"github.com/olegiv/olib-go/internal/handler"
	"github.com/olegiv/olib-go/internal/handler/api"
	"github.com/olegiv/olib-go/internal/jobs"
	"github.com/olegiv/olib-go/internal/logging"
	"github.com/olegiv/olib-go/internal/mail"
	"github.com/olegiv/olib-go/internal/metatags"
	"github.com/olegiv/olib-go/internal/metrics"
	"github.com/olegiv/olib-go/internal/middleware"
	"github.com/olegiv/olib-go/internal/scheduler"
	"github.com/olegiv/olib-go/internal/service"
	"github.com/olegiv/olib-go/internal/session"
	"github.com/olegiv/olib-go/internal/store"
	"github.com/olegiv/olib-go/internal/version"
	"github.com/olegiv/olib-go/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oLib - article library service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_DB_DRIVER         sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_DB_DSN            Database path or MySQL DSN (default: ./data/olib.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_SMTP_HOST         SMTP relay; mail is logged when unset\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OLIB_OPENAI_API_KEY    Enables AI meta tag suggestions (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	v := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Printf("olib %s\n", v.String())
		os.Exit(0)
	}

	if err := run(v); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(logging.NewTextHandler(os.Stdout, cfg.LogLevel))
	slog.SetDefault(logger)

	if cfg.DBDriver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "driver", cfg.DBDriver)
	dbCfg := store.DefaultDBConfig(cfg.DBDSN)
	dbCfg.Driver = cfg.DBDriver
	db, err := store.NewDBWithConfig(dbCfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.MigrateDriver(db, cfg.DBDriver); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and above also go to the event log table
	logger = slog.New(logging.NewEventLogHandler(logging.NewTextHandler(os.Stdout, cfg.LogLevel), db))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("database seeded")
	}

	s := store.NewStore(db)
	m := metrics.New()

	cacheCfg := cache.DefaultCacheConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.DefaultTTL = cfg.CacheDefaultTTL()
	cacheCfg.MaxSize = cfg.CacheMaxSize
	if cfg.UseRedisCache() {
		cacheCfg.Type = string(cache.CacheBackendRedis)
	}
	cacheResult, err := cache.NewCacheWithInfo(cacheCfg)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	c := cacheResult.Cache
	defer func() { _ = c.Close() }()
	if cacheResult.IsFallback {
		slog.Warn("cache initialized", "backend", cacheResult.BackendType, "note", "Redis unavailable, using fallback")
	} else {
		slog.Info("cache initialized", "backend", cacheResult.BackendType)
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, country lookup disabled", "error", err)
		geo, _ = geoip.Open("")
	}
	defer func() { _ = geo.Close() }()

	// Outbound mail
	var mailer mail.Mailer = mail.NewLogMailer(logger)
	if cfg.SMTPEnabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	var suggester metatags.Suggester
	if cfg.OpenAIEnabled() {
		suggester = metatags.NewOpenAISuggester(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	metaGen := metatags.NewGenerator(suggester, logger)

	// Webhooks
	dispatcher := webhook.NewDispatcher(s, logger, m, webhook.DefaultConfig())
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	debouncer := webhook.NewDebouncer(dispatcher, webhook.DefaultDebounceConfig())
	defer debouncer.Stop()

	// Services
	queue := jobs.NewQueue(s, jobs.DefaultMaxAttempts)
	renderer := content.NewRenderer()
	perms := service.NewPermissionService(s)
	registry := service.NewRegistry(logger)
	events := service.NewEventService(s, logger)
	counters := service.NewCounterService(s, c, m, logger)
	newsletter := service.NewNewsletterService(s, queue, cfg.BaseURL, logger)
	articles := service.NewArticleService(s, perms, registry, renderer, c, cfg.CacheDefaultTTL(), logger)

	service.RegisterListeners(registry, service.ListenerDeps{
		Store:      s,
		Cache:      c,
		Queue:      queue,
		Webhooks:   debouncer,
		Newsletter: newsletter,
		Events:     events,
		Logger:     logger,
	})

	svc := api.Services{
		Articles:    articles,
		Comments:    service.NewCommentService(s, counters, perms, renderer, logger),
		Shares:      service.NewShareService(s, counters, perms, geo, logger),
		Ratings:     service.NewRatingService(s, queue),
		Downloads:   service.NewDownloadService(s),
		Counters:    counters,
		Taxonomy:    service.NewTaxonomyService(s, perms),
		Contact:     service.NewContactService(s, queue, registry, cfg.ContactEmail),
		Newsletter:  newsletter,
		Auth:        service.NewAuthService(s, events, logger),
		Permissions: perms,
		Events:      events,
	}

	// Background jobs
	pool := jobs.NewPool(s, logger, m, jobs.PoolConfig{Workers: cfg.JobWorkers})
	service.NewJobHandlers(s, metaGen, mailer, c, logger).Register(pool)
	pool.Start(ctx)
	defer pool.Stop()

	sched := scheduler.New(logger)
	if err := sched.RegisterDefaults(scheduler.Tasks{
		Articles:       articles,
		Jobs:           s,
		Events:         events,
		Webhooks:       dispatcher,
		GeoIP:          geo,
		EventRetention: time.Duration(cfg.EventRetention) * 24 * time.Hour,
	}); err != nil {
		return fmt.Errorf("registering scheduled tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// HTTP protection
	sessions := session.New(db, session.Config{
		Driver: cfg.DBDriver,
		Secure: !cfg.IsDevelopment(),
	})
	rateLimiter := middleware.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)
	go rateLimiter.Run(ctx)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	go loginProtection.Run(ctx)

	apiHandler := api.NewHandler(svc, s, sessions, loginProtection, api.Config{
		FilesDir:      cfg.FilesDir,
		ViewDedupeTTL: cfg.ViewDedupeWindow(),
	}, logger)
	health := handler.NewHealthHandler(db, c, versionInfo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observe(logger, m))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(sessions.LoadAndSave)
		r.Use(middleware.Authenticate(sessions, s, svc.Auth))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.TrustedOrigins, cfg.IsDevelopment())))
		r.Use(rateLimiter.Middleware())

		r.Get("/health", health.Health)
		// downloads stream without the request deadline
		r.Mount("/api/v1", timeoutExcept(apiHandler.Routes(), 30*time.Second))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// timeoutExcept applies the request timeout to every API route except file
// downloads.
func timeoutExcept(next http.Handler, d time.Duration) http.Handler {
	limited := middleware.Timeout(d)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && filepath.Base(r.URL.Path) == "download" {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}
