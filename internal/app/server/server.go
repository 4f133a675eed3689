package server

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

	"github.com/go-chi/chi/v5"

	"eval360/internal/domain/audit"
	"eval360/internal/domain/auth"
	"eval360/internal/domain/catalog"
	"eval360/internal/domain/evaluation"
	"eval360/internal/domain/identity"
	"eval360/internal/domain/notifications"
	"eval360/internal/domain/periods"
	"eval360/internal/domain/reports"
	"eval360/internal/platform/config"
	"eval360/internal/platform/crypto"
	"eval360/internal/platform/db"
	"eval360/internal/platform/email"
	"eval360/internal/platform/jobs"
	"eval360/internal/platform/metrics"
	"eval360/internal/transport/http/api"
	audithandler "eval360/internal/transport/http/handlers/audit"
	authhandler "eval360/internal/transport/http/handlers/auth"
	cataloghandler "eval360/internal/transport/http/handlers/catalog"
	evaluationshandler "eval360/internal/transport/http/handlers/evaluations"
	notificationshandler "eval360/internal/transport/http/handlers/notifications"
	periodshandler "eval360/internal/transport/http/handlers/periods"
	reportshandler "eval360/internal/transport/http/handlers/reports"
	"eval360/internal/transport/http/middleware"
)

const devJWTSecret = "eval360-development-secret"

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects, migrates and seeds the database and assembles the router.
// Background jobs are not started; Run does that.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using the development signing secret")
		cfg.JWTSecret = devJWTSecret
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	if !cryptoSvc.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set, answer comments are stored unencrypted")
	}

	collector := metrics.New()
	perms := auth.StaticPermissions{}

	identityStore := identity.NewStore(pool)
	identitySvc := identity.NewService(identityStore)
	catalogStore := catalog.NewStore(pool)
	catalogSvc := catalog.NewService(catalogStore)
	periodStore := periods.NewStore(pool)
	periodSvc := periods.NewService(periodStore)
	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.SessionTTL)
	evaluationSvc := evaluation.NewService(evaluation.NewStore(pool), identitySvc, catalogStore, periodStore, cryptoSvc)
	reportsSvc := reports.NewService(reports.NewStore(pool), periodStore)
	notificationSvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)
	auditSvc := audit.New(pool)

	jobSvc := jobs.New(jobs.NewLedger(pool), cfg.RegenerateInterval, func(ctx context.Context) (any, error) {
		result, err := evaluationSvc.GenerateForCurrent(ctx)
		if errors.Is(err, periods.ErrNoActivePeriod) {
			return map[string]string{"status": "skipped", "reason": "no active period"}, nil
		}
		if err != nil {
			return nil, err
		}
		collector.AssignmentsGenerated(result.Inserted)
		return result, nil
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authSvc))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authSvc, identitySvc, collector)
		authHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			authHandler.RegisterRoutes(r)

			catalogHandler := cataloghandler.NewHandler(identitySvc, catalogSvc, perms)
			catalogHandler.RegisterRoutes(r)

			periodsHandler := periodshandler.NewHandler(periodSvc, evaluationSvc, notificationSvc, jobSvc, auditSvc, perms, collector)
			periodsHandler.RegisterRoutes(r)

			evaluationsHandler := evaluationshandler.NewHandler(evaluationSvc, auditSvc, perms, collector)
			evaluationsHandler.RegisterRoutes(r)

			reportsHandler := reportshandler.NewHandler(reportsSvc, identitySvc, perms)
			reportsHandler.RegisterRoutes(r)

			notificationsHandler := notificationshandler.NewHandler(notificationSvc)
			notificationsHandler.RegisterRoutes(r)

			auditHandler := audithandler.NewHandler(auditSvc, perms)
			auditHandler.RegisterRoutes(r)
		})
	})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Jobs:    jobSvc,
		Metrics: collector,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM.
func Run() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("evaluation server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
