package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peopledesk/internal/domain/audit"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/domain/employees"
	"peopledesk/internal/domain/notifications"
	"peopledesk/internal/domain/onboarding"
	"peopledesk/internal/domain/worktime"
	"peopledesk/internal/platform/config"
	"peopledesk/internal/platform/crypto"
	"peopledesk/internal/platform/db"
	"peopledesk/internal/platform/drafts"
	"peopledesk/internal/platform/email"
	"peopledesk/internal/platform/jobs"
	"peopledesk/internal/platform/metrics"
	audithandler "peopledesk/internal/transport/http/handlers/audit"
	authhandler "peopledesk/internal/transport/http/handlers/auth"
	employeeshandler "peopledesk/internal/transport/http/handlers/employees"
	notificationshandler "peopledesk/internal/transport/http/handlers/notifications"
	onboardinghandler "peopledesk/internal/transport/http/handlers/onboarding"
	worktimehandler "peopledesk/internal/transport/http/handlers/worktime"
	"peopledesk/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Drafts  *drafts.Store
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler

	cancelJobs context.CancelFunc
}

// New assembles the application without binding a listener, so tests can
// drive the router directly.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	draftStore, err := drafts.Open(cfg.DraftStorePath)
	if err != nil {
		pool.Close()
		return nil, err
	}

	cryptoService, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		draftStore.Close()
		pool.Close()
		return nil, err
	}
	collector := metrics.New()
	auditor := audit.New(pool)
	notifier := notifications.New(pool)
	mailer := email.New(cfg)
	directory := employees.NewStore(pool, cryptoService)
	tracker := worktime.NewTracker(worktime.NewStore(pool))

	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	jobService := jobs.New(pool, cfg)
	jobService.Start(jobsCtx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
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
		router.With(middleware.RequireRole(auth.RoleHR)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(pool, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", authHandler.HandleMe)

			onboardingHandler := &onboardinghandler.Handler{
				Employees:   onboarding.NewStore(pool, cryptoService),
				Drafts:      draftStore,
				Directory:   directory,
				Idempotency: middleware.NewIdempotencyStore(pool),
				Audit:       auditor,
				Notifier:    notifier,
				Mailer:      mailer,
				EmailFrom:   cfg.EmailFrom,
				Metrics:     collector,
			}
			onboardingHandler.RegisterRoutes(r)

			worktimeHandler := &worktimehandler.Handler{
				Tracker:   tracker,
				Directory: directory,
				Audit:     auditor,
				Metrics:   collector,
			}
			worktimeHandler.RegisterRoutes(r)

			employeeshandler.NewHandler(directory, auditor).RegisterRoutes(r)
			notificationshandler.NewHandler(notifier).RegisterRoutes(r)
			audithandler.NewHandler(auditor).RegisterRoutes(r)
		})
	})

	return &App{
		Config:     cfg,
		DB:         pool,
		Drafts:     draftStore,
		Jobs:       jobService,
		Metrics:    collector,
		Router:     router,
		cancelJobs: cancelJobs,
	}, nil
}

func (a *App) Close() {
	if a.cancelJobs != nil {
		a.cancelJobs()
	}
	if a.Drafts != nil {
		_ = a.Drafts.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("peopledesk server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
