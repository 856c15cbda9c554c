package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/auth"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/config"
	"hrpay/internal/platform/email"
	"hrpay/internal/platform/jobs"
	"hrpay/internal/platform/logger"
	"hrpay/internal/platform/metrics"
	payrollhandler "hrpay/internal/transport/http/handlers/payroll"
	"hrpay/internal/transport/http/middleware"
)

const (
	idempotencyTTL = 24 * time.Hour
	auditCapacity  = 5000
)

type App struct {
	Config  config.Config
	Router  http.Handler
	Payroll *payroll.Service
	Jobs    *jobs.Service
	Metrics *metrics.Collector

	cancel context.CancelFunc
}

// New wires the payroll service, job worker and HTTP router from cfg.
// The job worker runs until Close is called.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}

	rates := payroll.DefaultRates()
	if cfg.Payroll.RatesFile != "" {
		loaded, err := payroll.LoadRates(cfg.Payroll.RatesFile)
		if err != nil {
			return nil, err
		}
		rates = loaded
	}
	calc, err := payroll.NewCalculator(rates)
	if err != nil {
		return nil, errors.Wrap(err, "rate table")
	}

	collector := metrics.New()
	store := payroll.NewStore(payroll.SeedEmployees())
	svc := payroll.NewService(store, calc, payroll.WithMailer(email.New(cfg), cfg.Email.From))

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	jobSvc := jobs.New(cfg.Payroll.JobQueueSize, collector)
	jobSvc.Start(workerCtx)

	// Without a signing secret no request can authenticate, so permission
	// checks are switched off. Validate refuses this in production.
	var perms middleware.PermissionStore = auth.StaticPermissions{}
	if cfg.JWTSecret == "" {
		logger.Warn(ctx, "JWT_SECRET not set, payroll routes are unauthenticated")
		perms = nil
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.HTTP.RateLimitPerMin, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.HTTP.RateLimitPerMin, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		payrollHandler := payrollhandler.NewHandler(svc, jobSvc, perms, collector, middleware.NewIdempotencyStore(idempotencyTTL), audit.New(auditCapacity), cfg.Payroll.Currency)
		payrollHandler.RegisterRoutes(r)
	})

	logger.Info(ctx, "payroll engine ready",
		zap.String("rates", rates.Name),
		zap.Int("paye_brackets", len(rates.PAYE)),
		zap.Int("nhif_bands", len(rates.NHIF)),
	)

	return &App{
		Config:  cfg,
		Router:  router,
		Payroll: svc,
		Jobs:    jobSvc,
		Metrics: collector,
		cancel:  cancel,
	}, nil
}

func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "payroll server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down payroll server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
