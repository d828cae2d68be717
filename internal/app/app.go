package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// Run bootstraps every tenant, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application. A tenant that
// fails to bootstrap aborts startup before the listener binds.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.Strings("tenants", cfg.Tenants),
	)

	ctx = zctx.Base(ctx, lg)
	tenants, err := Bootstrap(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "bootstrap tenants")
	}
	defer tenants.Close()

	healthSvc := health.New()
	thresholds := health.Thresholds{
		Failure: cfg.Health.FailureThreshold,
		Success: cfg.Health.SuccessThreshold,
	}
	for _, t := range tenants {
		healthSvc.AddReadinessCheckWithThresholds("postgres:"+t.Config.Name,
			cfg.Health.PingTimeout, health.PingCheck(t.Pool), thresholds)
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(cfg.Health.MaxGoroutines))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))
	healthSvc.Start(ctx, cfg.Health.Interval)
	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, m, cfg, healthSvc, tenants),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newRouter mounts health endpoints and every tenant under one chi router.
// Route-aware middlewares are installed with Use so chi's route context is
// populated when they read it.
func newRouter(ctx context.Context, m httpmiddleware.TelemetryProvider, cfg *Config, h *health.Health, tenants Tenants) http.Handler {
	r := chi.NewRouter()
	r.Use(
		httpmiddleware.Instrument("storefront", m),
		httpmiddleware.LogRequests(),
	)
	r.Get("/livez", h.LiveEndpoint)
	r.Get("/readyz", h.ReadyEndpoint)
	handler.Mount(r, tenants.Engines()...)

	return httpmiddleware.Wrap(r,
		httpmiddleware.Recovery(zctx.From(ctx)),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins:          cfg.CORS.Origins,
			Headers:          []string{"Content-Type", httpmiddleware.HeaderRequestID},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
			Skip:   isProbe,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
	)
}

func isProbe(r *http.Request) bool {
	return r.URL.Path == "/livez" || r.URL.Path == "/readyz"
}
