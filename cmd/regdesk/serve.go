package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"regdesk/internal/platform/config"
	"regdesk/internal/platform/health"
	"regdesk/internal/platform/httpserver"
	"regdesk/internal/platform/logger"
	"regdesk/internal/ratelimit/metrics"
	ratelimit "regdesk/internal/ratelimit/middleware"
	"regdesk/internal/ratelimit/models"
	"regdesk/internal/ratelimit/store"
	"regdesk/internal/registration/handler"
	httptransport "regdesk/internal/transport/http"
	"regdesk/internal/verification"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/middleware/metadata"
	"regdesk/pkg/platform/middleware/request"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and static site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

// runServe wires the server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests and notifications.
func runServe(parent context.Context, cfg *config.Config) error {
	log := logger.New(cfg.LogLevel)
	log.Info("initializing regdesk",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"sheet_backend", cfg.Sheet.Backend,
		"require_birthday", cfg.RequireBirthday,
		"notify_provider", cfg.Notify.Provider,
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log, appOptions{notifications: true})
	if err != nil {
		return err
	}

	trusted, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parse trusted proxies: %w", err)
	}

	verifier := verification.New(verification.Config{
		Secret:   cfg.Recaptcha.Secret,
		MinScore: cfg.Recaptcha.MinScore,
		Endpoint: cfg.Recaptcha.Endpoint,
		Bypass:   cfg.Recaptcha.Bypass,
	}, log,
		verification.WithTracer(a.tracing.Tracer()),
		verification.WithRegisterer(a.registry),
	)
	if verifier.Bypassed() && cfg.IsProduction() {
		log.Warn("human verification bypassed in production")
	}

	limiter := ratelimit.New(
		store.NewWindowStore(models.Policy{Max: cfg.RateLimit.Max, Window: cfg.RateLimit.Window}),
		log,
		ratelimit.WithMetrics(metrics.New(a.registry)),
	)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("spreadsheet", a.service.CheckSchema)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Gatherer:       a.registry,
		RequestMetrics: request.NewMetrics(a.registry),
		Metadata:       metadata.NewMiddleware(&metadata.Config{TrustedProxies: trusted}),
		RateLimit:      limiter.RateLimit,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		StaticDir:      cfg.StaticDir,
		Health:         healthHandler,
		API: handler.New(a.service, verifier, log,
			handler.WithRequireBirthday(cfg.RequireBirthday),
			handler.WithMaskNames(cfg.MaskNames),
		),
	})

	srv := httpserver.New(":"+strconv.Itoa(cfg.Port), router,
		httpserver.WithLogger(log),
		httpserver.WithShutdownTimeout(shutdownTimeout),
		httpserver.WithWriteTimeout(cfg.RequestTimeout+10*time.Second),
	)

	serveErr := checkSchemaAtStartup(ctx, a.service.CheckSchema, log)
	if serveErr == nil {
		serveErr = srv.Run(ctx)
	}

	// Requests have drained, so no new notices can be queued.
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := a.close(drainCtx); err != nil {
		log.Error("shutdown incomplete", "error", err)
	}

	if serveErr != nil {
		log.Error("server stopped with error", "error", serveErr)
		return serveErr
	}
	log.Info("server stopped")
	return nil
}

// checkSchemaAtStartup refuses to serve when the mapping does not fit the
// sheet. An unreachable sheet only warns; readiness keeps reporting it.
func checkSchemaAtStartup(ctx context.Context, check func(context.Context) error, log *slog.Logger) error {
	err := check(ctx)
	switch {
	case err == nil:
		return nil
	case dErrors.HasCode(err, dErrors.CodeConfiguration):
		return fmt.Errorf("spreadsheet schema check: %w", err)
	default:
		log.Warn("spreadsheet schema check failed at startup, readiness will report it", "error", err)
		return nil
	}
}
