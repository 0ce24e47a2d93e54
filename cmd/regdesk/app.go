package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"regdesk/internal/notify"
	"regdesk/internal/platform/config"
	"regdesk/internal/platform/tracing"
	"regdesk/internal/registration/metrics"
	"regdesk/internal/registration/models"
	"regdesk/internal/registration/ports"
	"regdesk/internal/registration/service"
	"regdesk/internal/registration/store"
	"regdesk/pkg/platform/audit"
	"regdesk/pkg/platform/tracer"
)

// app holds the process-scoped dependencies shared by every command. The
// spreadsheet client is built once here and injected.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	tracing    *tracing.Provider
	auditor    *audit.Logger
	schema     models.Schema
	table      ports.SpreadsheetTable
	service    *service.Service
	dispatcher *notify.Dispatcher
}

type appOptions struct {
	notifications bool
	traceOutput   io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		schema:   schemaFromConfig(cfg),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := a.schema.Validate(); err != nil {
		return nil, err
	}

	tp, err := tracing.NewProvider(cfg.Tracing, opts.traceOutput)
	if err != nil {
		return nil, err
	}
	a.tracing = tp
	a.auditor = audit.NewLogger(logger, audit.NewCounterEmitter(a.registry))

	table, err := newTable(ctx, cfg, a.schema, tp.Tracer(), logger)
	if err != nil {
		return nil, err
	}
	a.table = table

	svcOpts := []service.Option{
		service.WithTracer(tp.Tracer()),
		service.WithMetrics(metrics.New(a.registry)),
		service.WithAuditor(a.auditor),
	}
	if opts.notifications {
		sender, err := newSender(cfg)
		if err != nil {
			return nil, err
		}
		notifyMetrics := notify.NewMetrics(a.registry)
		notifier := notify.New(sender, logger,
			notify.WithMetrics(notifyMetrics),
			notify.WithTracer(tp.Tracer()),
			notify.WithTimeout(cfg.Notify.Timeout),
		)
		if !sender.Configured() {
			logger.Warn("notification credential not configured, cancellation notices will be skipped",
				"provider", sender.Name())
		}
		a.dispatcher = notify.NewDispatcher(notifier, logger,
			notify.WithAuditor(a.auditor),
			notify.WithDispatchMetrics(notifyMetrics),
		)
		svcOpts = append(svcOpts, service.WithNotifier(a.dispatcher))
	}
	a.service = service.New(table, a.schema, logger, svcOpts...)
	return a, nil
}

// close drains notifications and flushes spans.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.dispatcher != nil {
		if err := a.dispatcher.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain notifications: %w", err))
		}
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush traces: %w", err))
	}
	return errors.Join(errs...)
}

func schemaFromConfig(cfg *config.Config) models.Schema {
	headers := map[models.Field]string{
		models.FieldIDNumber:       cfg.Schema.IDNumber,
		models.FieldName:           cfg.Schema.Name,
		models.FieldCourseName:     cfg.Schema.CourseName,
		models.FieldCourseDate:     cfg.Schema.CourseDate,
		models.FieldStatus:         cfg.Schema.Status,
		models.FieldHandlerContact: cfg.Schema.HandlerContact,
	}
	if cfg.Schema.Birthday != "" {
		headers[models.FieldBirthday] = cfg.Schema.Birthday
	}
	return models.Schema{
		Headers:      headers,
		StatusColumn: cfg.Schema.StatusColumn,
		Labels: models.StatusLabels{
			Confirmed: cfg.Schema.ConfirmedLabel,
			Cancelled: cfg.Schema.CancelledLabel,
		},
		RequireBirthday: cfg.RequireBirthday,
	}
}

func newTable(ctx context.Context, cfg *config.Config, schema models.Schema, t tracer.Tracer, logger *slog.Logger) (ports.SpreadsheetTable, error) {
	switch cfg.Sheet.Backend {
	case config.BackendMemory:
		if cfg.Sheet.SeedFile != "" {
			logger.Info("using in-memory sheet", "seed_file", cfg.Sheet.SeedFile)
			return store.LoadCSVFile(cfg.Sheet.SeedFile)
		}
		header, err := emptyHeader(schema)
		if err != nil {
			return nil, err
		}
		logger.Info("using empty in-memory sheet")
		return store.NewInMemoryTable(header), nil
	default:
		svc, err := store.NewSheetsService(ctx, cfg.Sheet.Credentials, cfg.Sheet.CredentialsPath)
		if err != nil {
			return nil, err
		}
		return store.NewGoogleSheetsTable(svc, cfg.Sheet.ID, cfg.Sheet.Name, cfg.Sheet.ReadColumns,
			store.WithTracer(t),
			store.WithLogger(logger),
		), nil
	}
}

// emptyHeader lays out a header row for schema: the status header at the
// status column, the other mapped fields in the free columns before it.
func emptyHeader(schema models.Schema) ([]string, error) {
	statusIdx, err := models.ColumnIndex(schema.StatusColumn)
	if err != nil {
		return nil, err
	}
	header := make([]string, statusIdx+models.AuditWidth)
	header[statusIdx] = schema.Headers[models.FieldStatus]
	header[statusIdx+1] = "狀態變更時間"
	header[statusIdx+2] = "操作IP"
	header[statusIdx+3] = "操作裝置"

	next := 0
	for _, f := range []models.Field{
		models.FieldIDNumber, models.FieldBirthday, models.FieldName,
		models.FieldCourseName, models.FieldCourseDate, models.FieldHandlerContact,
	} {
		text := schema.Headers[f]
		if text == "" {
			continue
		}
		for next < len(header) && header[next] != "" {
			next++
		}
		if next == len(header) {
			header = append(header, text)
			continue
		}
		header[next] = text
	}
	return header, nil
}

func newSender(cfg *config.Config) (notify.Sender, error) {
	if cfg.Notify.Provider == config.ProviderTelegram {
		return notify.NewTelegramSender(cfg.Notify.TelegramToken, "", cfg.Notify.Timeout)
	}
	return notify.NewLINESender(cfg.Notify.LINEEndpoint, cfg.Notify.LINEToken, cfg.Notify.Timeout, nil), nil
}
