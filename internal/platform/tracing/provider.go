// Package tracing builds the OpenTelemetry tracer provider used by the
// registration service.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"regdesk/internal/platform/config"
	"regdesk/pkg/platform/tracer"
)

// ServiceName identifies this process in exported spans.
const ServiceName = "regdesk"

// Provider owns the SDK tracer provider, if any, and hands out the
// application tracer.
type Provider struct {
	sdk    *sdktrace.TracerProvider
	tracer tracer.Tracer
}

// NewProvider returns a no-op provider when tracing is disabled or the
// exporter is "none". Spans from the stdout exporter are written to w, or
// stdout when w is nil.
func NewProvider(cfg config.Tracing, w io.Writer) (*Provider, error) {
	if !cfg.Enabled || cfg.Exporter == "none" {
		return &Provider{tracer: tracer.NewNoop()}, nil
	}
	if cfg.Exporter != "stdout" {
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
		)),
	)
	return &Provider{
		sdk:    tp,
		tracer: tracer.NewOTel(tracer.WithTracerProvider(tp)),
	}, nil
}

// Tracer returns the application tracer.
func (p *Provider) Tracer() tracer.Tracer {
	return p.tracer
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.sdk != nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
