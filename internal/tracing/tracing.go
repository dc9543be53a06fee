// Package tracing installs the global OpenTelemetry tracer provider.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/log"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "lineage"

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup builds the exporter named by cfg.Exporter and installs a tracer
// provider for it. With "none" the global no-op provider stays in place.
func Setup(ctx context.Context, cfg config.TracingConfig, version string) (ShutdownFunc, error) {
	var (
		exporter sdktrace.SpanExporter
		closer   io.Closer
		err      error
	)

	switch cfg.Exporter {
	case "", "none":
		return noopShutdown, nil
	case "stdout":
		var w io.Writer = os.Stderr
		if cfg.File != "" {
			f, openErr := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // G304: path from user config
			if openErr != nil {
				return nil, fmt.Errorf("opening trace file: %w", openErr)
			}
			w, closer = f, f
		}
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
	case "otlp":
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("creating %s exporter: %w", cfg.Exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", version),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Debug(log.CatTrace, "Tracing enabled", "exporter", cfg.Exporter, "endpoint", cfg.Endpoint, "file", cfg.File)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			err = errors.Join(err, closer.Close())
		}
		if err != nil {
			log.ErrorErr(log.CatTrace, "Tracer shutdown failed", err)
		}
		return err
	}, nil
}
