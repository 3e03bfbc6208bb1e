package observability

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the process-wide tracer. It is a no-op until SetupTracing
// installs an exporting provider.
var Tracer trace.Tracer = otel.Tracer("cstyle")

type TracingOptions struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
	SessionID   string
}

// SetupTracing installs an OTLP/gRPC exporting tracer provider. The returned
// function flushes and stops it.
func SetupTracing(ctx context.Context, opts TracingOptions) (func(context.Context) error, error) {
	clientOpts := []otlptracegrpc.Option{}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		clientOpts = append(clientOpts, otlptracegrpc.WithEndpoint(endpoint))
	}
	if opts.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", opts.ServiceName),
		attribute.String("session.id", opts.SessionID),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
