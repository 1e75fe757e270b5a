// Package otelhelper wires OpenTelemetry tracing for the designer.
package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys set by designer operations.
const (
	DefinitionIDKey   = "formflow.definition.id"
	StageIndexKey     = "formflow.stage.index"
	ConditionIndexKey = "formflow.condition.index"
	ItemIDKey         = "formflow.palette.item.id"
)

// Shutdown flushes buffered spans and stops the exporter.
type Shutdown func(ctx context.Context) error

// NewTracer exports spans over OTLP/HTTP, configured by the standard OTEL_EXPORTER_OTLP_*
// variables, and installs the provider globally.
// nolint:ireturn
func NewTracer(ctx context.Context, serviceName string) (trace.Tracer, Shutdown, error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}

	provider := NewTracerProvider(serviceName, sdktrace.WithBatcher(exporter))

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Tracer(serviceName), provider.Shutdown, nil
}

// NewTracerProvider builds an always-sampling provider tagged with serviceName.
func NewTracerProvider(serviceName string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))

	return sdktrace.NewTracerProvider(append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}, opts...)...)
}

// NoopTracer records nothing.
// nolint:ireturn
func NoopTracer(serviceName string) trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName)
}

// nolint:ireturn,spancheck
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
