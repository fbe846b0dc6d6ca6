package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	protocolNone = ""
	protocolGrpc = "grpc"
	protocolHttp = "http"
)

// Endpoint is where one signal is shipped. A grpc endpoint wins over an
// http one, a signal with neither is not exported at all.
type Endpoint struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (e Endpoint) protocol() string {
	switch {
	case e.GrpcEndpoint != "":
		return protocolGrpc
	case e.HttpEndpoint != "":
		return protocolHttp
	}
	return protocolNone
}

func (e Endpoint) url() string {
	if e.protocol() == protocolGrpc {
		return e.GrpcEndpoint
	}
	return e.HttpEndpoint
}

type OtlpConfig struct {
	Traces  Endpoint `json:"traces"`
	Metrics Endpoint `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
	// extra resource attributes, e.g. which account a run was for
	Attributes map[string]string `json:"attributes"`
	// a run is usually shorter than this, the final export happens on
	// shutdown
	MetricIntervalSeconds int `json:"metric_interval_seconds"`
}

func (c Config) metricInterval() time.Duration {
	if c.MetricIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.MetricIntervalSeconds) * time.Second
}

func newResource(serviceName string, config Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(serviceName)}
	for key, value := range config.Attributes {
		attrs = append(attrs, attribute.String(key, value))
	}
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

// newTraceProvider returns nil when traces are not exported.
func newTraceProvider(ctx context.Context, r *resource.Resource, endpoint Endpoint) (*trace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, endpoint)
	if exporter == nil || err != nil {
		return nil, err
	}
	return trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	), nil
}

func newSpanExporter(ctx context.Context, endpoint Endpoint) (trace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	protocol := endpoint.protocol()
	if protocol == protocolNone {
		return nil, nil
	}
	slog.Debug(
		"exporting traces",
		"protocol", protocol,
		"endpoint", endpoint.url(),
		"headers", len(endpoint.Headers) > 0,
	)
	if protocol == protocolGrpc {
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(endpoint.GrpcEndpoint),
			otlptracegrpc.WithHeaders(endpoint.Headers),
		)
	}
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(endpoint.HttpEndpoint),
		otlptracehttp.WithHeaders(endpoint.Headers),
	)
}

// newMetricProvider returns nil when metrics are not exported.
func newMetricProvider(ctx context.Context, r *resource.Resource, endpoint Endpoint, interval time.Duration) (*metric.MeterProvider, error) {
	exporter, err := newMetricExporter(ctx, endpoint)
	if exporter == nil || err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(r),
	), nil
}

func newMetricExporter(ctx context.Context, endpoint Endpoint) (metric.Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	protocol := endpoint.protocol()
	if protocol == protocolNone {
		return nil, nil
	}
	slog.Debug(
		"exporting metrics",
		"protocol", protocol,
		"endpoint", endpoint.url(),
		"headers", len(endpoint.Headers) > 0,
	)
	if protocol == protocolGrpc {
		return otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(endpoint.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(endpoint.Headers),
		)
	}
	return otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpointURL(endpoint.HttpEndpoint),
		otlpmetrichttp.WithHeaders(endpoint.Headers),
	)
}
