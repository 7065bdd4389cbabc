// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"rivaas.dev/dispatch"
)

const scopeName = "rivaas.dev/dispatch/telemetry"

// Recorder implements [dispatch.ObservabilityRecorder] with OpenTelemetry
// metrics and traces plus optional slog access logging. All methods are
// safe for concurrent use.
//
// The recorder never touches the global OpenTelemetry providers, so
// multiple recorders can coexist in one process.
//
// Example:
//
//	rec, err := telemetry.New(
//	    telemetry.WithServiceName("user-api"),
//	    telemetry.WithAccessLogger(slog.Default()),
//	    telemetry.WithExcludePaths("/health"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rec.Shutdown(context.Background())
//
//	svc := dispatch.MustNew(routes, dispatch.WithObservability(rec))
//	http.Handle("/metrics", rec.MetricsHandler())
type Recorder struct {
	cfg    *config
	meter  metric.Meter
	tracer trace.Tracer

	ownedMeterProvider  *sdkmetric.MeterProvider
	ownedTracerProvider *sdktrace.TracerProvider
	prometheusRegistry  *promclient.Registry
	prometheusHandler   http.Handler

	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	responseSize    metric.Int64Histogram

	serviceAttrs []attribute.KeyValue
}

// New builds a Recorder. The default backend is Prometheus with a private
// registry; use [WithProvider] or the provider options to change it.
func New(opts ...Option) (*Recorder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Recorder{cfg: cfg}

	r.serviceAttrs = []attribute.KeyValue{
		attribute.String("service.name", cfg.serviceName),
	}
	if cfg.serviceVersion != "" {
		r.serviceAttrs = append(r.serviceAttrs, attribute.String("service.version", cfg.serviceVersion))
	}

	if err := r.initMeter(); err != nil {
		return nil, err
	}
	if err := r.initTracer(); err != nil {
		return nil, err
	}

	return r, r.initInstruments()
}

func (r *Recorder) initMeter() error {
	if r.cfg.meterProvider != nil {
		r.meter = r.cfg.meterProvider.Meter(scopeName)
		return nil
	}

	switch r.cfg.provider {
	case PrometheusProvider:
		// Private registry so two recorders never fight over collectors.
		r.prometheusRegistry = promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		r.ownedMeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		r.prometheusHandler = promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})

	case StdoutProvider:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		r.ownedMeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)

	default:
		return fmt.Errorf("unsupported telemetry provider: %s", r.cfg.provider)
	}

	r.meter = r.ownedMeterProvider.Meter(scopeName)

	return nil
}

func (r *Recorder) initTracer() error {
	if r.cfg.tracerProvider != nil {
		r.tracer = r.cfg.tracerProvider.Tracer(scopeName)
		return nil
	}

	if r.cfg.provider == StdoutProvider {
		exporter, err := stdouttrace.New()
		if err != nil {
			return fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		r.ownedTracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		r.tracer = r.ownedTracerProvider.Tracer(scopeName)

		return nil
	}

	// Metrics-only setups still get valid, propagating span contexts.
	r.tracer = noop.NewTracerProvider().Tracer(scopeName)

	return nil
}

func (r *Recorder) initInstruments() error {
	var err error

	r.requestDuration, err = r.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	r.requestCount, err = r.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request count counter: %w", err)
	}

	r.activeRequests, err = r.meter.Int64UpDownCounter(
		"http_requests_active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active requests gauge: %w", err)
	}

	r.responseSize, err = r.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("Size of HTTP response bodies in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create response size histogram: %w", err)
	}

	return nil
}

// requestState carries per-request data between the lifecycle hooks.
type requestState struct {
	start  time.Time
	span   trace.Span
	method string
	path   string
}

// OnRequestStart implements [dispatch.ObservabilityRecorder]. Excluded
// paths still get span context enrichment but return a nil state so the
// service skips recording for them.
func (r *Recorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	ctx, span := r.tracer.Start(ctx, req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		}, r.serviceAttrs...)...),
	)

	if r.cfg.excludePaths[req.URL.Path] {
		span.End()
		return ctx, nil
	}

	r.activeRequests.Add(ctx, 1, metric.WithAttributes(r.serviceAttrs...))

	return ctx, &requestState{
		start:  time.Now(),
		span:   span,
		method: req.Method,
		path:   req.URL.Path,
	}
}

// WrapResponseWriter implements [dispatch.ObservabilityRecorder]. The
// service already hands over a status/size-capturing writer, so no extra
// wrapping is needed.
func (r *Recorder) WrapResponseWriter(w http.ResponseWriter, _ any) http.ResponseWriter {
	return w
}

// OnRequestEnd implements [dispatch.ObservabilityRecorder]. It records the
// request metrics, finishes the span, and emits the access log line. The
// route pattern, not the raw path, keys every metric and span name so
// cardinality stays bounded.
func (r *Recorder) OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}

	status := http.StatusOK
	var size int64
	if info, ok := writer.(dispatch.ResponseInfo); ok {
		status = info.StatusCode()
		size = info.Size()
	}

	elapsed := time.Since(st.start)
	attrs := append([]attribute.KeyValue{
		attribute.String("http.request.method", st.method),
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", status),
	}, r.serviceAttrs...)

	r.activeRequests.Add(ctx, -1, metric.WithAttributes(r.serviceAttrs...))
	r.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.requestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	r.responseSize.Record(ctx, size, metric.WithAttributes(attrs...))

	st.span.SetName(st.method + " " + routePattern)
	st.span.SetAttributes(
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", status),
	)
	if status >= http.StatusInternalServerError {
		st.span.SetStatus(codes.Error, http.StatusText(status))
	}
	st.span.End()

	if r.cfg.accessLogger != nil {
		r.cfg.accessLogger.LogAttrs(ctx, slog.LevelInfo, "request",
			slog.String("method", st.method),
			slog.String("route", routePattern),
			slog.String("path", st.path),
			slog.Int("status", status),
			slog.Int64("size", size),
			slog.Duration("duration", elapsed),
		)
	}
}

// MetricsHandler returns the Prometheus scrape handler, or nil when the
// recorder is not backed by the Prometheus provider.
func (r *Recorder) MetricsHandler() http.Handler {
	return r.prometheusHandler
}

// Shutdown flushes and stops the providers the recorder owns.
// Caller-supplied providers are left alone.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r.ownedTracerProvider != nil {
		if err := r.ownedTracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if r.ownedMeterProvider != nil {
		return r.ownedMeterProvider.Shutdown(ctx)
	}

	return nil
}

var _ dispatch.ObservabilityRecorder = (*Recorder)(nil)
