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
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Provider selects the built-in exporter backend.
type Provider string

const (
	// PrometheusProvider exposes metrics through a Prometheus registry;
	// scrape them via [Recorder.MetricsHandler]. The default.
	PrometheusProvider Provider = "prometheus"

	// StdoutProvider periodically dumps metrics and spans to stdout.
	// Intended for development.
	StdoutProvider Provider = "stdout"
)

// Option defines functional options for recorder configuration.
type Option func(*config)

// config holds recorder configuration collected from options.
type config struct {
	provider       Provider
	serviceName    string
	serviceVersion string
	accessLogger   *slog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	excludePaths   map[string]bool
}

func defaultConfig() *config {
	return &config{
		provider:     PrometheusProvider,
		serviceName:  "dispatch",
		excludePaths: make(map[string]bool),
	}
}

// WithProvider selects the built-in exporter backend.
func WithProvider(p Provider) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithServiceName sets the service.name attribute on metrics and spans.
func WithServiceName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.serviceName = name
		}
	}
}

// WithServiceVersion sets the service.version attribute on metrics and spans.
func WithServiceVersion(version string) Option {
	return func(c *config) {
		c.serviceVersion = version
	}
}

// WithAccessLogger enables a structured access log line per request on the
// given logger. Without it no access logs are emitted.
func WithAccessLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.accessLogger = logger
	}
}

// WithMeterProvider supplies a caller-owned meter provider instead of a
// built-in one. The recorder will not shut it down.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithTracerProvider supplies a caller-owned tracer provider instead of a
// built-in one. The recorder will not shut it down.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

// WithExcludePaths excludes exact request paths from metrics, traces, and
// access logs. Typical candidates are /health and the metrics endpoint
// itself.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) {
		for _, p := range paths {
			c.excludePaths[p] = true
		}
	}
}
