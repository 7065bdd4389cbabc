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

package dispatch

import (
	"io"
	"log/slog"
	"time"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// Option defines functional options for service configuration.
type Option func(*Service)

// Discipline selects how handlers run relative to the serving goroutine.
type Discipline int

const (
	// Sync runs the handler on the serving goroutine. The default.
	Sync Discipline = iota

	// Async runs each handler in its own goroutine. The service waits on
	// handler completion or request-context cancellation, whichever comes
	// first, and writes nothing after cancellation. Handlers must honor
	// their context or they keep running detached until they return.
	Async
)

// String returns the string representation of the discipline.
func (d Discipline) String() string {
	switch d {
	case Sync:
		return "sync"
	case Async:
		return "async"
	default:
		return "unknown"
	}
}

// WithLogger sets the service logger. Without it the service logs nothing.
//
// Example:
//
//	svc, err := dispatch.New(routes,
//	    dispatch.WithLogger(slog.Default()),
//	)
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDiscipline selects the handler execution discipline for the whole
// service. One discipline per service, fixed at construction.
func WithDiscipline(d Discipline) Option {
	return func(s *Service) {
		s.discipline = d
	}
}

// WithObservability attaches a recorder that sees every request's
// lifecycle. rivaas.dev/dispatch/telemetry provides an OpenTelemetry-backed
// implementation.
func WithObservability(rec ObservabilityRecorder) Option {
	return func(s *Service) {
		s.observability = rec
	}
}

// WithProblemBaseURL sets the base URL prepended to problem type slugs in
// error responses, e.g. "https://api.example.com/problems" yields
// "https://api.example.com/problems/not_found". Without it the bare code is
// used as the type.
func WithProblemBaseURL(base string) Option {
	return func(s *Service) {
		s.problemBaseURL = base
	}
}

// WithH2C enables HTTP/2 cleartext upgrade for [Service.Serve]. Use only in
// development or behind a trusted load balancer.
func WithH2C(enable bool) Option {
	return func(s *Service) {
		s.enableH2C = enable
	}
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// defaultServerTimeouts returns the default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// WithServerTimeouts configures the timeouts applied by [Service.Serve] and
// [Service.ServeTLS]. These guard against slowloris-style clients.
//
// Defaults (if not set):
//
//	ReadHeaderTimeout: 5s
//	ReadTimeout:       15s
//	WriteTimeout:      30s
//	IdleTimeout:       60s
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(s *Service) {
		s.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}
