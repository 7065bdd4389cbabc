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

// Package telemetry records request metrics, traces, and access logs for a
// dispatch service.
//
// [Recorder] implements dispatch.ObservabilityRecorder on OpenTelemetry.
// Metrics export through a private Prometheus registry by default, or to
// stdout for development, or to any caller-supplied meter provider. Spans
// are named after the matched route pattern, never the raw path, so
// cardinality stays bounded no matter what clients request.
//
//	rec, err := telemetry.New(telemetry.WithServiceName("user-api"))
//	svc := dispatch.MustNew(routes, dispatch.WithObservability(rec))
//	http.Handle("/metrics", rec.MetricsHandler())
package telemetry
