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
	"context"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Serve starts an HTTP server on addr with production-safe timeouts,
// blocking until the server exits. H2C is enabled when configured via
// [WithH2C].
//
// For graceful shutdown, call [Service.Shutdown] from another goroutine:
//
//	go func() {
//	    if err := svc.Serve(":8080"); err != nil && err != http.ErrServerClosed {
//	        log.Fatal(err)
//	    }
//	}()
//
//	quit := make(chan os.Signal, 1)
//	signal.Notify(quit, os.Interrupt)
//	<-quit
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	svc.Shutdown(ctx)
func (s *Service) Serve(addr string) error {
	h := http.Handler(s)

	if s.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
		s.logger.Info("h2c enabled; use only in dev or behind a trusted LB")
	}

	srv := s.newServer(addr, h)

	s.serverMu.Lock()
	s.server = srv
	s.serverMu.Unlock()

	return srv.ListenAndServe()
}

// ServeTLS starts an HTTPS server on addr, blocking until the server exits.
// HTTP/2 is negotiated automatically via ALPN.
func (s *Service) ServeTLS(addr, certFile, keyFile string) error {
	srv := s.newServer(addr, s)

	s.serverMu.Lock()
	s.server = srv
	s.serverMu.Unlock()

	return srv.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully shuts down the running server without interrupting
// active connections, following the http.Server.Shutdown pattern. It
// returns nil when no server is running.
func (s *Service) Shutdown(ctx context.Context) error {
	s.serverMu.Lock()
	srv := s.server
	s.server = nil
	s.serverMu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func (s *Service) newServer(addr string, h http.Handler) *http.Server {
	timeouts := s.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
}
