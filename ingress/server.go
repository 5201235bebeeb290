// Copyright (c) 2016-2019 Uber Technologies, Inc.
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

// Package ingress is the HTTP front-end: it normalizes and routes
// /v1/execute, /v1/upload, /v1/download, and /v1/expire requests, guards
// spawn-bearing endpoints against untrusted origins, and reports liveness
// and readiness.
package ingress

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	uuid "github.com/satori/go.uuid"
	"github.com/uber-go/tally"

	"github.com/uber/beebox/lib/fileindex"
	"github.com/uber/beebox/lib/healthcheck"
	"github.com/uber/beebox/lib/middleware"
	"github.com/uber/beebox/lib/objectstore"
	"github.com/uber/beebox/lib/pipeline"
	"github.com/uber/beebox/lib/tracing"
	"github.com/uber/beebox/utils/handler"
	"github.com/uber/beebox/utils/log"
)

type requestIDKey struct{}

// Server is the ingress HTTP front-end.
type Server struct {
	config   Config
	guard    *originGuard
	pipeline *pipeline.Pipeline
	store    *objectstore.Store
	index    fileindex.Index
	monitor  *healthcheck.Monitor
	stats    tally.Scope
}

// New creates a Server.
func New(
	config Config,
	p *pipeline.Pipeline,
	store *objectstore.Store,
	index fileindex.Index,
	monitor *healthcheck.Monitor,
	stats tally.Scope,
) (*Server, error) {
	config.applyDefaults()
	guard, err := newOriginGuard(config)
	if err != nil {
		return nil, fmt.Errorf("origin guard: %s", err)
	}
	return &Server{
		config:   config,
		guard:    guard,
		pipeline: p,
		store:    store,
		index:    index,
		monitor:  monitor,
		stats:    stats,
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(tracing.HTTPMiddleware("beebox"))
	r.Use(middleware.StatusCounter(s.stats))
	r.Use(middleware.LatencyTimer(s.stats))
	r.Use(s.requestIDMiddleware)

	r.Get("/health", handler.Wrap(s.healthHandler))
	r.Get("/readiness", handler.Wrap(s.readinessHandler))

	r.Group(func(r chi.Router) {
		r.Use(s.guard.middleware)
		r.Post("/v1/execute", handler.Wrap(s.executeHandler))
		r.Post("/v1/upload", handler.Wrap(s.uploadHandler))
	})

	r.Group(func(r chi.Router) {
		fstats := s.stats.SubScope("files")
		r.Use(middleware.Counter(fstats))
		r.Use(middleware.ElapsedTimer(fstats))
		r.Post("/v1/download", handler.Wrap(s.downloadHandler))
		r.Post("/v1/expire", handler.Wrap(s.expireHandler))
	})

	return r
}

// requestIDMiddleware generates a request id per request, propagates it
// via context for downstream logging, and echoes it back as a header.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewV4().String()
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		r = r.WithContext(ctx)

		defer func() {
			log.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
			).Info("request completed")
		}()

		next.ServeHTTP(w, r)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) error {
	fmt.Fprintln(w, "OK")
	return nil
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) error {
	if err := s.monitor.Probe(); err != nil {
		return handler.Errorf("not ready: %s", err).Status(http.StatusServiceUnavailable)
	}
	fmt.Fprintln(w, "OK")
	return nil
}
