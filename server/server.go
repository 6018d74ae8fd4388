// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	MetricsEndpoint = "/ext/metrics"
	HealthEndpoint  = "/ext/health"

	readHeaderTimeout = 10 * time.Second
)

var errDuplicateRoute = errors.New("duplicated route")

type Config struct {
	AllowedOrigins []string
	// Zero disables rate limiting
	MaxRequestsPerSecond float64
	ShutdownTimeout      time.Duration
}

// Server serves the node APIs over HTTP.
type Server struct {
	log    logging.Logger
	config Config
	router *mux.Router
	routes map[string]struct{}
	srv    *http.Server
}

// New returns a server that also serves the metrics of [gatherer].
func New(log logging.Logger, config Config, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		log:    log,
		config: config,
		router: mux.NewRouter(),
		routes: make(map[string]struct{}),
	}
	s.router.Handle(MetricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.HandleFunc(HealthEndpoint, health).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(s.router)
	gzipHandler := gziphandler.GzipHandler(corsHandler)

	handler := gzipHandler
	if config.MaxRequestsPerSecond > 0 {
		handler = rateLimited(gzipHandler, config.MaxRequestsPerSecond)
	}
	s.srv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// AddRoute serves [handler] at [path].
func (s *Server) AddRoute(path string, handler http.Handler) error {
	if _, ok := s.routes[path]; ok {
		return fmt.Errorf("%w: %s", errDuplicateRoute, path)
	}
	s.routes[path] = struct{}{}
	s.router.Handle(path, handler)
	s.log.Info("adding route", zap.String("url", path))
	return nil
}

// Serve serves requests on [listener] until [ctx] is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.log.Info("HTTP API server listening", zap.Stringer("address", listener.Addr()))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down HTTP API server")
		return s.srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func rateLimited(handler http.Handler, maxRequestsPerSecond float64) http.Handler {
	burst := int(maxRequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(maxRequestsPerSecond), burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"healthy":true}`))
}
