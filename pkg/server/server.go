// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of cgroup-exporter

// Package server exposes the collector over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"

	"github.com/dockerstats/cgroup-exporter/pkg/logger"
)

// MetricsSource produces one rendered exposition per call. Collector
// satisfies it.
type MetricsSource interface {
	Collect() ([]byte, error)
}

type Config struct {
	// Address is the host:port to listen on.
	Address string
	// BasicAuth is a "user:password" pair. Empty disables authentication.
	BasicAuth string
}

type Server struct {
	srv    *http.Server
	source MetricsSource
	// expectedAuth is the full Authorization header value the client must
	// present, precomputed once at startup.
	expectedAuth string
	log          logrus.FieldLogger
}

func New(config Config, source MetricsSource) *Server {
	s := &Server{
		source: source,
		log:    logger.GetLogger(),
	}
	if config.BasicAuth != "" {
		s.expectedAuth = "Basic " + base64.StdEncoding.EncodeToString([]byte(config.BasicAuth))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	s.srv = &http.Server{
		Addr:         config.Address,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the request handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="cgroup-exporter"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := s.source.Collect()
	if err != nil {
		s.log.WithError(err).Warn("Metrics collection failed")
		http.Error(w, "collection failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.log.WithError(err).Debug("Writing metrics response failed")
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.expectedAuth == "" {
		return true
	}
	got := r.Header.Get("Authorization")
	if len(got) != len(s.expectedAuth) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.expectedAuth)) == 1
}

// Serve blocks until the listener fails or Shutdown is called.
func (s *Server) Serve() error {
	s.log.WithField("address", s.srv.Addr).Info("Serving metrics over HTTP")
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
