/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package webhook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"chainguard.dev/menderaf/triage"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// maxBodyBytes caps how much of a CI log one request may carry.
const maxBodyBytes = 1 << 20 // 1 MiB

var eventCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "menderaf_webhook_events_total",
		Help: "Webhook requests by classification verdict",
	},
	[]string{"verdict"},
)

// Triager is the slice of the triage loop the server drives.
type Triager interface {
	HandleReport(ctx context.Context, rawLog string)
	HandleSuccess(ctx context.Context, rawLog string)
}

// Server handles webhook traffic for one triage loop.
type Server struct {
	loop Triager

	// baseCtx parents the detached triage runs so they survive the
	// request but still stop on shutdown.
	baseCtx context.Context

	// launch runs fn; tests override it to run synchronously.
	launch func(fn func())
}

// NewServer returns a Server that parents background triage work on ctx.
func NewServer(ctx context.Context, loop Triager) *Server {
	return &Server{
		loop:    loop,
		baseCtx: ctx,
		launch:  func(fn func()) { go fn() },
	}
}

// Handler returns the HTTP handler for the webhook surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// ListenAndServe blocks serving the webhook surface until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	clog.InfoContextf(ctx, "Webhook listener on port %d", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			fmt.Fprintln(w, "menderaf agent: alive")
		}

	case http.MethodPost:
		s.handleReport(w, r)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	log := clog.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}
	rawLog := string(body)

	verdict := triage.Classify(rawLog)
	switch verdict {
	case triage.Failure:
		eventCounter.WithLabelValues("failure").Inc()
		log.With("bytes", len(body)).Info("Failure report received, starting triage")
		s.launch(func() { s.loop.HandleReport(s.baseCtx, rawLog) })
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintln(w, "triage started")

	case triage.Success:
		eventCounter.WithLabelValues("success").Inc()
		log.Info("Success report received")
		s.launch(func() { s.loop.HandleSuccess(s.baseCtx, rawLog) })
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintln(w, "noted")

	default:
		eventCounter.WithLabelValues("ignored").Inc()
		log.Info("Webhook body matched no vocabulary, ignoring")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ignored")
	}
}
