// Package ops serves the operational HTTP endpoints for a running feed
// client: health, connection status, the retained event log, and
// Prometheus metrics.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cityflow-dev/cityflow"
	"github.com/cityflow-dev/cityflow/pkg/middleware"
	"github.com/cityflow-dev/cityflow/pkg/protocol"
)

// Options configures the ops server.
type Options struct {
	// Addr is the listen address, e.g. ":8090".
	Addr string

	// Client is the feed client being observed. Required.
	Client *cityflow.Client

	// Logger receives server diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Registry receives the request metrics and backs /metrics.
	// Nil uses the global Prometheus registry.
	Registry *prometheus.Registry
}

// Server exposes the ops endpoints over HTTP.
type Server struct {
	client *cityflow.Client
	logger *slog.Logger
	router chi.Router
	httpd  *http.Server
}

// New builds a Server from opts.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		client: opts.Client,
		logger: logger,
	}

	metricsOpts := []middleware.MetricsOption{}
	metricsHandler := promhttp.Handler()
	if opts.Registry != nil {
		metricsOpts = append(metricsOpts, middleware.WithRegistry(opts.Registry))
		metricsHandler = promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})
	}

	r := chi.NewRouter()
	r.Use(middleware.OpenTelemetry())
	r.Use(middleware.Prometheus(metricsOpts...))
	r.Get("/healthz", s.handleHealth)
	r.Get("/statusz", s.handleStatus)
	r.Get("/city/events", s.handleEvents)
	r.Handle("/metrics", metricsHandler)
	s.router = r

	s.httpd = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving requests until Shutdown is called or the
// listener fails.
func (s *Server) ListenAndServe() error {
	s.logger.Info("ops server listening", "addr", s.httpd.Addr)
	err := s.httpd.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpd.Shutdown(ctx)
}

type healthResponse struct {
	Status     string `json:"status"`
	Connection string `json:"connection"`
	Timestamp  string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, _ := s.client.Status()
	resp := healthResponse{
		Status:     "healthy",
		Connection: status.String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Connection     string `json:"connection"`
	LastError      string `json:"last_error,omitempty"`
	ServerNotice   string `json:"server_notice,omitempty"`
	CityTimestamp  string `json:"city_timestamp,omitempty"`
	Nodes          int    `json:"nodes"`
	Incidents      int    `json:"incidents"`
	Routes         int    `json:"routes"`
	SelectedNodeID string `json:"selected_node_id,omitempty"`
	ReplayLen      int    `json:"replay_len"`
	ReplayCursor   int    `json:"replay_cursor"`
	ReplayPlaying  bool   `json:"replay_playing"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, lastErr := s.client.Status()
	store := s.client.Store()
	history := s.client.Replay()

	resp := statusResponse{
		Connection:     status.String(),
		LastError:      lastErr,
		ServerNotice:   s.client.LastServerError(),
		CityTimestamp:  store.LastTimestamp(),
		Nodes:          len(store.Nodes()),
		Incidents:      len(store.Incidents()),
		Routes:         len(store.Routes()),
		SelectedNodeID: store.SelectedID(),
		ReplayLen:      history.Len(),
		ReplayCursor:   history.Cursor(),
		ReplayPlaying:  history.Playing(),
	}
	writeJSON(w, http.StatusOK, resp)
}

type eventsResponse struct {
	Events []protocol.Event `json:"events"`
	Count  int              `json:"count"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.client.Store().Events()
	if events == nil {
		events = []protocol.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events, Count: len(events)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
