package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pointme/resilience/internal/offline/netmon"
)

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	app    *App
	server *http.Server
}

// HealthReport is the detailed health payload.
type HealthReport struct {
	Status     string   `json:"status"`
	Network    string   `json:"network"`
	QueueDepth int      `json:"queue_depth"`
	Topics     []string `json:"topics"`
}

// NewServer creates a new ops server.
func NewServer(app *App, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		app: app,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) report(ctx context.Context) HealthReport {
	depth, err := s.app.queue.Len(ctx)
	if err != nil {
		depth = -1
	}

	status := "healthy"
	if s.app.monitor.Status() == netmon.StatusOffline {
		status = "degraded"
	}
	if depth < 0 {
		status = "critical"
	}

	return HealthReport{
		Status:     status,
		Network:    string(s.app.monitor.Status()),
		QueueDepth: depth,
		Topics:     s.app.cfg.Topics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.report(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if report.Status == "critical" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(map[string]string{"status": report.Status})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.report(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
