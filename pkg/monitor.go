package det01

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunStatus is the progress of the current run, shared between the run
// manager and the monitor.
type RunStatus struct {
	mu        sync.RWMutex
	runUUID   string
	version   string
	requested int
	done      int
	failed    int
	running   bool
	started   time.Time
}

type RunStatusSnapshot struct {
	RunUUID   string  `json:"run_uuid"`
	Version   string  `json:"version"`
	Requested int     `json:"events_requested"`
	Done      int     `json:"events_done"`
	Failed    int     `json:"events_failed"`
	Running   bool    `json:"running"`
	Elapsed   float64 `json:"elapsed_seconds"`
}

func (s *RunStatus) Start(run RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runUUID = run.RunUUID.String()
	s.version = run.Version
	s.requested = run.NumEvents
	s.done = 0
	s.failed = 0
	s.running = true
	s.started = time.Now()
}

func (s *RunStatus) EventDone(failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	if failed {
		s.failed++
	}
}

func (s *RunStatus) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *RunStatus) Snapshot() RunStatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := RunStatusSnapshot{
		RunUUID:   s.runUUID,
		Version:   s.version,
		Requested: s.requested,
		Done:      s.done,
		Failed:    s.failed,
		Running:   s.running,
	}
	if !s.started.IsZero() {
		snap.Elapsed = time.Since(s.started).Seconds()
	}
	return snap
}

// Monitor serves /health, /status and /metrics while a run is going.
type Monitor struct {
	status  *RunStatus
	metrics *Metrics
	server  *http.Server
}

func NewMonitor(addr string, status *RunStatus, metrics *Metrics) *Monitor {
	m := &Monitor{status: status, metrics: metrics}
	logged := handlers.LoggingHandler(logWriter{module: "monitor"}, m.Router())
	m.server = &http.Server{
		Addr:              addr,
		Handler:           handlers.RecoveryHandler()(logged),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return m
}

func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", m.getHealth).Methods("GET")
	r.HandleFunc("/status", m.getStatus).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(m.metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

// Handler is the router wrapped with access logging and panic recovery, as
// served by Start.
func (m *Monitor) Handler() http.Handler {
	return m.server.Handler
}

// logWriter forwards the access log lines to the package logger.
type logWriter struct {
	module string
}

func (w logWriter) Write(p []byte) (int, error) {
	logger.Info(strings.TrimRight(string(p), "\n"), w.module)
	return len(p), nil
}

func (m *Monitor) getHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (m *Monitor) getStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.status.Snapshot())
}

// Start serves in the background. Errors after startup are logged.
func (m *Monitor) Start() {
	logger.Info(fmt.Sprintf("Monitor listening on %s", m.server.Addr), "monitor")
	go func() {
		err := m.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("monitor stopped: %v", err))
		}
	}()
}

func (m *Monitor) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}
