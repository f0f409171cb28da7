// Package api provides the diagnostic HTTP server for cpuprobe.
//
// Routes:
//
//	GET  /health      → Health check
//	GET  /api/report  → Full probe report (flags, vendor, brand, cache, ...)
//	GET  /api/diag    → Probe statistics snapshot
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/0Nera/cpuprobe/internal/config"
	"github.com/0Nera/cpuprobe/internal/cpuid"
	"github.com/0Nera/cpuprobe/internal/diag"
	"github.com/0Nera/cpuprobe/internal/topology"
)

// Server is the cpuprobe diagnostic HTTP server. The probe report it
// serves was produced before the server started and never changes.
type Server struct {
	cfg     *config.Config
	report  *cpuid.Report
	host    *topology.Host
	rec     *diag.Recorder
	mux     *http.ServeMux
	started time.Time
}

// NewServer creates a Server with all routes registered.
func NewServer(cfg *config.Config, rep *cpuid.Report, host *topology.Host, rec *diag.Recorder) *Server {
	s := &Server{
		cfg:     cfg,
		report:  rep,
		host:    host,
		rec:     rec,
		mux:     http.NewServeMux(),
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

// Run starts the HTTP server on addr (e.g. "0.0.0.0:8080").
func (s *Server) Run(addr string) error {
	fmt.Printf("\n  cpuprobe is serving diagnostics at http://%s\n\n", addr)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.mux,
		// ReadHeaderTimeout prevents slow-loris: clients that send headers very
		// slowly would otherwise hold a goroutine open indefinitely.
		ReadHeaderTimeout: 10 * time.Second,
		// IdleTimeout closes keep-alive connections that sit idle too long.
		IdleTimeout: 120 * time.Second,
	}
	return srv.ListenAndServe()
}

// Handler exposes the route mux, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/report", s.handleReport)
	s.mux.HandleFunc("/api/diag", s.handleDiag)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"report": s.report,
		"host": map[string]interface{}{
			"model":          s.host.ModelName,
			"logical_cores":  s.host.LogicalCores,
			"physical_cores": s.host.PhysicalCores,
			"p_cores":        s.host.PCores,
			"e_cores":        s.host.ECores,
			"numa_nodes":     s.host.NUMANodes,
			"l3_cache_mb":    s.host.L3CacheBytes / (1024 * 1024),
		},
		"summary": s.report.Flags.Summary(),
	})
}

func (s *Server) handleDiag(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.rec.Snapshot())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
