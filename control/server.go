// Package control provides the HTTP surface each process exposes instead
// of a CLI: POST /config to install a configuration document, POST
// /start and POST /stop to drive the Dispatch lifecycle, GET /status for
// operator-facing state, and GET /metrics for Prometheus scraping.
package control

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahwlsqja/bft-runtime-core/config"
	"github.com/ahwlsqja/bft-runtime-core/node"
)

// Server is the control HTTP endpoint. It holds at most one Node, built
// fresh on every POST /config.
type Server struct {
	mu      sync.RWMutex
	current *node.Node

	addr   string
	server *http.Server
	logger *log.Logger
}

// New builds a control Server bound to addr. It does not start listening
// until Start is called.
func New(addr string) *Server {
	s := &Server{addr: addr, logger: log.Default()}

	mux := http.NewServeMux()
	mux.HandleFunc("/config", s.handleConfig)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.server = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("[control] server error: %v", err)
		}
	}()
	s.logger.Printf("[control] listening on %s", s.addr)
	return nil
}

// Close shuts the HTTP server down and stops any running node.
func (s *Server) Close() error {
	s.mu.Lock()
	n := s.current
	s.mu.Unlock()
	if n != nil {
		n.Stop()
	}
	return s.server.Close()
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var doc config.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "malformed config document: "+err.Error(), http.StatusBadRequest)
		return
	}
	config.ApplyDefaults(&doc, config.Defaults())

	n, err := node.New(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.current != nil {
		s.current.Stop()
	}
	s.current = n
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n := s.node()
	if n == nil {
		http.Error(w, "no config installed", http.StatusConflict)
		return
	}
	if err := n.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	n := s.node()
	if n == nil {
		http.Error(w, "no config installed", http.StatusConflict)
		return
	}
	if err := n.Stop(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	n := s.node()
	if n == nil {
		http.Error(w, "no config installed", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(n.Status())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	n := s.node()
	if n == nil {
		http.Error(w, "no config installed", http.StatusConflict)
		return
	}
	promhttp.HandlerFor(n.Metrics().Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) node() *node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
