package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dreamware/pokerd/internal/api"
	"github.com/dreamware/pokerd/internal/coordinator"
)

type server struct {
	coord   *coordinator.Coordinator
	log     *slog.Logger
	started time.Time

	// conns counts open push channels per session and participant, so that a
	// participant with two tabs open is only marked disconnected when the
	// last one closes.
	mu    sync.Mutex
	conns map[connKey]int
}

type connKey struct {
	sessionID     string
	participantID string
}

func newServer(coord *coordinator.Coordinator, log *slog.Logger) *server {
	if log == nil {
		log = slog.Default()
	}
	return &server{
		coord:   coord,
		log:     log,
		started: time.Now(),
		conns:   make(map[connKey]int),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDestroySession)
	mux.HandleFunc("POST /sessions/{id}/participants", s.handleJoin)
	mux.HandleFunc("DELETE /sessions/{id}/participants/{pid}", s.handleRemoveParticipant)
	mux.HandleFunc("POST /sessions/{id}/facilitator", s.handleTransfer)
	mux.HandleFunc("POST /sessions/{id}/rounds", s.handleStartRound)
	mux.HandleFunc("POST /sessions/{id}/votes", s.handleVote)
	mux.HandleFunc("POST /sessions/{id}/reveal", s.handleReveal)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /sessions/{id}/reconcile", s.handleReconcile)
	mux.HandleFunc("GET /sessions/{id}/ws", s.handleWebsocket)
	mux.HandleFunc("GET /capacity", s.handleCapacity)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /health", s.handleHealth)
	return api.WithLogging(s.log, mux)
}

// attach and detach track push channels; detach reports whether the last
// one for the participant just closed.
func (s *server) attach(sessionID, participantID string) {
	s.mu.Lock()
	s.conns[connKey{sessionID, participantID}]++
	s.mu.Unlock()
}

func (s *server) detach(sessionID, participantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := connKey{sessionID, participantID}
	s.conns[key]--
	if s.conns[key] > 0 {
		return false
	}
	delete(s.conns, key)
	return true
}
