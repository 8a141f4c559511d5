package main

import (
	"encoding/json"
	"io"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/dreamware/pokerd/internal/api"
	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/coordinator"
)

// clientFrame is anything a client sends on the push channel. Every frame
// counts as session activity; the content is not interpreted further.
type clientFrame struct {
	Type string `json:"type"`
}

// handleWebsocket upgrades to the push channel for one participant. The
// participant is named by the "participant" query parameter, or the
// participant header for clients that can set one. Membership is checked
// before the upgrade so that unknown callers get a plain HTTP error.
func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	participantID := r.URL.Query().Get("participant")
	if participantID == "" {
		participantID = requester(r)
	}

	sub, err := s.coord.Subscribe(sessionID, participantID)
	if err != nil {
		api.ErrorResponse(w, err)
		return
	}
	defer s.coord.Unsubscribe(sub)

	websocket.Handler(func(conn *websocket.Conn) {
		s.serveEvents(conn, sessionID, participantID, sub)
	}).ServeHTTP(w, r)
}

// serveEvents pumps the subscription into conn until the client goes away,
// the participant is removed, or the session ends.
func (s *server) serveEvents(conn *websocket.Conn, sessionID, participantID string, sub *broadcast.Subscription) {
	defer conn.Close()
	log := s.log.With("session_id", sessionID, "participant_id", participantID)

	s.attach(sessionID, participantID)
	if err := s.coord.MarkReconnected(sessionID, participantID); err != nil {
		log.Debug("push channel refused", "error", err)
		s.detach(sessionID, participantID)
		return
	}
	log.Debug("push channel open")
	defer func() {
		if !s.detach(sessionID, participantID) {
			return
		}
		// The participant or the session may already be gone.
		if err := s.coord.MarkDisconnected(sessionID, participantID); err != nil {
			log.Debug("mark disconnected", "error", err)
		}
		log.Debug("push channel closed")
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.readFrames(conn, sessionID); err != nil {
			log.Debug("push channel reader stopped", "error", err)
		}
	}()

	enc := json.NewEncoder(conn)
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if err := enc.Encode(ev); err != nil {
				log.Debug("push failed", "error", err)
				return
			}
			if removes(ev, participantID) {
				return
			}
		case <-done:
			return
		}
	}
}

// readFrames consumes client frames, recording each as session activity. It
// returns when the stream fails or the session is no longer live.
func (s *server) readFrames(r io.Reader, sessionID string) error {
	dec := json.NewDecoder(r)
	for {
		var frame clientFrame
		if err := dec.Decode(&frame); err != nil {
			return err
		}
		if err := s.coord.TouchActivity(sessionID); err != nil {
			return err
		}
	}
}

// removes reports whether ev takes participantID out of the session.
func removes(ev broadcast.Event, participantID string) bool {
	switch ev.Kind {
	case broadcast.KindParticipantLeft, broadcast.KindParticipantKicked:
		p, ok := ev.Payload.(coordinator.ParticipantRemoved)
		return ok && p.ParticipantID == participantID
	}
	return false
}
