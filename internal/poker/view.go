package poker

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"
)

// ParticipantView is the client-facing form of a participant.
type ParticipantView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Avatar      string          `json:"avatar,omitempty"`
	Connection  ConnectionState `json:"connection"`
	Facilitator bool            `json:"facilitator"`
	HasVoted    bool            `json:"has_voted"`
	JoinedAt    time.Time       `json:"joined_at"`
	LastSeen    time.Time       `json:"last_seen"`
}

// RoundView is the client-facing form of a round. Votes is populated with
// every card once revealed; before that it only holds the viewer's own card.
type RoundView struct {
	ID         string          `json:"id"`
	Number     int             `json:"number"`
	Topic      string          `json:"topic,omitempty"`
	Revealed   bool            `json:"revealed"`
	VotedCount int             `json:"voted_count"`
	Votes      map[string]Card `json:"votes,omitempty"`
	Statistics *VoteStatistics `json:"statistics,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
}

// GraceView is the client-facing form of a grace period.
type GraceView struct {
	FacilitatorID string    `json:"facilitator_id"`
	CandidateID   string    `json:"candidate_id,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	Deadline      time.Time `json:"deadline"`
}

// SessionView is a detached snapshot of a session, safe to hand to clients.
type SessionView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Status        Status            `json:"status"`
	FacilitatorID string            `json:"facilitator_id"`
	Version       uint64            `json:"version"`
	Participants  []ParticipantView `json:"participants"`
	Round         *RoundView        `json:"round,omitempty"`
	RoundsStarted int               `json:"rounds_started"`
	Grace         *GraceView        `json:"grace,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	LastActivity  time.Time         `json:"last_activity"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

// View builds a snapshot of s as seen by viewerID, which may be empty.
func (s *Session) View(viewerID string) SessionView {
	v := SessionView{
		ID:            s.ID,
		Name:          s.Name,
		Status:        s.Status,
		FacilitatorID: s.FacilitatorID,
		Version:       s.Version,
		Participants:  make([]ParticipantView, 0, len(s.Participants)),
		RoundsStarted: s.RoundsStarted,
		CreatedAt:     s.CreatedAt,
		LastActivity:  s.LastActivity,
		ExpiresAt:     s.ExpiresAt,
	}
	for _, p := range s.Participants {
		v.Participants = append(v.Participants, s.ViewParticipant(p))
	}
	if r := s.Round; r != nil {
		rv := &RoundView{
			ID:         r.ID,
			Number:     r.Number,
			Topic:      r.Topic,
			Revealed:   r.Revealed,
			VotedCount: len(r.Votes),
			StartedAt:  r.StartedAt,
		}
		if r.Revealed {
			rv.Votes = make(map[string]Card, len(r.Votes))
			for id, vote := range r.Votes {
				rv.Votes[id] = vote.Card
			}
			if r.Statistics != nil {
				stats := *r.Statistics
				rv.Statistics = &stats
			}
		} else if own, ok := r.Votes[viewerID]; ok {
			rv.Votes = map[string]Card{viewerID: own.Card}
		}
		v.Round = rv
	}
	if g := s.Grace; g != nil {
		v.Grace = &GraceView{
			FacilitatorID: g.FacilitatorID,
			CandidateID:   g.CandidateID,
			StartedAt:     g.StartedAt,
			Deadline:      g.Deadline,
		}
	}
	return v
}

// ViewParticipant builds the client-facing form of p within s.
func (s *Session) ViewParticipant(p *Participant) ParticipantView {
	pv := ParticipantView{
		ID:          p.ID,
		Name:        p.Name,
		Avatar:      p.Avatar,
		Connection:  p.Connection,
		Facilitator: p.ID == s.FacilitatorID,
		JoinedAt:    p.JoinedAt,
		LastSeen:    p.LastSeen,
	}
	if s.Round != nil {
		pv.HasVoted = s.Round.HasVoted(p.ID)
	}
	return pv
}

// Checksum digests the parts of the view that every viewer sees identically.
// Vote values are left out so that the viewer's own card does not change it.
func (v SessionView) Checksum() string {
	h := fnv.New64a()
	var buf [8]byte
	writeString := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	binary.BigEndian.PutUint64(buf[:], v.Version)
	h.Write(buf[:])
	writeString(string(v.Status))
	writeString(v.FacilitatorID)
	for _, p := range v.Participants {
		writeString(p.ID)
		writeString(string(p.Connection))
		if p.HasVoted {
			writeString("voted")
		}
	}
	if v.Round != nil {
		writeString(v.Round.ID)
		if v.Round.Revealed {
			writeString("revealed")
		}
	}
	if v.Grace != nil {
		writeString(v.Grace.FacilitatorID)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
