package poker

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusVoting   Status = "voting"
	StatusRevealed Status = "revealed"
	StatusPaused   Status = "paused"
	StatusExpired  Status = "expired"
)

// ConnectionState tracks whether a participant has a live push channel.
type ConnectionState string

const (
	Connected    ConnectionState = "connected"
	Disconnected ConnectionState = "disconnected"
)

// MaxNameLength bounds session and participant display names, in runes.
const MaxNameLength = 50

// Participant is a member of exactly one session.
type Participant struct {
	ID         string
	Name       string
	Avatar     string
	Connection ConnectionState
	JoinedAt   time.Time
	LastSeen   time.Time
}

// Connected reports whether the participant currently has a push channel.
func (p *Participant) Connected() bool {
	return p.Connection == Connected
}

// NewParticipant creates a connected participant joining at now.
func NewParticipant(name, avatar string, now time.Time) *Participant {
	return &Participant{
		ID:         NewID(),
		Name:       name,
		Avatar:     avatar,
		Connection: Connected,
		JoinedAt:   now,
		LastSeen:   now,
	}
}

// GracePeriod exists only while a session is paused because its facilitator
// dropped off.
type GracePeriod struct {
	FacilitatorID string
	CandidateID   string
	StartedAt     time.Time
	Deadline      time.Time
	// PriorStatus is restored when the grace period ends either way.
	PriorStatus Status
}

// Session is the unit of collaboration. Participants is kept in join order.
type Session struct {
	ID            string
	Name          string
	Participants  []*Participant
	FacilitatorID string
	Status        Status
	Round         *VotingRound
	RoundsStarted int
	Grace         *GracePeriod
	CreatedAt     time.Time
	LastActivity  time.Time
	ExpiresAt     time.Time
	Version       uint64
}

// NewSession creates a waiting session whose creator is its only participant
// and facilitator.
func NewSession(name string, creator *Participant, timeout time.Duration, now time.Time) *Session {
	return &Session{
		ID:            NewID(),
		Name:          name,
		Participants:  []*Participant{creator},
		FacilitatorID: creator.ID,
		Status:        StatusWaiting,
		CreatedAt:     now,
		LastActivity:  now,
		ExpiresAt:     now.Add(timeout),
		Version:       1,
	}
}

// ValidateName trims a display name and checks its length.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

// Participant returns the member with the given id, or nil.
func (s *Session) Participant(id string) *Participant {
	idx := slices.IndexFunc(s.Participants, func(p *Participant) bool { return p.ID == id })
	if idx < 0 {
		return nil
	}
	return s.Participants[idx]
}

// IsFacilitator reports whether id holds the facilitator role.
func (s *Session) IsFacilitator(id string) bool {
	return id != "" && s.FacilitatorID == id
}

// AddParticipant appends p. The caller enforces the capacity limit.
func (s *Session) AddParticipant(p *Participant) {
	s.Participants = append(s.Participants, p)
}

// RemoveParticipant deletes the member with the given id and returns it, or
// nil if there was none. An unrevealed vote by that member is discarded.
func (s *Session) RemoveParticipant(id string) *Participant {
	idx := slices.IndexFunc(s.Participants, func(p *Participant) bool { return p.ID == id })
	if idx < 0 {
		return nil
	}
	p := s.Participants[idx]
	s.Participants = slices.Delete(s.Participants, idx, idx+1)
	if s.Round != nil {
		s.Round.Discard(id)
	}
	return p
}

// EarliestConnected returns the connected participant who joined first,
// skipping exclude. It returns nil when nobody else is connected.
func (s *Session) EarliestConnected(exclude string) *Participant {
	for _, p := range s.Participants {
		if p.ID != exclude && p.Connected() {
			return p
		}
	}
	return nil
}

// Successor picks who takes over the facilitator role from exclude: the
// earliest-joined connected participant, falling back to the earliest-joined
// participant of all when nobody is connected.
func (s *Session) Successor(exclude string) *Participant {
	if p := s.EarliestConnected(exclude); p != nil {
		return p
	}
	for _, p := range s.Participants {
		if p.ID != exclude {
			return p
		}
	}
	return nil
}

// Refresh records activity at now and pushes the expiry deadline out.
func (s *Session) Refresh(now time.Time, timeout time.Duration) {
	s.LastActivity = now
	s.ExpiresAt = now.Add(timeout)
}

// Bump increments the state version and refreshes activity. Every mutation
// goes through it.
func (s *Session) Bump(now time.Time, timeout time.Duration) {
	s.Version++
	s.Refresh(now, timeout)
}

// ExpiredAt reports whether the session is gone at now, either explicitly
// or because its deadline has passed.
func (s *Session) ExpiredAt(now time.Time) bool {
	return s.Status == StatusExpired || now.After(s.ExpiresAt)
}

// Eligible is the number of participants who could vote in the current round.
func (s *Session) Eligible() int {
	return len(s.Participants)
}

// CheckInvariants reports structural corruption that no operation should
// ever produce.
func (s *Session) CheckInvariants() error {
	if s.Status == StatusExpired {
		return nil
	}
	if len(s.Participants) == 0 {
		if s.FacilitatorID != "" {
			return errors.New("empty session has a facilitator")
		}
		return nil
	}
	if s.Participant(s.FacilitatorID) == nil {
		return fmt.Errorf("facilitator %q is not a participant", s.FacilitatorID)
	}
	if (s.Status == StatusPaused) != (s.Grace != nil) {
		return fmt.Errorf("status %s inconsistent with grace period presence", s.Status)
	}
	if s.Status == StatusVoting && (s.Round == nil || s.Round.Revealed) {
		return errors.New("voting session without an open round")
	}
	if s.Status == StatusRevealed && (s.Round == nil || !s.Round.Revealed) {
		return errors.New("revealed session without a revealed round")
	}
	return nil
}
