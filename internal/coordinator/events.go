package coordinator

import (
	"time"

	"github.com/dreamware/pokerd/internal/poker"
)

// Reasons attached to membership, facilitator and lifecycle events.
const (
	ReasonLeft                = "left"
	ReasonKicked              = "kicked"
	ReasonTransferred         = "transferred"
	ReasonFacilitatorLeft     = "facilitator_left"
	ReasonGraceExpired        = "grace_period_expired"
	ReasonFacilitatorReturned = "facilitator_reconnected"
	ReasonDestroyed           = "destroyed"
	ReasonExpired             = "expired"
	ReasonEmpty               = "empty"
	ReasonAbandoned           = "abandoned"
	ReasonInvariantViolation  = "invariant_violation"
	ReasonShutdown            = "shutdown"
	ReasonCapacityAdmitted    = "session_created"
	ReasonCapacityReleased    = "session_removed"
)

// ParticipantJoined is the payload of broadcast.KindParticipantJoined.
type ParticipantJoined struct {
	Participant poker.ParticipantView `json:"participant"`
}

// ParticipantRemoved is the payload of KindParticipantLeft and
// KindParticipantKicked.
type ParticipantRemoved struct {
	ParticipantID string `json:"participant_id"`
	Reason        string `json:"reason"`
}

// PresenceChanged is the payload of the disconnected/reconnected events.
type PresenceChanged struct {
	ParticipantID string                `json:"participant_id"`
	Connection    poker.ConnectionState `json:"connection"`
}

// VoteCast announces that someone voted without revealing the card.
type VoteCast struct {
	ParticipantID string `json:"participant_id"`
	VotedCount    int    `json:"voted_count"`
}

// RoundStarted is the payload of broadcast.KindRoundStarted.
type RoundStarted struct {
	Round poker.RoundView `json:"round"`
}

// RoundReset is the payload of broadcast.KindRoundReset.
type RoundReset struct {
	RoundID string `json:"round_id"`
}

// VotesRevealed carries every card and the computed statistics.
type VotesRevealed struct {
	RoundID    string                `json:"round_id"`
	Votes      map[string]poker.Card `json:"votes"`
	Statistics poker.VoteStatistics  `json:"statistics"`
}

// FacilitatorChanged is the payload of broadcast.KindFacilitatorChanged.
type FacilitatorChanged struct {
	PreviousID    string `json:"previous_id"`
	FacilitatorID string `json:"facilitator_id"`
	Reason        string `json:"reason"`
}

// GraceUpdate is the payload of the grace period started/warning/ended events.
type GraceUpdate struct {
	FacilitatorID string        `json:"facilitator_id"`
	CandidateID   string        `json:"candidate_id,omitempty"`
	Deadline      time.Time     `json:"deadline"`
	Remaining     time.Duration `json:"remaining_ns"`
	Status        poker.Status  `json:"status"`
	Reason        string        `json:"reason,omitempty"`
}

// SessionEnded is the last event of a session.
type SessionEnded struct {
	Reason string `json:"reason"`
}

// CapacityChanged is published on the system topic.
type CapacityChanged struct {
	CapacityStatus
	Reason string `json:"reason"`
}
