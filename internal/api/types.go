package api

import (
	"time"

	"github.com/dreamware/pokerd/internal/coordinator"
	"github.com/dreamware/pokerd/internal/poker"
)

// ParticipantHeader names the requesting participant on every call that
// acts on behalf of one.
const ParticipantHeader = "X-Participant-ID"

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Name          string `json:"name"`
	CreatorName   string `json:"creator_name"`
	CreatorAvatar string `json:"creator_avatar,omitempty"`
}

// JoinRequest is the body of POST /sessions/{id}/participants.
type JoinRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Membership answers both session creation and joining: the caller's own
// participant record and the session as they see it.
type Membership struct {
	Participant ParticipantInfo   `json:"participant"`
	Session     poker.SessionView `json:"session"`
}

// ParticipantInfo is the caller's own participant record.
type ParticipantInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// NewParticipantInfo copies the public fields of p.
func NewParticipantInfo(p poker.Participant) ParticipantInfo {
	return ParticipantInfo{ID: p.ID, Name: p.Name, Avatar: p.Avatar}
}

// TransferRequest is the body of POST /sessions/{id}/facilitator.
type TransferRequest struct {
	TargetID string `json:"target_id"`
}

// StartRoundRequest is the body of POST /sessions/{id}/rounds.
type StartRoundRequest struct {
	Topic string `json:"topic,omitempty"`
}

// VoteRequest is the body of POST /sessions/{id}/votes. Value is one of
// 1, 2, 3, 5, 8, 13, 21 or "pause".
type VoteRequest struct {
	Value poker.Card `json:"value"`
}

// ReconcileRequest is the body of POST /sessions/{id}/reconcile.
type ReconcileRequest struct {
	Version  uint64 `json:"version"`
	Checksum string `json:"checksum,omitempty"`
}

// CapacityResponse is the body of GET /capacity.
type CapacityResponse struct {
	coordinator.CapacityStatus
	Available int    `json:"available"`
	Summary   string `json:"summary"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ErrorBody is the error envelope of every failed request. Error carries a
// stable code from poker.Code.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
