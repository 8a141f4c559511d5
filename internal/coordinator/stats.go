package coordinator

import "sync/atomic"

// Stats tracks operation counts across all sessions.
type Stats struct {
	SessionsCreated     atomic.Uint64 // Sessions admitted and inserted
	SessionsDestroyed   atomic.Uint64 // Sessions torn down by their facilitator
	SessionsExpired     atomic.Uint64 // Sessions removed by expiry, abandonment or emptiness
	AdmissionsRejected  atomic.Uint64 // Creations refused by the capacity guard
	ParticipantsJoined  atomic.Uint64 // Successful joins, creators excluded
	VotesCast           atomic.Uint64 // Accepted votes, overwrites included
	RoundsRevealed      atomic.Uint64 // Rounds closed by a reveal
	Failovers           atomic.Uint64 // Facilitator changes caused by grace expiry
	InvariantViolations atomic.Uint64 // Sessions force-expired for corrupt state
}

// StatsSnapshot is a point-in-time copy of Stats plus gauges.
type StatsSnapshot struct {
	SessionsCreated     uint64 `json:"sessions_created"`
	SessionsDestroyed   uint64 `json:"sessions_destroyed"`
	SessionsExpired     uint64 `json:"sessions_expired"`
	AdmissionsRejected  uint64 `json:"admissions_rejected"`
	ParticipantsJoined  uint64 `json:"participants_joined"`
	VotesCast           uint64 `json:"votes_cast"`
	RoundsRevealed      uint64 `json:"rounds_revealed"`
	Failovers           uint64 `json:"failovers"`
	InvariantViolations uint64 `json:"invariant_violations"`
	EventsDropped       uint64 `json:"events_dropped"`
	ActiveSessions      int    `json:"active_sessions"`
}

func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		SessionsCreated:     s.SessionsCreated.Load(),
		SessionsDestroyed:   s.SessionsDestroyed.Load(),
		SessionsExpired:     s.SessionsExpired.Load(),
		AdmissionsRejected:  s.AdmissionsRejected.Load(),
		ParticipantsJoined:  s.ParticipantsJoined.Load(),
		VotesCast:           s.VotesCast.Load(),
		RoundsRevealed:      s.RoundsRevealed.Load(),
		Failovers:           s.Failovers.Load(),
		InvariantViolations: s.InvariantViolations.Load(),
	}
}
