package coordinator

import (
	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

// ReconcileKind tells a reconnecting client how to catch up.
type ReconcileKind string

const (
	// ReconcileNoChange means the client is already current.
	ReconcileNoChange ReconcileKind = "no_change"
	// ReconcileDelta means Events holds every change the client missed.
	ReconcileDelta ReconcileKind = "delta"
	// ReconcileFullSnapshot means the client should replace its state with
	// Snapshot.
	ReconcileFullSnapshot ReconcileKind = "full_snapshot"
)

// Reconciliation is the outcome of Reconcile.
type Reconciliation struct {
	Kind     ReconcileKind      `json:"kind"`
	Version  uint64             `json:"version"`
	Events   []broadcast.Event  `json:"events,omitempty"`
	Snapshot *poker.SessionView `json:"snapshot,omitempty"`
	Checksum string             `json:"checksum"`
}

// Reconcile brings a reconnecting client up to date. It reads the session
// under its lock and changes nothing.
//
// Strategy:
//   - same version and, if given, same checksum: no change
//   - a gap of at most DeltaMaxGap versions that the broadcaster still
//     retains in full: the missed events in version order
//   - anything else, including a client that claims to be ahead or whose
//     checksum disagrees: a full snapshot at the current version
//
// Parameters:
//   - sessionID: The session being rejoined
//   - participantID: The reconnecting participant; the snapshot is rendered
//     from their point of view
//   - clientVersion: The last version the client applied
//   - checksum: The client's poker.SessionView.Checksum, or empty to skip
//     the comparison
func (c *Coordinator) Reconcile(sessionID, participantID string, clientVersion uint64, checksum string) (Reconciliation, error) {
	var out Reconciliation
	err := c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if s.Participant(participantID) == nil {
			return poker.ErrParticipantNotFound
		}
		view := s.View(participantID)
		out = Reconciliation{Version: s.Version, Checksum: view.Checksum()}

		if clientVersion == s.Version {
			if checksum == "" || checksum == out.Checksum {
				out.Kind = ReconcileNoChange
				return nil
			}
			c.log.Warn("client checksum mismatch",
				"session_id", s.ID, "participant_id", participantID, "version", s.Version)
		} else if clientVersion < s.Version {
			gap := s.Version - clientVersion
			if gap <= uint64(c.opts.DeltaMaxGap) {
				events, ok := c.events.History(s.ID, clientVersion)
				if ok && uint64(len(events)) == gap {
					out.Kind = ReconcileDelta
					out.Events = events
					return nil
				}
			}
		}

		out.Kind = ReconcileFullSnapshot
		out.Snapshot = &view
		return nil
	})
	return out, err
}
