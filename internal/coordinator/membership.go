package coordinator

import (
	"strings"

	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

// Join adds a new participant to the session.
//
// The participant starts out connected and is announced to everyone already
// attached. Joining is allowed in every live status, including while the
// session is paused for a grace period; the newcomer then becomes eligible
// as a failover candidate.
//
// Parameters:
//   - sessionID: The session to join
//   - name: Display name, trimmed and limited to poker.MaxNameLength runes
//   - avatar: Free-form avatar tag
//
// Returns:
//   - poker.Participant: The new participant, including its generated id
//   - poker.SessionView: The session as seen by the newcomer
//   - error: poker.ErrSessionNotFound, poker.ErrSessionExpired,
//     poker.ErrSessionFull or poker.ErrInvalidName
func (c *Coordinator) Join(sessionID, name, avatar string) (poker.Participant, poker.SessionView, error) {
	name, err := poker.ValidateName(name)
	if err != nil {
		return poker.Participant{}, poker.SessionView{}, err
	}

	var (
		joined poker.Participant
		view   poker.SessionView
	)
	err = c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if len(s.Participants) >= c.opts.MaxParticipants {
			return poker.ErrSessionFull
		}
		p := poker.NewParticipant(name, strings.TrimSpace(avatar), c.now())
		s.AddParticipant(p)
		refreshCandidate(s)
		c.stats.ParticipantsJoined.Add(1)

		c.commit(e, broadcast.KindParticipantJoined, ParticipantJoined{Participant: s.ViewParticipant(p)})
		joined = *p
		view = s.View(p.ID)
		return nil
	})
	if err != nil {
		return poker.Participant{}, poker.SessionView{}, err
	}
	c.log.Info("participant joined", "session_id", sessionID, "participant_id", joined.ID)
	return joined, view, nil
}

// Leave removes the participant from the session at their own request.
//
// A leaving facilitator hands the role straight to the earliest-joined
// connected participant; there is no grace period for a voluntary exit. If
// nobody is connected, the earliest-joined participant inherits the role and
// a grace period starts on their behalf. When
// the last participant leaves, the session ends at once and its capacity
// slot is freed.
func (c *Coordinator) Leave(sessionID, participantID string) error {
	return c.withSession(sessionID, func(e *entry) error {
		p := e.session.Participant(participantID)
		if p == nil {
			return poker.ErrParticipantNotFound
		}
		c.removeParticipant(e, p, broadcast.KindParticipantLeft, ReasonLeft)
		return nil
	})
}

// Evict removes targetID on behalf of the facilitator. The facilitator cannot
// evict themself; Leave is the way out. Like every facilitator action it is
// refused while the session is paused.
func (c *Coordinator) Evict(sessionID, facilitatorID, targetID string) error {
	return c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if !s.IsFacilitator(facilitatorID) {
			return poker.ErrForbidden
		}
		if s.Status == poker.StatusPaused {
			return poker.ErrSessionPaused
		}
		target := s.Participant(targetID)
		if target == nil {
			return poker.ErrParticipantNotFound
		}
		if target.ID == facilitatorID {
			return poker.ErrForbidden
		}
		c.removeParticipant(e, target, broadcast.KindParticipantKicked, ReasonKicked)
		return nil
	})
}

// TransferFacilitator hands the role from currentID to targetID. The target
// must be another participant with a live connection.
func (c *Coordinator) TransferFacilitator(sessionID, currentID, targetID string) error {
	return c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if !s.IsFacilitator(currentID) {
			return poker.ErrForbidden
		}
		if s.Status == poker.StatusPaused {
			return poker.ErrSessionPaused
		}
		target := s.Participant(targetID)
		if target == nil || target.ID == currentID || !target.Connected() {
			return poker.ErrInvalidTransferTarget
		}
		s.FacilitatorID = target.ID

		c.log.Info("facilitator transferred",
			"session_id", s.ID, "previous_id", currentID, "facilitator_id", target.ID)
		c.commit(e, broadcast.KindFacilitatorChanged, FacilitatorChanged{
			PreviousID:    currentID,
			FacilitatorID: target.ID,
			Reason:        ReasonTransferred,
		})
		return nil
	})
}

// MarkDisconnected records that the participant's push channel went away.
//
// If the participant is the facilitator, the session pauses and a grace
// period starts instead of a plain presence event. Marking an already
// disconnected participant is a no-op.
func (c *Coordinator) MarkDisconnected(sessionID, participantID string) error {
	return c.withSession(sessionID, func(e *entry) error {
		s := e.session
		p := s.Participant(participantID)
		if p == nil {
			return poker.ErrParticipantNotFound
		}
		if !p.Connected() {
			return nil
		}
		p.Connection = poker.Disconnected
		p.LastSeen = c.now()

		if s.IsFacilitator(p.ID) && s.Grace == nil {
			switch s.Status {
			case poker.StatusWaiting, poker.StatusVoting, poker.StatusRevealed:
				c.startGrace(e)
				return nil
			}
		}
		refreshCandidate(s)
		c.commit(e, broadcast.KindParticipantDisconnected, PresenceChanged{
			ParticipantID: p.ID,
			Connection:    p.Connection,
		})
		return nil
	})
}

// MarkReconnected records that the participant has a push channel again. A
// facilitator returning within their grace period resumes the session where
// it was paused.
func (c *Coordinator) MarkReconnected(sessionID, participantID string) error {
	return c.withSession(sessionID, func(e *entry) error {
		s := e.session
		p := s.Participant(participantID)
		if p == nil {
			return poker.ErrParticipantNotFound
		}
		p.LastSeen = c.now()
		if p.Connected() {
			return nil
		}
		p.Connection = poker.Connected

		if s.Grace != nil && s.Grace.FacilitatorID == p.ID {
			c.endGrace(e, ReasonFacilitatorReturned)
			return nil
		}
		refreshCandidate(s)
		c.commit(e, broadcast.KindParticipantReconnected, PresenceChanged{
			ParticipantID: p.ID,
			Connection:    p.Connection,
		})
		return nil
	})
}

// removeParticipant takes p out of the session and publishes the resulting
// events in order: the removal itself, then the end of a grace period the
// leaver owned, then the facilitator handover. Must be called with e.mu held.
func (c *Coordinator) removeParticipant(e *entry, p *poker.Participant, kind broadcast.Kind, reason string) {
	s := e.session
	wasFacilitator := s.IsFacilitator(p.ID)

	var endedGrace *poker.GracePeriod
	if s.Grace != nil && s.Grace.FacilitatorID == p.ID {
		endedGrace = s.Grace
		c.cancelGrace(e)
		s.Grace = nil
		s.Status = endedGrace.PriorStatus
	}

	s.RemoveParticipant(p.ID)
	removed := ParticipantRemoved{ParticipantID: p.ID, Reason: reason}
	c.log.Info("participant removed", "session_id", s.ID, "participant_id", p.ID, "reason", reason)

	if len(s.Participants) == 0 {
		s.FacilitatorID = ""
		c.commit(e, kind, removed)
		c.finish(e, ReasonEmpty)
		return
	}

	var successor *poker.Participant
	if wasFacilitator {
		successor = s.Successor(p.ID)
		s.FacilitatorID = successor.ID
	}
	refreshCandidate(s)

	c.commit(e, kind, removed)
	if endedGrace != nil {
		c.commit(e, broadcast.KindGraceEnded, graceUpdate(s, endedGrace, c.now(), ReasonFacilitatorLeft))
	}
	if successor != nil {
		c.commit(e, broadcast.KindFacilitatorChanged, FacilitatorChanged{
			PreviousID:    p.ID,
			FacilitatorID: successor.ID,
			Reason:        ReasonFacilitatorLeft,
		})
		// Nobody connected was left to take over. The absent successor gets
		// the same grace period a dropped facilitator would.
		if !successor.Connected() {
			c.startGrace(e)
		}
	}
}
