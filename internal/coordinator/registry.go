package coordinator

import (
	"strings"

	"github.com/dreamware/pokerd/internal/poker"
)

// CreateSession opens a new session with its creator as sole participant
// and facilitator.
//
// Admission and insertion happen under the registry lock, so the capacity
// guard can never be overshot by concurrent creations. When the guard is
// full, sessions that have already passed their deadline are reaped first so
// that an overdue sweep does not keep new sessions out.
//
// Parameters:
//   - name: Display name of the session
//   - creatorName: Display name of the creating participant
//   - creatorAvatar: Free-form avatar tag of the creator
//
// Returns:
//   - poker.SessionView: The new session as seen by its creator (version 1)
//   - poker.Participant: The creator, who holds the facilitator role
//   - error: poker.ErrCapacityExceeded or poker.ErrInvalidName
//
// Example:
//
//	view, me, err := c.CreateSession("Sprint 42", "Ada", "owl")
//	if errors.Is(err, poker.ErrCapacityExceeded) {
//	    // tell the user to try later
//	}
func (c *Coordinator) CreateSession(name, creatorName, creatorAvatar string) (poker.SessionView, poker.Participant, error) {
	name, err := poker.ValidateName(name)
	if err != nil {
		return poker.SessionView{}, poker.Participant{}, err
	}
	creatorName, err = poker.ValidateName(creatorName)
	if err != nil {
		return poker.SessionView{}, poker.Participant{}, err
	}

	c.mu.Lock()
	var reaped []string
	if c.capacity.Status().AtCapacity {
		reaped = c.reapExpiredLocked()
	}
	err = c.capacity.TryAdmit()
	if err != nil {
		c.mu.Unlock()
		c.closeTopics(reaped)
		c.stats.AdmissionsRejected.Add(1)
		c.log.Warn("session creation rejected", "error", err)
		return poker.SessionView{}, poker.Participant{}, err
	}

	now := c.now()
	creator := poker.NewParticipant(creatorName, strings.TrimSpace(creatorAvatar), now)
	s := poker.NewSession(name, creator, c.opts.SessionTimeout, now)
	c.sessions[s.ID] = &entry{session: s}
	c.publishCapacityLocked(ReasonCapacityAdmitted)
	view := s.View(creator.ID)
	c.mu.Unlock()
	c.closeTopics(reaped)

	c.stats.SessionsCreated.Add(1)
	c.log.Info("session created", "session_id", s.ID, "facilitator_id", creator.ID)
	return view, *creator, nil
}

// GetSession returns a snapshot of the session as seen by viewerID, which
// may be empty. A session past its deadline reports poker.ErrSessionExpired
// even if the sweeper has not removed it yet.
func (c *Coordinator) GetSession(id, viewerID string) (poker.SessionView, error) {
	var view poker.SessionView
	err := c.withSession(id, func(e *entry) error {
		view = e.session.View(viewerID)
		return nil
	})
	return view, err
}

// TouchActivity pushes the session's expiry deadline out by the session
// timeout without changing its version.
func (c *Coordinator) TouchActivity(id string) error {
	return c.withSession(id, func(e *entry) error {
		e.session.Refresh(c.now(), c.opts.SessionTimeout)
		return nil
	})
}

// DestroySession ends the session immediately. Only the facilitator may do
// this, and not while the session is paused. Attached clients receive a
// session_ended event before their queues are closed.
func (c *Coordinator) DestroySession(id, requesterID string) error {
	return c.withSession(id, func(e *entry) error {
		if !e.session.IsFacilitator(requesterID) {
			return poker.ErrForbidden
		}
		if e.session.Status == poker.StatusPaused {
			return poker.ErrSessionPaused
		}
		c.finish(e, ReasonDestroyed)
		return nil
	})
}

// SweepExpired removes every session whose deadline has passed, whatever the
// connection state of its participants, and frees their capacity slots. It
// returns the number of sessions removed.
func (c *Coordinator) SweepExpired() int {
	c.mu.Lock()
	removed := c.reapExpiredLocked()
	c.mu.Unlock()

	c.closeTopics(removed)
	if len(removed) > 0 {
		c.log.Info("expired sessions swept", "count", len(removed))
	}
	return len(removed)
}

// reapExpiredLocked ends and removes overdue sessions. Must be called with
// c.mu held. Returns the ids removed; their topics still need closing.
func (c *Coordinator) reapExpiredLocked() []string {
	now := c.now()
	var removed []string
	for id, e := range c.sessions {
		e.mu.Lock()
		if !e.removed && e.session.ExpiredAt(now) {
			c.finish(e, ReasonExpired)
		}
		gone := e.removed
		e.mu.Unlock()

		if gone && c.releaseLocked(id, e) {
			removed = append(removed, id)
		}
	}
	return removed
}

func (c *Coordinator) closeTopics(ids []string) {
	for _, id := range ids {
		c.events.CloseTopic(id)
	}
}
