package coordinator

import (
	"time"

	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

// startGrace pauses the session after its facilitator dropped off and arms
// the failover timer. Must be called with e.mu held while the session is
// waiting, voting or revealed.
//
// The grace period freezes the round: no votes, reveals or resets are
// accepted until it ends. It ends in one of three ways:
//   - the facilitator reconnects before the deadline (endGrace)
//   - the deadline passes and the role moves to the earliest-joined
//     connected participant (graceExpired)
//   - the deadline passes with nobody connected and the session ends
func (c *Coordinator) startGrace(e *entry) {
	s := e.session
	now := c.now()
	grace := &poker.GracePeriod{
		FacilitatorID: s.FacilitatorID,
		StartedAt:     now,
		Deadline:      now.Add(c.opts.GracePeriod),
		PriorStatus:   s.Status,
	}
	if candidate := s.EarliestConnected(s.FacilitatorID); candidate != nil {
		grace.CandidateID = candidate.ID
	}
	s.Grace = grace
	s.Status = poker.StatusPaused

	c.cancelGrace(e)
	token := e.graceToken
	id := s.ID
	e.graceTimer = time.AfterFunc(c.opts.GracePeriod, func() {
		c.graceExpired(id, token)
	})
	if lead := c.opts.GraceWarning; lead > 0 && lead < c.opts.GracePeriod {
		e.warnTimer = time.AfterFunc(c.opts.GracePeriod-lead, func() {
			c.graceWarning(id, token)
		})
	}

	c.log.Info("grace period started",
		"session_id", s.ID,
		"facilitator_id", grace.FacilitatorID,
		"candidate_id", grace.CandidateID,
		"deadline", grace.Deadline)
	c.commit(e, broadcast.KindGraceStarted, graceUpdate(s, grace, now, ""))
}

// endGrace resumes the session after the facilitator came back in time.
// Must be called with e.mu held.
func (c *Coordinator) endGrace(e *entry, reason string) {
	s := e.session
	grace := s.Grace
	if grace == nil {
		return
	}
	c.cancelGrace(e)
	s.Grace = nil
	s.Status = grace.PriorStatus

	c.log.Info("grace period ended", "session_id", s.ID, "reason", reason, "status", s.Status)
	c.commit(e, broadcast.KindGraceEnded, graceUpdate(s, grace, c.now(), reason))
}

// cancelGrace invalidates any armed grace timers. Must be called with e.mu
// held. A timer that already fired and is waiting for the lock will see a
// stale token and do nothing.
func (c *Coordinator) cancelGrace(e *entry) {
	e.graceToken++
	if e.graceTimer != nil {
		e.graceTimer.Stop()
		e.graceTimer = nil
	}
	if e.warnTimer != nil {
		e.warnTimer.Stop()
		e.warnTimer = nil
	}
}

// graceExpired runs on the timer goroutine when the grace deadline passes.
// The successor is chosen now rather than at pause time, because the
// original candidate may have dropped off as well.
func (c *Coordinator) graceExpired(id string, token uint64) {
	_ = c.withSession(id, func(e *entry) error {
		s := e.session
		if e.graceToken != token || s.Grace == nil {
			return nil
		}
		grace := s.Grace
		c.cancelGrace(e)

		successor := s.EarliestConnected(grace.FacilitatorID)
		if successor == nil {
			c.log.Warn("grace period expired with nobody connected",
				"session_id", s.ID, "facilitator_id", grace.FacilitatorID)
			c.finish(e, ReasonAbandoned)
			return nil
		}

		s.Grace = nil
		s.Status = grace.PriorStatus
		s.FacilitatorID = successor.ID
		c.stats.Failovers.Add(1)

		c.log.Info("facilitator failed over",
			"session_id", s.ID,
			"previous_id", grace.FacilitatorID,
			"facilitator_id", successor.ID)
		c.commit(e, broadcast.KindFacilitatorChanged, FacilitatorChanged{
			PreviousID:    grace.FacilitatorID,
			FacilitatorID: successor.ID,
			Reason:        ReasonGraceExpired,
		})
		return nil
	})
}

// graceWarning announces that the deadline is near. It changes no session
// field, but still takes a version so the event stream stays gap-free.
func (c *Coordinator) graceWarning(id string, token uint64) {
	_ = c.withSession(id, func(e *entry) error {
		s := e.session
		if e.graceToken != token || s.Grace == nil {
			return nil
		}
		e.warnTimer = nil
		s.Version++
		c.publish(s, broadcast.KindGraceWarning, graceUpdate(s, s.Grace, c.now(), ""))
		return nil
	})
}

// refreshCandidate re-derives the grace candidate after presence or
// membership changed. Must be called with e.mu held.
func refreshCandidate(s *poker.Session) {
	if s.Grace == nil {
		return
	}
	s.Grace.CandidateID = ""
	if p := s.EarliestConnected(s.Grace.FacilitatorID); p != nil {
		s.Grace.CandidateID = p.ID
	}
}

func graceUpdate(s *poker.Session, g *poker.GracePeriod, now time.Time, reason string) GraceUpdate {
	remaining := g.Deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return GraceUpdate{
		FacilitatorID: g.FacilitatorID,
		CandidateID:   g.CandidateID,
		Deadline:      g.Deadline,
		Remaining:     remaining,
		Status:        s.Status,
		Reason:        reason,
	}
}
