package coordinator

import (
	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

// Subscribe attaches a queue for participantID to the session's events. The
// participant must be a member. Events published before the call are not
// replayed; use Reconcile for that.
func (c *Coordinator) Subscribe(sessionID, participantID string) (*broadcast.Subscription, error) {
	var sub *broadcast.Subscription
	err := c.withSession(sessionID, func(e *entry) error {
		if e.session.Participant(participantID) == nil {
			return poker.ErrParticipantNotFound
		}
		sub = c.events.Subscribe(sessionID, participantID)
		return nil
	})
	return sub, err
}

// SubscribeSystem attaches a queue to the process-wide capacity events.
func (c *Coordinator) SubscribeSystem() *broadcast.Subscription {
	return c.events.Subscribe(broadcast.SystemTopic, "")
}

// Unsubscribe detaches sub. It is safe to call more than once.
func (c *Coordinator) Unsubscribe(sub *broadcast.Subscription) {
	c.events.Unsubscribe(sub)
}
