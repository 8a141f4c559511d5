package coordinator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

func TestFacilitatorDisconnectPausesAndResumes(t *testing.T) {
	c, clock := newTestCoordinator(t, Options{})
	id, people := newSession(t, c, "Bob", "Cy")
	ada, bob := people[0], people[1]
	sub, err := c.Subscribe(id, bob.ID)
	require.NoError(t, err)

	_, err = c.StartRound(id, ada.ID, "")
	require.NoError(t, err)
	require.NoError(t, c.SubmitVote(id, bob.ID, poker.Card8))

	require.NoError(t, c.MarkDisconnected(id, ada.ID))

	view := mustView(t, c, id, bob.ID)
	assert.Equal(t, poker.StatusPaused, view.Status)
	require.NotNil(t, view.Grace)
	assert.Equal(t, ada.ID, view.Grace.FacilitatorID)
	assert.Equal(t, bob.ID, view.Grace.CandidateID)
	assert.Equal(t, clock.Now().Add(DefaultGracePeriod), view.Grace.Deadline)
	assert.Equal(t, map[string]poker.Card{bob.ID: poker.Card8}, view.Round.Votes)

	assert.ErrorIs(t, c.SubmitVote(id, people[2].ID, poker.Card3), poker.ErrSessionPaused)
	_, err = c.StartRound(id, ada.ID, "")
	assert.ErrorIs(t, err, poker.ErrSessionPaused)

	// A second disconnect report is covered by the running pause.
	version := view.Version
	require.NoError(t, c.MarkDisconnected(id, ada.ID))
	assert.Equal(t, version, mustView(t, c, id, "").Version)

	require.NoError(t, c.MarkReconnected(id, ada.ID))

	view = mustView(t, c, id, bob.ID)
	assert.Equal(t, poker.StatusVoting, view.Status)
	assert.Nil(t, view.Grace)
	assert.Equal(t, ada.ID, view.FacilitatorID)
	assert.Equal(t, map[string]poker.Card{bob.ID: poker.Card8}, view.Round.Votes)

	events := sub.Drain()
	assert.Equal(t, []broadcast.Kind{
		broadcast.KindRoundStarted,
		broadcast.KindVoteCast,
		broadcast.KindGraceStarted,
		broadcast.KindGraceEnded,
	}, kinds(events))
	ended := events[3].Payload.(GraceUpdate)
	assert.Equal(t, ReasonFacilitatorReturned, ended.Reason)
	assert.Equal(t, poker.StatusVoting, ended.Status)
}

func TestGraceExpiryFailsOverExactlyOnce(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{GracePeriod: 50 * time.Millisecond})
	id, people := newSession(t, c, "Bob", "Cy")
	ada, bob := people[0], people[1]
	sub, err := c.Subscribe(id, people[2].ID)
	require.NoError(t, err)

	_, err = c.StartRound(id, ada.ID, "")
	require.NoError(t, err)
	require.NoError(t, c.MarkDisconnected(id, ada.ID))

	require.Eventually(t, func() bool {
		view, err := c.GetSession(id, "")
		return err == nil && view.FacilitatorID == bob.ID
	}, 2*time.Second, 10*time.Millisecond)

	view := mustView(t, c, id, "")
	assert.Equal(t, poker.StatusVoting, view.Status, "failover restores the paused status")
	assert.Nil(t, view.Grace)

	// Give a stray timer every chance to fire twice.
	time.Sleep(150 * time.Millisecond)

	var changes []FacilitatorChanged
	for _, ev := range sub.Drain() {
		if ev.Kind == broadcast.KindFacilitatorChanged {
			changes = append(changes, ev.Payload.(FacilitatorChanged))
		}
	}
	require.Len(t, changes, 1)
	assert.Equal(t, FacilitatorChanged{
		PreviousID:    ada.ID,
		FacilitatorID: bob.ID,
		Reason:        ReasonGraceExpired,
	}, changes[0])
	assert.Equal(t, uint64(1), c.Stats().Failovers)

	// Coming back late only restores presence.
	require.NoError(t, c.MarkReconnected(id, ada.ID))
	assert.Equal(t, bob.ID, mustView(t, c, id, "").FacilitatorID)
}

func TestGraceCandidateReevaluatedAtDeadline(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{GracePeriod: 50 * time.Millisecond})
	id, people := newSession(t, c, "Bob", "Cy")
	ada, bob, cy := people[0], people[1], people[2]

	require.NoError(t, c.MarkDisconnected(id, ada.ID))
	assert.Equal(t, bob.ID, mustView(t, c, id, "").Grace.CandidateID)

	require.NoError(t, c.MarkDisconnected(id, bob.ID))
	assert.Equal(t, cy.ID, mustView(t, c, id, "").Grace.CandidateID)

	require.Eventually(t, func() bool {
		view, err := c.GetSession(id, "")
		return err == nil && view.FacilitatorID == cy.ID
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, poker.StatusWaiting, mustView(t, c, id, "").Status)
}

func TestGraceExpiryWithNobodyConnectedEndsSession(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{GracePeriod: 50 * time.Millisecond})
	id, people := newSession(t, c, "Bob")

	require.NoError(t, c.MarkDisconnected(id, people[0].ID))
	require.NoError(t, c.MarkDisconnected(id, people[1].ID))
	assert.Empty(t, mustView(t, c, id, "").Grace.CandidateID)

	require.Eventually(t, func() bool {
		_, err := c.GetSession(id, "")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)

	_, err := c.GetSession(id, "")
	assert.ErrorIs(t, err, poker.ErrSessionNotFound)
	assert.Equal(t, 0, c.Capacity().Active)
	assert.Zero(t, c.Stats().Failovers)
}

func TestReconnectCancelsFailover(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{GracePeriod: 80 * time.Millisecond})
	id, people := newSession(t, c, "Bob")
	ada := people[0]

	require.NoError(t, c.MarkDisconnected(id, ada.ID))
	require.NoError(t, c.MarkReconnected(id, ada.ID))

	time.Sleep(200 * time.Millisecond)

	view := mustView(t, c, id, "")
	assert.Equal(t, ada.ID, view.FacilitatorID)
	assert.Equal(t, poker.StatusWaiting, view.Status)
	assert.Zero(t, c.Stats().Failovers)
}

func TestGraceWarningPrecedesFailover(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{
		GracePeriod:  150 * time.Millisecond,
		GraceWarning: 100 * time.Millisecond,
	})
	id, people := newSession(t, c, "Bob")
	sub, err := c.Subscribe(id, people[1].ID)
	require.NoError(t, err)

	require.NoError(t, c.MarkDisconnected(id, people[0].ID))

	require.Eventually(t, func() bool {
		view, err := c.GetSession(id, "")
		return err == nil && view.FacilitatorID == people[1].ID
	}, 2*time.Second, 10*time.Millisecond)

	events := sub.Drain()
	assert.Equal(t, []broadcast.Kind{
		broadcast.KindGraceStarted,
		broadcast.KindGraceWarning,
		broadcast.KindFacilitatorChanged,
	}, kinds(events))
	for i := 1; i < len(events); i++ {
		assert.Equal(t, events[i-1].Version+1, events[i].Version, "versions stay contiguous")
	}
	warning := events[1].Payload.(GraceUpdate)
	assert.Equal(t, poker.StatusPaused, warning.Status)
	assert.LessOrEqual(t, warning.Remaining, 150*time.Millisecond)
}

func TestFacilitatorLeavingDuringGrace(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{})
	id, people := newSession(t, c, "Bob")
	ada, bob := people[0], people[1]

	_, err := c.StartRound(id, ada.ID, "")
	require.NoError(t, err)
	require.NoError(t, c.MarkDisconnected(id, ada.ID))
	sub, err := c.Subscribe(id, bob.ID)
	require.NoError(t, err)

	require.NoError(t, c.Leave(id, ada.ID))

	view := mustView(t, c, id, "")
	assert.Equal(t, bob.ID, view.FacilitatorID)
	assert.Equal(t, poker.StatusVoting, view.Status)
	assert.Nil(t, view.Grace)

	assert.Equal(t, []broadcast.Kind{
		broadcast.KindParticipantLeft,
		broadcast.KindGraceEnded,
		broadcast.KindFacilitatorChanged,
	}, kinds(sub.Drain()))
}

func TestFacilitatorActionsRefusedWhilePaused(t *testing.T) {
	c, _ := newTestCoordinator(t, Options{})
	id, people := newSession(t, c, "Bob", "Cy")
	ada, bob, cy := people[0], people[1], people[2]
	require.NoError(t, c.MarkDisconnected(id, ada.ID))

	assert.ErrorIs(t, c.Evict(id, ada.ID, cy.ID), poker.ErrSessionPaused)
	assert.ErrorIs(t, c.DestroySession(id, ada.ID), poker.ErrSessionPaused)
	assert.ErrorIs(t, c.Evict(id, bob.ID, cy.ID), poker.ErrForbidden, "role is checked first")
	assert.Len(t, mustView(t, c, id, "").Participants, 3)

	require.NoError(t, c.MarkReconnected(id, ada.ID))
	require.NoError(t, c.Evict(id, ada.ID, cy.ID))
	require.NoError(t, c.DestroySession(id, ada.ID))
}
