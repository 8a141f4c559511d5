package coordinator

import (
	"strings"

	"github.com/dreamware/pokerd/internal/broadcast"
	"github.com/dreamware/pokerd/internal/poker"
)

// StartRound opens a new voting round. Only the facilitator may start one,
// and not while a round is already collecting votes. Starting from the
// revealed state discards the previous round.
func (c *Coordinator) StartRound(sessionID, facilitatorID, topic string) (poker.RoundView, error) {
	var round poker.RoundView
	err := c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if !s.IsFacilitator(facilitatorID) {
			return poker.ErrForbidden
		}
		switch s.Status {
		case poker.StatusPaused:
			return poker.ErrSessionPaused
		case poker.StatusVoting:
			return poker.ErrAlreadyVoting
		}

		s.RoundsStarted++
		s.Round = poker.NewRound(s.RoundsStarted, strings.TrimSpace(topic), c.now())
		s.Status = poker.StatusVoting
		round = *s.View(facilitatorID).Round

		c.log.Info("round started", "session_id", s.ID, "round", s.Round.Number, "round_id", s.Round.ID)
		c.commit(e, broadcast.KindRoundStarted, RoundStarted{Round: round})
		return nil
	})
	return round, err
}

// SubmitVote records the participant's card for the open round. A second
// vote from the same participant replaces the first. Others only learn that
// a vote arrived, never its value.
func (c *Coordinator) SubmitVote(sessionID, participantID string, card poker.Card) error {
	if !card.Valid() {
		return poker.ErrInvalidVoteValue
	}
	return c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if s.Participant(participantID) == nil {
			return poker.ErrParticipantNotFound
		}
		if s.Status == poker.StatusPaused {
			return poker.ErrSessionPaused
		}
		if s.Round == nil {
			return poker.ErrNoActiveRound
		}
		if err := s.Round.Cast(poker.Vote{
			ParticipantID: participantID,
			Card:          card,
			SubmittedAt:   c.now(),
		}); err != nil {
			return err
		}
		c.stats.VotesCast.Add(1)

		c.commit(e, broadcast.KindVoteCast, VoteCast{
			ParticipantID: participantID,
			VotedCount:    len(s.Round.Votes),
		})
		return nil
	})
}

// RevealVotes closes the open round and publishes every card together with
// the statistics. Revealing a round that is already revealed returns the
// stored statistics again without publishing anything.
func (c *Coordinator) RevealVotes(sessionID, facilitatorID string) (poker.VoteStatistics, error) {
	var stats poker.VoteStatistics
	err := c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if !s.IsFacilitator(facilitatorID) {
			return poker.ErrForbidden
		}
		if s.Status == poker.StatusPaused {
			return poker.ErrSessionPaused
		}
		if s.Round == nil {
			return poker.ErrNoActiveRound
		}
		if s.Round.Revealed {
			stats = *s.Round.Statistics
			return nil
		}

		var err error
		stats, err = s.Round.Reveal(s.Eligible(), c.now())
		if err != nil {
			return err
		}
		s.Status = poker.StatusRevealed
		c.stats.RoundsRevealed.Add(1)

		votes := make(map[string]poker.Card, len(s.Round.Votes))
		for id, v := range s.Round.Votes {
			votes[id] = v.Card
		}
		c.log.Info("votes revealed",
			"session_id", s.ID, "round_id", s.Round.ID,
			"votes", stats.TotalVotes, "consensus", stats.Consensus)
		c.commit(e, broadcast.KindVotesRevealed, VotesRevealed{
			RoundID:    s.Round.ID,
			Votes:      votes,
			Statistics: stats,
		})
		return nil
	})
	return stats, err
}

// ResetRound throws the current round away, revealed or not, and returns the
// session to waiting.
func (c *Coordinator) ResetRound(sessionID, facilitatorID string) error {
	return c.withSession(sessionID, func(e *entry) error {
		s := e.session
		if !s.IsFacilitator(facilitatorID) {
			return poker.ErrForbidden
		}
		if s.Status == poker.StatusPaused {
			return poker.ErrSessionPaused
		}
		if s.Round == nil {
			return poker.ErrNoActiveRound
		}
		roundID := s.Round.ID
		s.Round = nil
		s.Status = poker.StatusWaiting

		c.commit(e, broadcast.KindRoundReset, RoundReset{RoundID: roundID})
		return nil
	})
}
