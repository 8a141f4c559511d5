package poker

import "time"

// Vote is one participant's card in a round. A later vote from the same
// participant replaces the earlier one.
type Vote struct {
	ParticipantID string    `json:"participant_id"`
	Card          Card      `json:"card"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// VotingRound holds the votes of one estimation round. Once Revealed is set
// the round is immutable until it is replaced.
type VotingRound struct {
	ID         string
	Topic      string
	Number     int
	Votes      map[string]Vote
	Revealed   bool
	Statistics *VoteStatistics
	StartedAt  time.Time
	RevealedAt time.Time
}

// NewRound creates an open round with no votes.
func NewRound(number int, topic string, now time.Time) *VotingRound {
	return &VotingRound{
		ID:        NewID(),
		Topic:     topic,
		Number:    number,
		Votes:     make(map[string]Vote),
		StartedAt: now,
	}
}

// CanAcceptVotes reports whether the round is still open.
func (r *VotingRound) CanAcceptVotes() bool {
	return !r.Revealed
}

// Cast records v, overwriting any earlier vote by the same participant.
func (r *VotingRound) Cast(v Vote) error {
	if r.Revealed {
		return ErrAlreadyRevealed
	}
	if !v.Card.Valid() {
		return ErrInvalidVoteValue
	}
	r.Votes[v.ParticipantID] = v
	return nil
}

// Discard drops a participant's vote, used when they leave mid-round.
// Revealed rounds keep their votes.
func (r *VotingRound) Discard(participantID string) {
	if r.Revealed {
		return
	}
	delete(r.Votes, participantID)
}

// HasVoted reports whether participantID has a vote in the round.
func (r *VotingRound) HasVoted(participantID string) bool {
	_, ok := r.Votes[participantID]
	return ok
}

// Reveal closes the round and computes its statistics over eligible voters.
func (r *VotingRound) Reveal(eligible int, now time.Time) (VoteStatistics, error) {
	if r.Revealed {
		return VoteStatistics{}, ErrAlreadyRevealed
	}
	cards := make([]Card, 0, len(r.Votes))
	for _, v := range r.Votes {
		cards = append(cards, v.Card)
	}
	stats := ComputeStatistics(cards, eligible)
	r.Revealed = true
	r.RevealedAt = now
	r.Statistics = &stats
	return stats, nil
}

// VoteStatistics summarises a revealed round.
type VoteStatistics struct {
	// Mean of the numeric votes; nil when there are none.
	Mean          *float64     `json:"mean"`
	Distribution  map[Card]int `json:"distribution"`
	Consensus     bool         `json:"consensus"`
	PauseCount    int          `json:"pause_count"`
	TotalVotes    int          `json:"total_votes"`
	TotalEligible int          `json:"total_eligible"`
}

// ComputeStatistics derives the statistics for a set of cards.
//
// Pause cards count towards the distribution and TotalVotes but not the mean.
// Consensus requires at least one numeric vote, every numeric vote to be the
// same card, and no pause vote at all.
func ComputeStatistics(cards []Card, eligible int) VoteStatistics {
	stats := VoteStatistics{
		Distribution:  make(map[Card]int),
		TotalVotes:    len(cards),
		TotalEligible: eligible,
	}

	var sum, numeric int
	distinct := make(map[Card]struct{})
	for _, c := range cards {
		stats.Distribution[c]++
		if c == CardPause {
			stats.PauseCount++
			continue
		}
		sum += int(c)
		numeric++
		distinct[c] = struct{}{}
	}

	if numeric > 0 {
		mean := float64(sum) / float64(numeric)
		stats.Mean = &mean
	}
	stats.Consensus = numeric > 0 && len(distinct) == 1 && stats.PauseCount == 0
	return stats
}
