package poker

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, names ...string) *Session {
	t.Helper()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession("sprint 42", NewParticipant(names[0], "fox", now), 10*time.Minute, now)
	for i, name := range names[1:] {
		s.AddParticipant(NewParticipant(name, "", now.Add(time.Duration(i+1)*time.Second)))
	}
	return s
}

// TestParseCard covers the textual forms accepted for each card.
func TestParseCard(t *testing.T) {
	tests := []struct {
		in      string
		want    Card
		wantErr bool
	}{
		{in: "1", want: Card1},
		{in: " 13 ", want: Card13},
		{in: "21", want: Card21},
		{in: "pause", want: CardPause},
		{in: "PAUSE", want: CardPause},
		{in: "☕", want: CardPause},
		{in: "4", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "", wantErr: true},
		{in: "coffee", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCard(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVoteValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestDeckRoundTripsThroughText ensures every card survives MarshalText/UnmarshalText.
func TestDeckRoundTripsThroughText(t *testing.T) {
	for _, c := range Deck {
		b, err := c.MarshalText()
		require.NoError(t, err)

		var back Card
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, c, back)
	}
}

// TestCardJSONAcceptsNumbersAndStrings checks request bodies may carry a vote
// either way, while encoding always uses the string form.
func TestCardJSONAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		Value Card `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"value":8}`), &body))
	assert.Equal(t, Card8, body.Value)
	require.NoError(t, json.Unmarshal([]byte(`{"value":"pause"}`), &body))
	assert.Equal(t, CardPause, body.Value)

	err := json.Unmarshal([]byte(`{"value":4}`), &body)
	assert.ErrorIs(t, err, ErrInvalidVoteValue)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"pause"}`, string(out))
}

// TestValidateName trims names and enforces the length bound.
func TestValidateName(t *testing.T) {
	name, err := ValidateName("  Ada  ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)

	_, err = ValidateName("   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = ValidateName(strings.Repeat("x", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrInvalidName)
}

// TestSessionSuccessor verifies successor selection prefers connected members
// in join order.
func TestSessionSuccessor(t *testing.T) {
	s := newTestSession(t, "alice", "bob", "carol")
	alice, bob, carol := s.Participants[0], s.Participants[1], s.Participants[2]

	assert.Equal(t, bob, s.Successor(alice.ID))

	bob.Connection = Disconnected
	assert.Equal(t, carol, s.Successor(alice.ID))
	assert.Equal(t, carol, s.EarliestConnected(alice.ID))

	carol.Connection = Disconnected
	assert.Nil(t, s.EarliestConnected(alice.ID))
	assert.Equal(t, bob, s.Successor(alice.ID), "falls back to earliest joined")
}

// TestRemoveParticipantDiscardsOpenVote checks that leaving drops an unrevealed vote.
func TestRemoveParticipantDiscardsOpenVote(t *testing.T) {
	s := newTestSession(t, "alice", "bob")
	bob := s.Participants[1]
	s.Round = NewRound(1, "", time.Now())
	require.NoError(t, s.Round.Cast(Vote{ParticipantID: bob.ID, Card: Card5}))

	removed := s.RemoveParticipant(bob.ID)
	assert.Equal(t, bob, removed)
	assert.Len(t, s.Participants, 1)
	assert.Empty(t, s.Round.Votes)
	assert.Nil(t, s.RemoveParticipant("missing"))
}

// TestCheckInvariants flags a facilitator that is not a member.
func TestCheckInvariants(t *testing.T) {
	s := newTestSession(t, "alice", "bob")
	require.NoError(t, s.CheckInvariants())

	s.FacilitatorID = "ghost"
	assert.Error(t, s.CheckInvariants())

	s.Participants = nil
	assert.Error(t, s.CheckInvariants())

	s.FacilitatorID = ""
	assert.NoError(t, s.CheckInvariants())

	s = newTestSession(t, "alice")
	s.Status = StatusPaused
	assert.Error(t, s.CheckInvariants(), "paused without grace period")
}

// TestViewHidesUnrevealedVotes ensures viewers only see their own card before reveal.
func TestViewHidesUnrevealedVotes(t *testing.T) {
	s := newTestSession(t, "alice", "bob")
	alice, bob := s.Participants[0], s.Participants[1]
	s.Round = NewRound(1, "checkout", time.Now())
	s.Status = StatusVoting
	require.NoError(t, s.Round.Cast(Vote{ParticipantID: alice.ID, Card: Card3}))
	require.NoError(t, s.Round.Cast(Vote{ParticipantID: bob.ID, Card: Card8}))

	v := s.View(alice.ID)
	require.NotNil(t, v.Round)
	assert.Equal(t, 2, v.Round.VotedCount)
	assert.Equal(t, map[string]Card{alice.ID: Card3}, v.Round.Votes)
	assert.True(t, v.Participants[1].HasVoted)
	assert.True(t, v.Participants[0].Facilitator)

	anon := s.View("")
	assert.Empty(t, anon.Round.Votes)
	assert.Equal(t, v.Checksum(), anon.Checksum(), "checksum is viewer independent")

	_, err := s.Round.Reveal(s.Eligible(), time.Now())
	require.NoError(t, err)
	s.Status = StatusRevealed
	revealed := s.View("")
	assert.Len(t, revealed.Round.Votes, 2)
	require.NotNil(t, revealed.Round.Statistics)
	assert.NotEqual(t, v.Checksum(), revealed.Checksum())
}

// TestCode maps wrapped sentinels to wire codes.
func TestCode(t *testing.T) {
	assert.Equal(t, "", Code(nil))
	assert.Equal(t, CodeSessionFull, Code(ErrSessionFull))
	_, err := ParseCard("7")
	assert.Equal(t, CodeInvalidVoteValue, Code(err))
	assert.Equal(t, CodeInternal, Code(assert.AnError))
}
