package poker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeStatistics checks mean, distribution and consensus rules for a
// range of vote sets.
func TestComputeStatistics(t *testing.T) {
	tests := []struct {
		name          string
		cards         []Card
		eligible      int
		wantMean      *float64
		wantConsensus bool
		wantDist      map[Card]int
		wantPauses    int
	}{
		{
			name:          "mixed numeric and pause",
			cards:         []Card{Card5, Card5, Card8, CardPause},
			eligible:      4,
			wantMean:      ptr(6.0),
			wantConsensus: false,
			wantDist:      map[Card]int{Card5: 2, Card8: 1, CardPause: 1},
			wantPauses:    1,
		},
		{
			name:          "unanimous",
			cards:         []Card{Card3, Card3, Card3},
			eligible:      5,
			wantMean:      ptr(3.0),
			wantConsensus: true,
			wantDist:      map[Card]int{Card3: 3},
		},
		{
			name:          "unanimous numeric with pause is not consensus",
			cards:         []Card{Card8, Card8, CardPause},
			eligible:      3,
			wantMean:      ptr(8.0),
			wantConsensus: false,
			wantDist:      map[Card]int{Card8: 2, CardPause: 1},
			wantPauses:    1,
		},
		{
			name:          "only pauses",
			cards:         []Card{CardPause, CardPause},
			eligible:      2,
			wantMean:      nil,
			wantConsensus: false,
			wantDist:      map[Card]int{CardPause: 2},
			wantPauses:    2,
		},
		{
			name:     "no votes",
			cards:    nil,
			eligible: 3,
			wantMean: nil,
			wantDist: map[Card]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStatistics(tt.cards, tt.eligible)

			if tt.wantMean == nil {
				assert.Nil(t, stats.Mean)
			} else {
				require.NotNil(t, stats.Mean)
				assert.InDelta(t, *tt.wantMean, *stats.Mean, 1e-9)
			}
			assert.Equal(t, tt.wantConsensus, stats.Consensus)
			assert.Equal(t, tt.wantDist, stats.Distribution)
			assert.Equal(t, tt.wantPauses, stats.PauseCount)
			assert.Equal(t, len(tt.cards), stats.TotalVotes)
			assert.Equal(t, tt.eligible, stats.TotalEligible)
		})
	}
}

// TestComputeStatisticsMeanExcludesPause checks that {5,5,8,pause} averages
// every numeric vote, duplicates included, and ignores the pause.
func TestComputeStatisticsMeanExcludesPause(t *testing.T) {
	stats := ComputeStatistics([]Card{Card5, Card5, Card8, CardPause}, 4)

	require.NotNil(t, stats.Mean)
	assert.InDelta(t, 6.0, *stats.Mean, 1e-9)
	assert.Equal(t, 4, stats.TotalVotes)
}

// TestVotingRoundCast verifies that votes overwrite and are refused after reveal.
func TestVotingRoundCast(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	r := NewRound(1, "login page", now)

	require.NoError(t, r.Cast(Vote{ParticipantID: "a", Card: Card3, SubmittedAt: now}))
	require.NoError(t, r.Cast(Vote{ParticipantID: "a", Card: Card8, SubmittedAt: now}))
	assert.Len(t, r.Votes, 1)
	assert.Equal(t, Card8, r.Votes["a"].Card)

	assert.ErrorIs(t, r.Cast(Vote{ParticipantID: "b", Card: Card(4)}), ErrInvalidVoteValue)

	stats, err := r.Reveal(2, now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVotes)
	assert.Equal(t, 2, stats.TotalEligible)

	assert.ErrorIs(t, r.Cast(Vote{ParticipantID: "b", Card: Card5}), ErrAlreadyRevealed)
	assert.Len(t, r.Votes, 1, "vote map must be unchanged after reveal")

	_, err = r.Reveal(2, now)
	assert.ErrorIs(t, err, ErrAlreadyRevealed)
}

// TestStatisticsJSON checks that distributions serialise with card names as keys.
func TestStatisticsJSON(t *testing.T) {
	stats := ComputeStatistics([]Card{Card5, CardPause}, 2)

	data, err := json.Marshal(stats)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	dist, ok := decoded["distribution"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), dist["5"])
	assert.Equal(t, float64(1), dist["pause"])
	assert.Equal(t, float64(5), decoded["mean"])
}

func ptr(f float64) *float64 { return &f }
