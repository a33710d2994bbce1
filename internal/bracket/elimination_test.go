package bracket

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSingleElimination_Structure(t *testing.T) {
	for n := 2; n <= 17; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			teams := makeTeams(n)
			g, err := GenerateSingleElimination(testEventID, teams)
			require.NoError(t, err)

			size := calcBracketSize(n)
			assert.Len(t, g.Matches, size-1)
			assert.Equal(t, n-1, countNonBye(g.Matches))

			first := g.RoundMatches(g.Rounds[0].ID)
			require.Len(t, first, size/2)

			seen := make(map[uuid.UUID]int)
			for _, m := range first {
				require.NotNil(t, m.Team1ID)
				seen[*m.Team1ID]++
				if m.Team2ID != nil {
					seen[*m.Team2ID]++
					assert.False(t, m.IsBye)
				} else {
					assert.True(t, m.IsBye)
				}
			}
			assert.Len(t, seen, n)
			for _, count := range seen {
				assert.Equal(t, 1, count)
			}

			finals := 0
			for _, m := range g.Matches {
				assert.Nil(t, m.LoserNextMatchID)
				if m.NextMatchID == nil {
					finals++
				}
			}
			assert.Equal(t, 1, finals)
		})
	}
}

func TestGenerateSingleElimination_FiveTeams(t *testing.T) {
	teams := makeTeams(5)
	g, err := GenerateSingleElimination(testEventID, teams)
	require.NoError(t, err)

	require.Len(t, g.Rounds, 3)
	assert.Equal(t, "Quarterfinal", g.Rounds[0].Name)
	assert.Equal(t, "Semifinal", g.Rounds[1].Name)
	assert.Equal(t, "Final", g.Rounds[2].Name)

	pos := byPosition(g)
	// 1v8, 4v5, 2v7, 3v6 with 6, 7 and 8 missing
	assert.True(t, pos["W-R1-M1"].IsBye)
	assert.Equal(t, teams[0].ID, *pos["W-R1-M1"].Team1ID)
	assert.False(t, pos["W-R1-M2"].IsBye)
	assert.Equal(t, teams[3].ID, *pos["W-R1-M2"].Team1ID)
	assert.Equal(t, teams[4].ID, *pos["W-R1-M2"].Team2ID)
	assert.True(t, pos["W-R1-M3"].IsBye)
	assert.Equal(t, teams[1].ID, *pos["W-R1-M3"].Team1ID)
	assert.True(t, pos["W-R1-M4"].IsBye)
	assert.Equal(t, teams[2].ID, *pos["W-R1-M4"].Team1ID)

	assert.Equal(t, pos["W-R2-M1"].ID, *pos["W-R1-M1"].NextMatchID)
	assert.Equal(t, pos["W-R2-M1"].ID, *pos["W-R1-M2"].NextMatchID)
	assert.Equal(t, pos["W-R2-M2"].ID, *pos["W-R1-M3"].NextMatchID)
	assert.Equal(t, pos["W-R3-M1"].ID, *pos["W-R2-M2"].NextMatchID)
	assert.Nil(t, pos["W-R3-M1"].NextMatchID)
}

func TestGenerateElimination_TooFewTeams(t *testing.T) {
	_, err := GenerateSingleElimination(testEventID, makeTeams(1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = GenerateDoubleElimination(testEventID, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateDoubleElimination_Structure(t *testing.T) {
	testCases := []struct {
		teams         int
		winnersRounds int
		losersCounts  []int
	}{
		{teams: 3, winnersRounds: 2, losersCounts: []int{1, 1}},
		{teams: 4, winnersRounds: 2, losersCounts: []int{1, 1}},
		{teams: 8, winnersRounds: 3, losersCounts: []int{2, 2, 1, 1}},
		{teams: 16, winnersRounds: 4, losersCounts: []int{4, 4, 2, 2, 1, 1}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d teams", tc.teams), func(t *testing.T) {
			g, err := GenerateDoubleElimination(testEventID, makeTeams(tc.teams))
			require.NoError(t, err)

			winners := roundsByPhase(g, PhaseWinners)
			losers := roundsByPhase(g, PhaseLosers)
			finals := roundsByPhase(g, PhaseFinals)
			require.Len(t, winners, tc.winnersRounds)
			require.Len(t, losers, 2*(tc.winnersRounds-1))
			require.Len(t, finals, 2)

			for i, r := range losers {
				assert.Len(t, g.RoundMatches(r.ID), tc.losersCounts[i], "losers round %d", i+1)
			}

			for _, r := range winners {
				for _, m := range g.RoundMatches(r.ID) {
					assert.NotNil(t, m.LoserNextMatchID, m.BracketPosition)
					assert.NotNil(t, m.NextMatchID, m.BracketPosition)
				}
			}

			pos := byPosition(g)
			grandFinal, reset := pos["GF-M1"], pos["GF-M2"]
			require.NotNil(t, grandFinal)
			require.NotNil(t, reset)
			assert.Equal(t, reset.ID, *grandFinal.NextMatchID)
			assert.Nil(t, grandFinal.LoserNextMatchID)
			assert.Nil(t, reset.NextMatchID)
			assert.Nil(t, reset.LoserNextMatchID)

			winnersFinal := g.RoundMatches(winners[len(winners)-1].ID)[0]
			losersFinal := g.RoundMatches(losers[len(losers)-1].ID)[0]
			assert.Equal(t, grandFinal.ID, *winnersFinal.NextMatchID)
			assert.Equal(t, grandFinal.ID, *losersFinal.NextMatchID)
		})
	}
}

func TestGenerateDoubleElimination_EightTeamWiring(t *testing.T) {
	g, err := GenerateDoubleElimination(testEventID, makeTeams(8))
	require.NoError(t, err)
	pos := byPosition(g)

	// Winners round 1 losers pair up two to one
	assert.Equal(t, pos["L-R1-M1"].ID, *pos["W-R1-M1"].LoserNextMatchID)
	assert.Equal(t, pos["L-R1-M1"].ID, *pos["W-R1-M2"].LoserNextMatchID)
	assert.Equal(t, pos["L-R1-M2"].ID, *pos["W-R1-M3"].LoserNextMatchID)
	assert.Equal(t, pos["L-R1-M2"].ID, *pos["W-R1-M4"].LoserNextMatchID)

	// Later winners rounds drop one to one into the odd losers rounds
	assert.Equal(t, pos["L-R2-M1"].ID, *pos["W-R2-M1"].LoserNextMatchID)
	assert.Equal(t, pos["L-R2-M2"].ID, *pos["W-R2-M2"].LoserNextMatchID)
	assert.Equal(t, pos["L-R4-M1"].ID, *pos["W-R3-M1"].LoserNextMatchID)

	assert.Equal(t, pos["L-R2-M1"].ID, *pos["L-R1-M1"].NextMatchID)
	assert.Equal(t, pos["L-R2-M2"].ID, *pos["L-R1-M2"].NextMatchID)
	assert.Equal(t, pos["L-R3-M1"].ID, *pos["L-R2-M1"].NextMatchID)
	assert.Equal(t, pos["L-R3-M1"].ID, *pos["L-R2-M2"].NextMatchID)
	assert.Equal(t, pos["L-R4-M1"].ID, *pos["L-R3-M1"].NextMatchID)
	assert.Equal(t, pos["GF-M1"].ID, *pos["L-R4-M1"].NextMatchID)

	for _, m := range g.Matches {
		assert.False(t, m.IsBye, m.BracketPosition)
	}
}

func TestGenerateDoubleElimination_TwoTeams(t *testing.T) {
	g, err := GenerateDoubleElimination(testEventID, makeTeams(2))
	require.NoError(t, err)

	assert.Empty(t, roundsByPhase(g, PhaseLosers))
	pos := byPosition(g)
	only := pos["W-R1-M1"]
	require.NotNil(t, only)
	assert.Equal(t, pos["GF-M1"].ID, *only.NextMatchID)
	assert.Equal(t, pos["GF-M1"].ID, *only.LoserNextMatchID)
}

func TestGenerateDoubleElimination_StructuralByes(t *testing.T) {
	g, err := GenerateDoubleElimination(testEventID, makeTeams(5))
	require.NoError(t, err)
	pos := byPosition(g)

	// Only 4v5 produces a first round loser
	assert.True(t, pos["L-R1-M1"].IsBye)
	assert.True(t, pos["L-R1-M2"].IsBye)
	assert.False(t, pos["L-R2-M1"].IsBye)
	assert.True(t, pos["L-R2-M2"].IsBye, "L-R2-M2 only ever receives the W-R2-M2 loser")
	assert.False(t, pos["L-R3-M1"].IsBye)
	assert.False(t, pos["L-R4-M1"].IsBye)
	assert.False(t, pos["GF-M1"].IsBye)
	assert.False(t, pos["GF-M2"].IsBye)
}
