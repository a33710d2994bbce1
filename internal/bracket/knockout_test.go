package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// finishedGroups builds a scheduled group phase where the better seed wins
// every match and copies the group labels onto the teams.
func finishedGroups(t *testing.T, n, groups int) ([]Team, Graph) {
	t.Helper()
	teams := makeTeams(n)
	g, err := GenerateGroupPhase(testEventID, teams, groups)
	require.NoError(t, err)
	Schedule(&g, 2)

	seeds := make(map[uuid.UUID]int)
	for i := range teams {
		label := g.Groups[teams[i].ID]
		teams[i].GroupID = &label
		seeds[teams[i].ID] = *teams[i].Seed
	}

	for i := range g.Matches {
		m := &g.Matches[i]
		if m.IsBye {
			m.Status = MatchCompleted
			m.WinnerID = m.Team1ID
			continue
		}
		decide(m, seeds[*m.Team1ID] < seeds[*m.Team2ID])
	}
	return teams, g
}

func TestGenerateKnockoutFromGroups_Interleave(t *testing.T) {
	teams, groups := finishedGroups(t, 6, 2)

	g, err := GenerateKnockoutFromGroups(KnockoutInput{
		EventID:         testEventID,
		Teams:           teams,
		Rounds:          groups.Rounds,
		Matches:         groups.Matches,
		AdvancePerGroup: 2,
		Mode:            KnockoutSingle,
		Tables:          2,
	})
	require.NoError(t, err)

	// Group A is seeds 1, 4, 5 and group B is 2, 3, 6, so the order is A1 B1 B2 A2
	a1, b1, b2, a2 := teams[0].ID, teams[1].ID, teams[2].ID, teams[3].ID
	pos := byPosition(g)
	require.Len(t, g.Matches, 3)
	assert.Equal(t, a1, *pos["W-R1-M1"].Team1ID)
	assert.Equal(t, a2, *pos["W-R1-M1"].Team2ID)
	assert.Equal(t, b1, *pos["W-R1-M2"].Team1ID)
	assert.Equal(t, b2, *pos["W-R1-M2"].Team2ID)
	assert.Equal(t, interleave([][]uuid.UUID{{a1, a2}, {b1, b2}}, 2), []uuid.UUID{a1, b1, b2, a2})

	lastRound, lastMatch, lastPlaying := 0, 0, 0
	for _, r := range groups.Rounds {
		lastRound = max(lastRound, r.RoundNumber)
	}
	for _, m := range groups.Matches {
		lastMatch = max(lastMatch, m.MatchNumber)
		lastPlaying = max(lastPlaying, m.ScheduledRound)
	}

	for _, r := range g.Rounds {
		assert.Greater(t, r.RoundNumber, lastRound)
		assert.Equal(t, PhaseWinners, r.Phase)
	}
	assert.Equal(t, lastMatch+1, pos["W-R1-M1"].MatchNumber)
	assert.Equal(t, lastMatch+2, pos["W-R1-M2"].MatchNumber)
	assert.Equal(t, lastPlaying+1, pos["W-R1-M1"].ScheduledRound)
	assert.Equal(t, lastPlaying+2, pos["W-R2-M1"].ScheduledRound)
}

func TestGenerateKnockoutFromGroups_Double(t *testing.T) {
	teams, groups := finishedGroups(t, 8, 2)

	g, err := GenerateKnockoutFromGroups(KnockoutInput{
		EventID:         testEventID,
		Teams:           teams,
		Rounds:          groups.Rounds,
		Matches:         groups.Matches,
		AdvancePerGroup: 2,
		Mode:            KnockoutDouble,
		Tables:          1,
	})
	require.NoError(t, err)
	assert.Len(t, roundsByPhase(g, PhaseLosers), 2)
	assert.Len(t, roundsByPhase(g, PhaseFinals), 2)
}

func TestGenerateKnockoutFromGroups_SkipsDisqualified(t *testing.T) {
	teams, groups := finishedGroups(t, 6, 2)
	teams[0].Status = TeamDisqualified

	g, err := GenerateKnockoutFromGroups(KnockoutInput{
		EventID:         testEventID,
		Teams:           teams,
		Rounds:          groups.Rounds,
		Matches:         groups.Matches,
		AdvancePerGroup: 2,
		Mode:            KnockoutSingle,
		Tables:          2,
	})
	require.NoError(t, err)

	for _, m := range g.Matches {
		assert.False(t, m.HasTeam(teams[0].ID))
	}
	// Seed 5 moves up in group A
	found := false
	for _, m := range g.Matches {
		if m.HasTeam(teams[4].ID) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateKnockoutFromGroups_Errors(t *testing.T) {
	t.Run("incomplete group match", func(t *testing.T) {
		teams, groups := finishedGroups(t, 6, 2)
		for i := range groups.Matches {
			if !groups.Matches[i].IsBye {
				groups.Matches[i].Status = MatchInProgress
				break
			}
		}
		_, err := GenerateKnockoutFromGroups(KnockoutInput{
			EventID: testEventID, Teams: teams, Rounds: groups.Rounds, Matches: groups.Matches,
			AdvancePerGroup: 2, Mode: KnockoutSingle, Tables: 1,
		})
		assert.ErrorIs(t, err, ErrIllegalState)
	})

	t.Run("knockout already generated", func(t *testing.T) {
		teams, groups := finishedGroups(t, 6, 2)
		rounds := append(groups.Rounds, Round{ID: uuid.New(), RoundNumber: 10, Phase: PhaseWinners})
		_, err := GenerateKnockoutFromGroups(KnockoutInput{
			EventID: testEventID, Teams: teams, Rounds: rounds, Matches: groups.Matches,
			AdvancePerGroup: 2, Mode: KnockoutSingle, Tables: 1,
		})
		assert.ErrorIs(t, err, ErrIllegalState)
	})

	t.Run("not a group event", func(t *testing.T) {
		_, err := GenerateKnockoutFromGroups(KnockoutInput{
			EventID: testEventID, Teams: makeTeams(4), AdvancePerGroup: 2, Mode: KnockoutSingle, Tables: 1,
		})
		assert.ErrorIs(t, err, ErrIllegalState)
	})

	t.Run("too few advancing", func(t *testing.T) {
		teams, groups := finishedGroups(t, 4, 1)
		_, err := GenerateKnockoutFromGroups(KnockoutInput{
			EventID: testEventID, Teams: teams, Rounds: groups.Rounds, Matches: groups.Matches,
			AdvancePerGroup: 1, Mode: KnockoutSingle, Tables: 1,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
