package bracket

import (
	"fmt"

	"github.com/AdamBeresnev/tablecup/internal/utils"
	"github.com/google/uuid"
)

var testEventID = uuid.MustParse("6f1d8a59-8c1e-4c55-9a4e-2d4f0f7e0a01")

// makeTeams returns n teams seeded 1..n in order.
func makeTeams(n int) []Team {
	teams := make([]Team, n)
	for i := range teams {
		teams[i] = Team{
			ID:      uuid.New(),
			EventID: testEventID,
			Name:    fmt.Sprintf("Team %d", i+1),
			Seed:    utils.Ptr(i + 1),
			Status:  TeamActive,
		}
	}
	return teams
}

func byPosition(g Graph) map[string]*Match {
	out := make(map[string]*Match, len(g.Matches))
	for i := range g.Matches {
		out[g.Matches[i].BracketPosition] = &g.Matches[i]
	}
	return out
}

func roundsByPhase(g Graph, phase Phase) []Round {
	var out []Round
	for _, r := range g.Rounds {
		if r.Phase == phase {
			out = append(out, r)
		}
	}
	return out
}

func countNonBye(matches []Match) int {
	n := 0
	for _, m := range matches {
		if !m.IsBye {
			n++
		}
	}
	return n
}

// decide completes a match with the given winner slot scoring 10 to 5.
func decide(m *Match, firstWins bool) {
	m.Status = MatchCompleted
	if firstWins {
		m.Team1Score, m.Team2Score = utils.Ptr(10), utils.Ptr(5)
		m.WinnerID = m.Team1ID
	} else {
		m.Team1Score, m.Team2Score = utils.Ptr(5), utils.Ptr(10)
		m.WinnerID = m.Team2ID
	}
}
