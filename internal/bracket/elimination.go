package bracket

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

func GenerateSingleElimination(eventID uuid.UUID, teams []Team) (Graph, error) {
	if len(teams) < 2 {
		return Graph{}, fmt.Errorf("single elimination needs at least 2 teams, got %d: %w", len(teams), ErrInvalidInput)
	}
	b := newBuilder(eventID, 1)
	buildWinners(b, teamIDs(SortBySeed(teams)), singleRoundName)
	return b.graph(), nil
}

func GenerateDoubleElimination(eventID uuid.UUID, teams []Team) (Graph, error) {
	if len(teams) < 2 {
		return Graph{}, fmt.Errorf("double elimination needs at least 2 teams, got %d: %w", len(teams), ErrInvalidInput)
	}
	b := newBuilder(eventID, 1)
	buildDouble(b, teamIDs(SortBySeed(teams)))
	return b.graph(), nil
}

func singleRoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 1:
		return "Final"
	case 2:
		return "Semifinal"
	case 3:
		return "Quarterfinal"
	case 4:
		return "Round of 16"
	}
	return fmt.Sprintf("Round %d", round+1)
}

func winnersRoundName(round, _ int) string {
	return fmt.Sprintf("Winners Round %d", round+1)
}

// buildWinners lays out a single elimination tree for the already ordered
// seeds and returns its matches indexed by round, then by match.
func buildWinners(b *builder, seeds []uuid.UUID, name func(round, totalRounds int) string) [][]*Match {
	bracketSize := calcBracketSize(len(seeds))
	totalRounds := int(math.Log2(float64(bracketSize)))

	grid := make([][]*Match, totalRounds)
	for r := 0; r < totalRounds; r++ {
		roundID := b.addRound(PhaseWinners, name(r, totalRounds))
		matchesInRound := bracketSize >> (r + 1)
		for m := 0; m < matchesInRound; m++ {
			grid[r] = append(grid[r], b.addMatch(roundID, fmt.Sprintf("W-R%d-M%d", r+1, m+1)))
		}
	}

	for r := 0; r < totalRounds-1; r++ {
		for m, match := range grid[r] {
			match.NextMatchID = link(grid[r+1][m/2].ID)
		}
	}

	for i, pair := range generateRound1Pairs(bracketSize) {
		match := grid[0][i]
		match.Team1ID = link(seeds[pair[0]])
		if pair[1] < len(seeds) {
			match.Team2ID = link(seeds[pair[1]])
		} else {
			match.IsBye = true
		}
	}

	return grid
}

func buildDouble(b *builder, seeds []uuid.UUID) {
	winners := buildWinners(b, seeds, winnersRoundName)
	winnersRounds := len(winners)
	bracketSize := calcBracketSize(len(seeds))

	// Odd losers rounds take the drop downs from the winners side and keep the
	// match count, even rounds after the first one halve it.
	losersRounds := 2 * (winnersRounds - 1)
	losers := make([][]*Match, losersRounds)
	matchesInRound := bracketSize / 4
	for lr := 0; lr < losersRounds; lr++ {
		if lr >= 2 && lr%2 == 0 {
			matchesInRound /= 2
		}
		roundID := b.addRound(PhaseLosers, fmt.Sprintf("Losers Round %d", lr+1))
		for m := 0; m < matchesInRound; m++ {
			losers[lr] = append(losers[lr], b.addMatch(roundID, fmt.Sprintf("L-R%d-M%d", lr+1, m+1)))
		}
	}

	grandFinal := b.addMatch(b.addRound(PhaseFinals, "Grand Final"), "GF-M1")
	reset := b.addMatch(b.addRound(PhaseFinals, "Grand Final Reset"), "GF-M2")
	grandFinal.NextMatchID = link(reset.ID)
	winners[winnersRounds-1][0].NextMatchID = link(grandFinal.ID)

	if losersRounds == 0 {
		// Two teams: the loser of the only match gets a second life in the grand final
		winners[0][0].LoserNextMatchID = link(grandFinal.ID)
		return
	}

	for m, match := range winners[0] {
		match.LoserNextMatchID = link(losers[0][m/2].ID)
	}
	for r := 1; r < winnersRounds; r++ {
		for m, match := range winners[r] {
			match.LoserNextMatchID = link(losers[2*r-1][m].ID)
		}
	}
	for lr := 0; lr < losersRounds-1; lr++ {
		for m, match := range losers[lr] {
			target := m
			if lr%2 == 1 {
				target = m / 2
			}
			match.NextMatchID = link(losers[lr+1][target].ID)
		}
	}
	losers[losersRounds-1][0].NextMatchID = link(grandFinal.ID)

	markStructuralByes(winners, losers)
}

// markStructuralByes flags losers side matches that can never receive two
// teams because some first round matches were byes and produce no loser.
func markStructuralByes(winners, losers [][]*Match) {
	entrants := make(map[*Match]int)
	winnerOut := func(m *Match) int { return min(entrants[m], 1) }
	loserOut := func(m *Match) int {
		if entrants[m] == 2 {
			return 1
		}
		return 0
	}

	for r, round := range winners {
		for m, match := range round {
			if r == 0 {
				entrants[match] = 1
				if match.Team2ID != nil {
					entrants[match] = 2
				}
				continue
			}
			entrants[match] = winnerOut(winners[r-1][2*m]) + winnerOut(winners[r-1][2*m+1])
		}
	}

	for lr, round := range losers {
		for m, match := range round {
			switch {
			case lr == 0:
				entrants[match] = loserOut(winners[0][2*m]) + loserOut(winners[0][2*m+1])
			case lr%2 == 1:
				entrants[match] = winnerOut(losers[lr-1][m]) + loserOut(winners[(lr+1)/2][m])
			default:
				entrants[match] = winnerOut(losers[lr-1][2*m]) + winnerOut(losers[lr-1][2*m+1])
			}
			if entrants[match] <= 1 {
				match.IsBye = true
			}
		}
	}
}
