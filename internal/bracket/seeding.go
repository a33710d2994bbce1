package bracket

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// generateRound1Pairs returns zero based seed indexes for every first round match.
// Seeds are mirrored around the middle of every half so the top seeds meet last.
// The lower seed of each pair is always first.
func generateRound1Pairs(bracketSize int) [][2]int {
	if bracketSize == 0 {
		return [][2]int{}
	}

	rounds := []int{0}
	for len(rounds) < bracketSize {
		var nextRound []int
		currentCount := len(rounds) * 2

		for _, seed := range rounds {
			nextRound = append(nextRound, seed)
			nextRound = append(nextRound, (currentCount-1)-seed)
		}
		rounds = nextRound
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(rounds); i += 2 {
		matchup := [2]int{rounds[i], rounds[i+1]}
		pairs = append(pairs, matchup)
	}

	return pairs
}

// SortBySeed orders teams strongest first. Teams without a positive seed keep
// their relative order after every seeded team.
func SortBySeed(teams []Team) []Team {
	sorted := make([]Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Seed, sorted[j].Seed
		aSeeded := a != nil && *a > 0
		bSeeded := b != nil && *b > 0
		if aSeeded != bSeeded {
			return aSeeded
		}
		if !aSeeded {
			return false
		}
		return *a < *b
	})
	return sorted
}

func teamIDs(teams []Team) []uuid.UUID {
	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}

// builder accumulates rounds and matches for one generation call.
type builder struct {
	eventID   uuid.UUID
	nextRound int
	rounds    []Round
	matches   []*Match
}

func newBuilder(eventID uuid.UUID, firstRound int) *builder {
	return &builder{eventID: eventID, nextRound: firstRound}
}

func (b *builder) addRound(phase Phase, name string) uuid.UUID {
	r := Round{
		ID:          uuid.New(),
		EventID:     b.eventID,
		RoundNumber: b.nextRound,
		Phase:       phase,
		Name:        name,
		Status:      RoundPending,
	}
	b.nextRound++
	b.rounds = append(b.rounds, r)
	return r.ID
}

func (b *builder) addMatch(roundID uuid.UUID, position string) *Match {
	m := &Match{
		ID:              uuid.New(),
		EventID:         b.eventID,
		RoundID:         roundID,
		Status:          MatchPending,
		BracketPosition: position,
	}
	b.matches = append(b.matches, m)
	return m
}

func (b *builder) graph() Graph {
	g := Graph{Rounds: b.rounds, Matches: make([]Match, len(b.matches))}
	for i, m := range b.matches {
		g.Matches[i] = *m
	}
	return g
}

func link(id uuid.UUID) *uuid.UUID {
	return &id
}
