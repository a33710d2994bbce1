package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

// GroupLabel returns the letter used for the zero based group index.
func GroupLabel(index int) string {
	return string(rune('A' + index))
}

func GenerateGroupPhase(eventID uuid.UUID, teams []Team, groupCount int) (Graph, error) {
	if groupCount < 1 {
		return Graph{}, fmt.Errorf("group count must be positive, got %d: %w", groupCount, ErrInvalidInput)
	}
	if len(teams) < 2*groupCount {
		return Graph{}, fmt.Errorf("%d groups need at least %d teams, got %d: %w", groupCount, 2*groupCount, len(teams), ErrInvalidInput)
	}

	groups := serpentine(SortBySeed(teams), groupCount)

	b := newBuilder(eventID, 1)
	membership := make(map[uuid.UUID]string, len(teams))
	schedules := make([][][][2]*uuid.UUID, groupCount)
	maxRounds := 0
	for i, group := range groups {
		for _, id := range group {
			membership[id] = GroupLabel(i)
		}
		schedules[i] = roundRobin(group)
		maxRounds = max(maxRounds, len(schedules[i]))
	}

	// Every group shares the same rounds so they advance in step
	for r := 0; r < maxRounds; r++ {
		roundID := b.addRound(PhaseGroup, fmt.Sprintf("Group Round %d", r+1))
		for i, schedule := range schedules {
			if r >= len(schedule) {
				continue
			}
			label := GroupLabel(i)
			for m, pair := range schedule[r] {
				match := b.addMatch(roundID, fmt.Sprintf("G%s-R%d-M%d", label, r+1, m+1))
				match.GroupID = &label
				switch {
				case pair[0] == nil:
					match.Team1ID = link(*pair[1])
					match.IsBye = true
				case pair[1] == nil:
					match.Team1ID = link(*pair[0])
					match.IsBye = true
				default:
					match.Team1ID = link(*pair[0])
					match.Team2ID = link(*pair[1])
				}
			}
		}
	}

	g := b.graph()
	g.Groups = membership
	return g, nil
}

// serpentine deals teams into groups forward then backward: A B B A A B ...
func serpentine(teams []Team, groupCount int) [][]uuid.UUID {
	groups := make([][]uuid.UUID, groupCount)
	g, dir := 0, 1
	for _, t := range teams {
		groups[g] = append(groups[g], t.ID)
		g += dir
		if g == groupCount {
			g, dir = groupCount-1, -1
		} else if g < 0 {
			g, dir = 0, 1
		}
	}
	return groups
}

// roundRobin uses the circle method: the first slot stays put while the others
// rotate. A nil slot is the bye opponent for groups of odd size.
func roundRobin(ids []uuid.UUID) [][][2]*uuid.UUID {
	slots := make([]*uuid.UUID, 0, len(ids)+1)
	for _, id := range ids {
		slots = append(slots, link(id))
	}
	if len(slots)%2 == 1 {
		slots = append(slots, nil)
	}

	n := len(slots)
	rounds := make([][][2]*uuid.UUID, 0, n-1)
	for r := 0; r < n-1; r++ {
		pairs := make([][2]*uuid.UUID, 0, n/2)
		for i := 0; i < n/2; i++ {
			pairs = append(pairs, [2]*uuid.UUID{slots[i], slots[n-1-i]})
		}
		rounds = append(rounds, pairs)

		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return rounds
}
