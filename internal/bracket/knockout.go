package bracket

import (
	"fmt"

	"github.com/google/uuid"
)

type KnockoutInput struct {
	EventID         uuid.UUID
	Teams           []Team
	Rounds          []Round
	Matches         []Match
	AdvancePerGroup int
	Mode            KnockoutMode
	Tables          int
}

// GenerateKnockoutFromGroups seeds the best teams of every finished group into
// an elimination bracket appended after the group rounds. The result is
// already scheduled past the numbers used by the group phase.
func GenerateKnockoutFromGroups(in KnockoutInput) (Graph, error) {
	if in.AdvancePerGroup < 1 {
		return Graph{}, fmt.Errorf("teams advancing per group must be positive, got %d: %w", in.AdvancePerGroup, ErrInvalidInput)
	}
	if !in.Mode.Valid() {
		return Graph{}, fmt.Errorf("unknown knockout mode %q: %w", in.Mode, ErrInvalidInput)
	}

	phases := make(map[uuid.UUID]Phase, len(in.Rounds))
	lastRound := 0
	for _, r := range in.Rounds {
		if r.Phase != PhaseGroup {
			return Graph{}, fmt.Errorf("knockout rounds already exist: %w", ErrIllegalState)
		}
		phases[r.ID] = r.Phase
		lastRound = max(lastRound, r.RoundNumber)
	}

	lastMatch, lastPlaying := 0, 0
	for _, m := range in.Matches {
		if phases[m.RoundID] == PhaseGroup && !m.IsBye && !m.Completed() {
			return Graph{}, fmt.Errorf("group match %s is not completed: %w", m.BracketPosition, ErrIllegalState)
		}
		lastMatch = max(lastMatch, m.MatchNumber)
		lastPlaying = max(lastPlaying, m.ScheduledRound)
	}

	disqualified := make(map[uuid.UUID]bool)
	for _, t := range in.Teams {
		if t.Disqualified() {
			disqualified[t.ID] = true
		}
	}

	groups := StandingsByGroup(in.Teams, in.Matches)
	if len(groups) == 0 {
		return Graph{}, fmt.Errorf("event has no group phase: %w", ErrIllegalState)
	}

	qualified := make([][]uuid.UUID, len(groups))
	for i, g := range groups {
		for _, s := range g.Standings {
			if len(qualified[i]) == in.AdvancePerGroup {
				break
			}
			if !disqualified[s.TeamID] {
				qualified[i] = append(qualified[i], s.TeamID)
			}
		}
	}

	seeds := interleave(qualified, in.AdvancePerGroup)
	if len(seeds) < 2 {
		return Graph{}, fmt.Errorf("knockout needs at least 2 advancing teams, got %d: %w", len(seeds), ErrInvalidInput)
	}

	b := newBuilder(in.EventID, lastRound+1)
	switch in.Mode {
	case KnockoutSingle:
		buildWinners(b, seeds, singleRoundName)
	case KnockoutDouble:
		buildDouble(b, seeds)
	}

	g := b.graph()
	ScheduleAfter(&g, in.Tables, lastMatch, lastPlaying)
	return g, nil
}

// interleave takes rank tiers across groups, flipping direction per tier so
// two groups advancing two teams give A1 B1 B2 A2.
func interleave(qualified [][]uuid.UUID, perGroup int) []uuid.UUID {
	var seeds []uuid.UUID
	for rank := 0; rank < perGroup; rank++ {
		for i := range qualified {
			g := i
			if rank%2 == 1 {
				g = len(qualified) - 1 - i
			}
			if rank < len(qualified[g]) {
				seeds = append(seeds, qualified[g][rank])
			}
		}
	}
	return seeds
}
