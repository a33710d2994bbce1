package bracket

import "github.com/google/uuid"

type PodiumEntry struct {
	Place  int       `json:"place"`
	TeamID uuid.UUID `json:"teamId"`
}

// ComputePodium reads placements off the knockout part of the graph. Third
// place may hold several teams in single elimination.
func ComputePodium(matches []Match, rounds []Round) []PodiumEntry {
	phases := make(map[uuid.UUID]Phase, len(rounds))
	double := false
	for _, r := range rounds {
		phases[r.ID] = r.Phase
		if r.Phase == PhaseFinals {
			double = true
		}
	}

	var knockout []*Match
	byID := make(map[uuid.UUID]*Match)
	for i := range matches {
		m := &matches[i]
		if phases[m.RoundID] == PhaseGroup {
			continue
		}
		knockout = append(knockout, m)
		byID[m.ID] = m
	}

	final := findFinal(knockout, byID)
	if final == nil {
		return nil
	}

	placed := map[uuid.UUID]bool{*final.WinnerID: true}
	podium := []PodiumEntry{{Place: 1, TeamID: *final.WinnerID}}
	if loser := final.LoserID(); loser != nil {
		podium = append(podium, PodiumEntry{Place: 2, TeamID: *loser})
		placed[*loser] = true
	}

	for _, m := range knockout {
		if !m.Played() || m.NextMatchID == nil {
			continue
		}
		next, ok := byID[*m.NextMatchID]
		if !ok {
			continue
		}

		var feedsFinal bool
		if double {
			feedsFinal = phases[m.RoundID] == PhaseLosers && phases[next.RoundID] == PhaseFinals
		} else {
			feedsFinal = next.ID == final.ID
		}
		if !feedsFinal {
			continue
		}
		if loser := m.LoserID(); loser != nil && !placed[*loser] {
			podium = append(podium, PodiumEntry{Place: 3, TeamID: *loser})
			placed[*loser] = true
		}
	}
	return podium
}

// findFinal returns the decided match that leads nowhere, treating a skipped
// grand final reset as nowhere.
func findFinal(knockout []*Match, byID map[uuid.UUID]*Match) *Match {
	for _, m := range knockout {
		if !m.Completed() || m.IsBye || m.WinnerID == nil {
			continue
		}
		if m.NextMatchID == nil {
			return m
		}
		next, ok := byID[*m.NextMatchID]
		if !ok || (next.IsBye && next.Completed()) {
			return m
		}
	}
	return nil
}
