package bracket

import "sort"

// Schedule numbers every non bye match and batches matches into playing
// rounds of at most tables matches.
func Schedule(g *Graph, tables int) {
	ScheduleAfter(g, tables, 0, 0)
}

// ScheduleAfter continues a numbering that already used match numbers up to
// lastMatchNumber and playing rounds up to lastPlayingRound.
func ScheduleAfter(g *Graph, tables, lastMatchNumber, lastPlayingRound int) {
	tables = max(tables, MinTables)

	rounds := make([]Round, len(g.Rounds))
	copy(rounds, g.Rounds)
	sort.SliceStable(rounds, func(i, j int) bool {
		return rounds[i].RoundNumber < rounds[j].RoundNumber
	})

	matchNumber := lastMatchNumber
	playingRound := lastPlayingRound + 1
	used := 0
	for _, r := range rounds {
		for _, m := range g.RoundMatches(r.ID) {
			if m.IsBye {
				m.MatchNumber = 0
				m.ScheduledRound = 0
				continue
			}

			matchNumber++
			m.MatchNumber = matchNumber
			m.ScheduledRound = playingRound
			used++
			if used >= tables {
				used = 0
				playingRound++
			}
		}

		// A new bracket round never shares a playing round with the previous one
		if used > 0 {
			used = 0
			playingRound++
		}
	}
}
