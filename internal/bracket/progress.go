package bracket

import (
	"sort"

	"github.com/google/uuid"
)

// RoundStatusOf folds the status of a round from its matches.
func RoundStatusOf(matches []*Match) RoundStatus {
	if len(matches) == 0 {
		return RoundPending
	}
	completed, started := 0, false
	for _, m := range matches {
		switch m.Status {
		case MatchCompleted:
			completed++
			started = true
		case MatchInProgress:
			started = true
		}
	}
	switch {
	case completed == len(matches):
		return RoundCompleted
	case started:
		return RoundActive
	}
	return RoundPending
}

// CurrentRound is the lowest numbered round that still has unfinished matches.
func CurrentRound(rounds []Round, matches []Match) *Round {
	open := make(map[uuid.UUID]bool)
	for _, m := range matches {
		if !m.Completed() {
			open[m.RoundID] = true
		}
	}

	sorted := make([]Round, len(rounds))
	copy(sorted, rounds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RoundNumber < sorted[j].RoundNumber
	})
	for i := range sorted {
		if open[sorted[i].ID] {
			return &sorted[i]
		}
	}
	return nil
}

// CurrentPlayingRound is the lowest playing round with an unfinished scheduled
// match, or 0 when everything scheduled is done.
func CurrentPlayingRound(matches []Match) int {
	current := 0
	for _, m := range matches {
		if m.IsBye || m.Completed() || m.ScheduledRound == 0 {
			continue
		}
		if current == 0 || m.ScheduledRound < current {
			current = m.ScheduledRound
		}
	}
	return current
}
