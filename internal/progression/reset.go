package progression

import (
	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
)

// isGrandFinal reports whether the match is the first grand final game, the
// one whose winner edge leads to the reset game.
func (e *Engine) isGrandFinal(m *bracket.Match) bool {
	if e.phase(m) != bracket.PhaseFinals || m.NextMatchID == nil {
		return false
	}
	next, ok := e.matches[*m.NextMatchID]
	return ok && e.phase(next) == bracket.PhaseFinals
}

// decideReset populates the reset game only when the losers side team won the
// first grand final game. Otherwise the reset is skipped like a bye.
func (e *Engine) decideReset(gf *bracket.Match) []uuid.UUID {
	reset, ok := e.matches[*gf.NextMatchID]
	if !ok {
		return nil
	}

	winnersSide := e.winnersSideTeam(gf)
	if gf.WinnerID == nil || e.hasDisqualified(gf) || winnersSide == nil || *gf.WinnerID == *winnersSide {
		e.skipReset(reset)
	} else {
		reset.Team1ID = clone(gf.Team1ID)
		reset.Team2ID = clone(gf.Team2ID)
		e.touch(reset)
	}
	return []uuid.UUID{reset.ID}
}

// winnersSideTeam is the winners bracket champion that entered the grand final.
func (e *Engine) winnersSideTeam(gf *bracket.Match) *uuid.UUID {
	for _, id := range e.feeders[gf.ID] {
		f, ok := e.matches[id]
		if !ok || e.phase(f) != bracket.PhaseWinners {
			continue
		}
		if f.NextMatchID != nil && *f.NextMatchID == gf.ID {
			return f.WinnerID
		}
	}
	return nil
}

func (e *Engine) skipReset(reset *bracket.Match) {
	zero := 0
	reset.Team1ID = nil
	reset.Team2ID = nil
	reset.Team1Score = &zero
	reset.Team2Score = &zero
	reset.WinnerID = nil
	reset.IsBye = true
	reset.Status = bracket.MatchCompleted
	reset.TableNumber = nil
	reset.MatchNumber = 0
	reset.ScheduledRound = 0
	e.touch(reset)
}

// unskipReset puts a skipped reset back on the schedule after the last match.
func (e *Engine) unskipReset(reset *bracket.Match) {
	lastMatch, lastPlaying := 0, 0
	for _, m := range e.matches {
		lastMatch = max(lastMatch, m.MatchNumber)
		lastPlaying = max(lastPlaying, m.ScheduledRound)
	}
	reset.IsBye = false
	reset.Status = bracket.MatchPending
	reset.Team1ID = nil
	reset.Team2ID = nil
	reset.Team1Score = nil
	reset.Team2Score = nil
	reset.WinnerID = nil
	reset.MatchNumber = lastMatch + 1
	reset.ScheduledRound = lastPlaying + 1
	e.touch(reset)
}
