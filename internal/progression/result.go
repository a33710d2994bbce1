package progression

import (
	"fmt"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
)

func (e *Engine) RecordResult(matchID uuid.UUID, score1, score2 int) error {
	if score1 < 0 || score2 < 0 {
		return fmt.Errorf("scores must not be negative: %w", bracket.ErrInvalidInput)
	}
	if score1 == score2 {
		return fmt.Errorf("scores must not be equal: %w", bracket.ErrInvalidInput)
	}

	m, ok := e.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s: %w", matchID, bracket.ErrNotFound)
	}
	if m.Completed() {
		return fmt.Errorf("match %s is already completed: %w", m.BracketPosition, bracket.ErrIllegalState)
	}
	if !m.Full() || m.IsBye {
		return fmt.Errorf("match %s needs both teams before a result: %w", m.BracketPosition, bracket.ErrInvalidInput)
	}

	winner := *m.Team1ID
	if score2 > score1 {
		winner = *m.Team2ID
	}
	queue, err := e.finish(m, winner, score1, score2)
	if err != nil {
		return err
	}
	return e.settle(queue)
}

// ClearResult undoes a played result. Byes and forfeits that were resolved
// downstream because of it are reopened too, but a downstream match that was
// actually played blocks the undo. A match with a disqualified team stays as
// it is, even when it was played before the disqualification.
func (e *Engine) ClearResult(matchID uuid.UUID) error {
	m, ok := e.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s: %w", matchID, bracket.ErrNotFound)
	}
	if !m.Completed() {
		return fmt.Errorf("match %s has no result: %w", m.BracketPosition, bracket.ErrIllegalState)
	}
	if !m.Played() || e.hasDisqualified(m) {
		return fmt.Errorf("match %s was not decided by a played result: %w", m.BracketPosition, bracket.ErrIllegalState)
	}

	plan, err := e.unwindPlan(m)
	if err != nil {
		return err
	}

	// Deepest first so every match is reopened after everything it fed
	for i := len(plan) - 1; i >= 0; i-- {
		e.reopen(plan[i])
	}
	e.reopen(m)

	queue := make([]uuid.UUID, 0, len(plan))
	for _, p := range plan {
		queue = append(queue, p.ID)
	}
	return e.settle(queue)
}

func (e *Engine) unwindPlan(m *bracket.Match) ([]*bracket.Match, error) {
	var plan []*bracket.Match
	seen := make(map[uuid.UUID]bool)
	stack := []*bracket.Match{m}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, t := range e.placements(x) {
			if !t.Completed() || seen[t.ID] {
				continue
			}
			if !e.autoResolved(t) {
				return nil, fmt.Errorf("downstream match %s is already decided: %w", t.BracketPosition, bracket.ErrIllegalState)
			}
			seen[t.ID] = true
			plan = append(plan, t)
			stack = append(stack, t)
		}
	}
	return plan, nil
}

// placements lists the matches currently holding a team sent by m.
func (e *Engine) placements(m *bracket.Match) []*bracket.Match {
	if e.isGrandFinal(m) {
		if reset, ok := e.matches[*m.NextMatchID]; ok {
			return []*bracket.Match{reset}
		}
		return nil
	}

	var out []*bracket.Match
	if m.NextMatchID != nil && m.WinnerID != nil {
		if t, ok := e.matches[*m.NextMatchID]; ok && t.HasTeam(*m.WinnerID) {
			out = append(out, t)
		}
	}
	if loser := m.LoserID(); m.LoserNextMatchID != nil && loser != nil {
		if t, ok := e.matches[*m.LoserNextMatchID]; ok && t.HasTeam(*loser) {
			out = append(out, t)
		}
	}
	return out
}

// autoResolved reports whether a completed match was decided without play.
func (e *Engine) autoResolved(m *bracket.Match) bool {
	return m.IsBye || !m.Full() || e.hasDisqualified(m)
}

func (e *Engine) reopen(m *bracket.Match) {
	if e.isGrandFinal(m) {
		if reset, ok := e.matches[*m.NextMatchID]; ok {
			if reset.IsBye {
				e.unskipReset(reset)
			} else {
				reset.Team1ID = nil
				reset.Team2ID = nil
				e.touch(reset)
			}
		}
	} else {
		if m.NextMatchID != nil && m.WinnerID != nil {
			e.unplace(*m.NextMatchID, *m.WinnerID)
		}
		if loser := m.LoserID(); m.LoserNextMatchID != nil && loser != nil {
			e.unplace(*m.LoserNextMatchID, *loser)
		}
	}

	m.Status = bracket.MatchPending
	m.Team1Score = nil
	m.Team2Score = nil
	m.WinnerID = nil
	e.touch(m)
}

// ResolveByes completes every bye and forced walkover that is ready. Running
// it again without other changes does nothing.
func (e *Engine) ResolveByes() error {
	queue := make([]uuid.UUID, len(e.matchOrder))
	copy(queue, e.matchOrder)
	return e.settle(queue)
}
