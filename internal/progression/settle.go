package progression

import (
	"fmt"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
)

// settle drains a work queue of matches that may have become resolvable.
// Work only moves forward along match edges, which never form a cycle, so
// the loop ends.
func (e *Engine) settle(queue []uuid.UUID) error {
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		next, err := e.step(id)
		if err != nil {
			return err
		}
		queue = append(queue, next...)
	}
	e.refreshRounds()
	return nil
}

func (e *Engine) step(id uuid.UUID) ([]uuid.UUID, error) {
	m, ok := e.matches[id]
	if !ok {
		return nil, nil
	}
	active, disqualified := e.split(m)

	if m.Completed() {
		// Forfeited with nobody to forfeit to yet: the first team to show up takes it
		if m.WinnerID == nil && !m.IsBye && len(active) == 1 {
			return e.finish(m, active[0], 0, 0)
		}
		// A void match with nothing left to wait for lets its successors decide
		if m.WinnerID == nil && !m.IsBye && e.delivered(m) {
			return e.successors(m), nil
		}
		return nil, nil
	}

	switch {
	case len(active) == 2:
		return nil, nil
	case len(active) == 1 && len(disqualified) == 1:
		return e.finish(m, active[0], 0, 0)
	case len(active) == 1 && (m.IsBye || e.openFeeders(m) == 0):
		return e.finish(m, active[0], 0, 0)
	case len(active) == 0 && len(disqualified) > 0:
		return e.void(m)
	case len(active) == 0 && len(e.feeders[m.ID]) > 0 && e.openFeeders(m) == 0:
		return e.void(m)
	}
	return nil, nil
}

func (e *Engine) split(m *bracket.Match) (active, disqualified []uuid.UUID) {
	for _, id := range []*uuid.UUID{m.Team1ID, m.Team2ID} {
		if id == nil {
			continue
		}
		if e.isDisqualified(id) {
			disqualified = append(disqualified, *id)
		} else {
			active = append(active, *id)
		}
	}
	return active, disqualified
}

func (e *Engine) isDisqualified(id *uuid.UUID) bool {
	if id == nil {
		return false
	}
	t, ok := e.teams[*id]
	return ok && t.Disqualified()
}

func (e *Engine) hasDisqualified(m *bracket.Match) bool {
	return e.isDisqualified(m.Team1ID) || e.isDisqualified(m.Team2ID)
}

// openFeeders counts feeding matches that may still send a team.
func (e *Engine) openFeeders(m *bracket.Match) int {
	open := 0
	for _, id := range e.feeders[m.ID] {
		if f, ok := e.matches[id]; ok && !e.delivered(f) {
			open++
		}
	}
	return open
}

// delivered reports whether a match has sent everything it ever will.
func (e *Engine) delivered(m *bracket.Match) bool {
	if !m.Completed() {
		return false
	}
	if m.WinnerID != nil || m.IsBye {
		return true
	}
	// Still owes its forfeit to a team that has arrived
	if active, _ := e.split(m); len(active) > 0 {
		return false
	}
	return e.openFeeders(m) == 0
}

func (e *Engine) successors(m *bracket.Match) []uuid.UUID {
	if e.isGrandFinal(m) {
		return nil
	}
	var next []uuid.UUID
	for _, id := range []*uuid.UUID{m.NextMatchID, m.LoserNextMatchID} {
		if id != nil {
			next = append(next, *id)
		}
	}
	return next
}

func (e *Engine) finish(m *bracket.Match, winner uuid.UUID, score1, score2 int) ([]uuid.UUID, error) {
	m.Status = bracket.MatchCompleted
	m.Team1Score = &score1
	m.Team2Score = &score2
	m.WinnerID = &winner
	e.touch(m)
	return e.advance(m)
}

// void completes a match that produces no winner.
func (e *Engine) void(m *bracket.Match) ([]uuid.UUID, error) {
	zero := 0
	m.Status = bracket.MatchCompleted
	m.Team1Score = &zero
	m.Team2Score = &zero
	m.WinnerID = nil
	e.touch(m)
	return e.advance(m)
}

func (e *Engine) advance(m *bracket.Match) ([]uuid.UUID, error) {
	if e.isGrandFinal(m) {
		return e.decideReset(m), nil
	}

	var queue []uuid.UUID
	if m.NextMatchID != nil {
		if m.WinnerID != nil {
			if err := e.place(*m.NextMatchID, *m.WinnerID); err != nil {
				return nil, err
			}
		}
		queue = append(queue, *m.NextMatchID)
	}
	if m.LoserNextMatchID != nil {
		// Disqualified teams are not dropped into the losers side
		if loser := m.LoserID(); loser != nil && !e.isDisqualified(loser) {
			if err := e.place(*m.LoserNextMatchID, *loser); err != nil {
				return nil, err
			}
		}
		queue = append(queue, *m.LoserNextMatchID)
	}
	return queue, nil
}

// place puts a team into the first empty slot of the target. Edges leading
// outside the loaded graph are ignored.
func (e *Engine) place(targetID, team uuid.UUID) error {
	t, ok := e.matches[targetID]
	if !ok || t.HasTeam(team) {
		return nil
	}
	switch {
	case t.Team1ID == nil:
		t.Team1ID = &team
	case t.Team2ID == nil:
		t.Team2ID = &team
	default:
		return fmt.Errorf("match %s has no free slot for team %s: %w", t.BracketPosition, team, bracket.ErrIllegalState)
	}
	e.touch(t)
	return nil
}

// unplace removes a team from the target. A target already being played
// goes back to waiting and frees its table.
func (e *Engine) unplace(targetID, team uuid.UUID) {
	t, ok := e.matches[targetID]
	if !ok || !t.HasTeam(team) {
		return
	}
	if t.Team1ID != nil && *t.Team1ID == team {
		t.Team1ID = nil
	}
	if t.Team2ID != nil && *t.Team2ID == team {
		t.Team2ID = nil
	}
	if t.Status == bracket.MatchInProgress {
		t.Status = bracket.MatchPending
		t.TableNumber = nil
	}
	e.touch(t)
}
