package progression

import (
	"fmt"
	"sort"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
)

// StartMatch puts a ready match on a table.
func (e *Engine) StartMatch(matchID uuid.UUID, table, tables int) error {
	if table < 1 || table > tables {
		return fmt.Errorf("table %d is outside 1..%d: %w", table, tables, bracket.ErrInvalidInput)
	}
	m, ok := e.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s: %w", matchID, bracket.ErrNotFound)
	}
	if m.Completed() || m.Status == bracket.MatchInProgress {
		return fmt.Errorf("match %s is %s: %w", m.BracketPosition, m.Status, bracket.ErrIllegalState)
	}
	if !m.Full() || m.IsBye {
		return fmt.Errorf("match %s needs both teams before it starts: %w", m.BracketPosition, bracket.ErrInvalidInput)
	}
	if e.busyTables()[table] {
		return fmt.Errorf("table %d is in use: %w", table, bracket.ErrIllegalState)
	}

	e.start(m, table)
	e.refreshRounds()
	return nil
}

// AutoAssignTables fills every free table with the next ready matches in
// schedule order and returns the started matches.
func (e *Engine) AutoAssignTables(tables int) []bracket.Match {
	busy := e.busyTables()
	var free []int
	for t := 1; t <= tables; t++ {
		if !busy[t] {
			free = append(free, t)
		}
	}

	var ready []*bracket.Match
	for _, id := range e.matchOrder {
		m := e.matches[id]
		if m.IsBye || !m.Full() {
			continue
		}
		if m.Status == bracket.MatchPending || m.Status == bracket.MatchScheduled {
			ready = append(ready, m)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool {
		a, b := ready[i], ready[j]
		if a.ScheduledRound != b.ScheduledRound {
			return a.ScheduledRound < b.ScheduledRound
		}
		return a.MatchNumber < b.MatchNumber
	})

	var started []bracket.Match
	for i := 0; i < len(free) && i < len(ready); i++ {
		e.start(ready[i], free[i])
		started = append(started, *copyMatch(*ready[i]))
	}
	e.refreshRounds()
	return started
}

// MarkScheduled moves a pending match to the call queue.
func (e *Engine) MarkScheduled(matchID uuid.UUID) error {
	m, ok := e.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s: %w", matchID, bracket.ErrNotFound)
	}
	if m.Status != bracket.MatchPending || m.IsBye {
		return fmt.Errorf("match %s is %s: %w", m.BracketPosition, m.Status, bracket.ErrIllegalState)
	}
	m.Status = bracket.MatchScheduled
	e.touch(m)
	return nil
}

func (e *Engine) start(m *bracket.Match, table int) {
	m.TableNumber = &table
	m.Status = bracket.MatchInProgress
	e.touch(m)
}

func (e *Engine) busyTables() map[int]bool {
	busy := make(map[int]bool)
	for _, m := range e.matches {
		if m.Status == bracket.MatchInProgress && m.TableNumber != nil {
			busy[*m.TableNumber] = true
		}
	}
	return busy
}
