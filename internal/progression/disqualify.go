package progression

import (
	"fmt"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
)

// DisqualifyTeam marks the team and forfeits every unfinished match it is in.
// An opponent already present wins 0-0 and advances. Without an opponent the
// match completes with no winner and goes to whoever arrives later.
// Completed matches keep their history.
func (e *Engine) DisqualifyTeam(teamID uuid.UUID) error {
	t, ok := e.teams[teamID]
	if !ok {
		return fmt.Errorf("team %s: %w", teamID, bracket.ErrNotFound)
	}
	if t.Disqualified() {
		return fmt.Errorf("team %s is already disqualified: %w", t.Name, bracket.ErrIllegalState)
	}

	t.Status = bracket.TeamDisqualified
	e.changedTeams[t.ID] = true

	var queue []uuid.UUID
	for _, id := range e.matchOrder {
		m := e.matches[id]
		if !m.Completed() && m.HasTeam(teamID) {
			queue = append(queue, id)
		}
	}
	return e.settle(queue)
}
