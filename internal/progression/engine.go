// Package progression moves teams through a generated match graph as results,
// byes and disqualifications come in. It works on an in-memory copy of one
// event's records and reports which of them changed.
package progression

import (
	"sort"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
)

type Engine struct {
	rounds  map[uuid.UUID]*bracket.Round
	matches map[uuid.UUID]*bracket.Match
	teams   map[uuid.UUID]*bracket.Team

	roundOrder []uuid.UUID
	matchOrder []uuid.UUID
	teamOrder  []uuid.UUID

	// Matches feeding each match through a winner or loser edge
	feeders      map[uuid.UUID][]uuid.UUID
	roundMatches map[uuid.UUID][]uuid.UUID

	changedMatches map[uuid.UUID]bool
	changedTeams   map[uuid.UUID]bool
	changedRounds  map[uuid.UUID]bool
}

type Changes struct {
	Matches []bracket.Match
	Teams   []bracket.Team
	Rounds  []bracket.Round
}

func (c Changes) Empty() bool {
	return len(c.Matches) == 0 && len(c.Teams) == 0 && len(c.Rounds) == 0
}

// New copies the records so callers' slices are never modified.
func New(rounds []bracket.Round, matches []bracket.Match, teams []bracket.Team) *Engine {
	e := &Engine{
		rounds:         make(map[uuid.UUID]*bracket.Round, len(rounds)),
		matches:        make(map[uuid.UUID]*bracket.Match, len(matches)),
		teams:          make(map[uuid.UUID]*bracket.Team, len(teams)),
		feeders:        make(map[uuid.UUID][]uuid.UUID),
		roundMatches:   make(map[uuid.UUID][]uuid.UUID),
		changedMatches: make(map[uuid.UUID]bool),
		changedTeams:   make(map[uuid.UUID]bool),
		changedRounds:  make(map[uuid.UUID]bool),
	}

	for _, r := range rounds {
		e.rounds[r.ID] = &r
		e.roundOrder = append(e.roundOrder, r.ID)
	}
	sort.SliceStable(e.roundOrder, func(i, j int) bool {
		return e.rounds[e.roundOrder[i]].RoundNumber < e.rounds[e.roundOrder[j]].RoundNumber
	})

	for _, t := range teams {
		e.teams[t.ID] = &t
		e.teamOrder = append(e.teamOrder, t.ID)
	}

	for _, m := range matches {
		m := copyMatch(m)
		e.matches[m.ID] = m
		e.matchOrder = append(e.matchOrder, m.ID)
	}
	sort.SliceStable(e.matchOrder, func(i, j int) bool {
		a, b := e.matches[e.matchOrder[i]], e.matches[e.matchOrder[j]]
		ra, rb := e.roundNumber(a), e.roundNumber(b)
		if ra != rb {
			return ra < rb
		}
		return a.MatchNumber < b.MatchNumber
	})

	for _, id := range e.matchOrder {
		m := e.matches[id]
		e.roundMatches[m.RoundID] = append(e.roundMatches[m.RoundID], id)
		if m.NextMatchID != nil {
			e.feeders[*m.NextMatchID] = append(e.feeders[*m.NextMatchID], id)
		}
		if m.LoserNextMatchID != nil {
			e.feeders[*m.LoserNextMatchID] = append(e.feeders[*m.LoserNextMatchID], id)
		}
	}
	return e
}

func copyMatch(m bracket.Match) *bracket.Match {
	c := m
	c.Team1ID = clone(m.Team1ID)
	c.Team2ID = clone(m.Team2ID)
	c.Team1Score = clone(m.Team1Score)
	c.Team2Score = clone(m.Team2Score)
	c.WinnerID = clone(m.WinnerID)
	c.TableNumber = clone(m.TableNumber)
	c.NextMatchID = clone(m.NextMatchID)
	c.LoserNextMatchID = clone(m.LoserNextMatchID)
	c.GroupID = clone(m.GroupID)
	return &c
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (e *Engine) roundNumber(m *bracket.Match) int {
	if r, ok := e.rounds[m.RoundID]; ok {
		return r.RoundNumber
	}
	return 0
}

func (e *Engine) phase(m *bracket.Match) bracket.Phase {
	if r, ok := e.rounds[m.RoundID]; ok {
		return r.Phase
	}
	return ""
}

func (e *Engine) Match(id uuid.UUID) (bracket.Match, bool) {
	m, ok := e.matches[id]
	if !ok {
		return bracket.Match{}, false
	}
	return *copyMatch(*m), true
}

func (e *Engine) Matches() []bracket.Match {
	out := make([]bracket.Match, 0, len(e.matchOrder))
	for _, id := range e.matchOrder {
		out = append(out, *copyMatch(*e.matches[id]))
	}
	return out
}

func (e *Engine) Rounds() []bracket.Round {
	out := make([]bracket.Round, 0, len(e.roundOrder))
	for _, id := range e.roundOrder {
		out = append(out, *e.rounds[id])
	}
	return out
}

func (e *Engine) Teams() []bracket.Team {
	out := make([]bracket.Team, 0, len(e.teamOrder))
	for _, id := range e.teamOrder {
		out = append(out, *e.teams[id])
	}
	return out
}

// Changes returns every record modified since the engine was created.
func (e *Engine) Changes() Changes {
	var c Changes
	for _, id := range e.matchOrder {
		if e.changedMatches[id] {
			c.Matches = append(c.Matches, *copyMatch(*e.matches[id]))
		}
	}
	for _, id := range e.teamOrder {
		if e.changedTeams[id] {
			c.Teams = append(c.Teams, *e.teams[id])
		}
	}
	for _, id := range e.roundOrder {
		if e.changedRounds[id] {
			c.Rounds = append(c.Rounds, *e.rounds[id])
		}
	}
	return c
}

func (e *Engine) touch(m *bracket.Match) {
	e.changedMatches[m.ID] = true
}

func (e *Engine) refreshRounds() {
	for _, id := range e.roundOrder {
		r := e.rounds[id]
		ms := make([]*bracket.Match, 0, len(e.roundMatches[id]))
		for _, mid := range e.roundMatches[id] {
			ms = append(ms, e.matches[mid])
		}
		if status := bracket.RoundStatusOf(ms); status != r.Status {
			r.Status = status
			e.changedRounds[id] = true
		}
	}
}
