package bracket

import (
	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

type Phase string

const (
	PhaseGroup   Phase = "group"
	PhaseWinners Phase = "winners"
	PhaseLosers  Phase = "losers"
	PhaseFinals  Phase = "finals"
)

type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
)

type Round struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	EventID     uuid.UUID   `db:"event_id" json:"eventId"`
	RoundNumber int         `db:"round_number" json:"roundNumber"`
	Phase       Phase       `db:"phase" json:"phase"`
	Name        string      `db:"name" json:"name"`
	Status      RoundStatus `db:"status" json:"status"`
}

type Match struct {
	ID      uuid.UUID `db:"id" json:"id"`
	EventID uuid.UUID `db:"event_id" json:"eventId"`
	RoundID uuid.UUID `db:"round_id" json:"roundId"`

	// 0 for byes, which are never scheduled
	MatchNumber int `db:"match_number" json:"matchNumber"`

	Team1ID    *uuid.UUID `db:"team1_id" json:"team1Id,omitempty"`
	Team2ID    *uuid.UUID `db:"team2_id" json:"team2Id,omitempty"`
	Team1Score *int       `db:"team1_score" json:"team1Score,omitempty"`
	Team2Score *int       `db:"team2_score" json:"team2Score,omitempty"`
	WinnerID   *uuid.UUID `db:"winner_id" json:"winnerId,omitempty"`

	IsBye          bool        `db:"is_bye" json:"isBye"`
	Status         MatchStatus `db:"status" json:"status"`
	TableNumber    *int        `db:"table_number" json:"tableNumber,omitempty"`
	ScheduledRound int         `db:"scheduled_round" json:"scheduledRound"`

	BracketPosition  string     `db:"bracket_position" json:"bracketPosition"`
	NextMatchID      *uuid.UUID `db:"next_match_id" json:"nextMatchId,omitempty"`
	LoserNextMatchID *uuid.UUID `db:"loser_next_match_id" json:"loserNextMatchId,omitempty"`
	GroupID          *string    `db:"group_id" json:"groupId,omitempty"`
}

func (m *Match) Completed() bool {
	return m.Status == MatchCompleted
}

func (m *Match) HasTeam(id uuid.UUID) bool {
	return (m.Team1ID != nil && *m.Team1ID == id) || (m.Team2ID != nil && *m.Team2ID == id)
}

func (m *Match) Full() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}

// LoserID is the non-winning team of a decided match.
func (m *Match) LoserID() *uuid.UUID {
	if m.WinnerID == nil || !m.Full() {
		return nil
	}
	if *m.Team1ID == *m.WinnerID {
		return m.Team2ID
	}
	return m.Team1ID
}

// Played reports whether the match was decided by an actual result.
func (m *Match) Played() bool {
	return m.Completed() && !m.IsBye && m.WinnerID != nil && m.Full()
}

// Graph is the output of a generator: rounds and matches linked by ID.
type Graph struct {
	Rounds  []Round
	Matches []Match

	// Group label per team, filled only by the group phase generator
	Groups map[uuid.UUID]string
}

func (g *Graph) RoundMatches(roundID uuid.UUID) []*Match {
	var out []*Match
	for i := range g.Matches {
		if g.Matches[i].RoundID == roundID {
			out = append(out, &g.Matches[i])
		}
	}
	return out
}
