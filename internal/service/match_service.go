package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/progression"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	Deps
}

func NewMatchService(d Deps) *MatchService {
	return &MatchService{Deps: d}
}

type MatchData struct {
	Match *bracket.Match `json:"match"`
	Team1 *bracket.Team  `json:"team1,omitempty"`
	Team2 *bracket.Team  `json:"team2,omitempty"`

	// Next match in schedule order that is ready to be called
	NextMatchID *uuid.UUID `json:"nextMatchId,omitempty"`
}

func (s *MatchService) GetMatchData(ctx context.Context, eventID, matchID uuid.UUID) (*MatchData, error) {
	teams, err := s.Events.GetTeams(ctx, eventID)
	if err != nil {
		return nil, err
	}
	matches, err := s.Matches.GetMatches(ctx, eventID)
	if err != nil {
		return nil, err
	}

	data := &MatchData{}
	for i := range matches {
		if matches[i].ID == matchID {
			data.Match = &matches[i]
		}
	}
	if data.Match == nil {
		return nil, fmt.Errorf("match %s: %w", matchID, bracket.ErrNotFound)
	}
	for i := range teams {
		if data.Match.Team1ID != nil && teams[i].ID == *data.Match.Team1ID {
			data.Team1 = &teams[i]
		}
		if data.Match.Team2ID != nil && teams[i].ID == *data.Match.Team2ID {
			data.Team2 = &teams[i]
		}
	}
	if next := nextReady(matches, matchID); next != nil {
		data.NextMatchID = &next.ID
	}
	return data, nil
}

func nextReady(matches []bracket.Match, exclude uuid.UUID) *bracket.Match {
	var ready []bracket.Match
	for _, m := range matches {
		if m.ID == exclude || m.IsBye || !m.Full() {
			continue
		}
		if m.Status == bracket.MatchPending || m.Status == bracket.MatchScheduled {
			ready = append(ready, m)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].ScheduledRound != ready[j].ScheduledRound {
			return ready[i].ScheduledRound < ready[j].ScheduledRound
		}
		return ready[i].MatchNumber < ready[j].MatchNumber
	})
	return &ready[0]
}

type ResultInput struct {
	Team1Score int `json:"team1Score"`
	Team2Score int `json:"team2Score"`
}

func (s *MatchService) RecordResult(ctx context.Context, eventID, matchID uuid.UUID, in ResultInput) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		e, err := s.runEngine(ctx, tx, event, func(e *progression.Engine) error {
			return e.RecordResult(matchID, in.Team1Score, in.Team2Score)
		})
		if err != nil {
			return change{}, err
		}
		m, _ := e.Match(matchID)
		return change{
			action: ActionMatchResult,
			payload: map[string]any{
				"matchId":    matchID,
				"position":   m.BracketPosition,
				"team1Score": in.Team1Score,
				"team2Score": in.Team2Score,
				"winnerId":   m.WinnerID,
			},
		}, nil
	})
}

func (s *MatchService) ClearResult(ctx context.Context, eventID, matchID uuid.UUID) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		e, err := s.runEngine(ctx, tx, event, func(e *progression.Engine) error {
			return e.ClearResult(matchID)
		})
		if err != nil {
			return change{}, err
		}
		m, _ := e.Match(matchID)
		return change{
			action:  ActionMatchResultCleared,
			payload: map[string]any{"matchId": matchID, "position": m.BracketPosition},
		}, nil
	})
}

// ResolveByes settles pending byes and walkovers. Nothing is logged when
// there was nothing to settle.
func (s *MatchService) ResolveByes(ctx context.Context, eventID uuid.UUID) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		var resolved int
		_, err := s.runEngine(ctx, tx, event, func(e *progression.Engine) error {
			if err := e.ResolveByes(); err != nil {
				return err
			}
			resolved = len(e.Changes().Matches)
			return nil
		})
		if err != nil || resolved == 0 {
			return change{}, err
		}
		return change{
			action:  ActionByesResolved,
			payload: map[string]any{"matches": resolved},
		}, nil
	})
}

func (s *MatchService) DisqualifyTeam(ctx context.Context, eventID, teamID uuid.UUID) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		e, err := s.runEngine(ctx, tx, event, func(e *progression.Engine) error {
			return e.DisqualifyTeam(teamID)
		})
		if err != nil {
			return change{}, err
		}
		return change{
			action:  ActionTeamDisqualified,
			payload: map[string]any{"teamId": teamID, "matches": len(e.Changes().Matches)},
		}, nil
	})
}

func (s *MatchService) StartMatch(ctx context.Context, eventID, matchID uuid.UUID, table int) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		_, err := s.runEngine(ctx, tx, event, func(e *progression.Engine) error {
			return e.StartMatch(matchID, table, event.TableCount)
		})
		if err != nil {
			return change{}, err
		}
		return change{
			action:  ActionMatchStarted,
			payload: map[string]any{"matchId": matchID, "table": table},
		}, nil
	})
}

func (s *MatchService) MarkScheduled(ctx context.Context, eventID, matchID uuid.UUID) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		_, err := s.runEngine(ctx, tx, event, func(e *progression.Engine) error {
			return e.MarkScheduled(matchID)
		})
		if err != nil {
			return change{}, err
		}
		return change{
			action:  ActionMatchScheduled,
			payload: map[string]any{"matchId": matchID},
		}, nil
	})
}

// AutoAssignTables starts the next ready matches on every free table and
// returns them.
func (s *MatchService) AutoAssignTables(ctx context.Context, eventID uuid.UUID) ([]bracket.Match, error) {
	var started []bracket.Match
	err := s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		_, err := s.runEngine(ctx, tx, event, func(e *progression.Engine) error {
			started = e.AutoAssignTables(event.TableCount)
			return nil
		})
		if err != nil || len(started) == 0 {
			return change{}, err
		}

		assigned := make([]map[string]any, 0, len(started))
		for _, m := range started {
			assigned = append(assigned, map[string]any{"matchId": m.ID, "table": m.TableNumber})
		}
		return change{
			action:  ActionTablesAssigned,
			payload: map[string]any{"assigned": assigned},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}
