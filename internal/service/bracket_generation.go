package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/progression"
	"github.com/AdamBeresnev/tablecup/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GenerateBracket builds the event's bracket from its active teams, replacing
// any bracket that has no results yet. Seeding byes are resolved right away.
func (s *TournamentService) GenerateBracket(ctx context.Context, eventID uuid.UUID) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		all, err := s.Events.GetTeamsTx(ctx, tx, eventID)
		if err != nil {
			return change{}, fmt.Errorf("loading teams: %w", err)
		}
		var teams []bracket.Team
		out := make(map[uuid.UUID]bool)
		for _, t := range all {
			if t.Disqualified() {
				out[t.ID] = true
			} else {
				teams = append(teams, t)
			}
		}

		existing, err := s.Matches.GetMatchesTx(ctx, tx, eventID)
		if err != nil {
			return change{}, fmt.Errorf("loading matches: %w", err)
		}
		for _, m := range existing {
			// Forfeits against disqualified teams are not results
			if m.Played() && !out[*m.Team1ID] && !out[*m.Team2ID] {
				return change{}, fmt.Errorf("results were already recorded for %s: %w", event.Name, bracket.ErrIllegalState)
			}
		}

		g, err := generate(event, teams)
		if err != nil {
			return change{}, err
		}
		bracket.Schedule(&g, event.TableCount)

		if err := s.Matches.DeleteGraph(ctx, tx, eventID); err != nil {
			return change{}, fmt.Errorf("removing old bracket: %w", err)
		}
		if err := s.assignGroups(ctx, tx, all, g.Groups); err != nil {
			return change{}, err
		}

		e := progression.New(g.Rounds, g.Matches, teams)
		if err := e.ResolveByes(); err != nil {
			return change{}, err
		}
		if err := s.Matches.SaveGraph(ctx, tx, bracket.Graph{Rounds: e.Rounds(), Matches: e.Matches()}); err != nil {
			return change{}, err
		}
		if err := s.syncStatus(ctx, tx, event, e.Matches(), e.Rounds()); err != nil {
			return change{}, err
		}

		return change{
			action: ActionBracketGenerated,
			payload: map[string]any{
				"mode":    event.Mode,
				"teams":   len(teams),
				"rounds":  len(g.Rounds),
				"matches": len(g.Matches),
			},
		}, nil
	})
}

func generate(event *bracket.Event, teams []bracket.Team) (bracket.Graph, error) {
	switch event.Mode {
	case bracket.ModeSingleElimination:
		return bracket.GenerateSingleElimination(event.ID, teams)
	case bracket.ModeDoubleElimination:
		return bracket.GenerateDoubleElimination(event.ID, teams)
	case bracket.ModeGroup:
		if event.GroupCount == nil {
			return bracket.Graph{}, fmt.Errorf("event %s has no group count: %w", event.Name, bracket.ErrInvalidInput)
		}
		return bracket.GenerateGroupPhase(event.ID, teams, *event.GroupCount)
	}
	return bracket.Graph{}, fmt.Errorf("unknown mode %q: %w", event.Mode, bracket.ErrInvalidInput)
}

// assignGroups writes each team's group label. Teams outside the map lose
// any label left from an earlier generation.
func (s *TournamentService) assignGroups(ctx context.Context, tx *sqlx.Tx, teams []bracket.Team, groups map[uuid.UUID]string) error {
	var changed []bracket.Team
	for _, t := range teams {
		var label *string
		if g, ok := groups[t.ID]; ok {
			label = &g
		}
		if utils.Equal(t.GroupID, label) {
			continue
		}
		t.GroupID = label
		changed = append(changed, t)
	}
	if err := s.Events.UpdateTeams(ctx, tx, changed); err != nil {
		return fmt.Errorf("assigning groups: %w", err)
	}
	return nil
}

// GenerateKnockout seeds the knockout stage of a group event from the final
// group standings.
func (s *TournamentService) GenerateKnockout(ctx context.Context, eventID uuid.UUID) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		if event.Mode != bracket.ModeGroup {
			return change{}, fmt.Errorf("event %s has no group phase: %w", event.Name, bracket.ErrInvalidInput)
		}

		teams, err := s.Events.GetTeamsTx(ctx, tx, eventID)
		if err != nil {
			return change{}, fmt.Errorf("loading teams: %w", err)
		}
		rounds, err := s.Matches.GetRoundsTx(ctx, tx, eventID)
		if err != nil {
			return change{}, fmt.Errorf("loading rounds: %w", err)
		}
		if len(rounds) == 0 {
			return change{}, fmt.Errorf("event %s has no group phase yet: %w", event.Name, bracket.ErrIllegalState)
		}
		matches, err := s.Matches.GetMatchesTx(ctx, tx, eventID)
		if err != nil {
			return change{}, fmt.Errorf("loading matches: %w", err)
		}

		g, err := bracket.GenerateKnockoutFromGroups(bracket.KnockoutInput{
			EventID:         eventID,
			Teams:           teams,
			Rounds:          rounds,
			Matches:         matches,
			AdvancePerGroup: event.AdvancePerGroup(),
			Mode:            event.Knockout(),
			Tables:          event.TableCount,
		})
		if err != nil {
			return change{}, err
		}

		e := progression.New(g.Rounds, g.Matches, teams)
		if err := e.ResolveByes(); err != nil {
			return change{}, err
		}
		if err := s.Matches.SaveGraph(ctx, tx, bracket.Graph{Rounds: e.Rounds(), Matches: e.Matches()}); err != nil {
			return change{}, err
		}

		return change{
			action: ActionKnockoutGenerated,
			payload: map[string]any{
				"mode":    event.Knockout(),
				"advance": event.AdvancePerGroup(),
				"rounds":  len(g.Rounds),
				"matches": len(g.Matches),
			},
		}, nil
	})
}
