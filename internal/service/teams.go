package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TeamInput struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Seed    *int     `json:"seed"`
}

func (in *TeamInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("team name is required: %w", bracket.ErrInvalidInput)
	}
	if in.Seed != nil && *in.Seed < 1 {
		return fmt.Errorf("seed must be positive: %w", bracket.ErrInvalidInput)
	}

	members := make([]string, 0, len(in.Members))
	for _, m := range in.Members {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	in.Members = members
	return nil
}

func (s *TournamentService) AddTeam(ctx context.Context, eventID uuid.UUID, in TeamInput) (*bracket.Team, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var team *bracket.Team
	err := s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		if event.Status != bracket.EventDraft {
			return change{}, fmt.Errorf("teams cannot join %s after the bracket is generated: %w", event.Name, bracket.ErrIllegalState)
		}
		team = &bracket.Team{
			ID:        uuid.New(),
			EventID:   eventID,
			Name:      in.Name,
			Members:   in.Members,
			Seed:      in.Seed,
			Status:    bracket.TeamActive,
			CreatedAt: s.Clock.Now().UTC(),
		}
		if err := s.Events.CreateTeams(ctx, tx, []bracket.Team{*team}); err != nil {
			return change{}, fmt.Errorf("failed to create team: %w", err)
		}
		return teamsChanged("added", team), nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeam renames a team or changes its members at any time. Seeds only
// change while the event is still a draft.
func (s *TournamentService) UpdateTeam(ctx context.Context, eventID, teamID uuid.UUID, in TeamInput) (*bracket.Team, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var team *bracket.Team
	err := s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		var err error
		team, err = s.eventTeam(ctx, tx, eventID, teamID)
		if err != nil {
			return change{}, err
		}
		if event.Status != bracket.EventDraft && !utils.Equal(team.Seed, in.Seed) {
			return change{}, fmt.Errorf("seeds of %s are fixed once the bracket is generated: %w", event.Name, bracket.ErrIllegalState)
		}

		team.Name = in.Name
		team.Members = in.Members
		team.Seed = in.Seed
		if err := s.Events.UpdateTeam(ctx, tx, team); err != nil {
			return change{}, err
		}
		return teamsChanged("updated", team), nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *TournamentService) DeleteTeam(ctx context.Context, eventID, teamID uuid.UUID) error {
	return s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		if event.Status != bracket.EventDraft {
			return change{}, fmt.Errorf("teams cannot leave %s after the bracket is generated: %w", event.Name, bracket.ErrIllegalState)
		}
		team, err := s.eventTeam(ctx, tx, eventID, teamID)
		if err != nil {
			return change{}, err
		}
		if err := s.Events.DeleteTeam(ctx, tx, teamID); err != nil {
			return change{}, err
		}
		return teamsChanged("deleted", team), nil
	})
}

func (s *TournamentService) eventTeam(ctx context.Context, tx *sqlx.Tx, eventID, teamID uuid.UUID) (*bracket.Team, error) {
	team, err := s.Events.GetTeamTx(ctx, tx, teamID)
	if err != nil {
		return nil, err
	}
	if team.EventID != eventID {
		return nil, fmt.Errorf("team %s: %w", teamID, bracket.ErrNotFound)
	}
	return team, nil
}

func teamsChanged(op string, team *bracket.Team) change {
	return change{
		action:  ActionTeamsChanged,
		payload: map[string]any{"op": op, "teamId": team.ID, "name": team.Name},
	}
}
