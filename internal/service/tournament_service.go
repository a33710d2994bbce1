package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	Deps
}

func NewTournamentService(d Deps) *TournamentService {
	return &TournamentService{Deps: d}
}

type EventInput struct {
	Name                 string                `json:"name"`
	Date                 *string               `json:"date"`
	Location             *string               `json:"location"`
	Mode                 bracket.EventMode     `json:"mode"`
	TableCount           int                   `json:"tableCount"`
	GroupCount           *int                  `json:"groupCount"`
	TeamsAdvancePerGroup *int                  `json:"teamsAdvancePerGroup"`
	KnockoutMode         *bracket.KnockoutMode `json:"knockoutMode"`
}

func (in *EventInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("event name is required: %w", bracket.ErrInvalidInput)
	}
	in.Date, in.Location = utils.Trimmed(in.Date), utils.Trimmed(in.Location)
	if !in.Mode.Valid() {
		return fmt.Errorf("unknown mode %q: %w", in.Mode, bracket.ErrInvalidInput)
	}
	if in.TableCount < bracket.MinTables || in.TableCount > bracket.MaxTables {
		return fmt.Errorf("table count must be between %d and %d: %w", bracket.MinTables, bracket.MaxTables, bracket.ErrInvalidInput)
	}

	if in.Mode != bracket.ModeGroup {
		in.GroupCount, in.TeamsAdvancePerGroup, in.KnockoutMode = nil, nil, nil
		return nil
	}
	if in.GroupCount == nil || *in.GroupCount < bracket.MinGroups || *in.GroupCount > bracket.MaxGroups {
		return fmt.Errorf("group count must be between %d and %d: %w", bracket.MinGroups, bracket.MaxGroups, bracket.ErrInvalidInput)
	}
	if in.TeamsAdvancePerGroup != nil && (*in.TeamsAdvancePerGroup < bracket.MinAdvancePerGroup || *in.TeamsAdvancePerGroup > bracket.MaxAdvancePerGroup) {
		return fmt.Errorf("teams advancing per group must be between %d and %d: %w", bracket.MinAdvancePerGroup, bracket.MaxAdvancePerGroup, bracket.ErrInvalidInput)
	}
	if in.KnockoutMode != nil && !in.KnockoutMode.Valid() {
		return fmt.Errorf("unknown knockout mode %q: %w", *in.KnockoutMode, bracket.ErrInvalidInput)
	}
	return nil
}

func (s *TournamentService) CreateEvent(ctx context.Context, in EventInput) (*bracket.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := s.Clock.Now().UTC()
	event := &bracket.Event{
		ID:                   uuid.New(),
		Name:                 in.Name,
		Date:                 in.Date,
		Location:             in.Location,
		Mode:                 in.Mode,
		Status:               bracket.EventDraft,
		TableCount:           in.TableCount,
		GroupCount:           in.GroupCount,
		TeamsAdvancePerGroup: in.TeamsAdvancePerGroup,
		KnockoutMode:         in.KnockoutMode,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.Events.CreateEvent(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, tx.Commit()
}

// UpdateEvent changes event settings. The format is fixed once a bracket
// exists; name, date, location and table count can always change.
func (s *TournamentService) UpdateEvent(ctx context.Context, eventID uuid.UUID, in EventInput) (*bracket.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *bracket.Event
	err := s.mutate(ctx, eventID, func(tx *sqlx.Tx, event *bracket.Event) (change, error) {
		if event.Status != bracket.EventDraft && formatChanged(event, &in) {
			return change{}, fmt.Errorf("format of %s cannot change after the bracket is generated: %w", event.Name, bracket.ErrIllegalState)
		}

		event.Name = in.Name
		event.Date = in.Date
		event.Location = in.Location
		event.Mode = in.Mode
		event.TableCount = in.TableCount
		event.GroupCount = in.GroupCount
		event.TeamsAdvancePerGroup = in.TeamsAdvancePerGroup
		event.KnockoutMode = in.KnockoutMode
		event.UpdatedAt = s.Clock.Now().UTC()
		if err := s.Events.UpdateEvent(ctx, tx, event); err != nil {
			return change{}, err
		}
		updated = event
		return change{action: ActionEventUpdated}, nil
	})
	return updated, err
}

func formatChanged(event *bracket.Event, in *EventInput) bool {
	if event.Mode != in.Mode {
		return true
	}
	if event.Mode != bracket.ModeGroup {
		return false
	}
	knockout := bracket.KnockoutSingle
	if in.KnockoutMode != nil {
		knockout = *in.KnockoutMode
	}
	return *in.GroupCount != utils.OrZero(event.GroupCount) ||
		knockout != event.Knockout() ||
		(in.TeamsAdvancePerGroup != nil && *in.TeamsAdvancePerGroup != event.AdvancePerGroup())
}

func (s *TournamentService) GetEvent(ctx context.Context, eventID uuid.UUID) (*bracket.Event, error) {
	return s.Events.GetEvent(ctx, eventID)
}

func (s *TournamentService) ListEvents(ctx context.Context) ([]bracket.Event, error) {
	return s.Events.ListEvents(ctx)
}

type EventData struct {
	Event               *bracket.Event  `json:"event"`
	Teams               []bracket.Team  `json:"teams"`
	Rounds              []bracket.Round `json:"rounds"`
	Matches             []bracket.Match `json:"matches"`
	CurrentRound        *bracket.Round  `json:"currentRound,omitempty"`
	CurrentPlayingRound int             `json:"currentPlayingRound"`

	// Rounds and matches grouped by phase for drawing
	Bracket []bracket.PhaseLayout `json:"bracket"`
}

// GetEventData loads everything a bracket view needs in parallel.
func (s *TournamentService) GetEventData(ctx context.Context, eventID uuid.UUID) (*EventData, error) {
	data := &EventData{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Event, err = s.Events.GetEvent(ctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		data.Teams, err = s.Events.GetTeams(ctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		data.Rounds, err = s.Matches.GetRounds(ctx, eventID)
		return err
	})
	g.Go(func() (err error) {
		data.Matches, err = s.Matches.GetMatches(ctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.CurrentRound = bracket.CurrentRound(data.Rounds, data.Matches)
	data.CurrentPlayingRound = bracket.CurrentPlayingRound(data.Matches)
	data.Bracket = bracket.Layout(data.Rounds, data.Matches)
	return data, nil
}

func (s *TournamentService) GetStandings(ctx context.Context, eventID uuid.UUID) ([]bracket.GroupStanding, error) {
	data, err := s.GetEventData(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return bracket.StandingsByGroup(data.Teams, data.Matches), nil
}

func (s *TournamentService) GetPodium(ctx context.Context, eventID uuid.UUID) ([]bracket.PodiumEntry, error) {
	data, err := s.GetEventData(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return bracket.ComputePodium(data.Matches, data.Rounds), nil
}

func (s *TournamentService) ListLog(ctx context.Context, eventID uuid.UUID, limit int) ([]bracket.LogEntry, error) {
	if _, err := s.Events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Log.List(ctx, eventID, limit)
}
