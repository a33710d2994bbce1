package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EventStore persists events and their teams.
type EventStore struct {
	db *sqlx.DB
}

func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

const (
	createEventQuery = `INSERT INTO events (id, name, date, location, mode, status, table_count, group_count, teams_advance_per_group, knockout_mode, created_at, updated_at)
		VALUES (:id, :name, :date, :location, :mode, :status, :table_count, :group_count, :teams_advance_per_group, :knockout_mode, :created_at, :updated_at)`
	updateEventQuery = `UPDATE events SET
		name = :name,
		date = :date,
		location = :location,
		mode = :mode,
		status = :status,
		table_count = :table_count,
		group_count = :group_count,
		teams_advance_per_group = :teams_advance_per_group,
		knockout_mode = :knockout_mode,
		updated_at = :updated_at
		WHERE id = :id`
	getEventQuery   = "SELECT * FROM events WHERE id = ?"
	listEventsQuery = "SELECT * FROM events ORDER BY created_at DESC"

	createTeamQuery = `INSERT INTO teams (id, event_id, name, members, seed, status, group_id, created_at)
		VALUES (:id, :event_id, :name, :members, :seed, :status, :group_id, :created_at)`
	updateTeamQuery = `UPDATE teams SET
		name = :name,
		members = :members,
		seed = :seed,
		status = :status,
		group_id = :group_id
		WHERE id = :id`
	deleteTeamQuery = "DELETE FROM teams WHERE id = ?"
	getTeamQuery    = "SELECT * FROM teams WHERE id = ?"
	getTeamsQuery   = "SELECT * FROM teams WHERE event_id = ? ORDER BY seed IS NULL, seed ASC, created_at ASC"
)

func (s *EventStore) CreateEvent(ctx context.Context, tx *sqlx.Tx, event *bracket.Event) error {
	_, err := tx.NamedExecContext(ctx, createEventQuery, event)
	return err
}

func (s *EventStore) UpdateEvent(ctx context.Context, tx *sqlx.Tx, event *bracket.Event) error {
	return execOne(tx.NamedExecContext(ctx, updateEventQuery, event))
}

func (s *EventStore) GetEvent(ctx context.Context, id uuid.UUID) (*bracket.Event, error) {
	return getEvent(ctx, s.db, id)
}

// GetEventTx reads the event inside a running transaction.
func (s *EventStore) GetEventTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Event, error) {
	return getEvent(ctx, tx, id)
}

func getEvent(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Event, error) {
	var event bracket.Event
	err := sqlx.GetContext(ctx, q, &event, q.Rebind(getEventQuery), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, bracket.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventStore) ListEvents(ctx context.Context) ([]bracket.Event, error) {
	var events []bracket.Event
	err := s.db.SelectContext(ctx, &events, listEventsQuery)
	return events, err
}

func (s *EventStore) CreateTeams(ctx context.Context, tx *sqlx.Tx, teams []bracket.Team) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createTeamQuery, teams)
	return err
}

func (s *EventStore) UpdateTeam(ctx context.Context, tx *sqlx.Tx, team *bracket.Team) error {
	return execOne(tx.NamedExecContext(ctx, updateTeamQuery, team))
}

func (s *EventStore) UpdateTeams(ctx context.Context, tx *sqlx.Tx, teams []bracket.Team) error {
	for i := range teams {
		if err := s.UpdateTeam(ctx, tx, &teams[i]); err != nil {
			return fmt.Errorf("team %s: %w", teams[i].ID, err)
		}
	}
	return nil
}

func (s *EventStore) DeleteTeam(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	return execOne(tx.ExecContext(ctx, tx.Rebind(deleteTeamQuery), id))
}

func (s *EventStore) GetTeamTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Team, error) {
	var team bracket.Team
	err := tx.GetContext(ctx, &team, tx.Rebind(getTeamQuery), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", id, bracket.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *EventStore) GetTeams(ctx context.Context, eventID uuid.UUID) ([]bracket.Team, error) {
	return getTeams(ctx, s.db, eventID)
}

func (s *EventStore) GetTeamsTx(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID) ([]bracket.Team, error) {
	return getTeams(ctx, tx, eventID)
}

func getTeams(ctx context.Context, q sqlx.ExtContext, eventID uuid.UUID) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := sqlx.SelectContext(ctx, q, &teams, q.Rebind(getTeamsQuery), eventID)
	return teams, err
}

// execOne turns an update that touched no row into ErrNotFound.
func execOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bracket.ErrNotFound
	}
	return nil
}
