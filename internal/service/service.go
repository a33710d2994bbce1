// Package service runs every operation on an event as one transaction under
// the event's lock, persists what the engine changed and publishes a log
// entry once the transaction commits.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/lock"
	"github.com/AdamBeresnev/tablecup/internal/progression"
	"github.com/AdamBeresnev/tablecup/internal/store"
	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

const (
	ActionBracketGenerated   = "bracket_generated"
	ActionKnockoutGenerated  = "knockout_generated"
	ActionMatchResult        = "match_result"
	ActionMatchResultCleared = "match_result_cleared"
	ActionTeamDisqualified   = "team_disqualified"
	ActionByesResolved       = "byes_resolved"
	ActionMatchStarted       = "match_started"
	ActionMatchScheduled     = "match_scheduled"
	ActionTablesAssigned     = "tables_assigned"
	ActionEventUpdated       = "event_updated"
	ActionTeamsChanged       = "teams_changed"
)

// Notifier receives log entries after they are committed.
type Notifier interface {
	Publish(entry bracket.LogEntry)
}

type Deps struct {
	DB       *sqlx.DB
	Events   *store.EventStore
	Matches  *store.MatchStore
	Log      *store.LogStore
	Locker   lock.Locker
	Notifier Notifier
	Clock    clock.Clock
}

// change is what one mutation reports for the event log. An empty action
// means nothing is logged.
type change struct {
	action  string
	payload map[string]any
}

// mutate runs fn under the event lock inside a transaction.
func (d *Deps) mutate(ctx context.Context, eventID uuid.UUID, fn func(tx *sqlx.Tx, event *bracket.Event) (change, error)) error {
	unlock, err := d.Locker.Lock(ctx, eventID.String())
	if err != nil {
		return fmt.Errorf("locking event %s: %w", eventID, err)
	}
	defer unlock()

	tx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	event, err := d.Events.GetEventTx(ctx, tx, eventID)
	if err != nil {
		return err
	}

	c, err := fn(tx, event)
	if err != nil {
		return err
	}

	var entry *bracket.LogEntry
	if c.action != "" {
		entry, err = d.newLogEntry(eventID, c)
		if err != nil {
			return err
		}
		if err := d.Log.Append(ctx, tx, entry); err != nil {
			return fmt.Errorf("appending log entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if entry != nil {
		slog.Info("event changed", "event_id", eventID, "action", entry.Action)
		d.Notifier.Publish(*entry)
	}
	return nil
}

func (d *Deps) newLogEntry(eventID uuid.UUID, c change) (*bracket.LogEntry, error) {
	payload := c.payload
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding log payload: %w", err)
	}
	return &bracket.LogEntry{
		ID:        uuid.New(),
		EventID:   eventID,
		Action:    c.action,
		Payload:   types.JSONText(data),
		CreatedAt: d.Clock.Now().UTC(),
	}, nil
}

// runEngine loads the event graph, applies op and writes back every record
// the engine touched.
func (d *Deps) runEngine(ctx context.Context, tx *sqlx.Tx, event *bracket.Event, op func(e *progression.Engine) error) (*progression.Engine, error) {
	teams, err := d.Events.GetTeamsTx(ctx, tx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	rounds, err := d.Matches.GetRoundsTx(ctx, tx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("loading rounds: %w", err)
	}
	if len(rounds) == 0 {
		return nil, fmt.Errorf("event %s has no bracket yet: %w", event.Name, bracket.ErrIllegalState)
	}
	matches, err := d.Matches.GetMatchesTx(ctx, tx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("loading matches: %w", err)
	}

	e := progression.New(rounds, matches, teams)
	if err := op(e); err != nil {
		return nil, err
	}
	if err := d.persist(ctx, tx, event, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (d *Deps) persist(ctx context.Context, tx *sqlx.Tx, event *bracket.Event, e *progression.Engine) error {
	changes := e.Changes()
	if err := d.Events.UpdateTeams(ctx, tx, changes.Teams); err != nil {
		return fmt.Errorf("saving teams: %w", err)
	}
	if err := d.Matches.UpdateMatches(ctx, tx, changes.Matches); err != nil {
		return fmt.Errorf("saving matches: %w", err)
	}
	if err := d.Matches.UpdateRounds(ctx, tx, changes.Rounds); err != nil {
		return fmt.Errorf("saving rounds: %w", err)
	}
	return d.syncStatus(ctx, tx, event, e.Matches(), e.Rounds())
}

// syncStatus marks the event completed once a champion exists.
func (d *Deps) syncStatus(ctx context.Context, tx *sqlx.Tx, event *bracket.Event, matches []bracket.Match, rounds []bracket.Round) error {
	status := bracket.EventActive
	if podium := bracket.ComputePodium(matches, rounds); len(podium) > 0 {
		status = bracket.EventCompleted
	}
	if status == event.Status {
		return nil
	}
	event.Status = status
	event.UpdatedAt = d.Clock.Now().UTC()
	return d.Events.UpdateEvent(ctx, tx, event)
}
