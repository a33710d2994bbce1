package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/AdamBeresnev/tablecup/internal/utils"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := sqlx.Connect("sqlite3", dsn)
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite3",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func withTx(t *testing.T, db *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func newEvent(mode bracket.EventMode, createdAt time.Time) *bracket.Event {
	return &bracket.Event{
		ID:         uuid.New(),
		Name:       "Friday Cup",
		Mode:       mode,
		Status:     bracket.EventDraft,
		TableCount: 2,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func seedEvent(t *testing.T, db *sqlx.DB, teamCount int) (*bracket.Event, []bracket.Team) {
	t.Helper()
	events := NewEventStore(db)
	event := newEvent(bracket.ModeSingleElimination, time.Now().UTC())

	teams := make([]bracket.Team, teamCount)
	for i := range teams {
		teams[i] = bracket.Team{
			ID:        uuid.New(),
			EventID:   event.ID,
			Name:      fmt.Sprintf("Team %d", i+1),
			Members:   bracket.Members{},
			Seed:      utils.Ptr(i + 1),
			Status:    bracket.TeamActive,
			CreatedAt: time.Now().UTC(),
		}
	}

	withTx(t, db, func(tx *sqlx.Tx) error {
		if err := events.CreateEvent(context.Background(), tx, event); err != nil {
			return err
		}
		return events.CreateTeams(context.Background(), tx, teams)
	})
	return event, teams
}
