package store

import (
	"context"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LogStore keeps the append-only event log.
type LogStore struct {
	db *sqlx.DB
}

func NewLogStore(db *sqlx.DB) *LogStore {
	return &LogStore{db: db}
}

const (
	appendLogQuery = `INSERT INTO event_log (id, event_id, action, payload, created_at)
		VALUES (:id, :event_id, :action, :payload, :created_at)`
	listLogQuery = "SELECT * FROM event_log WHERE event_id = ? ORDER BY created_at DESC LIMIT ?"
)

func (s *LogStore) Append(ctx context.Context, tx *sqlx.Tx, entry *bracket.LogEntry) error {
	_, err := tx.NamedExecContext(ctx, appendLogQuery, entry)
	return err
}

// List returns the newest entries first.
func (s *LogStore) List(ctx context.Context, eventID uuid.UUID, limit int) ([]bracket.LogEntry, error) {
	var entries []bracket.LogEntry
	err := s.db.SelectContext(ctx, &entries, s.db.Rebind(listLogQuery), eventID, limit)
	return entries, err
}
