package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MatchStore persists the generated graph: rounds and matches.
type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

const (
	createRoundQuery = `INSERT INTO rounds (id, event_id, round_number, phase, name, status)
		VALUES (:id, :event_id, :round_number, :phase, :name, :status)`
	updateRoundQuery = "UPDATE rounds SET status = :status WHERE id = :id"
	getRoundsQuery   = "SELECT * FROM rounds WHERE event_id = ? ORDER BY round_number ASC"

	createMatchQuery = `INSERT INTO matches (id, event_id, round_id, match_number, team1_id, team2_id, team1_score, team2_score, winner_id, is_bye, status, table_number, scheduled_round, bracket_position, next_match_id, loser_next_match_id, group_id)
		VALUES (:id, :event_id, :round_id, :match_number, :team1_id, :team2_id, :team1_score, :team2_score, :winner_id, :is_bye, :status, :table_number, :scheduled_round, :bracket_position, :next_match_id, :loser_next_match_id, :group_id)`
	updateMatchQuery = `UPDATE matches SET
		match_number = :match_number,
		team1_id = :team1_id,
		team2_id = :team2_id,
		team1_score = :team1_score,
		team2_score = :team2_score,
		winner_id = :winner_id,
		is_bye = :is_bye,
		status = :status,
		table_number = :table_number,
		scheduled_round = :scheduled_round
		WHERE id = :id`
	getMatchesQuery = `SELECT m.* FROM matches m
		JOIN rounds r ON r.id = m.round_id
		WHERE m.event_id = ?
		ORDER BY r.round_number ASC, m.match_number ASC, m.bracket_position ASC`

	deleteMatchesQuery = "DELETE FROM matches WHERE event_id = ?"
	deleteRoundsQuery  = "DELETE FROM rounds WHERE event_id = ?"
)

// SaveGraph inserts a freshly generated graph. Rounds go first since every
// match references its round.
func (s *MatchStore) SaveGraph(ctx context.Context, tx *sqlx.Tx, g bracket.Graph) error {
	if len(g.Rounds) > 0 {
		if _, err := tx.NamedExecContext(ctx, createRoundQuery, g.Rounds); err != nil {
			return fmt.Errorf("inserting rounds: %w", err)
		}
	}
	if len(g.Matches) > 0 {
		if _, err := tx.NamedExecContext(ctx, createMatchQuery, g.Matches); err != nil {
			return fmt.Errorf("inserting matches: %w", err)
		}
	}
	return nil
}

// DeleteGraph removes every round and match of the event.
func (s *MatchStore) DeleteGraph(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(deleteMatchesQuery), eventID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, tx.Rebind(deleteRoundsQuery), eventID)
	return err
}

func (s *MatchStore) UpdateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	for i := range matches {
		if err := execOne(tx.NamedExecContext(ctx, updateMatchQuery, &matches[i])); err != nil {
			return fmt.Errorf("match %s: %w", matches[i].ID, err)
		}
	}
	return nil
}

func (s *MatchStore) UpdateRounds(ctx context.Context, tx *sqlx.Tx, rounds []bracket.Round) error {
	for i := range rounds {
		if err := execOne(tx.NamedExecContext(ctx, updateRoundQuery, &rounds[i])); err != nil {
			return fmt.Errorf("round %s: %w", rounds[i].ID, err)
		}
	}
	return nil
}

func (s *MatchStore) GetRounds(ctx context.Context, eventID uuid.UUID) ([]bracket.Round, error) {
	return getRounds(ctx, s.db, eventID)
}

func (s *MatchStore) GetRoundsTx(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID) ([]bracket.Round, error) {
	return getRounds(ctx, tx, eventID)
}

func getRounds(ctx context.Context, q sqlx.ExtContext, eventID uuid.UUID) ([]bracket.Round, error) {
	var rounds []bracket.Round
	err := sqlx.SelectContext(ctx, q, &rounds, q.Rebind(getRoundsQuery), eventID)
	return rounds, err
}

func (s *MatchStore) GetMatches(ctx context.Context, eventID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, eventID)
}

func (s *MatchStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, tx, eventID)
}

func getMatches(ctx context.Context, q sqlx.ExtContext, eventID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches, q.Rebind(getMatchesQuery), eventID)
	return matches, err
}
